package main

import (
	"fmt"
	"log"

	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/database"
	"github.com/localnerve/transform-studio/internal/models"
)

func main() {
	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:", DBConnectionLimit: 1}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table'").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)
	}

	columns, err := db.Migrator().ColumnTypes(&models.StoreEntry{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n=== Columns: %s ===\n", models.StoreEntry{}.TableName())
	for _, c := range columns {
		nullable, _ := c.Nullable()
		fmt.Printf("%-12s %-10s nullable=%v\n", c.Name(), c.DatabaseTypeName(), nullable)
	}
}
