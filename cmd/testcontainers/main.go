package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/tests/helpers"
)

const usage = `
Start a database container for transform-studio development and print the
settings a server needs to use it. The container stops on SIGINT or SIGTERM.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-o OUT_ENV_PATH]

ENV_FILE_PATH: .env read before starting (DB_TYPE, DB_IMAGE, DB_DATABASE, DB_USER, DB_PASSWORD)
OUT_ENV_PATH:  .env written with the mapped DB_HOST and DB_PORT, ready for ENV_FILE

example
  testcontainers -f .env.dev -o .env.container
  ENV_FILE=.env.container server
`

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename, outFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file to read")
	flag.StringVar(&outFilename, "o", "", "path to write the server .env file")
	flag.Parse()

	if showHelp {
		fmt.Print(usage + "\n")
		return
	}

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
		log.Printf("Loaded environment variables from %s", envFilename)
	}

	dbType := os.Getenv("DB_TYPE")
	switch dbType {
	case "mariadb", "mysql", "postgres":
	case "":
		dbType = "mariadb"
	default:
		log.Fatalf("DB_TYPE %q has no container, use mariadb, mysql or postgres", dbType)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	containers, err := helpers.CreateDatabaseContainer(nil, dbType)
	if err != nil {
		log.Fatalf("Failed to start database container: %v", err)
	}
	defer containers.Terminate(nil)

	env := serverEnv(containers.Config)
	for _, key := range []string{"STORE_TYPE", "DB_TYPE", "DB_HOST", "DB_PORT", "DB_DATABASE", "DB_USER", "DB_PASSWORD", "DB_CONNECTION_LIMIT"} {
		fmt.Printf("%s=%s\n", key, env[key])
	}
	fmt.Printf("# DSN %s\n", dsn(containers.Config))

	if outFilename != "" {
		if err := godotenv.Write(env, outFilename); err != nil {
			log.Printf("Failed to write %s: %v", outFilename, err)
		} else {
			log.Printf("Wrote server settings to %s", outFilename)
		}
	}

	<-ctx.Done()
	log.Println("Stopping database container...")
}

// serverEnv is the environment a server needs to reach the container
func serverEnv(cfg *config.Config) map[string]string {
	return map[string]string{
		"STORE_TYPE":          cfg.StoreType,
		"DB_TYPE":             cfg.DBType,
		"DB_HOST":             cfg.DBHost,
		"DB_PORT":             cfg.DBPort,
		"DB_DATABASE":         cfg.DBDatabase,
		"DB_USER":             cfg.DBUser,
		"DB_PASSWORD":         cfg.DBPassword,
		"DB_CONNECTION_LIMIT": strconv.Itoa(cfg.DBConnectionLimit),
	}
}

// dsn renders a connection string for command line clients
func dsn(cfg *config.Config) string {
	if cfg.DBType == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, net.JoinHostPort(cfg.DBHost, cfg.DBPort), cfg.DBDatabase)
	}
	c := mysqldriver.NewConfig()
	c.User = cfg.DBUser
	c.Passwd = cfg.DBPassword
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	c.DBName = cfg.DBDatabase
	c.ParseTime = true
	return c.FormatDSN()
}
