package models

import (
	"time"
)

// StoreEntry is one key/value record of the local store.
type StoreEntry struct {
	EntryKey   string   `gorm:"primaryKey;size:255"`
	EntryValue Document `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for StoreEntry
func (StoreEntry) TableName() string {
	return "store_entries"
}
