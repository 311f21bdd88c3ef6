package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ErrInvalidDocument is returned when a value that is not JSON is written.
var ErrInvalidDocument = errors.New("document is not valid JSON")

// Document is a stored JSON value kept byte for byte as it was written.
type Document struct {
	datatypes.JSON
}

// NewDocument wraps raw JSON bytes.
func NewDocument(raw []byte) Document {
	return Document{JSON: datatypes.JSON(raw)}
}

// Bytes returns the stored JSON text.
func (d Document) Bytes() []byte {
	return []byte(d.JSON)
}

func (d Document) Value() (driver.Value, error) {
	if len(d.JSON) == 0 || !json.Valid(d.JSON) {
		return nil, ErrInvalidDocument
	}
	return string(d.JSON), nil
}

// Scan copies the column value, drivers may reuse the source buffer.
func (d *Document) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		d.JSON = append(datatypes.JSON(nil), v...)
		return nil
	case string:
		d.JSON = datatypes.JSON(v)
		return nil
	case nil:
		d.JSON = nil
		return nil
	}
	return fmt.Errorf("cannot scan %T into Document", value)
}

// GormDBDataType maps the column to a text type on every driver.
// Native JSON columns (MySQL JSON, Postgres JSONB) normalize object key
// order, and stored transforms render in the order their keys were written.
func (Document) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "LONGTEXT"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	default:
		return "TEXT"
	}
}
