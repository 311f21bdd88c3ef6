package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/localnerve/transform-studio/internal/storage"
)

// Sentinel errors handlers map to status codes.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid request")
)

// Storage keys
const (
	keyTenants          = "tenants"
	keyProjectsPrefix   = "transformProjects_"
	keyTransformsPrefix = "transforms_"
)

func projectsKey(tenantID string) string   { return keyProjectsPrefix + tenantID }
func transformsKey(tenantID string) string { return keyTransformsPrefix + tenantID }

// loadDocument decodes the JSON stored at key into out. A missing key leaves
// out untouched and reports false.
func loadDocument(ctx context.Context, store storage.Store, key string, out any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("Stored document %s is unreadable: %v", key, err)
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// saveDocument encodes v and writes it at key.
func saveDocument(ctx context.Context, store storage.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
