// gorm.go
//
// A local data service for composing and inspecting identity platform transforms.
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of transform-studio.
// transform-studio is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// transform-studio is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A
// PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with transform-studio.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/transform-studio/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// GormStore persists entries in the store_entries table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a migrated database connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// quiet returns a session that does not log each statement.
func (s *GormStore) quiet(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)})
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.StoreEntry
	err := s.quiet(ctx).
		Clauses(hints.Comment("select", "storage:get")).
		Where("entry_key = ?", key).
		Take(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.EntryValue.Bytes(), true, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := models.StoreEntry{
		EntryKey:   key,
		EntryValue: models.NewDocument(value),
	}
	err := s.quiet(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("entry_key = ?", key).
		Delete(&models.StoreEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := s.quiet(ctx).
		Model(&models.StoreEntry{}).
		Clauses(hints.Comment("select", "storage:keys")).
		Where("entry_key LIKE ? ESCAPE '!'", likeEscaper.Replace(prefix)+"%").
		Order("entry_key").
		Pluck("entry_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys %s*: %w", prefix, err)
	}
	return keys, nil
}
