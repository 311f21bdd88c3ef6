// tenants.go
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

package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/transform-studio/internal/storage"
)

// Tenant is a platform tenant the studio knows about. Credentials are not
// stored.
type Tenant struct {
	Name         string    `json:"name"`
	TenantID     string    `json:"tenantId"`
	BaseURL      string    `json:"baseUrl,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// TenantService keeps the tenant list.
type TenantService struct {
	Store storage.Store
	mu    sync.Mutex
	now   func() time.Time
}

// NewTenantService creates a tenant service over a store
func NewTenantService(store storage.Store) *TenantService {
	return &TenantService{Store: store, now: time.Now}
}

// List returns every tenant in insertion order.
func (s *TenantService) List(ctx context.Context) ([]Tenant, error) {
	tenants := []Tenant{}
	if _, err := loadDocument(ctx, s.Store, keyTenants, &tenants); err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []Tenant{}
	}
	return tenants, nil
}

// Get finds a tenant by id.
func (s *TenantService) Get(ctx context.Context, tenantID string) (Tenant, error) {
	tenants, err := s.List(ctx)
	if err != nil {
		return Tenant{}, err
	}
	for _, t := range tenants {
		if t.TenantID == tenantID {
			return t, nil
		}
	}
	return Tenant{}, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
}

// Upsert adds a tenant or replaces the one with the same id.
func (s *TenantService) Upsert(ctx context.Context, t Tenant) (Tenant, error) {
	t.TenantID = strings.TrimSpace(t.TenantID)
	if t.TenantID == "" {
		return Tenant{}, fmt.Errorf("tenantId is required: %w", ErrInvalid)
	}
	if strings.ContainsAny(t.TenantID, "/%") {
		return Tenant{}, fmt.Errorf("tenantId %q has reserved characters: %w", t.TenantID, ErrInvalid)
	}
	if strings.TrimSpace(t.Name) == "" {
		t.Name = t.TenantID
	}
	t.LastModified = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	tenants, err := s.List(ctx)
	if err != nil {
		return Tenant{}, err
	}
	replaced := false
	for i := range tenants {
		if tenants[i].TenantID == t.TenantID {
			tenants[i] = t
			replaced = true
		}
	}
	if !replaced {
		tenants = append(tenants, t)
	}
	if err := saveDocument(ctx, s.Store, keyTenants, tenants); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

// Delete removes a tenant with its projects and cached transforms.
func (s *TenantService) Delete(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenants, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := tenants[:0]
	for _, t := range tenants {
		if t.TenantID != tenantID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tenants) {
		return fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}

	if err := saveDocument(ctx, s.Store, keyTenants, kept); err != nil {
		return err
	}
	for _, key := range []string{projectsKey(tenantID), transformsKey(tenantID)} {
		if err := s.Store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	log.Printf("Deleted tenant %s", tenantID)
	return nil
}
