// main.go
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/database"
	"github.com/localnerve/transform-studio/internal/platform"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/storage"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store storage.Store = storage.NewMemoryStore()
	var db *gorm.DB
	if cfg.StoreType == config.StoreDatabase {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)
		store = storage.NewGormStore(db)
	}

	// Ping every registered tenant's platform host
	client := platform.NewClient(cfg.PlatformURLTemplate, platform.StaticToken(cfg.PlatformAccessToken), cfg.PlatformTimeout, cfg.PlatformRPS)
	urls := map[string]string{}
	if tenants, err := services.NewTenantService(store).List(ctx); err == nil {
		for _, t := range tenants {
			urls[t.TenantID] = client.BaseURL(t.TenantID, t.BaseURL)
		}
	}

	// Perform health check
	result := services.HealthCheck(ctx, cfg, store, db, urls)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
