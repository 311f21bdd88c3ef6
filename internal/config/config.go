// config.go
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

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store types
const (
	StoreDatabase = "database"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port      string
	StoreType string // database, memory

	// Database configuration
	DBType            string // sqlite, sqlite3, mysql, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Platform relay configuration
	PlatformURLTemplate string
	PlatformAccessToken string
	PlatformTimeout     time.Duration
	PlatformRPS         float64
}

// Load reads the optional dotenv file and then the environment.
// ENV_FILE names the dotenv file; .env is read when present.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("Ignoring unreadable .env: %v", err)
		}
	}

	cfg := &Config{
		Port:                getEnv("PORT", "3001"),
		StoreType:           getEnv("STORE_TYPE", StoreDatabase),
		DBType:              getEnv("DB_TYPE", "sqlite"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", ""),
		DBDatabase:          getEnv("DB_DATABASE", "transform-studio.db"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		PlatformURLTemplate: getEnv("PLATFORM_URL_TEMPLATE", "https://%s.api.identitynow.com"),
		PlatformAccessToken: getEnv("PLATFORM_ACCESS_TOKEN", ""),
		PlatformTimeout:     time.Duration(getEnvAsInt("PLATFORM_TIMEOUT_MS", 10000)) * time.Millisecond,
		PlatformRPS:         getEnvAsFloat("PLATFORM_RPS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field combinations
func (cfg *Config) Validate() error {
	switch cfg.StoreType {
	case StoreDatabase, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_TYPE: %s", cfg.StoreType)
	}
	if cfg.StoreType == StoreDatabase && !cfg.IsSQLite() && cfg.DBUser == "" {
		return errors.New("DB_USER is required")
	}
	if !strings.Contains(cfg.PlatformURLTemplate, "%s") {
		return errors.New("PLATFORM_URL_TEMPLATE must contain %s for the tenant")
	}
	if cfg.PlatformRPS <= 0 {
		return errors.New("PLATFORM_RPS must be positive")
	}
	return nil
}

// IsSQLite reports whether the database is a local file
func (cfg *Config) IsSQLite() bool {
	return cfg.DBType == "sqlite" || cfg.DBType == "sqlite3"
}

// PlatformBaseURL is the API root for a tenant
func (cfg *Config) PlatformBaseURL(tenant string) string {
	return fmt.Sprintf(cfg.PlatformURLTemplate, tenant)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
