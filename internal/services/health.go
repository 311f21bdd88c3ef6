package services

import (
	"context"
	"fmt"
	"log"

	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/storage"
	"github.com/localnerve/transform-studio/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Store        string            `json:"store"`
	Database     string            `json:"database,omitempty"`
	Platform     string            `json:"platform"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(message string) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = message
	} else {
		r.ErrorMessage += "; " + message
	}
}

// HealthCheck checks the store, the database when there is one, and the
// reachability of every registered tenant's platform host. db may be nil.
func HealthCheck(ctx context.Context, cfg *config.Config, store storage.Store, db *gorm.DB, platformURLs map[string]string) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	result.Details["store_type"] = cfg.StoreType

	// Check the store answers
	if _, err := store.Keys(ctx, keyTenants); err != nil {
		result.Store = "error"
		result.Details["store_error"] = err.Error()
		result.fail(fmt.Sprintf("Store read failed: %v", err))
		log.Printf("Health check failed - store: %v", err)
	} else {
		result.Store = "ok"
	}

	// Check database connectivity
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			result.Database = "error"
			result.Details["database_error"] = err.Error()
			result.fail(fmt.Sprintf("Database connection error: %v", err))
			log.Printf("Health check failed - database connection: %v", err)
		} else if err := sqlDB.PingContext(ctx); err != nil {
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.fail(fmt.Sprintf("Database ping failed: %v", err))
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check platform reachability per tenant
	result.Platform = "ok"
	if len(platformURLs) == 0 {
		result.Platform = "skipped"
	}
	for tenantID, url := range platformURLs {
		if err := utils.PingPlatform(ctx, url); err != nil {
			result.Platform = "unreachable"
			result.Details["platform_error_"+tenantID] = err.Error()
			result.fail(fmt.Sprintf("Platform ping failed for %s: %v", tenantID, err))
			log.Printf("Health check failed - platform ping %s: %v", tenantID, err)
		}
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
