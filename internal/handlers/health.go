package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/storage"
	"gorm.io/gorm"
)

// HealthHandler reports service health
type HealthHandler struct {
	Config  *config.Config
	Store   storage.Store
	DB      *gorm.DB // nil for the memory store
	Tenants *services.TenantService
	Fetcher services.Fetcher
}

// GetHealth handles GET /api/health
// @Summary Health check
// @Description Store, database and per-tenant platform reachability
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	ctx := c.UserContext()

	urls := map[string]string{}
	if c.QueryBool("platform", true) {
		tenants, err := h.Tenants.List(ctx)
		if err == nil {
			for _, t := range tenants {
				urls[t.TenantID] = h.Fetcher.BaseURL(t.TenantID, t.BaseURL)
			}
		}
	}

	result := services.HealthCheck(ctx, h.Config, h.Store, h.DB, urls)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
