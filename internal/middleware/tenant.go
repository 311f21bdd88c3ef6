package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/types"
)

// TenantKey is the Locals key holding the resolved services.Tenant
const TenantKey = "tenant"

// Tenant resolves the :tenant route parameter against the registered tenants
func Tenant(tenants *services.TenantService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Params("tenant")

		tenant, err := tenants.Get(c.UserContext(), tenantID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return types.NewError(fiber.StatusNotFound, "tenant.notFound", "Tenant '%s' not found", tenantID)
			}
			return types.Wrap(fiber.StatusInternalServerError, "tenant.lookup", "Tenant lookup failed", err)
		}

		c.Locals(TenantKey, tenant)
		return c.Next()
	}
}
