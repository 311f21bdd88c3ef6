package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/utils"
)

// TenantHandler handles tenant routes
type TenantHandler struct {
	Tenants *services.TenantService
}

// GetTenants handles GET /api/tenants
// @Summary List tenants
// @Tags Tenants
// @Produce json
// @Success 200 {array} services.Tenant
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tenants [get]
func (h *TenantHandler) GetTenants(c *fiber.Ctx) error {
	tenants, err := h.Tenants.List(c.UserContext())
	if err != nil {
		return serviceError(c, err, "getTenants")
	}
	return c.Status(fiber.StatusOK).JSON(tenants)
}

// UpsertTenant handles POST /api/tenants
// @Summary Add or replace a tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Param tenant body services.Tenant true "Tenant"
// @Success 200 {object} services.Tenant
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /tenants [post]
func (h *TenantHandler) UpsertTenant(c *fiber.Ctx) error {
	var tenant services.Tenant
	if err := c.BodyParser(&tenant); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error(), "upsertTenant")
	}

	saved, err := h.Tenants.Upsert(c.UserContext(), tenant)
	if err != nil {
		return serviceError(c, err, "upsertTenant")
	}
	return c.Status(fiber.StatusOK).JSON(saved)
}

// DeleteTenant handles DELETE /api/tenants/:tenant
// @Summary Delete a tenant with its projects and cached transforms
// @Tags Tenants
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tenants/{tenant} [delete]
func (h *TenantHandler) DeleteTenant(c *fiber.Ctx) error {
	id := c.Params("tenant")
	if err := h.Tenants.Delete(c.UserContext(), id); err != nil {
		return serviceError(c, err, "deleteTenant")
	}
	return utils.MutationSuccessResponse(c, []string{id})
}
