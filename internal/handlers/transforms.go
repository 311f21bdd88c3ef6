package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/services"
)

// TransformHandler handles platform transform routes
type TransformHandler struct {
	Transforms *services.TransformService
}

// GetTransforms handles GET /api/transforms/:tenant
// @Summary List platform transforms
// @Description List the tenant's transforms from the local cache, fetching on first use or refresh
// @Tags Transforms
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param refresh query bool false "Refetch from the platform"
// @Param search query string false "Case-insensitive name or id filter"
// @Param type query string false "Transform type filter"
// @Param sort query string false "name or type"
// @Param order query string false "asc or desc"
// @Success 200 {array} services.TransformSummary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /transforms/{tenant} [get]
func (h *TransformHandler) GetTransforms(c *fiber.Ctx) error {
	opts := services.ListOptions{
		Refresh: queryBool(c, "refresh"),
		Search:  c.Query("search"),
		Type:    c.Query("type"),
		Sort:    c.Query("sort"),
		Order:   c.Query("order", "asc"),
	}

	list, err := h.Transforms.List(c.UserContext(), tenantID(c), opts)
	if err != nil {
		return serviceError(c, err, "getTransforms")
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// GetTransform handles GET /api/transforms/:tenant/:transform
// @Summary Get a platform transform
// @Tags Transforms
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param transform path string true "Transform ID"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /transforms/{tenant}/{transform} [get]
func (h *TransformHandler) GetTransform(c *fiber.Ctx) error {
	t, err := h.Transforms.Get(c.UserContext(), tenantID(c), c.Params("transform"), queryBool(c, "refresh"))
	if err != nil {
		return serviceError(c, err, "getTransform")
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

// GetTransformNotation handles GET /api/transforms/:tenant/:transform/notation
// @Summary Render a platform transform
// @Tags Transforms
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param transform path string true "Transform ID"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} NotationResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /transforms/{tenant}/{transform}/notation [get]
func (h *TransformHandler) GetTransformNotation(c *fiber.Ctx) error {
	rec, referenced, err := h.Transforms.Notation(c.UserContext(), tenantID(c), c.Params("transform"), queryBool(c, "refresh"))
	if err != nil {
		return serviceError(c, err, "getTransformNotation")
	}
	return c.Status(fiber.StatusOK).JSON(NotationResponse{
		Record:          rec,
		ReferencedTypes: referenced,
	})
}
