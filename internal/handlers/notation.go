package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/metrics"
	"github.com/localnerve/transform-studio/internal/notation"
	"github.com/localnerve/transform-studio/internal/ordered"
	"github.com/localnerve/transform-studio/internal/types"
)

// NotationHandler renders arbitrary transform JSON and serves the palette
type NotationHandler struct {
	Catalog *builder.Catalog
}

// NotationRequest is the body of POST /notation
type NotationRequest struct {
	Transform json.RawMessage `json:"transform" swaggertype:"object"`
	Level     types.FlexInt   `json:"level" swaggertype:"integer"`
}

// NotationResponse is a rendered record with the types it references
type NotationResponse struct {
	notation.Record
	ReferencedTypes []string `json:"referencedTypes"`
}

// GetTemplates handles GET /api/templates
// @Summary List node templates
// @Description Get the builder palette of node templates
// @Tags Builder
// @Produce json
// @Success 200 {array} builder.Template
// @Router /templates [get]
func (h *NotationHandler) GetTemplates(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.Catalog.All())
}

// RenderNotation handles POST /api/notation
// @Summary Render transform notation
// @Description Render a transform JSON tree as annotated notation
// @Tags Notation
// @Accept json
// @Produce json
// @Param request body NotationRequest true "Transform and starting level"
// @Success 200 {object} NotationResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /notation [post]
func (h *NotationHandler) RenderNotation(c *fiber.Ctx) error {
	var req NotationRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error(), "notation.body")
	}
	if len(req.Transform) == 0 {
		return badRequest(c, "transform is required", "notation.body")
	}

	if req.Level < 0 {
		return badRequest(c, "level must not be negative", "notation.body")
	}

	tree, err := ordered.Decode(req.Transform)
	if err != nil {
		return badRequest(c, "Invalid transform JSON: "+err.Error(), "notation.body")
	}

	rec := notation.Render(tree, req.Level.Int())
	metrics.Observe(rec)

	return c.Status(fiber.StatusOK).JSON(NotationResponse{
		Record:          rec,
		ReferencedTypes: notation.ReferencedTypes(tree),
	})
}
