package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/middleware"
	"github.com/localnerve/transform-studio/internal/services"
)

// Set groups the handlers mounted under /api
type Set struct {
	Notation   *NotationHandler
	Tenants    *TenantHandler
	Transforms *TransformHandler
	Projects   *ProjectHandler
	Health     *HealthHandler
}

// Mount registers every API route on router
func Mount(router fiber.Router, h Set, tenants *services.TenantService) {
	tenant := middleware.Tenant(tenants)

	// Notation and palette
	router.Get("/templates", h.Notation.GetTemplates)
	router.Post("/notation", h.Notation.RenderNotation)

	// Tenants
	router.Get("/tenants", h.Tenants.GetTenants)
	router.Post("/tenants", h.Tenants.UpsertTenant)
	router.Delete("/tenants/:tenant", h.Tenants.DeleteTenant)

	// Platform transforms
	router.Get("/transforms/:tenant", tenant, h.Transforms.GetTransforms)
	router.Get("/transforms/:tenant/:transform", tenant, h.Transforms.GetTransform)
	router.Get("/transforms/:tenant/:transform/notation", tenant, h.Transforms.GetTransformNotation)

	// Projects
	router.Get("/projects/:tenant", tenant, h.Projects.GetProjects)
	router.Post("/projects/:tenant", tenant, h.Projects.CreateProject)
	router.Get("/projects/:tenant/:project", tenant, h.Projects.GetProject)
	router.Put("/projects/:tenant/:project", tenant, h.Projects.UpdateProject)
	router.Delete("/projects/:tenant/:project", tenant, h.Projects.DeleteProject)
	router.Get("/projects/:tenant/:project/export", tenant, h.Projects.ExportProject)

	// Builder nodes
	router.Get("/projects/:tenant/:project/nodes", tenant, h.Projects.GetNodes)
	router.Post("/projects/:tenant/:project/nodes", tenant, h.Projects.AttachNodes)
	router.Put("/projects/:tenant/:project/nodes/:node", tenant, h.Projects.UpdateNode)
	router.Delete("/projects/:tenant/:project/nodes/:node", tenant, h.Projects.DeleteNode)
	router.Get("/projects/:tenant/:project/nodes/:node/preview", tenant, h.Projects.PreviewNode)
	router.Post("/projects/:tenant/:project/nodes/:node/values", tenant, h.Projects.AddValueSlot)
	router.Put("/projects/:tenant/:project/nodes/:node/values/:index", tenant, h.Projects.SetValue)
	router.Delete("/projects/:tenant/:project/nodes/:node/values/:index", tenant, h.Projects.RemoveValue)

	// Health
	router.Get("/health", h.Health.GetHealth)
}
