// projects.go
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

package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/types"
	"github.com/localnerve/transform-studio/internal/utils"
)

// ProjectHandler handles project and node routes
type ProjectHandler struct {
	Projects *services.ProjectService
	Exporter *services.Exporter
}

// ValueRequest is the body of a value slot write
type ValueRequest struct {
	Value string `json:"value"`
}

// GetProjects handles GET /api/projects/:tenant
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Success 200 {array} builder.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant} [get]
func (h *ProjectHandler) GetProjects(c *fiber.Ctx) error {
	projects, err := h.Projects.List(c.UserContext(), tenantID(c))
	if err != nil {
		return serviceError(c, err, "getProjects")
	}
	return c.Status(fiber.StatusOK).JSON(projects)
}

// CreateProject handles POST /api/projects/:tenant
// @Summary Create a project
// @Description Create a project with its top-level node. Name defaults to "Untitled Project", type to "static".
// @Tags Projects
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project body services.ProjectInput false "Project fields"
// @Success 201 {object} builder.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant} [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error(), "createProject")
		}
	}

	p, err := h.Projects.Create(c.UserContext(), tenantID(c), in)
	if err != nil {
		return serviceError(c, err, "createProject")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GetProject handles GET /api/projects/:tenant/:project
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Success 200 {object} builder.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	p, err := h.Projects.Get(c.UserContext(), tenantID(c), c.Params("project"))
	if err != nil {
		return serviceError(c, err, "getProject")
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

// UpdateProject handles PUT /api/projects/:tenant/:project
// @Summary Edit project name, type or description
// @Tags Projects
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param fields body services.ProjectInput true "Fields to change"
// @Success 200 {object} builder.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project} [put]
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error(), "updateProject")
	}

	p, err := h.Projects.Update(c.UserContext(), tenantID(c), c.Params("project"), in)
	if err != nil {
		return serviceError(c, err, "updateProject")
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

// DeleteProject handles DELETE /api/projects/:tenant/:project
// @Summary Delete a project
// @Tags Projects
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id := c.Params("project")
	if err := h.Projects.Delete(c.UserContext(), tenantID(c), id); err != nil {
		return serviceError(c, err, "deleteProject")
	}
	return utils.MutationSuccessResponse(c, []string{id})
}

// GetNodes handles GET /api/projects/:tenant/:project/nodes
// @Summary List a project's nodes for display
// @Description Nodes in tree order, each with a dotted display path
// @Tags Nodes
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Success 200 {array} builder.Node
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes [get]
func (h *ProjectHandler) GetNodes(c *fiber.Ctx) error {
	nodes, err := h.Projects.Nodes(c.UserContext(), tenantID(c), c.Params("project"))
	if err != nil {
		return serviceError(c, err, "getNodes")
	}
	return c.Status(fiber.StatusOK).JSON(nodes)
}

// AttachNodes handles POST /api/projects/:tenant/:project/nodes
// @Summary Attach nested nodes
// @Description Accepts one attach request or an array of them. All succeed or none.
// @Tags Nodes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param nodes body []services.AttachRequest true "Attach requests"
// @Success 201 {array} builder.Node
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes [post]
func (h *ProjectHandler) AttachNodes(c *fiber.Ctx) error {
	var reqs types.FlexList[services.AttachRequest]
	if err := json.Unmarshal(c.Body(), &reqs); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error(), "attachNodes")
	}

	nodes, err := h.Projects.Attach(c.UserContext(), tenantID(c), c.Params("project"), reqs.Slice())
	if err != nil {
		return serviceError(c, err, "attachNodes")
	}
	return c.Status(fiber.StatusCreated).JSON(nodes)
}

// UpdateNode handles PUT /api/projects/:tenant/:project/nodes/:node
// @Summary Replace a node's name, type and attributes
// @Tags Nodes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param node path string true "Node ID"
// @Param node body builder.Node true "Edited node"
// @Success 200 {object} builder.Node
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes/{node} [put]
func (h *ProjectHandler) UpdateNode(c *fiber.Ctx) error {
	var n builder.Node
	if err := json.Unmarshal(c.Body(), &n); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error(), "updateNode")
	}
	n.ID = c.Params("node")

	stored, err := h.Projects.UpdateNode(c.UserContext(), tenantID(c), c.Params("project"), &n)
	if err != nil {
		return serviceError(c, err, "updateNode")
	}
	return c.Status(fiber.StatusOK).JSON(stored)
}

// DeleteNode handles DELETE /api/projects/:tenant/:project/nodes/:node
// @Summary Delete a node and its subtree
// @Tags Nodes
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param node path string true "Node ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes/{node} [delete]
func (h *ProjectHandler) DeleteNode(c *fiber.Ctx) error {
	removed, err := h.Projects.DeleteNode(c.UserContext(), tenantID(c), c.Params("project"), c.Params("node"))
	if err != nil {
		return serviceError(c, err, "deleteNode")
	}
	return utils.MutationSuccessResponse(c, removed)
}

// AddValueSlot handles POST /api/projects/:tenant/:project/nodes/:node/values
// @Summary Append an empty value slot
// @Tags Nodes
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param node path string true "Node ID"
// @Success 200 {object} builder.Node
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes/{node}/values [post]
func (h *ProjectHandler) AddValueSlot(c *fiber.Ctx) error {
	n, err := h.Projects.AddValueSlot(c.UserContext(), tenantID(c), c.Params("project"), c.Params("node"))
	if err != nil {
		return serviceError(c, err, "addValueSlot")
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

// SetValue handles PUT /api/projects/:tenant/:project/nodes/:node/values/:index
// @Summary Write a literal into a value slot
// @Tags Nodes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param node path string true "Node ID"
// @Param index path int true "Slot index"
// @Param value body ValueRequest true "Literal value"
// @Success 200 {object} builder.Node
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes/{node}/values/{index} [put]
func (h *ProjectHandler) SetValue(c *fiber.Ctx) error {
	index, ok := paramIndex(c, "index")
	if !ok {
		return badRequest(c, "index must be a non-negative integer", "setValue")
	}
	var req ValueRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error(), "setValue")
	}

	n, err := h.Projects.SetValue(c.UserContext(), tenantID(c), c.Params("project"), c.Params("node"), index, req.Value)
	if err != nil {
		return serviceError(c, err, "setValue")
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

// RemoveValue handles DELETE /api/projects/:tenant/:project/nodes/:node/values/:index
// @Summary Remove a value slot
// @Tags Nodes
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param node path string true "Node ID"
// @Param index path int true "Slot index"
// @Success 200 {object} builder.Node
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes/{node}/values/{index} [delete]
func (h *ProjectHandler) RemoveValue(c *fiber.Ctx) error {
	index, ok := paramIndex(c, "index")
	if !ok {
		return badRequest(c, "index must be a non-negative integer", "removeValue")
	}

	n, err := h.Projects.RemoveValue(c.UserContext(), tenantID(c), c.Params("project"), c.Params("node"), index)
	if err != nil {
		return serviceError(c, err, "removeValue")
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

// PreviewNode handles GET /api/projects/:tenant/:project/nodes/:node/preview
// @Summary Render the subtree rooted at a node
// @Tags Nodes
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Param node path string true "Node ID"
// @Success 200 {object} notation.Record
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/nodes/{node}/preview [get]
func (h *ProjectHandler) PreviewNode(c *fiber.Ctx) error {
	rec, err := h.Projects.Preview(c.UserContext(), tenantID(c), c.Params("project"), c.Params("node"))
	if err != nil {
		return serviceError(c, err, "previewNode")
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// ExportProject handles GET /api/projects/:tenant/:project/export
// @Summary Export the canonical transform JSON
// @Description Canonical RFC 8785 bytes, SHA-256 and schema validation. empty is true when there is nothing to submit.
// @Tags Projects
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param project path string true "Project ID"
// @Success 200 {object} services.ExportResult
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{tenant}/{project}/export [get]
func (h *ProjectHandler) ExportProject(c *fiber.Ctx) error {
	p, err := h.Projects.Get(c.UserContext(), tenantID(c), c.Params("project"))
	if err != nil {
		return serviceError(c, err, "exportProject")
	}
	result, err := h.Exporter.Export(p)
	if err != nil {
		return serviceError(c, err, "exportProject")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
