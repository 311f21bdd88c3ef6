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

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/metrics"
	"github.com/localnerve/transform-studio/internal/notation"
	"github.com/localnerve/transform-studio/internal/ordered"
	"github.com/localnerve/transform-studio/internal/storage"
)

// ProjectInput carries project fields. Nil fields are left unchanged on
// update and defaulted on create.
type ProjectInput struct {
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AttachRequest places a new node into a parent's slot. The node comes from
// the catalog when TemplateID is set, otherwise from Type and Attributes.
type AttachRequest struct {
	TemplateID string       `json:"templateId,omitempty"`
	Type       string       `json:"type,omitempty"`
	Name       string       `json:"name,omitempty"`
	Attributes *ordered.Map `json:"attributes,omitempty"`
	ParentID   string       `json:"parentId"`
	Slot       string       `json:"slot,omitempty"`
}

// ProjectService stores each tenant's projects as one document.
type ProjectService struct {
	Store   storage.Store
	Catalog *builder.Catalog
	locks   sync.Map // tenant id -> *sync.Mutex
	newID   func() string
}

// NewProjectService creates a project service
func NewProjectService(store storage.Store, catalog *builder.Catalog) *ProjectService {
	return &ProjectService{Store: store, Catalog: catalog, newID: uuid.NewString}
}

func (s *ProjectService) lock(tenantID string) func() {
	v, _ := s.locks.LoadOrStore(tenantID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *ProjectService) load(ctx context.Context, tenantID string) ([]*builder.Project, error) {
	projects := []*builder.Project{}
	if _, err := loadDocument(ctx, s.Store, projectsKey(tenantID), &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*builder.Project{}
	}
	return projects, nil
}

func find(projects []*builder.Project, projectID string) int {
	for i, p := range projects {
		if p != nil && p.ID == projectID {
			return i
		}
	}
	return -1
}

// List returns the tenant's projects.
func (s *ProjectService) List(ctx context.Context, tenantID string) ([]*builder.Project, error) {
	return s.load(ctx, tenantID)
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, tenantID, projectID string) (*builder.Project, error) {
	projects, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	i := find(projects, projectID)
	if i < 0 {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return projects[i], nil
}

// Create adds a project with its top-level node.
func (s *ProjectService) Create(ctx context.Context, tenantID string, in ProjectInput) (*builder.Project, error) {
	var name, transformType, description string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		transformType = strings.TrimSpace(*in.Type)
	}
	if in.Description != nil {
		description = *in.Description
	}
	p := builder.NewProject(s.newID(), name, transformType, description)

	defer s.lock(tenantID)()
	projects, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	projects = append(projects, p)
	if err := saveDocument(ctx, s.Store, projectsKey(tenantID), projects); err != nil {
		return nil, err
	}
	return p, nil
}

// Update edits project metadata. Name and type changes carry over to the
// top-level node.
func (s *ProjectService) Update(ctx context.Context, tenantID, projectID string, in ProjectInput) (*builder.Project, error) {
	return s.mutate(ctx, tenantID, projectID, func(p *builder.Project) error {
		if in.Name != nil {
			if name := strings.TrimSpace(*in.Name); name != "" {
				p.Name = name
			}
		}
		if in.Type != nil {
			if t := strings.TrimSpace(*in.Type); t != "" {
				p.Type = t
			}
		}
		if in.Description != nil {
			p.Description = *in.Description
		}

		m := p.Model()
		if top := m.TopLevel(); top != nil {
			edited := *top
			edited.Name = p.Name
			edited.Type = p.Type
			m.UpdateNode(&edited)
			p.Store(m)
		}
		return nil
	})
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, tenantID, projectID string) error {
	defer s.lock(tenantID)()
	projects, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}
	i := find(projects, projectID)
	if i < 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	projects = append(projects[:i], projects[i+1:]...)
	return saveDocument(ctx, s.Store, projectsKey(tenantID), projects)
}

// mutate applies fn to a project under the tenant lock and writes the
// tenant's projects back when fn succeeds.
func (s *ProjectService) mutate(ctx context.Context, tenantID, projectID string, fn func(p *builder.Project) error) (*builder.Project, error) {
	defer s.lock(tenantID)()
	projects, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	i := find(projects, projectID)
	if i < 0 {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err := fn(projects[i]); err != nil {
		return nil, err
	}
	if err := saveDocument(ctx, s.Store, projectsKey(tenantID), projects); err != nil {
		return nil, err
	}
	return projects[i], nil
}

// mutateModel is mutate over the project's node arena.
func (s *ProjectService) mutateModel(ctx context.Context, tenantID, projectID string, fn func(m *builder.Model) error) error {
	_, err := s.mutate(ctx, tenantID, projectID, func(p *builder.Project) error {
		m := p.Model()
		if err := fn(m); err != nil {
			return err
		}
		p.Store(m)
		return nil
	})
	return err
}

// Nodes lists the project's nodes with display paths.
func (s *ProjectService) Nodes(ctx context.Context, tenantID, projectID string) ([]builder.Node, error) {
	p, err := s.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	return p.Model().FlattenForDisplay(), nil
}

func (s *ProjectService) template(req AttachRequest) (builder.Template, error) {
	if req.TemplateID != "" {
		tpl, ok := s.Catalog.Lookup(req.TemplateID)
		if !ok {
			return builder.Template{}, fmt.Errorf("template %s: %w", req.TemplateID, ErrNotFound)
		}
		if req.Name != "" {
			tpl.Name = req.Name
		}
		return tpl, nil
	}
	if strings.TrimSpace(req.Type) == "" {
		return builder.Template{}, fmt.Errorf("templateId or type is required: %w", ErrInvalid)
	}
	attrs := req.Attributes
	if attrs == nil {
		attrs = builder.DefaultAttributes(req.Type)
	}
	return builder.Template{Name: req.Name, Type: req.Type, Attributes: attrs}, nil
}

// Attach places every requested node. Either all requests succeed or the
// project is left unchanged.
func (s *ProjectService) Attach(ctx context.Context, tenantID, projectID string, reqs []AttachRequest) ([]*builder.Node, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no nodes to attach: %w", ErrInvalid)
	}
	var attached []*builder.Node
	err := s.mutateModel(ctx, tenantID, projectID, func(m *builder.Model) error {
		for i, req := range reqs {
			tpl, err := s.template(req)
			if err != nil {
				return err
			}
			n := m.AttachNested(tpl, req.ParentID, req.Slot)
			if n == nil {
				return fmt.Errorf("node %d: parent %q or slot %q not usable: %w", i, req.ParentID, req.Slot, ErrInvalid)
			}
			attached = append(attached, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attached, nil
}

// UpdateNode replaces a node's name, type and attributes.
func (s *ProjectService) UpdateNode(ctx context.Context, tenantID, projectID string, n *builder.Node) (*builder.Node, error) {
	if n == nil || n.ID == "" {
		return nil, fmt.Errorf("node id is required: %w", ErrInvalid)
	}
	var stored *builder.Node
	err := s.mutateModel(ctx, tenantID, projectID, func(m *builder.Model) error {
		if !m.UpdateNode(n) {
			return fmt.Errorf("node %s: %w", n.ID, ErrNotFound)
		}
		stored, _ = m.Node(n.ID)
		return nil
	})
	return stored, err
}

// DeleteNode removes a node and everything nested under it.
func (s *ProjectService) DeleteNode(ctx context.Context, tenantID, projectID, nodeID string) ([]string, error) {
	var removed []string
	err := s.mutateModel(ctx, tenantID, projectID, func(m *builder.Model) error {
		removed = m.DeleteSubtree(nodeID)
		if len(removed) == 0 {
			return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
		}
		return nil
	})
	return removed, err
}

// AddValueSlot appends an empty value to a node's values.
func (s *ProjectService) AddValueSlot(ctx context.Context, tenantID, projectID, nodeID string) (*builder.Node, error) {
	return s.editNode(ctx, tenantID, projectID, nodeID, func(m *builder.Model) bool {
		return m.AddValueSlot(nodeID)
	})
}

// SetValue writes a literal into a node's values.
func (s *ProjectService) SetValue(ctx context.Context, tenantID, projectID, nodeID string, index int, value string) (*builder.Node, error) {
	return s.editNode(ctx, tenantID, projectID, nodeID, func(m *builder.Model) bool {
		return m.SetValue(nodeID, index, value)
	})
}

// RemoveValue drops one of a node's values.
func (s *ProjectService) RemoveValue(ctx context.Context, tenantID, projectID, nodeID string, index int) (*builder.Node, error) {
	return s.editNode(ctx, tenantID, projectID, nodeID, func(m *builder.Model) bool {
		return m.RemoveValue(nodeID, index)
	})
}

func (s *ProjectService) editNode(ctx context.Context, tenantID, projectID, nodeID string, edit func(m *builder.Model) bool) (*builder.Node, error) {
	var stored *builder.Node
	err := s.mutateModel(ctx, tenantID, projectID, func(m *builder.Model) error {
		if _, ok := m.Node(nodeID); !ok {
			return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
		}
		if !edit(m) {
			return fmt.Errorf("node %s: value slot not usable: %w", nodeID, ErrInvalid)
		}
		stored, _ = m.Node(nodeID)
		return nil
	})
	return stored, err
}

// Preview renders the subtree rooted at a node.
func (s *ProjectService) Preview(ctx context.Context, tenantID, projectID, nodeID string) (notation.Record, error) {
	p, err := s.Get(ctx, tenantID, projectID)
	if err != nil {
		return notation.Record{}, err
	}
	rec, ok := p.Model().Preview(nodeID)
	if !ok {
		return notation.Record{}, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	metrics.Observe(rec)
	return rec, nil
}
