package helpers

import (
	"context"
	"testing"

	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/services"
)

// CreateTestTenant registers a tenant through the tenant service
func CreateTestTenant(t *testing.T, tenants *services.TenantService, tenantID string) services.Tenant {
	t.Helper()
	tenant, err := tenants.Upsert(context.Background(), services.Tenant{TenantID: tenantID, Name: tenantID})
	if err != nil {
		t.Fatalf("Failed to create tenant %s: %v", tenantID, err)
	}
	return tenant
}

// CreateTestProject creates a concat project with one literal value and one
// static input attached.
func CreateTestProject(t *testing.T, projects *services.ProjectService, tenantID, name string) *builder.Project {
	t.Helper()
	ctx := context.Background()

	kind := "concat"
	p, err := projects.Create(ctx, tenantID, services.ProjectInput{Name: &name, Type: &kind})
	if err != nil {
		t.Fatalf("Failed to create project %s: %v", name, err)
	}
	top := p.Model().TopLevel()
	if top == nil {
		t.Fatalf("Project %s has no top-level node", name)
	}

	if _, err := projects.AddValueSlot(ctx, tenantID, p.ID, top.ID); err != nil {
		t.Fatalf("Failed to add value slot: %v", err)
	}
	if _, err := projects.SetValue(ctx, tenantID, p.ID, top.ID, 0, "Hi"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	if _, err := projects.Attach(ctx, tenantID, p.ID, []services.AttachRequest{{TemplateID: "base_static", ParentID: top.ID}}); err != nil {
		t.Fatalf("Failed to attach static node: %v", err)
	}

	p, err = projects.Get(ctx, tenantID, p.ID)
	if err != nil {
		t.Fatalf("Failed to reload project %s: %v", name, err)
	}
	return p
}
