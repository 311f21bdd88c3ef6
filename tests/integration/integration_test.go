package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/database"
	"github.com/localnerve/transform-studio/internal/handlers"
	"github.com/localnerve/transform-studio/internal/platform"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/storage"
	"github.com/localnerve/transform-studio/tests/helpers"
	"gorm.io/gorm"
)

// TestWithMariaDB runs the store and API against a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	runDatabaseSuite(t, "mariadb")
}

// TestWithPostgreSQL runs the store and API against a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	runDatabaseSuite(t, "postgres")
}

func runDatabaseSuite(t *testing.T, dbType string) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containers, err := helpers.CreateDatabaseContainer(t, dbType)
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", dbType, err)
	}
	defer containers.Terminate(t)

	// Connect to database
	db, err := database.Connect(containers.Config)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Run("StoreRoundTrip", func(t *testing.T) {
		testStoreRoundTrip(t, db)
	})

	t.Run("TenantCascade", func(t *testing.T) {
		testTenantCascade(t, db)
	})

	t.Run("ProjectAPI", func(t *testing.T) {
		testProjectAPI(t, containers.Config, db)
	})
}

// testStoreRoundTrip checks stored JSON comes back byte for byte, key order included
func testStoreRoundTrip(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	store := storage.NewGormStore(db)

	value := `[{"z":1,"a":{"y":"2","b":[3,"→"]}}]`
	if err := store.Set(ctx, "roundtrip", []byte(value)); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	got, ok, err := store.Get(ctx, "roundtrip")
	if err != nil || !ok {
		t.Fatalf("Failed to get: ok=%v err=%v", ok, err)
	}
	if string(got) != value {
		t.Errorf("Expected %s, got %s", value, string(got))
	}

	// Upsert replaces in place
	if err := store.Set(ctx, "roundtrip", []byte(`[]`)); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}
	got, _, _ = store.Get(ctx, "roundtrip")
	if string(got) != `[]` {
		t.Errorf("Expected [], got %s", string(got))
	}

	if err := store.Delete(ctx, "roundtrip"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "roundtrip"); ok {
		t.Errorf("Expected key to be gone after delete")
	}
}

// testTenantCascade checks deleting a tenant removes its projects and cache
func testTenantCascade(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	store := storage.NewGormStore(db)
	catalog, err := builder.DefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	tenants := services.NewTenantService(store)
	projects := services.NewProjectService(store, catalog)

	helpers.CreateTestTenant(t, tenants, "cascade")
	helpers.CreateTestProject(t, projects, "cascade", "Greeting")
	if err := store.Set(ctx, "transforms_cascade", []byte(`[]`)); err != nil {
		t.Fatalf("Failed to seed transform cache: %v", err)
	}

	if err := tenants.Delete(ctx, "cascade"); err != nil {
		t.Fatalf("Failed to delete tenant: %v", err)
	}
	for _, key := range []string{"transformProjects_cascade", "transforms_cascade"} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Errorf("Expected %s to be removed with the tenant", key)
		}
	}
}

// testProjectAPI drives a project from creation to export over HTTP
func testProjectAPI(t *testing.T, cfg *config.Config, db *gorm.DB) {
	store := storage.NewGormStore(db)
	catalog, err := builder.DefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	exporter, err := services.NewExporter()
	if err != nil {
		t.Fatalf("Failed to compile schema: %v", err)
	}
	client := platform.NewClient("http://127.0.0.1:1/%s", platform.StaticToken(""), time.Second, 10)
	tenants := services.NewTenantService(store)
	projects := services.NewProjectService(store, catalog)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Mount(app.Group("/api"), handlers.Set{
		Notation:   &handlers.NotationHandler{Catalog: catalog},
		Tenants:    &handlers.TenantHandler{Tenants: tenants},
		Transforms: &handlers.TransformHandler{Transforms: services.NewTransformService(store, tenants, client)},
		Projects:   &handlers.ProjectHandler{Projects: projects, Exporter: exporter},
		Health:     &handlers.HealthHandler{Config: cfg, Store: store, DB: db, Tenants: tenants, Fetcher: client},
	}, tenants)

	// Unknown tenant is rejected before the handler runs
	resp := request(t, app, "GET", "/api/projects/api", nil)
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	helpers.AssertErrorType(t, resp, "tenant.notFound")

	helpers.CreateTestTenant(t, tenants, "api")
	p := helpers.CreateTestProject(t, projects, "api", "Greeting")

	resp = request(t, app, "GET", "/api/projects/api/"+p.ID+"/nodes", nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var nodes []builder.Node
	helpers.ParseJSON(t, resp, &nodes)
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(nodes))
	}

	resp = request(t, app, "GET", "/api/projects/api/"+p.ID+"/export", nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var result services.ExportResult
	helpers.ParseJSON(t, resp, &result)
	want := `{"attributes":{"values":["Hi",{"attributes":{"value":""},"type":"static"}]},"name":"Greeting","type":"concat"}`
	if result.Canonical != want {
		t.Errorf("Expected canonical %s, got %s", want, result.Canonical)
	}
	if !result.Valid {
		t.Errorf("Expected export to validate, got errors %v", result.Errors)
	}

	// Database is reachable even though the platform is not
	resp = request(t, app, "GET", "/api/health?platform=false", nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var health services.HealthCheckResult
	helpers.ParseJSON(t, resp, &health)
	if health.Database != "ok" {
		t.Errorf("Expected database ok, got %q", health.Database)
	}
}

func request(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}
