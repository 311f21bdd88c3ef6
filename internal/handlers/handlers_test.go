package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/handlers"
	"github.com/localnerve/transform-studio/internal/models"
	"github.com/localnerve/transform-studio/internal/platform"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}
	// Every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.StoreEntry{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// setupPlatform serves a fixed transform list for tenant "acme"
func setupPlatform(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/acme/beta/transforms":
			_, _ = w.Write([]byte(`[
				{"id":"t1","name":"Last Upper","type":"upper","attributes":{"input":{"type":"accountAttribute","attributes":{"sourceName":"HR","attributeName":"last"}}}},
				{"id":"t2","name":"Greeting","type":"concat","attributes":{"values":["Hello, ",{"type":"static","attributes":{"value":"World"}}]}}
			]`))
		case "/acme/beta/transforms/t9":
			_, _ = w.Write([]byte(`{"id":"t9","name":"Remote","type":"trim","attributes":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupApp wires the full API over a GORM store and a fake platform
func setupApp(t *testing.T) *fiber.App {
	db := setupTestDB(t)
	srv := setupPlatform(t)
	store := storage.NewGormStore(db)

	catalog, err := builder.DefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	exporter, err := services.NewExporter()
	if err != nil {
		t.Fatalf("Failed to compile schema: %v", err)
	}

	cfg := &config.Config{StoreType: config.StoreDatabase, DBType: "sqlite", DBDatabase: ":memory:"}
	client := platform.NewClient(srv.URL+"/%s", platform.StaticToken("token"), time.Second, 100)
	tenants := services.NewTenantService(store)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api")
	handlers.Mount(api, handlers.Set{
		Notation:   &handlers.NotationHandler{Catalog: catalog},
		Tenants:    &handlers.TenantHandler{Tenants: tenants},
		Transforms: &handlers.TransformHandler{Transforms: services.NewTransformService(store, tenants, client)},
		Projects:   &handlers.ProjectHandler{Projects: services.NewProjectService(store, catalog), Exporter: exporter},
		Health:     &handlers.HealthHandler{Config: cfg, Store: store, DB: db, Tenants: tenants, Fetcher: client},
	}, tenants)
	app.Use(handlers.NotFound)
	return app
}

// do sends a request and decodes a JSON response into out when out is non-nil
func do(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("Failed to encode body: %v", err)
			}
			raw = string(b)
		}
		reader = bytes.NewReader([]byte(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func addTenant(t *testing.T, app *fiber.App) {
	t.Helper()
	if code := do(t, app, "POST", "/api/tenants", map[string]string{"tenantId": "acme", "name": "Acme"}, nil); code != 200 {
		t.Fatalf("Expected 200 adding tenant, got %d", code)
	}
}

func TestTemplates(t *testing.T) {
	app := setupApp(t)

	var templates []map[string]any
	if code := do(t, app, "GET", "/api/templates", nil, &templates); code != 200 {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if len(templates) == 0 || templates[0]["id"] != "base_concat" {
		t.Errorf("Unexpected templates: %v", templates)
	}
}

func TestRenderNotation(t *testing.T) {
	app := setupApp(t)

	body := `{"transform":{"type":"concat","attributes":{"values":["Hello, ",{"type":"static","attributes":{"value":"World"}}]}},"level":"0"}`
	var result map[string]any
	if code := do(t, app, "POST", "/api/notation", body, &result); code != 200 {
		t.Fatalf("Expected status 200, got %d", code)
	}

	want := "CONCATENATION\n  → \"Hello, \"\n  → STATIC(\"World\")"
	if result["parsed_notation"] != want {
		t.Errorf("Expected notation %q, got %q", want, result["parsed_notation"])
	}
	types, _ := result["referencedTypes"].([]any)
	if len(types) != 2 || types[0] != "concat" || types[1] != "static" {
		t.Errorf("Unexpected referencedTypes: %v", result["referencedTypes"])
	}
}

func TestRenderNotationBadBody(t *testing.T) {
	app := setupApp(t)

	if code := do(t, app, "POST", "/api/notation", `{"transform":`, nil); code != 400 {
		t.Errorf("Expected status 400 for malformed body, got %d", code)
	}
	if code := do(t, app, "POST", "/api/notation", `{}`, nil); code != 400 {
		t.Errorf("Expected status 400 for missing transform, got %d", code)
	}
}

func TestTenants(t *testing.T) {
	app := setupApp(t)
	addTenant(t, app)

	var tenants []services.Tenant
	if code := do(t, app, "GET", "/api/tenants", nil, &tenants); code != 200 {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if len(tenants) != 1 || tenants[0].Name != "Acme" {
		t.Errorf("Unexpected tenants: %+v", tenants)
	}

	if code := do(t, app, "POST", "/api/tenants", map[string]string{"name": "nameless"}, nil); code != 400 {
		t.Errorf("Expected status 400 without tenantId, got %d", code)
	}

	if code := do(t, app, "DELETE", "/api/tenants/acme", nil, nil); code != 200 {
		t.Errorf("Expected status 200 deleting tenant, got %d", code)
	}
	if code := do(t, app, "DELETE", "/api/tenants/acme", nil, nil); code != 404 {
		t.Errorf("Expected status 404 deleting missing tenant, got %d", code)
	}
}

func TestUnknownTenant(t *testing.T) {
	app := setupApp(t)

	var result map[string]any
	if code := do(t, app, "GET", "/api/projects/nobody", nil, &result); code != 404 {
		t.Fatalf("Expected status 404, got %d", code)
	}
	if result["type"] != "tenant.notFound" {
		t.Errorf("Expected type tenant.notFound, got %v", result["type"])
	}
}

func TestTransforms(t *testing.T) {
	app := setupApp(t)
	addTenant(t, app)

	var list []services.TransformSummary
	if code := do(t, app, "GET", "/api/transforms/acme?sort=name&order=desc", nil, &list); code != 200 {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if len(list) != 2 || list[0].ID != "t1" || list[1].ID != "t2" {
		t.Fatalf("Unexpected listing: %+v", list)
	}

	list = nil
	if code := do(t, app, "GET", "/api/transforms/acme?type=concat", nil, &list); code != 200 || len(list) != 1 {
		t.Errorf("Expected one concat transform, got %d %+v", code, list)
	}

	var transform map[string]any
	if code := do(t, app, "GET", "/api/transforms/acme/t2", nil, &transform); code != 200 {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if transform["name"] != "Greeting" {
		t.Errorf("Unexpected transform: %v", transform)
	}

	var rec map[string]any
	if code := do(t, app, "GET", "/api/transforms/acme/t9/notation", nil, &rec); code != 200 {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if rec["parsed_notation"] != "TRIM\n  → Input: (Direct input expected)" {
		t.Errorf("Unexpected notation: %q", rec["parsed_notation"])
	}

	if code := do(t, app, "GET", "/api/transforms/acme/missing", nil, nil); code != 404 {
		t.Errorf("Expected status 404 for missing transform, got %d", code)
	}
}

func TestProjectBuilderFlow(t *testing.T) {
	app := setupApp(t)
	addTenant(t, app)

	var project builder.Project
	if code := do(t, app, "POST", "/api/projects/acme", map[string]string{"name": "Greeting", "type": "concat"}, &project); code != 201 {
		t.Fatalf("Expected status 201, got %d", code)
	}
	base := "/api/projects/acme/" + project.ID
	topID := "top-" + project.ID

	if code := do(t, app, "POST", base+"/nodes/"+topID+"/values", nil, nil); code != 200 {
		t.Fatalf("Expected status 200 adding slot, got %d", code)
	}
	if code := do(t, app, "PUT", base+"/nodes/"+topID+"/values/0", map[string]string{"value": "Hello, "}, nil); code != 200 {
		t.Fatalf("Expected status 200 setting value, got %d", code)
	}

	var attached []builder.Node
	single := map[string]string{"templateId": "base_static", "parentId": topID}
	if code := do(t, app, "POST", base+"/nodes", single, &attached); code != 201 {
		t.Fatalf("Expected status 201 attaching, got %d", code)
	}
	if len(attached) != 1 || attached[0].ParentID != topID || attached[0].NestingLevel != 1 {
		t.Fatalf("Unexpected attached node: %+v", attached)
	}

	edit := `{"name":"World","type":"static","attributes":{"value":"World"}}`
	if code := do(t, app, "PUT", base+"/nodes/"+attached[0].ID, edit, nil); code != 200 {
		t.Fatalf("Expected status 200 updating node, got %d", code)
	}

	var nodes []builder.Node
	if code := do(t, app, "GET", base+"/nodes", nil, &nodes); code != 200 {
		t.Fatalf("Expected status 200 listing nodes, got %d", code)
	}
	if len(nodes) != 2 || nodes[0].DisplayPath != "1" || nodes[1].DisplayPath != "1.1" {
		t.Errorf("Unexpected nodes: %+v", nodes)
	}

	var preview map[string]any
	if code := do(t, app, "GET", base+"/nodes/"+topID+"/preview", nil, &preview); code != 200 {
		t.Fatalf("Expected status 200 previewing, got %d", code)
	}
	if preview["parsed_notation"] != "CONCATENATION\n  → \"Hello, \"\n  → STATIC(\"World\")" {
		t.Errorf("Unexpected preview: %q", preview["parsed_notation"])
	}

	var export services.ExportResult
	if code := do(t, app, "GET", base+"/export", nil, &export); code != 200 {
		t.Fatalf("Expected status 200 exporting, got %d", code)
	}
	want := `{"attributes":{"values":["Hello, ",{"attributes":{"value":"World"},"type":"static"}]},"name":"Greeting","type":"concat"}`
	if export.Empty || !export.Valid || export.Canonical != want {
		t.Errorf("Unexpected export: %+v", export)
	}

	var deleted map[string]any
	if code := do(t, app, "DELETE", base+"/nodes/"+topID, nil, &deleted); code != 200 {
		t.Fatalf("Expected status 200 deleting top node, got %d", code)
	}
	if deleted["affectedRows"] != float64(2) {
		t.Errorf("Expected 2 removed nodes, got %v", deleted["affectedRows"])
	}

	export = services.ExportResult{}
	do(t, app, "GET", base+"/export", nil, &export)
	if !export.Empty {
		t.Errorf("Expected empty export after deleting the top node")
	}
}

func TestProjectErrors(t *testing.T) {
	app := setupApp(t)
	addTenant(t, app)

	var project builder.Project
	do(t, app, "POST", "/api/projects/acme", nil, &project)
	if project.Name != builder.DefaultProjectName {
		t.Errorf("Expected default name, got %q", project.Name)
	}
	base := "/api/projects/acme/" + project.ID

	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{"GET", "/api/projects/acme/missing", nil, 404},
		{"POST", base + "/nodes", `[]`, 400},
		{"POST", base + "/nodes", `{"parentId":"nowhere","templateId":"base_static"}`, 400},
		{"PUT", base + "/nodes/top-" + project.ID + "/values/x", `{"value":"a"}`, 400},
		{"DELETE", base + "/nodes/ghost", nil, 404},
		{"GET", base + "/nodes/ghost/preview", nil, 404},
	}
	for _, tc := range cases {
		if code := do(t, app, tc.method, tc.path, tc.body, nil); code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, code)
		}
	}

	if code := do(t, app, "DELETE", base, nil, nil); code != 200 {
		t.Errorf("Expected status 200 deleting project, got %d", code)
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	var result services.HealthCheckResult
	if code := do(t, app, "GET", "/api/health", nil, &result); code != 200 {
		t.Fatalf("Expected status 200, got %d: %+v", code, result)
	}
	if result.Database != "ok" || result.Store != "ok" {
		t.Errorf("Unexpected health: %+v", result)
	}
}

func TestNotFoundRoute(t *testing.T) {
	app := setupApp(t)

	if code := do(t, app, "GET", "/api/nowhere", nil, nil); code != 404 {
		t.Errorf("Expected status 404, got %d", code)
	}
}
