package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/ordered"
	"github.com/localnerve/transform-studio/internal/storage"
)

type fakeFetcher struct {
	list  string
	err   error
	calls int
}

func (f *fakeFetcher) BaseURL(tenantID, override string) string {
	if override != "" {
		return override
	}
	return "https://" + tenantID + ".example"
}

func (f *fakeFetcher) FetchTransforms(context.Context, string) ([]*ordered.Map, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v, err := ordered.Decode([]byte(f.list))
	if err != nil {
		return nil, err
	}
	out := []*ordered.Map{}
	for _, e := range v.([]any) {
		out = append(out, e.(*ordered.Map))
	}
	return out, nil
}

type notFoundError struct{}

func (notFoundError) Error() string   { return "missing" }
func (notFoundError) StatusCode() int { return 404 }

func (f *fakeFetcher) FetchTransform(_ context.Context, _ string, id string) (*ordered.Map, error) {
	f.calls++
	if id == "remote" {
		m := ordered.NewMap()
		m.Set("id", "remote")
		m.Set("type", "upper")
		return m, nil
	}
	return nil, notFoundError{}
}

const platformList = `[
	{"id":"t1","name":"Zeta Upper","type":"upper","attributes":{"input":{"type":"accountAttribute","attributes":{"sourceName":"HR","attributeName":"first"}}}},
	{"id":"t2","name":"alpha concat","type":"concat","attributes":{"values":["a",{"type":"trim","attributes":{}}]}},
	{"id":"t3","name":"Middle","type":"upper","attributes":{}}
]`

type fixture struct {
	store      storage.Store
	tenants    *TenantService
	projects   *ProjectService
	transforms *TransformService
	fetcher    *fakeFetcher
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	catalog, err := builder.DefaultCatalog()
	require.NoError(t, err)

	seq := 0
	projects := NewProjectService(store, catalog)
	projects.newID = func() string {
		seq++
		return "p" + strconv.Itoa(seq)
	}
	tenants := NewTenantService(store)
	tenants.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	fetcher := &fakeFetcher{list: platformList}

	_, err = tenants.Upsert(context.Background(), Tenant{TenantID: "acme"})
	require.NoError(t, err)

	return fixture{
		store:      store,
		tenants:    tenants,
		projects:   projects,
		transforms: NewTransformService(store, tenants, fetcher),
		fetcher:    fetcher,
	}
}

func ptr(s string) *string { return &s }

func TestTenantUpsertAndDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	got, err := f.tenants.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)
	assert.Equal(t, 2026, got.LastModified.Year())

	_, err = f.tenants.Upsert(ctx, Tenant{TenantID: "acme", Name: "Acme Corp"})
	require.NoError(t, err)
	list, err := f.tenants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme Corp", list[0].Name)

	_, err = f.tenants.Upsert(ctx, Tenant{TenantID: " "})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.projects.Create(ctx, "acme", ProjectInput{})
	require.NoError(t, err)
	_, err = f.transforms.List(ctx, "acme", ListOptions{})
	require.NoError(t, err)

	require.NoError(t, f.tenants.Delete(ctx, "acme"))
	keys, err := f.store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenants"}, keys)

	assert.ErrorIs(t, f.tenants.Delete(ctx, "acme"), ErrNotFound)
	_, err = f.tenants.Get(ctx, "acme")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, "acme", ProjectInput{})
	require.NoError(t, err)
	assert.Equal(t, builder.DefaultProjectName, p.Name)
	assert.Equal(t, builder.DefaultProjectType, p.Type)
	assert.Equal(t, "top-p1", p.SubTransforms[0].ID)

	updated, err := f.projects.Update(ctx, "acme", p.ID, ProjectInput{Name: ptr("Full Name"), Type: ptr("concat"), Description: ptr("joins names")})
	require.NoError(t, err)
	assert.Equal(t, "Full Name", updated.Name)
	assert.Equal(t, "joins names", updated.Description)

	stored, err := f.projects.Get(ctx, "acme", p.ID)
	require.NoError(t, err)
	top := stored.Model().TopLevel()
	require.NotNil(t, top)
	assert.Equal(t, "Full Name", top.Name)
	assert.Equal(t, "concat", top.Type)

	list, err := f.projects.List(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.projects.Delete(ctx, "acme", p.ID))
	_, err = f.projects.Get(ctx, "acme", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.projects.Delete(ctx, "acme", p.ID), ErrNotFound)
}

func TestProjectNodes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, "acme", ProjectInput{Name: ptr("Greeting"), Type: ptr("concat")})
	require.NoError(t, err)
	topID := "top-" + p.ID

	_, err = f.projects.AddValueSlot(ctx, "acme", p.ID, topID)
	require.NoError(t, err)
	_, err = f.projects.SetValue(ctx, "acme", p.ID, topID, 0, "Hello, ")
	require.NoError(t, err)

	attached, err := f.projects.Attach(ctx, "acme", p.ID, []AttachRequest{
		{TemplateID: "base_static", ParentID: topID},
		{Type: "upper", ParentID: topID},
	})
	require.NoError(t, err)
	require.Len(t, attached, 2)

	static := *attached[0]
	static.Attributes = ordered.NewMap()
	static.Attributes.Set("value", "World")
	_, err = f.projects.UpdateNode(ctx, "acme", p.ID, &static)
	require.NoError(t, err)

	nodes, err := f.projects.Nodes(ctx, "acme", p.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "1.1", nodes[1].DisplayPath)

	rec, err := f.projects.Preview(ctx, "acme", p.ID, topID)
	require.NoError(t, err)
	assert.Equal(t, "CONCATENATION\n  → \"Hello, \"\n  → STATIC(\"World\")\n  → UPPERCASE(\"(Direct input expected)\")", rec.ParsedNotation)

	removed, err := f.projects.DeleteNode(ctx, "acme", p.ID, attached[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{attached[1].ID}, removed)

	_, err = f.projects.DeleteNode(ctx, "acme", p.ID, attached[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.projects.RemoveValue(ctx, "acme", p.ID, topID, 0)
	require.NoError(t, err)
	_, err = f.projects.SetValue(ctx, "acme", p.ID, topID, 9, "x")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestAttachIsAllOrNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, "acme", ProjectInput{Type: ptr("concat")})
	require.NoError(t, err)

	_, err = f.projects.Attach(ctx, "acme", p.ID, []AttachRequest{
		{TemplateID: "base_static", ParentID: "top-" + p.ID},
		{TemplateID: "base_static", ParentID: "missing"},
	})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.projects.Attach(ctx, "acme", p.ID, []AttachRequest{{TemplateID: "nope", ParentID: "top-" + p.ID}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.projects.Attach(ctx, "acme", p.ID, []AttachRequest{{ParentID: "top-" + p.ID}})
	assert.ErrorIs(t, err, ErrInvalid)

	nodes, err := f.projects.Nodes(ctx, "acme", p.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestTransformListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	list, err := f.transforms.List(ctx, "acme", ListOptions{Sort: "name"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"t2", "t3", "t1"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, []string{"accountAttribute", "upper"}, list[2].ReferencedTypes)

	list, err = f.transforms.List(ctx, "acme", ListOptions{Type: "upper", Sort: "name", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t1", list[0].ID)

	list, err = f.transforms.List(ctx, "acme", ListOptions{Search: "CONCAT"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t2", list[0].ID)

	assert.Equal(t, 1, f.fetcher.calls)
	_, err = f.transforms.List(ctx, "acme", ListOptions{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, f.fetcher.calls)
}

func TestTransformGetAndNotation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rec, types, err := f.transforms.Notation(ctx, "acme", "t3", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"upper"}, types)
	assert.Equal(t, `UPPERCASE("(Direct input expected)")`, rec.ParsedNotation)
	// Cold cache: the list was fetched once and now serves lookups
	assert.Equal(t, 1, f.fetcher.calls)

	_, err = f.transforms.Get(ctx, "acme", "t1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetcher.calls)

	remote, err := f.transforms.Get(ctx, "acme", "remote", false)
	require.NoError(t, err)
	id, _ := remote.Get("id")
	assert.Equal(t, "remote", id)
	assert.Equal(t, 2, f.fetcher.calls)

	_, err = f.transforms.Get(ctx, "acme", "gone", false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.transforms.Get(ctx, "other", "t1", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransformPlatformFailure(t *testing.T) {
	f := setup(t)
	f.fetcher.err = errors.New("connection refused")

	_, err := f.transforms.List(context.Background(), "acme", ListOptions{})
	assert.ErrorIs(t, err, ErrPlatform)
}

func TestExport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	exporter, err := NewExporter()
	require.NoError(t, err)

	p, err := f.projects.Create(ctx, "acme", ProjectInput{Name: ptr("Greeting"), Type: ptr("concat")})
	require.NoError(t, err)
	topID := "top-" + p.ID
	_, err = f.projects.AddValueSlot(ctx, "acme", p.ID, topID)
	require.NoError(t, err)
	_, err = f.projects.SetValue(ctx, "acme", p.ID, topID, 0, "Hi")
	require.NoError(t, err)
	_, err = f.projects.Attach(ctx, "acme", p.ID, []AttachRequest{{TemplateID: "base_static", ParentID: topID}})
	require.NoError(t, err)

	p, err = f.projects.Get(ctx, "acme", p.ID)
	require.NoError(t, err)
	result, err := exporter.Export(p)
	require.NoError(t, err)
	assert.False(t, result.Empty)
	assert.True(t, result.Valid, result.Errors)
	assert.Equal(t, `{"attributes":{"values":["Hi",{"attributes":{"value":""},"type":"static"}]},"name":"Greeting","type":"concat"}`, result.Canonical)
	assert.Len(t, result.SHA256, 64)

	model := p.Model()
	model.DeleteSubtree(topID)
	p.Store(model)
	result, err = exporter.Export(p)
	require.NoError(t, err)
	assert.True(t, result.Empty)
	assert.Empty(t, result.Canonical)
}

func TestExportValidate(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)

	bad, err := ordered.Decode([]byte(`{"type":"concat","attributes":{"values":[{"id":"x","type":"static"}]},"extra":1}`))
	require.NoError(t, err)
	errs := exporter.Validate(bad)
	assert.NotEmpty(t, errs)

	_, err = NewExporterWithSchema([]byte(`{`))
	assert.Error(t, err)
}

func TestHealthCheckMemory(t *testing.T) {
	f := setup(t)
	cfg := &config.Config{StoreType: config.StoreMemory}

	result := HealthCheck(context.Background(), cfg, f.store, nil, nil)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Store)
	assert.Equal(t, "skipped", result.Platform)
	assert.Empty(t, result.Database)

	result = HealthCheck(context.Background(), cfg, f.store, nil, map[string]string{"acme": "http://127.0.0.1:1"})
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Platform)
}
