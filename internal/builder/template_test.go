package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "base_concat", all[0].ID)

	tpl, ok := c.Lookup("base_lookup")
	require.True(t, ok)
	assert.Equal(t, "lookup", tpl.Type)

	tpl.Attributes.Set("table", "mutated")
	again, _ := c.Lookup("base_lookup")
	v, _ := again.Attributes.Get("table")
	assert.NotEqual(t, "mutated", v)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog([]byte(`not json`))
	assert.Error(t, err)

	_, err = LoadCatalog([]byte(`[{"id":"a"}]`))
	assert.ErrorContains(t, err, "id and type are required")

	_, err = LoadCatalog([]byte(`[{"id":"a","type":"x"},{"id":"a","type":"y"}]`))
	assert.ErrorContains(t, err, "duplicate id")
}

func TestNewProject(t *testing.T) {
	p := NewProject("abc", "", "", "")
	assert.Equal(t, DefaultProjectName, p.Name)
	assert.Equal(t, DefaultProjectType, p.Type)
	require.Len(t, p.SubTransforms, 1)
	assert.Equal(t, "top-abc", p.SubTransforms[0].ID)

	m := p.Model()
	m.AttachNested(Template{Type: "upper"}, "top-abc", "input")
	p.Store(m)
	assert.Len(t, p.SubTransforms, 2)
}
