package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trimTransform = `{"id":"t9","name":"Remote","type":"trim","attributes":{}}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(strings.NewReader(stdin))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRenderStdin(t *testing.T) {
	out, err := run(t, trimTransform, "render")
	require.NoError(t, err)
	assert.Equal(t, "TRIM\n  → Input: (Direct input expected)\n", out)
}

func TestRenderFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transform.json")
	require.NoError(t, os.WriteFile(path, []byte(trimTransform), 0o644))

	out, err := run(t, "", "render", path, "--json", "--level", "1")
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "t9", rec["id"])
	assert.Equal(t, "trim", rec["type"])
	assert.EqualValues(t, 1, rec["level"])
	assert.Contains(t, rec["parsed_notation"], "TRIM")
}

func TestRenderRejectsNegativeLevel(t *testing.T) {
	_, err := run(t, trimTransform, "render", "--level", "-1")
	assert.Error(t, err)
}

func TestRenderBadJSON(t *testing.T) {
	_, err := run(t, `{"type":`, "render", "-")
	assert.ErrorContains(t, err, "decode transform")
}

func TestRenderMissingFile(t *testing.T) {
	_, err := run(t, "", "render", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTypes(t *testing.T) {
	in := `{"type":"concat","attributes":{"values":["a",{"type":"static","attributes":{"value":"b"}},{"type":"upper","attributes":{"input":{"type":"static","attributes":{"value":"c"}}}}]}}`
	out, err := run(t, in, "types")
	require.NoError(t, err)
	assert.Equal(t, "concat\nstatic\nupper\n", out)
}

func TestTypesEmpty(t *testing.T) {
	out, err := run(t, `"just a string"`, "types")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCanonical(t *testing.T) {
	out, err := run(t, `{ "type": "static", "name": "n", "attributes": { "value": "x" } }`, "canonical")
	require.NoError(t, err)
	assert.Equal(t, `{"attributes":{"value":"x"},"name":"n","type":"static"}`+"\n", out)
}
