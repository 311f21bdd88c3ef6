// model_test.go
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

package builder

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/transform-studio/internal/notation"
	"github.com/localnerve/transform-studio/internal/ordered"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel("p1", nil)
	seq := 0
	m.newID = func() string {
		seq++
		return "n" + strconv.Itoa(seq)
	}
	return m
}

func template(t *testing.T, id string) Template {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	tpl, ok := c.Lookup(id)
	require.True(t, ok, id)
	return tpl
}

// tree builds A(concat) with children B(concat) and C(static); B has child D(static).
func tree(t *testing.T) (m *Model, a, b, c, d *Node) {
	m = newTestModel(t)
	a = m.CreateTopLevel("concat", "A")
	b = m.AttachNested(template(t, "base_concat"), a.ID, "")
	c = m.AttachNested(template(t, "base_static"), a.ID, "")
	d = m.AttachNested(template(t, "base_static"), b.ID, "")
	require.NotNil(t, b)
	require.NotNil(t, c)
	require.NotNil(t, d)
	return m, a, b, c, d
}

func values(t *testing.T, n *Node) []any {
	t.Helper()
	v, ok := n.Attributes.Get(SlotValues)
	require.True(t, ok)
	return v.([]any)
}

func TestCreateTopLevelDefaults(t *testing.T) {
	m := newTestModel(t)
	top := m.CreateTopLevel("concat", "Full Name")
	assert.Equal(t, "top-p1", top.ID)
	assert.True(t, top.IsTopLevel)
	assert.Equal(t, `{"values":[]}`, ordered.Text(top.Attributes))

	assert.Same(t, top, m.CreateTopLevel("lookup", "Other"))

	assert.Equal(t, `{"table":{}}`, ordered.Text(NewModel("p2", nil).CreateTopLevel("lookup", "L").Attributes))
	assert.Equal(t, `{}`, ordered.Text(NewModel("p3", nil).CreateTopLevel("upper", "U").Attributes))
}

func TestAttachNestedBookkeeping(t *testing.T) {
	m, a, b, c, d := tree(t)

	assert.Equal(t, 4, m.Len())
	assert.Equal(t, a.ID, b.ParentID)
	assert.Equal(t, 1, b.NestingLevel)
	assert.Equal(t, 2, d.NestingLevel)
	assert.Equal(t, 0, b.Index)
	assert.Equal(t, 1, c.Index)
	assert.Equal(t, "p1", d.ProjectID)

	vals := values(t, a)
	require.Len(t, vals, 2)
	assert.Same(t, b, vals[0])
	assert.Same(t, c, vals[1])

	assert.Nil(t, m.AttachNested(template(t, "base_static"), "missing", ""))
	assert.Nil(t, m.AttachNested(template(t, "base_static"), a.ID, "values.9"))
}

func TestAttachNestedCopiesTemplateAttributes(t *testing.T) {
	m := newTestModel(t)
	top := m.CreateTopLevel("concat", "A")
	tpl := template(t, "base_static")

	n := m.AttachNested(tpl, top.ID, "")
	n.Attributes.Set("value", "changed")

	v, _ := tpl.Attributes.Get("value")
	assert.Equal(t, "", v)
}

func TestAttachNestedSlots(t *testing.T) {
	m := newTestModel(t)
	top := m.CreateTopLevel("lookup", "L")

	us := m.AttachNested(template(t, "base_static"), top.ID, "table.US")
	require.NotNil(t, us)
	table, _ := top.Attributes.Get("table")
	got, _ := table.(*ordered.Map).Get("US")
	assert.Same(t, us, got)

	in := m.AttachNested(template(t, "base_identityAttribute"), top.ID, "input")
	require.NotNil(t, in)

	replacement := m.AttachNested(template(t, "base_accountAttribute"), top.ID, "input")
	require.NotNil(t, replacement)
	_, stillThere := m.Node(in.ID)
	assert.False(t, stillThere)

	assert.Nil(t, m.AttachNested(template(t, "base_static"), top.ID, "table"))
}

func TestDeleteSubtree(t *testing.T) {
	m, a, _, _, _ := tree(t)

	removed := m.DeleteSubtree(a.ID)
	assert.ElementsMatch(t, []string{"top-p1", "n1", "n2", "n3"}, removed)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Serialize().Keys())
}

func TestDeleteSubtreeMiddle(t *testing.T) {
	m, a, b, c, d := tree(t)

	removed := m.DeleteSubtree(b.ID)
	assert.ElementsMatch(t, []string{b.ID, d.ID}, removed)

	_, ok := m.Node(a.ID)
	assert.True(t, ok)
	_, ok = m.Node(c.ID)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())

	vals := values(t, a)
	require.Len(t, vals, 1)
	assert.Same(t, c, vals[0])

	assert.Nil(t, m.DeleteSubtree("missing"))
	assert.Nil(t, m.DeleteSubtree(b.ID))
}

func TestDetachNested(t *testing.T) {
	m, a, b, _, _ := tree(t)

	assert.False(t, m.DetachNested(a.ID))
	assert.True(t, m.DetachNested(b.ID))
	assert.False(t, m.DetachNested(b.ID))
	assert.Equal(t, 2, m.Len())
	assert.Len(t, values(t, a), 1)
}

func TestFlattenForDisplay(t *testing.T) {
	m := newTestModel(t)
	top := m.CreateTopLevel("concat", "Top")
	first := m.AttachNested(template(t, "base_static"), top.ID, "")
	second := m.AttachNested(template(t, "base_concat"), top.ID, "")
	grandchild := m.AttachNested(template(t, "base_static"), second.ID, "")

	flat := m.FlattenForDisplay()
	require.Len(t, flat, 4)

	var paths, ids []string
	for _, n := range flat {
		paths = append(paths, n.DisplayPath)
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"1", "1.1", "1.2", "1.2.1"}, paths)
	assert.Equal(t, []string{top.ID, first.ID, second.ID, grandchild.ID}, ids)

	stored, _ := m.Node(top.ID)
	assert.Empty(t, stored.DisplayPath)
}

func TestUpdateNodePropagates(t *testing.T) {
	m, a, b, _, d := tree(t)

	edited := &Node{ID: d.ID, Name: "World", Type: "static", Attributes: ordered.NewMap(), ParentID: "ignored"}
	edited.Attributes.Set("value", "World")
	require.True(t, m.UpdateNode(edited))

	stored, _ := m.Node(d.ID)
	assert.Equal(t, b.ID, stored.ParentID)
	assert.Equal(t, 2, stored.NestingLevel)
	assert.Same(t, stored, values(t, b)[0])

	assert.Equal(t,
		`{"name":"A","type":"concat","attributes":{"values":[{"type":"concat","attributes":{"values":[{"type":"static","attributes":{"value":"World"}}]}},{"type":"static","attributes":{"value":""}}]}}`,
		ordered.Text(m.Serialize()))

	bCopy := *b
	bCopy.Name = "Inner"
	require.True(t, m.UpdateNode(&bCopy))
	newB, _ := m.Node(b.ID)
	assert.Same(t, newB, values(t, a)[0])
	assert.Same(t, stored, values(t, newB)[0])

	assert.False(t, m.UpdateNode(&Node{ID: "missing"}))
	assert.False(t, m.UpdateNode(nil))
}

func TestValueSlots(t *testing.T) {
	m, a, b, _, _ := tree(t)

	require.True(t, m.AddValueSlot(a.ID))
	vals := values(t, a)
	require.Len(t, vals, 3)
	assert.Equal(t, "", vals[2])

	require.True(t, m.SetValue(a.ID, 2, "-"))
	assert.Equal(t, "-", values(t, a)[2])

	require.True(t, m.SetValue(a.ID, 0, "replaced"))
	_, ok := m.Node(b.ID)
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())

	require.True(t, m.RemoveValue(a.ID, 0))
	assert.Len(t, values(t, a), 2)

	assert.False(t, m.SetValue(a.ID, 7, "x"))
	assert.False(t, m.RemoveValue("missing", 0))
	assert.False(t, m.AddValueSlot("missing"))
}

func TestSerializeEmpty(t *testing.T) {
	assert.Equal(t, "{}", ordered.Text(newTestModel(t).Serialize()))
}

func TestSerializeRenderMatchesDirectRender(t *testing.T) {
	m := newTestModel(t)
	top := m.CreateTopLevel("concat", "Greeting")
	require.True(t, m.AddValueSlot(top.ID))
	require.True(t, m.SetValue(top.ID, 0, "Hello, "))
	world := m.AttachNested(template(t, "base_static"), top.ID, "")
	world.Attributes.Set("value", "World")

	serialized := m.Serialize()
	direct, err := ordered.Decode([]byte(`{"name":"Greeting","type":"concat","attributes":{"values":["Hello, ",{"type":"static","attributes":{"value":"World"}}]}}`))
	require.NoError(t, err)

	assert.Equal(t, ordered.Text(direct), ordered.Text(serialized))

	got := notation.Render(serialized, 0)
	want := notation.Render(direct, 0)
	assert.Equal(t, want.ParsedNotation, got.ParsedNotation)
	assert.Equal(t, "CONCATENATION\n  → \"Hello, \"\n  → STATIC(\"World\")", got.ParsedNotation)

	preview, ok := m.Preview(world.ID)
	require.True(t, ok)
	assert.Equal(t, `STATIC("World")`, preview.ParsedNotation)
}

func TestModelJSONRoundTrip(t *testing.T) {
	m, a, _, _, _ := tree(t)
	before := ordered.Text(m.Serialize())

	raw, err := json.Marshal(m.Nodes())
	require.NoError(t, err)

	var nodes []*Node
	require.NoError(t, json.Unmarshal(raw, &nodes))

	restored := NewModel("p1", nodes)
	assert.Equal(t, before, ordered.Text(restored.Serialize()))

	top, ok := restored.Node(a.ID)
	require.True(t, ok)
	child, ok := restored.Node(values(t, top)[0].(*Node).ID)
	require.True(t, ok)
	assert.Same(t, child, values(t, top)[0])
}
