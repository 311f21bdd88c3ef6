// model.go
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

// Package builder maintains a project's transform tree as a flat collection
// of nodes linked by parent id.
//
// Operations on ids that do not exist are no-ops. A Model is not safe for
// concurrent use.
package builder

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// SlotValues is the variadic slot nested nodes attach to by default.
const SlotValues = "values"

// Model is the arena of one project's nodes.
type Model struct {
	projectID string
	nodes     map[string]*Node
	order     []string
	children  map[string][]string
	newID     func() string
}

// NewModel builds a model over existing nodes. Nested node copies found in
// attribute slots are replaced by the collection's own nodes.
func NewModel(projectID string, nodes []*Node) *Model {
	m := &Model{
		projectID: projectID,
		nodes:     make(map[string]*Node, len(nodes)),
		children:  make(map[string][]string),
		newID:     uuid.NewString,
	}
	for _, n := range nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if _, dup := m.nodes[n.ID]; dup {
			continue
		}
		if n.Attributes == nil {
			n.Attributes = ordered.NewMap()
		}
		m.nodes[n.ID] = n
		m.order = append(m.order, n.ID)
	}
	for _, id := range m.order {
		if p := m.nodes[id].ParentID; p != "" {
			m.children[p] = append(m.children[p], id)
		}
	}
	for _, id := range m.order {
		n := m.nodes[id]
		n.Attributes = m.relink(n.ID, n.Attributes).(*ordered.Map)
	}
	return m
}

// Nodes returns the collection in insertion order.
func (m *Model) Nodes() []*Node {
	out := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// Node returns the node with the given id.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.order)
}

// TopLevel returns the project's root node, or nil.
func (m *Model) TopLevel() *Node {
	for _, id := range m.order {
		if n := m.nodes[id]; n.IsTopLevel {
			return n
		}
	}
	return nil
}

// CreateTopLevel adds the root node of the project. When a root already
// exists it is returned unchanged.
func (m *Model) CreateTopLevel(transformType, name string) *Node {
	if top := m.TopLevel(); top != nil {
		return top
	}
	n := &Node{
		ID:           "top-" + m.projectID,
		Name:         name,
		Type:         transformType,
		Attributes:   DefaultAttributes(transformType),
		NestingLevel: 0,
		ProjectID:    m.projectID,
		Index:        0,
		IsTopLevel:   true,
	}
	if _, taken := m.nodes[n.ID]; taken {
		n.ID = m.newID()
	}
	m.insert(n)
	return n
}

// UpdateNode replaces the name, type and attributes of the node with the
// same id. Structural fields stay as stored. Every ancestor slot that held
// the previous node is pointed at the replacement. It reports whether a node
// was replaced.
func (m *Model) UpdateNode(updated *Node) bool {
	if updated == nil {
		return false
	}
	cur, ok := m.nodes[updated.ID]
	if !ok {
		return false
	}

	attrs := updated.Attributes
	if attrs == nil {
		attrs = ordered.NewMap()
	}
	next := &Node{
		ID:           cur.ID,
		Name:         updated.Name,
		Type:         updated.Type,
		Attributes:   m.relink(cur.ID, attrs.Clone()).(*ordered.Map),
		NestingLevel: cur.NestingLevel,
		ProjectID:    cur.ProjectID,
		Index:        cur.Index,
		ParentID:     cur.ParentID,
		IsTopLevel:   cur.IsTopLevel,
	}
	m.nodes[next.ID] = next

	seen := map[string]bool{next.ID: true}
	for child := next; child.ParentID != ""; {
		parent, ok := m.nodes[child.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		replaceRefs(parent.Attributes, child)
		child = parent
	}
	return true
}

// DeleteSubtree removes a node and every node whose parent chain leads to it,
// then drops references to the removed nodes from the remaining slots.
// It returns the removed ids.
func (m *Model) DeleteSubtree(id string) []string {
	if _, ok := m.nodes[id]; !ok {
		return nil
	}

	removed := []string{id}
	doomed := map[string]bool{id: true}
	for i := 0; i < len(removed); i++ {
		for _, c := range m.children[removed[i]] {
			if !doomed[c] {
				doomed[c] = true
				removed = append(removed, c)
			}
		}
	}

	if p := m.nodes[id].ParentID; p != "" {
		m.children[p] = without(m.children[p], doomed)
		if len(m.children[p]) == 0 {
			delete(m.children, p)
		}
	}
	for _, r := range removed {
		delete(m.nodes, r)
		delete(m.children, r)
	}
	m.order = without(m.order, doomed)

	for _, n := range m.nodes {
		n.Attributes = scrub(n.Attributes, doomed).(*ordered.Map)
	}
	return removed
}

// AttachNested instantiates a node from a template under a parent and places
// it in the named slot of the parent's attributes:
//
//	values      append to the values list (the default when slot is empty)
//	values.N    replace element N of the values list
//	table.KEY   set lookup table entry KEY
//	NAME        set the single-value attribute NAME, such as input
//
// A node previously held by a replaced slot is detached. It returns nil when
// the parent does not exist or the slot cannot be addressed.
func (m *Model) AttachNested(tpl Template, parentID, slot string) *Node {
	parent, ok := m.nodes[parentID]
	if !ok {
		return nil
	}
	if slot == "" {
		slot = SlotValues
	}

	attrs := tpl.Attributes.Clone()
	if attrs == nil {
		attrs = ordered.NewMap()
	}
	n := &Node{
		ID:           m.newID(),
		Name:         tpl.Name,
		Type:         tpl.Type,
		Attributes:   attrs,
		NestingLevel: parent.NestingLevel + 1,
		ProjectID:    parent.ProjectID,
		Index:        m.nextIndex(parentID),
		ParentID:     parentID,
	}

	previous, ok := placeInSlot(parent.Attributes, slot, n)
	if !ok {
		return nil
	}
	m.insert(n)
	if prev, isNode := previous.(*Node); isNode && prev.ID != n.ID {
		m.DeleteSubtree(prev.ID)
	}
	return n
}

// DetachNested removes a nested node, its subtree, and the slot reference
// that held it. The top-level node cannot be detached.
func (m *Model) DetachNested(id string) bool {
	n, ok := m.nodes[id]
	if !ok || n.IsTopLevel {
		return false
	}
	return len(m.DeleteSubtree(id)) > 0
}

// AddValueSlot appends an empty string to a node's values list.
func (m *Model) AddValueSlot(id string) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	values, ok := valuesOf(n.Attributes)
	if !ok {
		return false
	}
	n.Attributes.Set(SlotValues, append(values, ""))
	return true
}

// SetValue stores a plain string at a position of a node's values list,
// detaching any nested node that held the position.
func (m *Model) SetValue(id string, index int, value string) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	values, ok := valuesOf(n.Attributes)
	if !ok || index < 0 || index >= len(values) {
		return false
	}
	previous := values[index]
	values[index] = value
	if prev, isNode := previous.(*Node); isNode {
		m.DeleteSubtree(prev.ID)
	}
	return true
}

// RemoveValue deletes a position of a node's values list, detaching the
// nested node it held.
func (m *Model) RemoveValue(id string, index int) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	values, ok := valuesOf(n.Attributes)
	if !ok || index < 0 || index >= len(values) {
		return false
	}
	previous := values[index]
	rest := make([]any, 0, len(values)-1)
	rest = append(rest, values[:index]...)
	rest = append(rest, values[index+1:]...)
	n.Attributes.Set(SlotValues, rest)
	if prev, isNode := previous.(*Node); isNode {
		m.DeleteSubtree(prev.ID)
	}
	return true
}

// FlattenForDisplay walks the tree depth first from the top-level nodes and
// returns copies labelled with dotted, 1-based positions ordered by index.
func (m *Model) FlattenForDisplay() []Node {
	var roots []*Node
	for _, id := range m.order {
		if n := m.nodes[id]; n.IsTopLevel {
			roots = append(roots, n)
		}
	}
	sortByIndex(roots)

	var out []Node
	seen := map[string]bool{}
	var walk func(n *Node, path string)
	walk = func(n *Node, path string) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true

		labelled := *n
		labelled.DisplayPath = path
		out = append(out, labelled)

		kids := make([]*Node, 0, len(m.children[n.ID]))
		for _, c := range m.children[n.ID] {
			kids = append(kids, m.nodes[c])
		}
		sortByIndex(kids)
		for i, c := range kids {
			walk(c, path+"."+strconv.Itoa(i+1))
		}
	}
	for i, r := range roots {
		walk(r, strconv.Itoa(i+1))
	}
	return out
}

func (m *Model) insert(n *Node) {
	m.nodes[n.ID] = n
	m.order = append(m.order, n.ID)
	if n.ParentID != "" {
		m.children[n.ParentID] = append(m.children[n.ParentID], n.ID)
	}
}

func (m *Model) nextIndex(parentID string) int {
	next := 0
	for _, c := range m.children[parentID] {
		if idx := m.nodes[c].Index; idx >= next {
			next = idx + 1
		}
	}
	return next
}

// relink swaps decoded copies of direct children for the collection's nodes.
func (m *Model) relink(ownerID string, v any) any {
	switch t := v.(type) {
	case *Node:
		if n, ok := m.nodes[t.ID]; ok && n.ParentID == ownerID {
			return n
		}
		return t
	case *ordered.Map:
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			t.Set(k, m.relink(ownerID, val))
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = m.relink(ownerID, e)
		}
		return t
	}
	return v
}

// replaceRefs points every slot holding a node with n's id at n.
func replaceRefs(v any, n *Node) any {
	switch t := v.(type) {
	case *Node:
		if t.ID == n.ID {
			return n
		}
	case *ordered.Map:
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			t.Set(k, replaceRefs(val, n))
		}
	case []any:
		for i, e := range t {
			t[i] = replaceRefs(e, n)
		}
	}
	return v
}

// scrub drops list elements and object entries that hold removed nodes.
func scrub(v any, removed map[string]bool) any {
	switch t := v.(type) {
	case *ordered.Map:
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			if n, ok := val.(*Node); ok && removed[n.ID] {
				t.Delete(k)
				continue
			}
			t.Set(k, scrub(val, removed))
		}
		return t
	case []any:
		out := t[:0]
		for _, e := range t {
			if n, ok := e.(*Node); ok && removed[n.ID] {
				continue
			}
			out = append(out, scrub(e, removed))
		}
		return out
	}
	return v
}

// placeInSlot stores n in the addressed slot and returns what it displaced.
func placeInSlot(attrs *ordered.Map, slot string, n *Node) (any, bool) {
	switch {
	case slot == SlotValues:
		values, ok := valuesOf(attrs)
		if !ok {
			return nil, false
		}
		attrs.Set(SlotValues, append(values, n))
		return nil, true

	case strings.HasPrefix(slot, SlotValues+"."):
		values, ok := valuesOf(attrs)
		if !ok {
			return nil, false
		}
		i, err := strconv.Atoi(strings.TrimPrefix(slot, SlotValues+"."))
		if err != nil || i < 0 || i > len(values) {
			return nil, false
		}
		if i == len(values) {
			attrs.Set(SlotValues, append(values, n))
			return nil, true
		}
		previous := values[i]
		values[i] = n
		return previous, true

	case strings.HasPrefix(slot, "table."):
		key := strings.TrimPrefix(slot, "table.")
		if key == "" {
			return nil, false
		}
		table, _ := attrs.Get("table")
		tm, ok := table.(*ordered.Map)
		if !ok {
			if table != nil {
				return nil, false
			}
			tm = ordered.NewMap()
			attrs.Set("table", tm)
		}
		previous, _ := tm.Get(key)
		tm.Set(key, n)
		return previous, true

	case slot == "table":
		return nil, false

	default:
		previous, _ := attrs.Get(slot)
		attrs.Set(slot, n)
		return previous, true
	}
}

// valuesOf returns the values list, treating an absent or null slot as empty.
func valuesOf(attrs *ordered.Map) ([]any, bool) {
	v, _ := attrs.Get(SlotValues)
	switch t := v.(type) {
	case nil:
		return []any{}, true
	case []any:
		return t, true
	}
	return nil, false
}

func without(ids []string, drop map[string]bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func sortByIndex(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Index < nodes[j].Index })
}
