// node.go
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

	"github.com/localnerve/transform-studio/internal/ordered"
)

// Node is one transform in a project's flat collection.
//
// Attribute slots (values, table entries, single-value attributes such as
// input) hold either plain values or *Node pointers to direct children.
type Node struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	Type         string       `json:"type"`
	Attributes   *ordered.Map `json:"attributes"`
	NestingLevel int          `json:"nestingLevel"`
	ProjectID    string       `json:"projectId,omitempty"`
	Index        int          `json:"index"`
	ParentID     string       `json:"parentId,omitempty"`
	IsTopLevel   bool         `json:"isTopLevel,omitempty"`
	DisplayPath  string       `json:"displayPath,omitempty"`
}

type nodeJSON Node

// UnmarshalJSON decodes a node. Nested objects inside the attributes that
// carry node bookkeeping are decoded as *Node; the model relinks them to the
// nodes of its collection.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node(raw)
	if n.Attributes == nil {
		n.Attributes = ordered.NewMap()
	}
	n.Attributes = nodeifyEntries(n.Attributes)
	return nil
}

func nodeify(v any) any {
	switch t := v.(type) {
	case *ordered.Map:
		if looksLikeNode(t) {
			return nodeFromMap(t)
		}
		return nodeifyEntries(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = nodeify(e)
		}
		return out
	}
	return v
}

func nodeifyEntries(m *ordered.Map) *ordered.Map {
	out := ordered.NewMap()
	for _, k := range m.Keys() {
		val, _ := m.Get(k)
		out.Set(k, nodeify(val))
	}
	return out
}

func looksLikeNode(m *ordered.Map) bool {
	id, _ := m.Get("id")
	if s, ok := id.(string); !ok || s == "" {
		return false
	}
	return m.Has("type") && m.Has("parentId")
}

func nodeFromMap(m *ordered.Map) *Node {
	n := &Node{
		ID:           str(m, "id"),
		Name:         str(m, "name"),
		Type:         str(m, "type"),
		NestingLevel: num(m, "nestingLevel"),
		ProjectID:    str(m, "projectId"),
		Index:        num(m, "index"),
		ParentID:     str(m, "parentId"),
		DisplayPath:  str(m, "displayPath"),
	}
	if b, ok := m.Get("isTopLevel"); ok {
		n.IsTopLevel, _ = b.(bool)
	}
	attrs, _ := m.Get("attributes")
	if am, ok := attrs.(*ordered.Map); ok {
		n.Attributes = nodeifyEntries(am)
	} else {
		n.Attributes = ordered.NewMap()
	}
	return n
}

func str(m *ordered.Map, key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func num(m *ordered.Map, key string) int {
	v, _ := m.Get(key)
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, _ := t.Float64()
			return int(f)
		}
		return int(i)
	case float64:
		return int(t)
	case int:
		return t
	}
	return 0
}
