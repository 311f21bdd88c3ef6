package builder

import (
	"github.com/localnerve/transform-studio/internal/notation"
	"github.com/localnerve/transform-studio/internal/ordered"
)

// Serialize returns the canonical transform JSON of the project: the
// top-level node and every nested node with bookkeeping fields removed.
// The top-level node keeps its name. A model without a top-level node
// serializes to an empty object, which means there is nothing to submit.
func (m *Model) Serialize() *ordered.Map {
	top := m.TopLevel()
	if top == nil {
		return ordered.NewMap()
	}
	return canonical(top, true, map[string]bool{})
}

// Preview renders the subtree rooted at a node through the notation engine.
func (m *Model) Preview(id string) (notation.Record, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return notation.Record{}, false
	}
	return notation.Render(canonical(n, n.IsTopLevel, map[string]bool{}), 0), true
}

func canonical(n *Node, keepName bool, visiting map[string]bool) *ordered.Map {
	visiting[n.ID] = true
	defer delete(visiting, n.ID)

	out := ordered.NewMap()
	if keepName && n.Name != "" {
		out.Set("name", n.Name)
	}
	out.Set("type", n.Type)
	if n.Attributes != nil {
		out.Set("attributes", canonicalValue(n.Attributes, visiting))
	}
	return out
}

func canonicalValue(v any, visiting map[string]bool) any {
	switch t := v.(type) {
	case *Node:
		if visiting[t.ID] {
			return nil
		}
		return canonical(t, false, visiting)
	case *ordered.Map:
		out := ordered.NewMap()
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			out.Set(k, canonicalValue(val, visiting))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalValue(e, visiting)
		}
		return out
	}
	return v
}
