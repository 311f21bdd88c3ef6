// render.go
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

// Package notation renders transform configuration trees as indented,
// human-readable notation.
//
// Rendering never fails on data-shape problems. Unknown types fall back to a
// placeholder rule and missing attributes render as placeholder text.
package notation

import (
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// Render renders a decoded transform value at the given level. Values that
// are not JSON objects render as literals.
func Render(v any, level int) Record {
	m, ok := v.(*ordered.Map)
	if !ok || m == nil {
		return literalRecord(v, level)
	}

	rawType := attr(m, "type")
	rec := Record{
		ID:    or(attr(m, "id"), "unknown"),
		Name:  or(attr(m, "name"), ""),
		Type:  or(rawType, TypeUnknown),
		Level: level,
	}

	attrs, _ := attr(m, "attributes").(*ordered.Map)
	if attrs == nil {
		attrs = ordered.NewMap()
	}

	rule, found := Lookup(rec.Type)
	if !found {
		rule = unknownRule(rawType)
	}
	rec.ParsedNotation, rec.RuleInputs = rule.Render(attrs, level)
	if rec.RuleInputs == nil {
		rec.RuleInputs = []Record{}
	}

	rec.Attributes = ordered.NewMap()
	rec.Inputs = []Record{}
	for _, e := range attrs.Entries() {
		if isObject(e.Value) {
			nested := renderNested(e.Value, level+1)
			rec.Attributes.Set(e.Key, strings.TrimSpace(nested.ParsedNotation))
			rec.Inputs = append(rec.Inputs, nested)
			continue
		}
		rec.Attributes.Set(e.Key, e.Value)
	}
	return rec
}

// RenderJSON decodes data preserving key order and renders it at level 0.
func RenderJSON(data []byte) (Record, error) {
	v, err := ordered.Decode(data)
	if err != nil {
		return Record{}, err
	}
	return Render(v, 0), nil
}

// renderNested renders an attribute value: literals, arrays, transform
// objects and plain keyed objects each get their own record shape.
func renderNested(v any, level int) Record {
	switch t := v.(type) {
	case []any:
		rec := Record{Type: TypeArray, Level: level, Inputs: make([]Record, 0, len(t))}
		lines := make([]string, 0, len(t))
		for _, e := range t {
			nested := renderNested(e, level+1)
			rec.Inputs = append(rec.Inputs, nested)
			lines = append(lines, "→ "+strings.TrimSpace(nested.ParsedNotation))
		}
		rec.ParsedNotation = strings.Join(lines, "\n")
		return rec

	case *ordered.Map:
		if t == nil {
			break
		}
		if t.Has("type") {
			rec := Render(t, level)
			rec.ParsedNotation = strings.TrimSpace(rec.ParsedNotation)
			return rec
		}

		rec := Record{Type: TypeObject, Level: level, Attributes: t, Inputs: []Record{}}
		lines := []string{}
		for _, e := range t.Entries() {
			nested := renderNested(e.Value, level+1)
			rec.Inputs = append(rec.Inputs, nested)
			lines = append(lines, e.Key+": "+strings.TrimSpace(nested.ParsedNotation))
		}
		rec.ParsedNotation = strings.Join(lines, "\n")
		return rec
	}
	return literalRecord(v, level)
}

// nestedText is the notation of renderNested, as interpolated by rules.
func nestedText(v any, level int) string {
	return renderNested(v, level).ParsedNotation
}

// entries lists the key/value pairs of an object or the index/element pairs
// of an array. Other values have no entries.
func entries(v any) []ordered.Entry {
	switch t := v.(type) {
	case *ordered.Map:
		return t.Entries()
	case []any:
		out := make([]ordered.Entry, len(t))
		for i, e := range t {
			out[i] = ordered.Entry{Key: js(i), Value: e}
		}
		return out
	}
	return nil
}

// list returns v when it is an array.
func list(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return nil
}
