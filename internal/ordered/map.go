// map.go
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

package ordered

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Map is a JSON object that remembers key insertion order.
// The zero value is not usable; call NewMap.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key and whether the key is present.
// A present key may hold nil (JSON null).
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key, appending the key if it is new.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key if present.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entry is a key/value pair.
type Entry struct {
	Key   string
	Value any
}

// Entries returns the pairs in JavaScript property order: keys that are
// canonical array indexes come first in ascending numeric order, then the
// remaining keys in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	var indexKeys, otherKeys []string
	for _, k := range m.keys {
		if isArrayIndex(k) {
			indexKeys = append(indexKeys, k)
		} else {
			otherKeys = append(otherKeys, k)
		}
	}
	sort.SliceStable(indexKeys, func(i, j int) bool {
		a, _ := strconv.ParseUint(indexKeys[i], 10, 32)
		b, _ := strconv.ParseUint(indexKeys[j], 10, 32)
		return a < b
	})

	out := make([]Entry, 0, len(m.keys))
	for _, k := range indexKeys {
		out = append(out, Entry{Key: k, Value: m.values[k]})
	}
	for _, k := range otherKeys {
		out = append(out, Entry{Key: k, Value: m.values[k]})
	}
	return out
}

// isArrayIndex reports whether k is a canonical uint32 index below 2^32-1.
func isArrayIndex(k string) bool {
	if k == "" || len(k) > 10 {
		return false
	}
	if len(k) > 1 && k[0] == '0' {
		return false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	if err != nil {
		return false
	}
	return n < 1<<32-1
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]any, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = Clone(v)
	}
	return out
}

// Clone deep copies a decoded JSON value. Values of other types, such as
// pointers stored by callers, are shared rather than copied.
func Clone(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the object in insertion order without HTML escaping.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order at every depth.
func (m *Map) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Map)
	if !ok {
		return &json.UnmarshalTypeError{Value: "non-object", Type: mapType}
	}
	*m = *obj
	return nil
}
