// record.go
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

package notation

import "github.com/localnerve/transform-studio/internal/ordered"

// Record types produced for values that are not transform objects.
const (
	TypeLiteral = "literal"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeUnknown = "unknown"
)

// Record is one rendered node of a transform tree.
//
// For transform objects, Attributes holds the generic attribute view: scalar
// values as given, object and array values replaced by their trimmed notation.
// Inputs holds the records of that generic walk. RuleInputs holds the records
// the type-specific rule collected while composing ParsedNotation; it is kept
// for callers but not serialized, so the JSON payload matches the generic view.
type Record struct {
	ID             string       `json:"id,omitempty"`
	Name           string       `json:"name,omitempty"`
	Type           string       `json:"type"`
	Level          int          `json:"level"`
	ParsedNotation string       `json:"parsed_notation"`
	Attributes     *ordered.Map `json:"attributes,omitempty"`
	Inputs         []Record     `json:"inputs"`
	RuleInputs     []Record     `json:"-"`
}

func literalRecord(v any, level int) Record {
	return Record{
		Type:           TypeLiteral,
		Level:          level,
		ParsedNotation: literalText(v),
		Inputs:         []Record{},
	}
}
