// export.go
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

package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/localnerve/transform-studio/data"
	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/ordered"
)

const transformSchemaURL = "https://transform-studio.localnerve.com/schema/transform.json"

// ExportResult is the submit-ready form of a project.
type ExportResult struct {
	Empty     bool         `json:"empty"`
	Transform *ordered.Map `json:"transform"`
	Canonical string       `json:"canonical,omitempty"`
	SHA256    string       `json:"sha256,omitempty"`
	Valid     bool         `json:"valid"`
	Errors    []string     `json:"errors"`
}

// Exporter serializes projects and checks them against the transform schema.
type Exporter struct {
	schema *jsonschema.Schema
}

// NewExporter compiles the embedded transform schema.
func NewExporter() (*Exporter, error) {
	return NewExporterWithSchema(data.TransformSchema)
}

// NewExporterWithSchema compiles a caller supplied schema.
func NewExporterWithSchema(schema []byte) (*Exporter, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(transformSchemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("transform schema load failed: %w", err)
	}
	compiled, err := c.Compile(transformSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("transform schema compile failed: %w", err)
	}
	return &Exporter{schema: compiled}, nil
}

// Export serializes a project. An empty serialization means there is nothing
// to submit and is reported without canonical bytes.
func (e *Exporter) Export(p *builder.Project) (ExportResult, error) {
	serialized := p.Model().Serialize()
	result := ExportResult{Transform: serialized, Errors: []string{}}
	if serialized.Len() == 0 {
		result.Empty = true
		return result, nil
	}

	canonical, err := jcs.Transform([]byte(ordered.Text(serialized)))
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to canonicalize transform: %w", err)
	}
	sum := sha256.Sum256(canonical)
	result.Canonical = string(canonical)
	result.SHA256 = hex.EncodeToString(sum[:])

	result.Errors = e.Validate(serialized)
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// Validate lists schema violations of a transform value.
func (e *Exporter) Validate(v any) []string {
	err := e.schema.Validate(ordered.Plain(v))
	if err == nil {
		return []string{}
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := []string{}
	for _, be := range ve.BasicOutput().Errors {
		if be.Error == "" {
			continue
		}
		loc := be.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out = append(out, loc+": "+be.Error)
	}
	if len(out) == 0 {
		out = append(out, ve.Error())
	}
	return out
}
