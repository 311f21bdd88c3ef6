package builder

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/transform-studio/data"
	"github.com/localnerve/transform-studio/internal/ordered"
)

// Template is a palette entry a node is instantiated from.
type Template struct {
	ID         string       `json:"id"`
	Name       string       `json:"name,omitempty"`
	Type       string       `json:"type"`
	Attributes *ordered.Map `json:"attributes,omitempty"`
}

// Catalog is an immutable set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// LoadCatalog parses a JSON array of templates.
func LoadCatalog(raw []byte) (*Catalog, error) {
	var templates []Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	c := &Catalog{templates: templates, byID: make(map[string]int, len(templates))}
	for i, t := range templates {
		if t.ID == "" || t.Type == "" {
			return nil, fmt.Errorf("template %d: id and type are required", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// DefaultCatalog loads the embedded template catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(data.Templates)
}

// Lookup returns a deep copy of the template with the given id.
func (c *Catalog) Lookup(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i].clone(), true
}

// All returns deep copies of every template in catalog order.
func (c *Catalog) All() []Template {
	out := make([]Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.clone()
	}
	return out
}

func (t Template) clone() Template {
	t.Attributes = t.Attributes.Clone()
	return t
}

// DefaultAttributes returns the seed attributes for a new node of a type.
func DefaultAttributes(transformType string) *ordered.Map {
	attrs := ordered.NewMap()
	switch transformType {
	case "concat":
		attrs.Set("values", []any{})
	case "lookup":
		attrs.Set("table", ordered.NewMap())
	}
	return attrs
}
