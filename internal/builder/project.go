package builder

// Project is a user-authored transform tree and its metadata.
type Project struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Description   string  `json:"description,omitempty"`
	SubTransforms []*Node `json:"subTransforms"`
}

// Project defaults.
const (
	DefaultProjectName = "Untitled Project"
	DefaultProjectType = "static"
)

// NewProject creates a project with its top-level node.
func NewProject(id, name, transformType, description string) *Project {
	if name == "" {
		name = DefaultProjectName
	}
	if transformType == "" {
		transformType = DefaultProjectType
	}
	p := &Project{ID: id, Name: name, Type: transformType, Description: description}
	model := NewModel(id, nil)
	model.CreateTopLevel(transformType, name)
	p.SubTransforms = model.Nodes()
	return p
}

// Model returns an arena over the project's nodes. Call Store to write
// mutations back.
func (p *Project) Model() *Model {
	return NewModel(p.ID, p.SubTransforms)
}

// Store replaces the project's nodes with the model's collection.
func (p *Project) Store(m *Model) {
	p.SubTransforms = m.Nodes()
}
