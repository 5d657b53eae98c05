package registry

// CommandRegistry is the machine-readable catalog of commands a deployment
// exposes, loadable from JSON by external tooling.
type CommandRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Commands    []Entry `json:"commands"`
}

type Entry struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"displayName,omitempty"`
	Description string               `json:"description,omitempty"`
	TaskType    string               `json:"taskType,omitempty"`
	Inputs      map[string]InputSpec `json:"inputs"`
	ErrorKeys   []string             `json:"errorKeys,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
}

type InputSpec struct {
	Type       string `json:"type"`
	Required   bool   `json:"required,omitempty"`
	AllowBlank bool   `json:"allowBlank,omitempty"`
	Default    any    `json:"default,omitempty"`
	OneOf      []any  `json:"oneOf,omitempty"`
}
