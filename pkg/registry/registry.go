package registry

import (
	"encoding/json"
	"os"
	"sort"

	"cmdkit/command"
)

func LoadRegistry(path string) (*CommandRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg CommandRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByName returns the catalog entry for a command name, if present.
func (r *CommandRegistry) FindByName(name string) (Entry, bool) {
	for _, e := range r.Commands {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Describe builds a catalog entry from a live command's declared schema, so
// the exported registry can never drift from the code.
func Describe(cmd command.Command, taskType string) Entry {
	schema := cmd.Schema()
	inputs := make(map[string]InputSpec, len(schema))

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := schema[name]
		spec := InputSpec{
			Type:       string(d.Type),
			Required:   d.Required,
			AllowBlank: d.AllowBlank,
			OneOf:      d.OneOf,
		}
		if d.HasDefault {
			spec.Default = d.Default
		}
		inputs[name] = spec
	}

	return Entry{
		Name:     cmd.Name(),
		TaskType: taskType,
		Inputs:   inputs,
	}
}
