// Package jsonhook validates a run's working inputs against a JSON Schema
// document. It is meant for Validate hooks that need checks the descriptor
// schema cannot express (formats, nested shapes, cross-field constraints).
package jsonhook

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"cmdkit/command"
	"cmdkit/outcome"
)

// Check validates run's current inputs against schemaJSON and records one
// invalid input error per violation, keyed by the offending field. It
// returns an error only when the schema document itself cannot be compiled.
func Check(run *command.Run, schemaJSON string) error {
	schema := gojsonschema.NewStringLoader(schemaJSON)
	document := gojsonschema.NewGoLoader(run.InputValues())

	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return fmt.Errorf("jsonhook: compile schema: %w", err)
	}

	for _, violation := range result.Errors() {
		field := violation.Field()
		if field == "(root)" {
			// required-property violations report against the root document
			if prop, ok := violation.Details()["property"].(string); ok {
				field = prop
			}
		}
		run.AddInputError(field, outcome.KeyInvalid, violation.Description())
	}
	return nil
}
