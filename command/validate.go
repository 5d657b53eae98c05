package command

import (
	"fmt"
	"sort"
	"strings"

	"cmdkit/guard"
	"cmdkit/outcome"
)

// runValidation executes the four structural passes in fixed order. Each
// pass reports every violation it finds; the sequence stops at the first
// pass that recorded any error. Defaults are applied afterwards regardless
// of the validation result, so the effective inputs are derived the same way
// on success and failure paths.
func (r *Run) runValidation(schema Schema) {
	passes := []func(Schema){
		r.validateSupportedInputs,
		r.validateBlankInputs,
		r.validateRequiredInputs,
		r.validateEnums,
	}
	for _, pass := range passes {
		pass(schema)
		if !r.oc.Success() {
			break
		}
	}
	r.applyDefaultInputs(schema)
}

// validateSupportedInputs rejects every supplied key that the schema does
// not declare.
func (r *Run) validateSupportedInputs(schema Schema) {
	for _, name := range r.suppliedNames() {
		if _, ok := schema[name]; !ok {
			r.oc.AddInputError(name, outcome.KeyUnsupported,
				fmt.Sprintf("%s is not a supported input", name))
		}
	}
}

// validateBlankInputs rejects blank values for every supplied, declared
// input unless its descriptor allows blanks.
func (r *Run) validateBlankInputs(schema Schema) {
	for _, name := range r.suppliedNames() {
		desc, ok := schema[name]
		if !ok {
			continue
		}
		if guard.IsBlank(r.raw[name]) && !desc.AllowBlank {
			r.oc.AddInputError(name, outcome.KeyBlank,
				fmt.Sprintf("%s is blank", name))
		}
	}
}

// validateRequiredInputs rejects every required input that is entirely
// absent from the supplied set. Absence is independent of blankness and of
// declared defaults.
func (r *Run) validateRequiredInputs(schema Schema) {
	for _, name := range schemaNames(schema) {
		if !schema[name].Required {
			continue
		}
		if _, supplied := r.raw[name]; !supplied {
			r.oc.AddInputError(name, outcome.KeyMissing,
				fmt.Sprintf("%s is missing", name))
		}
	}
}

// validateEnums rejects supplied enum values outside the declared OneOf set.
func (r *Run) validateEnums(schema Schema) {
	for _, name := range schemaNames(schema) {
		desc := schema[name]
		if desc.Type != KindEnum {
			continue
		}
		value, supplied := r.raw[name]
		if !supplied {
			continue
		}
		if !enumMember(value, desc.OneOf) {
			r.oc.AddInputError(name, outcome.KeyInvalid,
				fmt.Sprintf("%v is not a valid %s, must be one of: %s",
					value, name, joinValues(desc.OneOf)))
		}
	}
}

// applyDefaultInputs fills every declared key absent from the working copy
// with its declared default, or an explicit nil when none is declared. A
// supplied key, even with a falsy value, is never overwritten.
func (r *Run) applyDefaultInputs(schema Schema) {
	for _, name := range schemaNames(schema) {
		desc := schema[name]
		if desc.HasDefault {
			r.inputs.SetDefault(name, desc.Default)
		} else {
			r.inputs.SetDefault(name, nil)
		}
	}
}

func (r *Run) suppliedNames() []string {
	names := make([]string, 0, len(r.raw))
	for name := range r.raw {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func schemaNames(schema Schema) []string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func enumMember(value any, oneOf []any) bool {
	for _, allowed := range oneOf {
		if value == allowed {
			return true
		}
	}
	return false
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}
