package command

// Kind is the semantic tag of a declared input. Only KindEnum drives a
// validation pass today; the rest are reserved for type checks.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindDate   Kind = "date"
	KindEnum   Kind = "enum"
	KindObject Kind = "object"
	KindArray  Kind = "array"
)

// Descriptor declares the shape of one input.
type Descriptor struct {
	// Type is the semantic tag; KindEnum requires OneOf.
	Type Kind

	// Required makes the complete absence of the input an error. A present
	// but blank required input is a blank error, not a missing one.
	Required bool

	// AllowBlank permits blank values (empty/whitespace string, empty
	// slice or map, nil). Blank values are rejected by default.
	AllowBlank bool

	// Default is substituted when the input is absent. HasDefault
	// distinguishes "default is nil" from "no default declared"; without
	// it an absent input is filled with an explicit nil.
	Default    any
	HasDefault bool

	// OneOf lists the permitted values for KindEnum, in declared order.
	OneOf []any
}

// Schema maps input names to their descriptors. It must be attached at the
// command type level (a package-level variable returned by Schema()) and is
// treated as immutable for the lifetime of the command type.
type Schema map[string]Descriptor

// Inputs is the raw keyed input structure a caller supplies to a run.
type Inputs map[string]any
