// Package outcome holds the result of running a command: a success flag, a
// single result slot, and an append-only error ledger grouped by category.
// It knows nothing about schemas or execution order.
package outcome

import "strings"

// Entry is one recorded error: a symbolic key plus its human-readable message.
type Entry struct {
	Key     Key    `json:"key"`
	Message string `json:"message"`
}

type record struct {
	category string
	entry    Entry
}

// Outcome accumulates typed errors and, on a fully successful run, exactly one
// result value. Errors are only appended, never rewritten or deduplicated.
type Outcome struct {
	ledger    []record
	result    any
	hasResult bool
}

// New returns an empty outcome with no errors and no result.
func New() *Outcome {
	return &Outcome{}
}

// AddInputError appends (key, message) to the given category, creating the
// category if absent. The category is normally an input name.
func (o *Outcome) AddInputError(category string, key Key, message string) {
	o.ledger = append(o.ledger, record{category: category, entry: Entry{Key: key, Message: message}})
}

// AddRuntimeError appends (key, message) under the reserved runtime category,
// marking the error as originating from domain logic rather than input shape.
func (o *Outcome) AddRuntimeError(key Key, message string) {
	o.AddInputError(CategoryRuntime, key, message)
}

// SetResult stores the successful result. The run pipeline never calls it once
// errors exist; a call after errors have been recorded is ignored so a failed
// outcome can never report a result.
func (o *Outcome) SetResult(v any) {
	if len(o.ledger) > 0 {
		return
	}
	o.result = v
	o.hasResult = true
}

// Success reports whether no errors have been recorded.
func (o *Outcome) Success() bool {
	return len(o.ledger) == 0
}

// Result returns the stored result and whether one was set. A result is only
// ever set on a fully successful run.
func (o *Outcome) Result() (any, bool) {
	return o.result, o.hasResult
}

// Errors returns the full ledger grouped by category, entries in insertion
// order within each category. The returned map is a copy.
func (o *Outcome) Errors() map[string][]Entry {
	out := make(map[string][]Entry)
	for _, r := range o.ledger {
		out[r.category] = append(out[r.category], r.entry)
	}
	return out
}

// InputErrors returns every category except the reserved runtime category.
func (o *Outcome) InputErrors() map[string][]Entry {
	out := make(map[string][]Entry)
	for _, r := range o.ledger {
		if r.category == CategoryRuntime {
			continue
		}
		out[r.category] = append(out[r.category], r.entry)
	}
	return out
}

// RuntimeErrors returns the entries recorded under the runtime category, or
// an empty slice.
func (o *Outcome) RuntimeErrors() []Entry {
	var out []Entry
	for _, r := range o.ledger {
		if r.category == CategoryRuntime {
			out = append(out, r.entry)
		}
	}
	return out
}

// SymbolicErrors returns category -> ordered symbolic keys.
func (o *Outcome) SymbolicErrors() map[string][]Key {
	out := make(map[string][]Key)
	for _, r := range o.ledger {
		out[r.category] = append(out[r.category], r.entry.Key)
	}
	return out
}

// EnglishErrors returns category -> ordered human-readable messages.
func (o *Outcome) EnglishErrors() map[string][]string {
	out := make(map[string][]string)
	for _, r := range o.ledger {
		out[r.category] = append(out[r.category], r.entry.Message)
	}
	return out
}

// ErrorSentence joins every message, in insertion order across all
// categories, into a single sentence terminated with a period.
func (o *Outcome) ErrorSentence() string {
	if len(o.ledger) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(o.ledger))
	for _, r := range o.ledger {
		msgs = append(msgs, r.entry.Message)
	}
	return strings.Join(msgs, ", and ") + "."
}

// NotFound reports whether any entry anywhere carries the not_found key.
// Callers use it to special-case "referenced entity absent" failures.
func (o *Outcome) NotFound() bool {
	for _, r := range o.ledger {
		if r.entry.Key == KeyNotFound {
			return true
		}
	}
	return false
}
