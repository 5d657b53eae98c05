// Package guard provides the defensive input map used by the command
// pipeline: a deep copy of the caller's raw inputs with strict access, so
// "absent" and "present with an empty value" stay distinguishable.
package guard

import (
	"fmt"
	"reflect"
	"strings"
)

// Map is a working copy of a keyed input structure. Reading a key that was
// never set is a programming error and panics; use Lookup or Has for guarded
// checks.
type Map struct {
	values map[string]any
}

// Copy deep-copies src into a new Map. Mutations of the returned map never
// affect src, and vice versa.
func Copy(src map[string]any) *Map {
	values := make(map[string]any, len(src))
	for k, v := range src {
		values[k] = deepCopy(v)
	}
	return &Map{values: values}
}

// Get returns the value for name. It panics if name was never set.
func (m *Map) Get(name string) any {
	v, ok := m.values[name]
	if !ok {
		panic(fmt.Sprintf("guard: input %q was never set", name))
	}
	return v
}

// Lookup returns the value for name and whether it was set.
func (m *Map) Lookup(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Has reports whether name was set, even to nil.
func (m *Map) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Set stores value under name, overwriting any previous value.
func (m *Map) Set(name string, value any) {
	m.values[name] = value
}

// SetDefault stores value under name only if name was never set. A present
// value, even a falsy one, is never overwritten.
func (m *Map) SetDefault(name string, value any) {
	if _, ok := m.values[name]; !ok {
		m.values[name] = value
	}
}

// Len returns the number of set keys.
func (m *Map) Len() int {
	return len(m.values)
}

// Keys returns the set key names in unspecified order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

// Raw returns a deep copy of the current contents as a plain map.
func (m *Map) Raw() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = deepCopy(v)
	}
	return out
}

// IsBlank reports whether v is blank: nil, an empty or whitespace-only
// string, an empty slice or array, or an empty map. A NaN float is a present
// value, not a blank one.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		// NaN included: a not-a-number float is still a present value.
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsBlank(rv.Elem().Interface())
	}
	return false
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}
