package croft

import (
	"fmt"
	"reflect"
)

// Extensions is a type-keyed map for passing opaque values across layers. Both
// request and response heads carry one. A value's dynamic type is its key, so
// each type occupies a single slot.
type Extensions struct {
	m map[reflect.Type]any
}

// NewExtensions inits an empty extension map.
func NewExtensions() *Extensions {
	return &Extensions{}
}

// Set stores the value under its dynamic type, replacing any previous value of
// the same type.
func (e *Extensions) Set(val any) {
	if e.m == nil {
		e.m = make(map[reflect.Type]any)
	}

	e.m[reflect.TypeOf(val)] = val
}

// Insert stores the value under its dynamic type. Inserting a second value of a
// type that is already present is a composition bug, not a request-time error,
// so it aborts with an assertion violation.
func (e *Extensions) Insert(val any) {
	typ := reflect.TypeOf(val)
	if e.m != nil {
		if _, exists := e.m[typ]; exists {
			panic(assertionViolation{fmt.Sprintf("croft: extension of type %s inserted twice", typ)})
		}
	}

	e.Set(val)
}

// Len returns the number of stored extension values.
func (e *Extensions) Len() int {
	if e == nil {
		return 0
	}

	return len(e.m)
}

// Clone returns an owned shallow copy.
func (e *Extensions) Clone() *Extensions {
	clone := NewExtensions()
	if e == nil || len(e.m) == 0 {
		return clone
	}

	clone.m = make(map[reflect.Type]any, len(e.m))
	for typ, val := range e.m {
		clone.m[typ] = val
	}

	return clone
}

// ExtensionFrom returns the stored value of type T, if any.
func ExtensionFrom[T any](e *Extensions) (T, bool) {
	var zero T
	if e == nil || e.m == nil {
		return zero, false
	}

	val, ok := e.m[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}

	return val.(T), true
}

// TakeExtension removes and returns the stored value of type T, if any.
func TakeExtension[T any](e *Extensions) (T, bool) {
	var zero T
	if e == nil || e.m == nil {
		return zero, false
	}

	typ := reflect.TypeOf(zero)

	val, ok := e.m[typ]
	if !ok {
		return zero, false
	}

	delete(e.m, typ)

	return val.(T), true
}

// SharedExtensions is either a borrowed view of a resource's extension set,
// valid for the duration of the request, or an owned copy. Callers that need
// the set to outlive the dispatch (e.g. handing it to a spawned goroutine)
// must call [SharedExtensions.ToOwned] first.
type SharedExtensions struct {
	ext   *Extensions
	owned bool
}

func shareExtensions(e *Extensions) SharedExtensions {
	return SharedExtensions{ext: e}
}

// View returns the underlying extension set for reading. Mutating it through
// the view is not allowed while borrowed; take ownership first.
func (s SharedExtensions) View() *Extensions { return s.ext }

// IsOwned reports whether the set is an owned copy.
func (s SharedExtensions) IsOwned() bool { return s.owned }

// ToOwned returns a SharedExtensions backed by an owned copy of the set. An
// already owned set is returned as is.
func (s SharedExtensions) ToOwned() SharedExtensions {
	if s.owned {
		return s
	}

	return SharedExtensions{ext: s.ext.Clone(), owned: true}
}

// assertionViolation marks panics that signal composition bugs. Recovery
// middleware must not convert these into error responses.
type assertionViolation struct{ msg string }

func (v assertionViolation) String() string { return v.msg }

// IsAssertionViolation reports whether a recovered panic value signals a
// composition bug that should keep propagating.
func IsAssertionViolation(v any) bool {
	_, ok := v.(assertionViolation)
	return ok
}
