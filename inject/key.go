package inject

import (
	"reflect"

	"github.com/alecthomas/repr"
)

// MetaType is the ownership contract a Binding delivers to a caller.
type MetaType uint8

const (
	// unsetMeta marks a BindingKey under construction by a BindingBuilder,
	// before its terminal To* call fixes the shape. It never appears in a
	// sealed Injector's binding table.
	unsetMeta MetaType = iota
	// ValueMeta bindings return a freshly owned value per call.
	ValueMeta
	// UniqueMeta bindings return a freshly owned heap instance per call.
	UniqueMeta
	// ReferenceMeta bindings alias a caller-owned value; the injector never owns it.
	ReferenceMeta
	// SharedMeta bindings return a shared, process- or goroutine-scoped owner.
	SharedMeta
)

func (m MetaType) String() string {
	switch m {
	case ValueMeta:
		return "Value"
	case UniqueMeta:
		return "Unique"
	case ReferenceMeta:
		return "Reference"
	case SharedMeta:
		return "Shared"
	default:
		return "Unset"
	}
}

// BindingKey identifies a binding by (meta-type, type identity, name).
//
// Two keys with different meta-types are different keys even when their
// type and name match: this lets a single declared type support, for
// example, both a Value binding and a Shared binding at once.
//
// reflect.Type values are comparable and unique per declared type within
// a process, so BindingKey is comparable and usable directly as a map key.
type BindingKey struct {
	Meta MetaType
	Type reflect.Type
	Name string
}

// KeyOf builds a weak BindingKey (MetaType unset) for T under the given name.
// BindingBuilder assigns the MetaType once its terminal To* call runs.
func KeyOf[T any](name string) BindingKey {
	return BindingKey{Type: reflect.TypeOf((*T)(nil)).Elem(), Name: name}
}

// withMeta returns a copy of the key promoted to the given meta-type.
func (k BindingKey) withMeta(m MetaType) BindingKey {
	k.Meta = m
	return k
}

// String renders the key for diagnostics (duplicate/missing/cycle errors).
func (k BindingKey) String() string {
	typeName := "<nil>"
	if k.Type != nil {
		typeName = k.Type.String()
	}
	if k.Name == "" {
		return repr.String(k.Meta.String()) + " " + typeName
	}
	return repr.String(k.Meta.String()) + " " + typeName + " named " + repr.String(k.Name)
}
