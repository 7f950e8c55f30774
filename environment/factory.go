// Package environment implements the environment configuration pipeline
// (§4.6-4.10): ingesting parsed property files into a factory tree,
// cascading one tree over another, and synthesising an inject.Configuration
// that binds every leaf value and every composite group's
// EnvironmentProperties singleton.
package environment

import (
	"fmt"

	"github.com/kestrion/inject/inject"
	"github.com/kestrion/inject/convert"
)

// Factory is one node of a property factory tree (§6
// "PropertyBindingBuilderFactory"): either an intermediate Composite
// group or a leaf Value.
type Factory interface {
	Name() string
	IsComposite() bool
	Clone() Factory
}

// ValueFactory is a leaf factory: a single typed property value, with an
// optional default used when the cascaded raw value is empty.
type ValueFactory struct {
	name       string
	typeName   string
	rawValue   string
	hasDefault bool
	defaultRaw string
}

func (f *ValueFactory) Name() string      { return f.name }
func (f *ValueFactory) IsComposite() bool { return false }

func (f *ValueFactory) Clone() Factory {
	c := *f
	return &c
}

// unique reports whether this leaf's registered type owns a pointer
// value and so should be bound as a Unique-meta clone rather than a
// plain Value copy (§6 "cloner operation"); uri is the only registered
// type shaped this way today.
func (f *ValueFactory) unique() bool {
	return f.typeName == "uri"
}

// Build converts the leaf's raw text into a typed Go value via the
// convert registry, falling back to the default when no raw value was
// cascaded in and a default exists.
func (f *ValueFactory) Build() (any, error) {
	raw := f.rawValue
	if raw == "" && f.hasDefault {
		raw = f.defaultRaw
	}
	typeName := f.typeName
	if typeName == "" {
		typeName = "string"
	}
	conv, ok := convert.Lookup(typeName)
	if !ok {
		return nil, &inject.EnvironmentConfigurationError{
			Text: fmt.Sprintf("unregistered property type %q for %s", typeName, f.name),
		}
	}
	return conv(raw)
}

// CompositeFactory is an intermediate, named group of child factories,
// bound as an EnvironmentProperties group singleton (§4.10).
type CompositeFactory struct {
	name     string
	children map[string]Factory
	order    []string
}

func newComposite(name string) *CompositeFactory {
	return &CompositeFactory{name: name, children: map[string]Factory{}}
}

func (f *CompositeFactory) Name() string      { return f.name }
func (f *CompositeFactory) IsComposite() bool { return true }

func (f *CompositeFactory) Clone() Factory {
	clone := newComposite(f.name)
	for _, name := range f.order {
		clone.addChild(f.children[name].Clone())
	}
	return clone
}

// addChild appends child, replacing any existing child of the same name
// in place so order is preserved across an override.
func (f *CompositeFactory) addChild(child Factory) {
	name := child.Name()
	if _, exists := f.children[name]; !exists {
		f.order = append(f.order, name)
	}
	f.children[name] = child
}
