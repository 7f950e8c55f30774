package environment

import (
	goerrors "github.com/alecthomas/errors"

	"github.com/kestrion/inject/inject"
)

type entryKind int

const (
	valueEntryKind entryKind = iota
	uniqueEntryKind
	compositeEntryKind
)

type entry struct {
	kind      entryKind
	value     any           // valueEntryKind
	prototype any           // uniqueEntryKind: the owned prototype to clone
	clone     func(any) any // uniqueEntryKind: the cloner operation
	composite *Properties   // compositeEntryKind
}

// Properties is the group singleton a composite property factory is
// bound as (§4.10 "EnvironmentProperties"): a nested, read-only
// container mapping a simple name to either a typed value, a unique
// (clone-on-access) value, or another Properties for a nested composite
// group. Children are iterated in declaration order.
type Properties struct {
	name    string
	entries map[string]entry
	order   []string
}

// Name returns the dotted path of this group ("server.http", for a
// group nested two levels deep).
func (p *Properties) Name() string { return p.name }

// Names returns the direct children of this group, in declaration order.
func (p *Properties) Names() []string {
	return append([]string{}, p.order...)
}

func (p *Properties) qualifiedName(name string) string {
	if p.name == "" {
		return name
	}
	return p.name + "." + name
}

func (p *Properties) noBinding(name string) error {
	return &inject.NoBindingError{Key: inject.BindingKey{Name: p.qualifiedName(name)}}
}

// HasComposite reports whether name is a nested composite group of p.
func (p *Properties) HasComposite(name string) bool {
	e, ok := p.entries[name]
	return ok && e.kind == compositeEntryKind
}

// GetComposite returns the nested group named name, or NoBindingError.
func (p *Properties) GetComposite(name string) (*Properties, error) {
	e, ok := p.entries[name]
	if !ok || e.kind != compositeEntryKind {
		return nil, p.noBinding(name)
	}
	return e.composite, nil
}

func (p *Properties) addEntry(name string, e entry) {
	if _, exists := p.entries[name]; !exists {
		p.order = append(p.order, name)
	}
	p.entries[name] = e
}

// HasValue reports whether name is a plain leaf value of type T under p.
func HasValue[T any](p *Properties, name string) bool {
	e, ok := p.entries[name]
	if !ok || e.kind != valueEntryKind {
		return false
	}
	_, ok = e.value.(T)
	return ok
}

// GetValue returns the leaf value named name as T. If absent and def is
// given, def[0] is returned instead of an error; otherwise a missing or
// mistyped leaf reports NoBindingError (§4.10, "NoBinding on miss").
func GetValue[T any](p *Properties, name string, def ...T) (T, error) {
	var zero T
	e, ok := p.entries[name]
	if !ok || e.kind != valueEntryKind {
		if len(def) > 0 {
			return def[0], nil
		}
		return zero, p.noBinding(name)
	}
	v, ok := e.value.(T)
	if !ok {
		if len(def) > 0 {
			return def[0], nil
		}
		return zero, p.noBinding(name)
	}
	return v, nil
}

// HasUnique reports whether name is a unique (clone-on-access) leaf of
// type T under p.
func HasUnique[T any](p *Properties, name string) bool {
	e, ok := p.entries[name]
	if !ok || e.kind != uniqueEntryKind {
		return false
	}
	_, ok = e.prototype.(T)
	return ok
}

// GetUnique clones the unique leaf named name into a freshly owned T,
// via the entry's registered cloner operation.
func GetUnique[T any](p *Properties, name string) (T, error) {
	var zero T
	e, ok := p.entries[name]
	if !ok || e.kind != uniqueEntryKind {
		return zero, p.noBinding(name)
	}
	cloned := e.clone(e.prototype)
	v, ok := cloned.(T)
	if !ok {
		return zero, goerrors.Errorf("environment: %s clones to %T, want %T", p.qualifiedName(name), cloned, zero)
	}
	return v, nil
}

// buildProperties walks f recursively into a Properties tree rooted at
// path: every value leaf becomes a value or unique entry, every nested
// composite becomes a nested Properties entry, so a parent group's
// nested groups are reachable directly from it (§4.10) and not only
// through their own dotted-path singleton binding.
func buildProperties(f *CompositeFactory, path string) (*Properties, error) {
	p := &Properties{name: path, entries: make(map[string]entry)}
	for _, name := range f.order {
		child := f.children[name]
		childPath := name
		if path != "" {
			childPath = path + "." + name
		}
		switch c := child.(type) {
		case *ValueFactory:
			v, err := c.Build()
			if err != nil {
				return nil, err
			}
			if c.unique() {
				p.addEntry(name, entry{kind: uniqueEntryKind, prototype: v, clone: cloneURI})
			} else {
				p.addEntry(name, entry{kind: valueEntryKind, value: v})
			}
		case *CompositeFactory:
			nested, err := buildProperties(c, childPath)
			if err != nil {
				return nil, err
			}
			p.addEntry(name, entry{kind: compositeEntryKind, composite: nested})
		}
	}
	return p, nil
}
