package environment

import (
	"io/fs"

	goerrors "github.com/alecthomas/errors"

	"github.com/kestrion/inject/property"
)

// Load parses the named source as a property tree (§4.7 "ingestion"): an
// actual override value for each leaf it declares, resolving "include"
// directives relative to fsys. A property-tree source always outranks a
// type-specification source's default when the two are cascaded
// together (§4.8, Scenario F).
func Load(fsys fs.FS, name string) (*CompositeFactory, error) {
	return load(fsys, name, false)
}

// LoadTypeSpec parses the named source as a type specification (§6
// "PropertyBindingBuilderFactory"): each leaf's "= <value>" tail is
// recorded as a fallback default rather than an actual property, so it
// only surfaces when no property-tree source supplies that leaf.
func LoadTypeSpec(fsys fs.FS, name string) (*CompositeFactory, error) {
	return load(fsys, name, true)
}

func load(fsys fs.FS, name string, asDefault bool) (*CompositeFactory, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, goerrors.Errorf("environment: read %s: %w", name, err)
	}
	file, err := property.Parse(name, string(data))
	if err != nil {
		return nil, err
	}
	root := newComposite(name)
	if err := addNodes(fsys, root, file.Nodes, asDefault); err != nil {
		return nil, err
	}
	return root, nil
}

func addNodes(fsys fs.FS, parent *CompositeFactory, nodes []*property.Node, asDefault bool) error {
	for _, n := range nodes {
		switch {
		case n.Composite != nil:
			child := newComposite(n.Composite.Name)
			if err := addNodes(fsys, child, n.Composite.Children, asDefault); err != nil {
				return err
			}
			parent.addChild(child)
		case n.Value != nil:
			vf := &ValueFactory{name: n.Value.Name, typeName: n.Value.Type}
			if asDefault {
				vf.hasDefault = true
				vf.defaultRaw = n.Value.Value
			} else {
				vf.rawValue = n.Value.Value
			}
			parent.addChild(vf)
		case n.Include != nil:
			included, err := load(fsys, n.Include.Path, asDefault)
			if err != nil {
				return err
			}
			for _, name := range included.order {
				parent.addChild(included.children[name])
			}
		}
	}
	return nil
}
