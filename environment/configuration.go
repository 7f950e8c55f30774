package environment

import (
	goerrors "github.com/alecthomas/errors"

	"github.com/kestrion/inject/inject"
)

// Configuration is the public façade over the environment configuration
// pipeline (§4.6): a cascaded factory tree plus the builder-synthesis
// step (§4.9) that turns it into bindings an Injector can seal.
//
// Configuration satisfies inject.Configuration, so it installs into
// Injector.Create like any other Configuration: every leaf value is
// bound under its dotted path name, and every composite group is bound
// as a shared *Properties singleton under that same path.
type Configuration struct {
	root *CompositeFactory
}

// NewConfiguration cascades sources left-to-right (later sources
// override earlier ones) into a single Configuration. At least one
// source is required.
func NewConfiguration(sources ...*CompositeFactory) (*Configuration, error) {
	if len(sources) == 0 {
		return nil, &inject.EnvironmentConfigurationError{Text: "no property sources given"}
	}
	merged := sources[0]
	for _, s := range sources[1:] {
		next, err := Cascade(merged, s)
		if err != nil {
			return nil, err
		}
		merged = next
	}
	return &Configuration{root: merged}, nil
}

// Configure implements inject.Configuration. The synthetic file-level
// root itself is never bound; only the named groups and values it
// directly contains are, so binding paths read as "server.port" rather
// than being qualified by whichever file happened to declare them.
func (c *Configuration) Configure(b inject.Binder) error {
	for _, name := range c.root.order {
		switch child := c.root.children[name].(type) {
		case *CompositeFactory:
			if err := bindGroup(b, child, ""); err != nil {
				return err
			}
		case *ValueFactory:
			if err := bindValue(b, child, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

func bindGroup(b inject.Binder, f *CompositeFactory, parentPath string) error {
	path := f.name
	if parentPath != "" {
		path = parentPath + "." + f.name
	}

	for _, name := range f.order {
		switch child := f.children[name].(type) {
		case *CompositeFactory:
			if err := bindGroup(b, child, path); err != nil {
				return err
			}
		case *ValueFactory:
			if err := bindValue(b, child, path); err != nil {
				return err
			}
		}
	}

	group, groupPath := f, path
	b.Bind(inject.BindingKey{Type: propertiesType, Name: path}, func(bb *inject.BindingBuilder) {
		bb.ToSingleton(func() (*Properties, error) {
			return buildProperties(group, groupPath)
		})
	})
	return nil
}

func bindValue(b inject.Binder, f *ValueFactory, parentPath string) error {
	path := f.name
	if parentPath != "" {
		path = parentPath + "." + f.name
	}

	v, err := f.Build()
	if err != nil {
		return goerrors.Errorf("environment: build %s: %w", path, err)
	}

	key := inject.BindingKey{Name: path}
	if f.unique() {
		key.Type = uriPointerType
		b.Bind(key, func(bb *inject.BindingBuilder) {
			bb.ToUniqueClone(v, cloneURI)
		})
		return nil
	}

	key.Type = typeOfValue(v)
	b.Bind(key, func(bb *inject.BindingBuilder) {
		bb.ToValue(v)
	})
	return nil
}
