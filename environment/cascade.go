package environment

import (
	"fmt"

	"github.com/kestrion/inject/inject"
)

// Cascade overlays override onto base: a leaf present in override
// replaces the corresponding leaf's raw value and/or default in base, a
// composite group merges recursively, and a name present only in one
// side is kept as-is. base is never mutated (§4.7 "cascading"). A name
// that changes shape between the two sides (value vs composite) is a
// configuration error (§4.8, Testable Property 10) rather than a
// silent replacement.
func Cascade(base, override *CompositeFactory) (*CompositeFactory, error) {
	merged := base.Clone().(*CompositeFactory)
	for _, name := range override.order {
		child := override.children[name]
		existing, ok := merged.children[name]
		if !ok {
			merged.addChild(child.Clone())
			continue
		}
		switch c := child.(type) {
		case *CompositeFactory:
			ec, ok := existing.(*CompositeFactory)
			if !ok {
				return nil, shapeMismatchError(name, existing, c)
			}
			nested, err := Cascade(ec, c)
			if err != nil {
				return nil, err
			}
			merged.addChild(nested)
		case *ValueFactory:
			ev, ok := existing.(*ValueFactory)
			if !ok {
				return nil, shapeMismatchError(name, existing, c)
			}
			merged.addChild(overlayValue(ev, c))
		}
	}
	return merged, nil
}

// overlayValue applies the type-specification cascading rule (§4.8): an
// override that declares no explicit type, no raw value, or no default
// inherits that part of the base leaf, so a child property file can set
// "port = 9090;" without repeating "port : int = 9090;", and a
// type-specification source's default survives underneath a later
// property-tree source that only supplies the actual value (Scenario F).
func overlayValue(existing, override *ValueFactory) Factory {
	merged := *override
	if merged.typeName == "" {
		merged.typeName = existing.typeName
	}
	if merged.rawValue == "" {
		merged.rawValue = existing.rawValue
	}
	if !merged.hasDefault {
		merged.hasDefault = existing.hasDefault
		merged.defaultRaw = existing.defaultRaw
	}
	return &merged
}

func shapeMismatchError(name string, existing, override Factory) error {
	return &inject.EnvironmentConfigurationError{
		Text: fmt.Sprintf(
			"property %q changes shape from %s to %s while cascading",
			name, factoryShape(existing), factoryShape(override),
		),
	}
}

func factoryShape(f Factory) string {
	if f.IsComposite() {
		return "composite"
	}
	return "value"
}
