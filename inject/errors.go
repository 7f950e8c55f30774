package inject

// DuplicateBindingError is returned when two bindings register the same
// final BindingKey.
type DuplicateBindingError struct {
	Key BindingKey
}

func (e *DuplicateBindingError) Error() string {
	return "inject: duplicate binding for " + e.Key.String()
}

// NoBindingError is returned when a query has no matching binding and no
// parent injector to fall back to.
type NoBindingError struct {
	Key BindingKey
}

func (e *NoBindingError) Error() string {
	return "inject: no binding for " + e.Key.String()
}

// MissingDependencyError is returned when a binding declares a dependency
// that no binding in the sealed injector satisfies.
type MissingDependencyError struct {
	Dependent   BindingKey
	Independent BindingKey
}

func (e *MissingDependencyError) Error() string {
	return "inject: " + e.Independent.String() + " is required by " + e.Dependent.String() + " but has no binding"
}

// CyclicDependencyError is returned when the binding graph contains a cycle.
type CyclicDependencyError struct {
	Path []BindingKey
}

func (e *CyclicDependencyError) Error() string {
	msg := "inject: cyclic dependency: "
	for i, k := range e.Path {
		if i > 0 {
			msg += " -> "
		}
		msg += k.String()
	}
	return msg
}

// SharedInjectorError is returned when a binding asks for a shared owner
// of the Injector itself, which would create a self-owning cycle.
type SharedInjectorError struct {
	Key BindingKey
}

func (e *SharedInjectorError) Error() string {
	return "inject: " + e.Key.String() + " requests shared ownership of the injector itself"
}

// EnvironmentConfigurationError reports an ingestion or cascading failure
// in the environment configuration pipeline (see package environment).
type EnvironmentConfigurationError struct {
	Text string
}

func (e *EnvironmentConfigurationError) Error() string {
	return "inject: environment configuration: " + e.Text
}
