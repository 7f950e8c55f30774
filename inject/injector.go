package inject

import (
	"reflect"

	goerrors "github.com/alecthomas/errors"
	"github.com/kestrion/inject/digraph"
	"github.com/kestrion/inject/logsink"
)

// Injector is a sealed, immutable binding table (§4.4). It is built once
// by Create or CreateChild and never mutated afterwards; CreateChild
// layers a new, independent Injector on top of a parent without touching
// the parent's own bindings.
type Injector struct {
	parent   *Injector
	bindings map[BindingKey]binding
	order    []BindingKey // topological instantiation order, dependencies first

	onStart []func() error
	onClose []func() error

	sink logsink.Sink
}

// Option configures an Injector at Create/CreateChild time.
type Option func(*injectorOptions)

type injectorOptions struct {
	sink logsink.Sink
}

// WithSink overrides the default logsink.Sink used for seal-time and
// lifecycle diagnostics.
func WithSink(sink logsink.Sink) Option {
	return func(o *injectorOptions) { o.sink = sink }
}

// Create builds a root Injector by running every Configuration's
// Configure method, sealing the resulting binding set, validating the
// dependency graph, and eagerly instantiating eager singletons in
// dependency order (§4.4 steps 1-7).
func Create(configs []Configuration, opts ...Option) (*Injector, error) {
	return seal(nil, configs, opts)
}

// CreateChild extends parent with additional or overriding bindings
// without mutating parent: a lookup that misses in the child falls back
// to parent at query time.
func (inj *Injector) CreateChild(configs []Configuration, opts ...Option) (*Injector, error) {
	return seal(inj, configs, opts)
}

func seal(parent *Injector, configs []Configuration, opts []Option) (*Injector, error) {
	options := &injectorOptions{sink: logsink.Default()}
	for _, o := range opts {
		o(options)
	}

	b := newBinder()
	for _, cfg := range configs {
		if err := b.Install(cfg); err != nil {
			return nil, goerrors.Errorf("inject: configure: %w", err)
		}
	}

	inj := &Injector{
		parent:   parent,
		bindings: b.bindings,
		onStart:  b.onStart,
		onClose:  b.onClose,
		sink:     options.sink,
	}

	for key, bnd := range b.bindings {
		if fb, ok := bnd.(*failedBinding); ok {
			return nil, goerrors.Errorf("inject: binding %s: %w", key, fb.err)
		}
	}

	graph := digraph.New[BindingKey]()
	for key := range inj.bindings {
		graph.AddVertex(key)
	}
	for key, bnd := range inj.bindings {
		for _, dep := range bnd.enumerateDependencies() {
			if dep.Type == injectorType {
				// Served directly by getByKey; a Shared-meta request is
				// rejected by requestsSharedInjector below.
				continue
			}
			resolved := inj.promote(dep)
			if _, ok := inj.resolveLocal(resolved); !ok && !inj.parentSatisfies(resolved) {
				return nil, goerrors.Errorf("inject: seal: %w", &MissingDependencyError{Dependent: key, Independent: dep})
			}
			if _, ok := inj.resolveLocal(resolved); ok {
				graph.AddDependency(key, resolved)
			}
		}
		if hasCyclic, cycleKey := requestsSharedInjector(key, bnd); hasCyclic {
			return nil, goerrors.Errorf("inject: seal: %w", &SharedInjectorError{Key: cycleKey})
		}
	}

	if has, cycle := graph.HasCycles(); has {
		return nil, goerrors.Errorf("inject: seal: %w", &CyclicDependencyError{Path: cycle})
	}

	order, err := graph.DependencyOrder()
	if err != nil {
		return nil, goerrors.Errorf("inject: seal: %w", err)
	}
	inj.order = order

	if inj.sink.Enabled(logsink.LevelDebug) {
		inj.sink.Log(logsink.LevelDebug, "inject: sealed", "bindings", len(inj.bindings))
	}

	for _, key := range inj.order {
		if bnd, ok := inj.bindings[key]; ok {
			if err := bnd.instantiateIfEager(inj); err != nil {
				return nil, goerrors.Errorf("inject: eager instantiate %s: %w", key, err)
			}
		}
	}

	for _, fn := range inj.onStart {
		if err := fn(); err != nil {
			return nil, goerrors.Errorf("inject: on-start callback: %w", err)
		}
	}

	return inj, nil
}

// requestsSharedInjector reports whether bnd declares a Shared-meta
// dependency on the Injector type itself, which would make the injector
// its own owner (§4.2, illegal).
func requestsSharedInjector(key BindingKey, bnd binding) (bool, BindingKey) {
	for _, dep := range bnd.enumerateDependencies() {
		if dep.Type == injectorType && dep.Meta == SharedMeta {
			return true, key
		}
	}
	return false, BindingKey{}
}

// promote resolves a possibly-weak dependency or query key to the Shared
// final key of its owning binding (§3 "promotion", §4.4 step 4): a
// Value/Unique/Reference key with no binding of its own meta-type, but a
// Shared binding over the same (type, name), resolves to that Shared
// key instead. A key already satisfied at its own meta-type, or already
// Shared, is returned unchanged.
func (inj *Injector) promote(key BindingKey) BindingKey {
	if key.Meta == SharedMeta {
		return key
	}
	if _, ok := inj.resolveLocal(key); ok || inj.parentSatisfies(key) {
		return key
	}
	shared := key.withMeta(SharedMeta)
	if _, ok := inj.resolveLocal(shared); ok || inj.parentSatisfies(shared) {
		return shared
	}
	return key
}

func (inj *Injector) resolveLocal(key BindingKey) (binding, bool) {
	bnd, ok := inj.bindings[key]
	return bnd, ok
}

func (inj *Injector) parentSatisfies(key BindingKey) bool {
	for p := inj.parent; p != nil; p = p.parent {
		if _, ok := p.bindings[key]; ok {
			return true
		}
	}
	return false
}

// resolve walks child-to-parent looking for a binding and the injector
// that owns it, since a thread-local store and an eager-instantiation
// pass belong to the injector that declared the binding.
func (inj *Injector) resolve(key BindingKey) (*Injector, binding, bool) {
	for i := inj; i != nil; i = i.parent {
		if bnd, ok := i.bindings[key]; ok {
			return i, bnd, true
		}
	}
	return nil, nil, false
}

func (inj *Injector) getByKey(key BindingKey) (any, error) {
	if key.Type == injectorType {
		return inj, nil
	}
	owner, bnd, ok := inj.resolve(inj.promote(key))
	if !ok {
		return nil, goerrors.Errorf("inject: get: %w", &NoBindingError{Key: key})
	}
	v, err := bnd.produce(owner)
	if err != nil {
		return nil, goerrors.Errorf("inject: produce %s: %w", key, err)
	}
	return v, nil
}

// GetValue resolves the Value-meta binding for T under name.
func GetValue[T any](inj *Injector, name string) (T, error) {
	return getTyped[T](inj, BindingKey{Meta: ValueMeta, Type: typeOf[T](), Name: name})
}

// GetUnique resolves the Unique-meta binding for T under name, returning
// a freshly owned instance.
func GetUnique[T any](inj *Injector, name string) (T, error) {
	return getTyped[T](inj, BindingKey{Meta: UniqueMeta, Type: typeOf[T](), Name: name})
}

// GetReference resolves the Reference-meta binding for T under name.
func GetReference[T any](inj *Injector, name string) (T, error) {
	return getTyped[T](inj, BindingKey{Meta: ReferenceMeta, Type: typeOf[T](), Name: name})
}

// GetShared resolves the Shared-meta binding for T under name (any of
// EagerSingleton, LazySingleton, ThreadLocalSingleton, ProvidedSingleton,
// ProvidingSingleton).
func GetShared[T any](inj *Injector, name string) (T, error) {
	return getTyped[T](inj, BindingKey{Meta: SharedMeta, Type: typeOf[T](), Name: name})
}

// GetInstance resolves key without meta-type narrowing, for callers that
// already hold a fully formed BindingKey.
func GetInstance[T any](inj *Injector, key BindingKey) (T, error) {
	return getTyped[T](inj, key)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func getTyped[T any](inj *Injector, key BindingKey) (T, error) {
	var zero T
	v, err := inj.getByKey(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, goerrors.Errorf("inject: %s produced %T, want %T", key, v, zero)
	}
	return t, nil
}

// Close runs every registered OnClose callback in reverse registration
// order and clears any goroutine-local storage this injector owns.
func (inj *Injector) Close() error {
	var firstErr error
	for i := len(inj.onClose) - 1; i >= 0; i-- {
		if err := inj.onClose[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, bnd := range inj.bindings {
		if tl, ok := bnd.(*threadLocalBinding); ok {
			tl.store.Clear()
		}
	}
	return firstErr
}

// Validate checks that every parameter of fn (other than a *Injector
// parameter, in any position) resolves to a binding, without calling fn.
func (inj *Injector) Validate(fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return goerrors.Errorf("inject: Validate requires a function, got %T", fn)
	}
	ft := fv.Type()
	for i := 0; i < ft.NumIn(); i++ {
		at := ft.In(i)
		if at == injectorType {
			continue
		}
		key := BindingKey{Meta: ValueMeta, Type: at}
		if _, _, ok := inj.resolve(inj.promote(key)); !ok {
			return goerrors.Errorf("inject: validate: %w", &NoBindingError{Key: key})
		}
	}
	return nil
}

// Call invokes fn, resolving its arguments from the injector exactly as
// a ProvidingValue binding's provider function would be.
func (inj *Injector) Call(fn any) ([]any, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, goerrors.Errorf("inject: Call requires a function, got %T", fn)
	}
	out, err := reflectedCall(inj, fv)
	if err != nil {
		return nil, err
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}
