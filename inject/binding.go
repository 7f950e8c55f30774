package inject

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kestrion/inject/inject/internal/golocal"
)

var injectorType = reflect.TypeOf((*Injector)(nil))
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor is the dependency-enumeration half of the generated-code
// contract (§6 "Injectable class contract"): Dependencies enumerates the
// keys a type's construction function will consult. The interface
// declares only Dependencies; the construction function (shape
// func(*Injector) (T, error)) is passed separately to
// BindingBuilder.ToInstantiating. Declaring dependencies this way
// (rather than via a reflected function signature) lets a type declare
// named dependencies.
type Constructor interface {
	Dependencies() []BindingKey
}

// DependenciesOf returns c.Dependencies(), letting a BindingBuilder.ToInstantiating
// caller reuse a generated type's declared dependency list instead of
// repeating it by hand.
func DependenciesOf(c Constructor) []BindingKey {
	return c.Dependencies()
}

// binding is the capability set every binding variant implements (§4.2).
type binding interface {
	finalKey() BindingKey
	enumerateDependencies() []BindingKey
	produce(inj *Injector) (any, error)
	instantiateIfEager(inj *Injector) error
	isThreadLocal() bool
}

// reflectedCall invokes fn, resolving each argument from inj by Value
// meta-type, except a *Injector argument which is passed directly
// (weak self-reference, §4.4 step 5, §9 "Shared self-reference").
func reflectedCall(inj *Injector, fn reflect.Value) ([]reflect.Value, error) {
	ft := fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		at := ft.In(i)
		if at == injectorType {
			args[i] = reflect.ValueOf(inj)
			continue
		}
		v, err := inj.getByKey(BindingKey{Meta: ValueMeta, Type: at})
		if err != nil {
			return nil, err
		}
		args[i] = reflect.ValueOf(v)
	}
	out := fn.Call(args)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	return out, nil
}

// dependenciesOf returns the Value-meta dependency keys a reflected
// function requires, skipping *Injector parameters.
func dependenciesOf(ft reflect.Type) []BindingKey {
	deps := make([]BindingKey, 0, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		at := ft.In(i)
		if at == injectorType {
			continue
		}
		deps = append(deps, BindingKey{Meta: ValueMeta, Type: at})
	}
	return deps
}

func validateProviderFunc(fn any) (reflect.Value, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("inject: provider must be a function, got %T", fn)
	}
	ft := fv.Type()
	switch ft.NumOut() {
	case 1, 2:
		if ft.NumOut() == 2 && ft.Out(1) != errorType {
			return reflect.Value{}, fmt.Errorf("inject: provider must return (<type>[, error]), got %s", ft)
		}
	default:
		return reflect.Value{}, fmt.Errorf("inject: provider must return (<type>[, error]), got %s", ft)
	}
	return fv, nil
}

// --- PrototypeValue: a literal value, copied out on every produce call. ---

type prototypeValueBinding struct {
	key   BindingKey
	value any
}

func (b *prototypeValueBinding) finalKey() BindingKey                  { return b.key }
func (b *prototypeValueBinding) enumerateDependencies() []BindingKey    { return nil }
func (b *prototypeValueBinding) instantiateIfEager(*Injector) error     { return nil }
func (b *prototypeValueBinding) isThreadLocal() bool                   { return false }
func (b *prototypeValueBinding) produce(*Injector) (any, error) {
	return b.value, nil
}

// --- ProvidingValue: result of a reflected user function, fresh per call. ---

type providingValueBinding struct {
	key  BindingKey
	fn   reflect.Value
	deps []BindingKey
}

func (b *providingValueBinding) finalKey() BindingKey               { return b.key }
func (b *providingValueBinding) enumerateDependencies() []BindingKey { return b.deps }
func (b *providingValueBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *providingValueBinding) isThreadLocal() bool                 { return false }

func (b *providingValueBinding) produce(inj *Injector) (any, error) {
	out, err := reflectedCall(inj, b.fn)
	if err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}

// --- InstantiatingValue: a type implementing Constructor, constructed via reflection. ---

type instantiatingValueBinding struct {
	key  BindingKey
	ctor reflect.Value // func(*Injector) (T, error) derived from the Constructor contract
	deps []BindingKey
}

func (b *instantiatingValueBinding) finalKey() BindingKey               { return b.key }
func (b *instantiatingValueBinding) enumerateDependencies() []BindingKey { return b.deps }
func (b *instantiatingValueBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *instantiatingValueBinding) isThreadLocal() bool                 { return false }

func (b *instantiatingValueBinding) produce(inj *Injector) (any, error) {
	out, err := reflectedCall(inj, b.ctor)
	if err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}

// --- Unique shapes (InstantiatingUnique / ProvidingUnique): heap instance per call. ---

type uniqueBinding struct {
	key  BindingKey
	fn   reflect.Value
	deps []BindingKey
}

func (b *uniqueBinding) finalKey() BindingKey               { return b.key }
func (b *uniqueBinding) enumerateDependencies() []BindingKey { return b.deps }
func (b *uniqueBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *uniqueBinding) isThreadLocal() bool                 { return false }

func (b *uniqueBinding) produce(inj *Injector) (any, error) {
	out, err := reflectedCall(inj, b.fn)
	if err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}

// uniqueCloneBinding clones an owned prototype via a registered cloner
// (§6 "For unique bindings, a cloner operation copies an owned prototype
// into a new owned instance"), used by the environment pipeline for
// property-driven unique bindings such as URIs.
type uniqueCloneBinding struct {
	key       BindingKey
	prototype any
	clone     func(any) any
}

func (b *uniqueCloneBinding) finalKey() BindingKey               { return b.key }
func (b *uniqueCloneBinding) enumerateDependencies() []BindingKey { return nil }
func (b *uniqueCloneBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *uniqueCloneBinding) isThreadLocal() bool                 { return false }

func (b *uniqueCloneBinding) produce(*Injector) (any, error) {
	return b.clone(b.prototype), nil
}

// --- Reference: aliases a caller-owned value; the injector never owns it. ---

type referenceBinding struct {
	key BindingKey
	ref any
}

func (b *referenceBinding) finalKey() BindingKey               { return b.key }
func (b *referenceBinding) enumerateDependencies() []BindingKey { return nil }
func (b *referenceBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *referenceBinding) isThreadLocal() bool                 { return false }
func (b *referenceBinding) produce(*Injector) (any, error)      { return b.ref, nil }

// --- ProvidedSingleton: already-constructed shared instance. ---

type providedSingletonBinding struct {
	key      BindingKey
	instance any
}

func (b *providedSingletonBinding) finalKey() BindingKey               { return b.key }
func (b *providedSingletonBinding) enumerateDependencies() []BindingKey { return nil }
func (b *providedSingletonBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *providedSingletonBinding) isThreadLocal() bool                 { return false }
func (b *providedSingletonBinding) produce(*Injector) (any, error) {
	return b.instance, nil
}

// --- LazySingleton / EagerSingleton: one-shot process-wide instance. ---

type singletonBinding struct {
	key   BindingKey
	fn    reflect.Value
	deps  []BindingKey
	eager bool

	once  sync.Once
	value any
	err   error
}

func (b *singletonBinding) finalKey() BindingKey               { return b.key }
func (b *singletonBinding) enumerateDependencies() []BindingKey { return b.deps }
func (b *singletonBinding) isThreadLocal() bool                 { return false }

func (b *singletonBinding) produce(inj *Injector) (any, error) {
	b.once.Do(func() {
		out, err := reflectedCall(inj, b.fn)
		if err != nil {
			b.err = err
			return
		}
		b.value = out[0].Interface()
	})
	return b.value, b.err
}

func (b *singletonBinding) instantiateIfEager(inj *Injector) error {
	if !b.eager {
		return nil
	}
	_, err := b.produce(inj)
	return err
}

// --- ProvidingSingleton: a provider type constructed once, invoked once. ---

// Provider is the "provider class" contract (§6): an injectable type
// whose construction yields a value that can itself be invoked to
// produce the bound value.
type Provider[T any] interface {
	Provide(inj *Injector) (T, error)
}

type providingSingletonBinding struct {
	key         BindingKey
	providerCtor reflect.Value // func(*Injector) (Provider-shaped value, error)
	call         func(any, *Injector) (any, error)
	deps         []BindingKey

	once  sync.Once
	value any
	err   error
}

func (b *providingSingletonBinding) finalKey() BindingKey               { return b.key }
func (b *providingSingletonBinding) enumerateDependencies() []BindingKey { return b.deps }
func (b *providingSingletonBinding) isThreadLocal() bool                 { return false }

func (b *providingSingletonBinding) produce(inj *Injector) (any, error) {
	b.once.Do(func() {
		out, err := reflectedCall(inj, b.providerCtor)
		if err != nil {
			b.err = err
			return
		}
		b.value, b.err = b.call(out[0].Interface(), inj)
	})
	return b.value, b.err
}

// instantiateIfEager is a no-op: ProvidingSingleton is built lazily, on
// first query, like LazySingleton. Only EagerSingleton joins the
// finalisation-time instantiation pass.
func (b *providingSingletonBinding) instantiateIfEager(*Injector) error {
	return nil
}

// --- Sequence / Mapping multibindings: several bindings of one key merge
// into a single slice or map (§9), generalising the teacher's
// Sequence/Mapping annotations. Each successive Bind call for the same
// key wraps the previous sequenceBinding/mappingBinding in next, so
// produce walks the chain oldest-first and folds every contributor's
// slice or map together.

type sequenceBinding struct {
	key  BindingKey
	fn   reflect.Value // func(...) ([]T, error)
	deps []BindingKey
	next *sequenceBinding
}

func (b *sequenceBinding) finalKey() BindingKey { return b.key }

func (b *sequenceBinding) enumerateDependencies() []BindingKey {
	if b.next == nil {
		return b.deps
	}
	return append(append([]BindingKey{}, b.deps...), b.next.enumerateDependencies()...)
}

func (b *sequenceBinding) instantiateIfEager(*Injector) error { return nil }
func (b *sequenceBinding) isThreadLocal() bool                { return false }

func (b *sequenceBinding) produce(inj *Injector) (any, error) {
	out := reflect.MakeSlice(b.key.Type, 0, 0)
	if b.next != nil {
		prior, err := b.next.produce(inj)
		if err != nil {
			return nil, err
		}
		out = reflect.AppendSlice(out, reflect.ValueOf(prior))
	}
	result, err := reflectedCall(inj, b.fn)
	if err != nil {
		return nil, err
	}
	out = reflect.AppendSlice(out, result[0])
	return out.Interface(), nil
}

type mappingBinding struct {
	key  BindingKey
	fn   reflect.Value // func(...) (map[K]V, error)
	deps []BindingKey
	next *mappingBinding
}

func (b *mappingBinding) finalKey() BindingKey { return b.key }

func (b *mappingBinding) enumerateDependencies() []BindingKey {
	if b.next == nil {
		return b.deps
	}
	return append(append([]BindingKey{}, b.deps...), b.next.enumerateDependencies()...)
}

func (b *mappingBinding) instantiateIfEager(*Injector) error { return nil }
func (b *mappingBinding) isThreadLocal() bool                { return false }

func (b *mappingBinding) produce(inj *Injector) (any, error) {
	out := reflect.MakeMap(b.key.Type)
	if b.next != nil {
		prior, err := b.next.produce(inj)
		if err != nil {
			return nil, err
		}
		priorMap := reflect.ValueOf(prior)
		for _, k := range priorMap.MapKeys() {
			out.SetMapIndex(k, priorMap.MapIndex(k))
		}
	}
	result, err := reflectedCall(inj, b.fn)
	if err != nil {
		return nil, err
	}
	nextMap := result[0]
	for _, k := range nextMap.MapKeys() {
		out.SetMapIndex(k, nextMap.MapIndex(k))
	}
	return out.Interface(), nil
}

// --- ThreadLocalSingleton: one instance per goroutine, lazily built. ---

type threadLocalBinding struct {
	key   BindingKey
	fn    reflect.Value
	deps  []BindingKey
	store *golocal.Store
}

func (b *threadLocalBinding) finalKey() BindingKey               { return b.key }
func (b *threadLocalBinding) enumerateDependencies() []BindingKey { return b.deps }
func (b *threadLocalBinding) instantiateIfEager(*Injector) error  { return nil }
func (b *threadLocalBinding) isThreadLocal() bool                 { return true }

func (b *threadLocalBinding) produce(inj *Injector) (any, error) {
	return b.store.GetOrInit(b.key, func() (any, error) {
		out, err := reflectedCall(inj, b.fn)
		if err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	})
}
