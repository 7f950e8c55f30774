package inject

import (
	"fmt"
	"reflect"

	"github.com/kestrion/inject/inject/internal/golocal"
)

// BindingBuilder is the fluent, single-shot surface a Configuration uses
// to fix the shape of one BindingKey (§4.3). Exactly one terminal To*
// method must be called per builder; calling none leaves the key
// unresolved and Injector.Create reports it as a missing dependency,
// calling more than one overwrites the previous shape.
type BindingBuilder struct {
	key     BindingKey
	binding binding
	err     error
}

func newBindingBuilder(key BindingKey) *BindingBuilder {
	return &BindingBuilder{key: key}
}

func (bb *BindingBuilder) fail(err error) {
	if bb.err == nil {
		bb.err = err
	}
}

// ToValue binds key to a literal value, copied out on every query
// (PrototypeValue, §3).
func (bb *BindingBuilder) ToValue(value any) {
	key := bb.key.withMeta(ValueMeta)
	bb.binding = &prototypeValueBinding{key: key, value: value}
}

// ToValueProvider binds key to the result of fn, called once per query
// (ProvidingValue, §3). fn may accept any previously bound Value-meta
// type and an optional *Injector, and must return (T[, error]).
func (bb *BindingBuilder) ToValueProvider(fn any) {
	fv, err := validateProviderFunc(fn)
	if err != nil {
		bb.fail(err)
		return
	}
	key := bb.key.withMeta(ValueMeta)
	bb.binding = &providingValueBinding{key: key, fn: fv, deps: dependenciesOf(fv.Type())}
}

// ToInstantiating binds key to a type's Constructor contract (§6,
// InstantiatingValue): ctor has the shape func(*Injector) (T, error) and
// deps enumerates the dependencies Construct consults, typically
// obtained via DependenciesOf. A weak key in deps (as KeyOf produces) is
// promoted to Value-meta, since Construct always reads its dependencies
// by value.
func (bb *BindingBuilder) ToInstantiating(ctor any, deps []BindingKey) {
	fv, err := validateProviderFunc(ctor)
	if err != nil {
		bb.fail(err)
		return
	}
	normalized := make([]BindingKey, len(deps))
	for i, d := range deps {
		if d.Meta == unsetMeta {
			d = d.withMeta(ValueMeta)
		}
		normalized[i] = d
	}
	key := bb.key.withMeta(ValueMeta)
	bb.binding = &instantiatingValueBinding{key: key, ctor: fv, deps: normalized}
}

// ToUnique binds key to a fresh, independently owned heap instance per
// query, built by fn (InstantiatingUnique/ProvidingUnique, §3). fn must
// return a pointer type.
func (bb *BindingBuilder) ToUnique(fn any) {
	fv, err := validateProviderFunc(fn)
	if err != nil {
		bb.fail(err)
		return
	}
	if fv.Type().Out(0).Kind() != reflect.Ptr {
		bb.fail(fmt.Errorf("inject: ToUnique provider must return a pointer, got %s", fv.Type().Out(0)))
		return
	}
	key := bb.key.withMeta(UniqueMeta)
	bb.binding = &uniqueBinding{key: key, fn: fv, deps: dependenciesOf(fv.Type())}
}

// ToUniqueProvider is an alias for ToUnique kept for symmetry with
// ToValueProvider; both shapes resolve to the same uniqueBinding.
func (bb *BindingBuilder) ToUniqueProvider(fn any) {
	bb.ToUnique(fn)
}

// ToUniqueClone binds key to clones of prototype, produced by clone on
// every query. Used by the environment pipeline for property-driven
// unique bindings such as uri values (§6 "cloner operation").
func (bb *BindingBuilder) ToUniqueClone(prototype any, clone func(any) any) {
	key := bb.key.withMeta(UniqueMeta)
	bb.binding = &uniqueCloneBinding{key: key, prototype: prototype, clone: clone}
}

// ToReference binds key to ref without transferring ownership: the
// injector never constructs or destroys it (Reference, §3).
func (bb *BindingBuilder) ToReference(ref any) {
	key := bb.key.withMeta(ReferenceMeta)
	bb.binding = &referenceBinding{key: key, ref: ref}
}

// ToProvidedSingleton binds key to instance as the single shared owner
// for the lifetime of the injector (ProvidedSingleton, §3).
func (bb *BindingBuilder) ToProvidedSingleton(instance any) {
	key := bb.key.withMeta(SharedMeta)
	bb.binding = &providedSingletonBinding{key: key, instance: instance}
}

// ToSingleton binds key to the lazily constructed, process-wide shared
// result of fn (LazySingleton, §3): fn runs at most once, on first query.
func (bb *BindingBuilder) ToSingleton(fn any) {
	bb.toSingletonCommon(fn, false)
}

// ToEagerSingleton is ToSingleton, but fn runs during Injector.Create's
// eager-instantiation step instead of lazily (EagerSingleton, §3).
func (bb *BindingBuilder) ToEagerSingleton(fn any) {
	bb.toSingletonCommon(fn, true)
}

func (bb *BindingBuilder) toSingletonCommon(fn any, eager bool) {
	fv, err := validateProviderFunc(fn)
	if err != nil {
		bb.fail(err)
		return
	}
	key := bb.key.withMeta(SharedMeta)
	bb.binding = &singletonBinding{key: key, fn: fv, deps: dependenciesOf(fv.Type()), eager: eager}
}

// ToThreadLocal binds key to one lazily constructed instance per
// goroutine that queries it (ThreadLocalSingleton, §3, §9). Each binding
// owns its own goroutine-local slot, independent of any other binding.
func (bb *BindingBuilder) ToThreadLocal(fn any) {
	fv, err := validateProviderFunc(fn)
	if err != nil {
		bb.fail(err)
		return
	}
	key := bb.key.withMeta(SharedMeta)
	bb.binding = &threadLocalBinding{key: key, fn: fv, deps: dependenciesOf(fv.Type()), store: golocal.NewStore()}
}

// ToSequence merges key's binding with every other ToSequence binding of
// the same key into one slice (§9 multibindings): fn must return a slice
// type matching key, and each successive Bind call for key appends its
// own slice after every previously bound one, in install order.
func (bb *BindingBuilder) ToSequence(fn any) {
	fv, err := validateProviderFunc(fn)
	if err != nil {
		bb.fail(err)
		return
	}
	key := bb.key.withMeta(ValueMeta)
	if key.Type == nil || key.Type.Kind() != reflect.Slice {
		bb.fail(fmt.Errorf("inject: ToSequence key must be a slice type, got %s", key.Type))
		return
	}
	if out := fv.Type().Out(0); out != key.Type {
		bb.fail(fmt.Errorf("inject: ToSequence provider must return %s, got %s", key.Type, out))
		return
	}
	bb.binding = &sequenceBinding{key: key, fn: fv, deps: dependenciesOf(fv.Type())}
}

// ToSequenceValue is ToSequence for a literal slice, mirroring the
// teacher's Sequence(v) literal form.
func (bb *BindingBuilder) ToSequenceValue(value any) {
	bb.ToSequence(literalProviderFunc(value))
}

// ToMapping merges key's binding with every other ToMapping binding of
// the same key into one map (§9 multibindings): fn must return a map
// type matching key, and each successive Bind call for key's entries
// overwrite same-key entries from every previously bound map, in
// install order.
func (bb *BindingBuilder) ToMapping(fn any) {
	fv, err := validateProviderFunc(fn)
	if err != nil {
		bb.fail(err)
		return
	}
	key := bb.key.withMeta(ValueMeta)
	if key.Type == nil || key.Type.Kind() != reflect.Map {
		bb.fail(fmt.Errorf("inject: ToMapping key must be a map type, got %s", key.Type))
		return
	}
	if out := fv.Type().Out(0); out != key.Type {
		bb.fail(fmt.Errorf("inject: ToMapping provider must return %s, got %s", key.Type, out))
		return
	}
	bb.binding = &mappingBinding{key: key, fn: fv, deps: dependenciesOf(fv.Type())}
}

// ToMappingValue is ToMapping for a literal map, mirroring the teacher's
// Mapping(v) literal form.
func (bb *BindingBuilder) ToMappingValue(value any) {
	bb.ToMapping(literalProviderFunc(value))
}

// literalProviderFunc wraps a literal value as a zero-argument provider
// function so ToSequenceValue/ToMappingValue can reuse the reflected
// provider path.
func literalProviderFunc(value any) any {
	valueType := reflect.TypeOf(value)
	fnType := reflect.FuncOf(nil, []reflect.Type{valueType}, false)
	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.ValueOf(value)}
	})
	return fn.Interface()
}

// ToSingletonProvider binds key to the result of invoking Provide on a
// provider value that is itself constructed once by providerCtor
// (ProvidingSingleton, §3): both the provider and its provided value are
// built at most once.
func (bb *BindingBuilder) ToSingletonProvider(providerCtor any, call func(provider any, inj *Injector) (any, error)) {
	fv, err := validateProviderFunc(providerCtor)
	if err != nil {
		bb.fail(err)
		return
	}
	key := bb.key.withMeta(SharedMeta)
	bb.binding = &providingSingletonBinding{
		key:          key,
		providerCtor: fv,
		call:         call,
		deps:         dependenciesOf(fv.Type()),
	}
}
