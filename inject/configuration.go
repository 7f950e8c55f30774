package inject

import (
	"reflect"

	"github.com/jinzhu/copier"
)

// Binder is the recording surface a Configuration's Configure method uses
// to declare bindings (§4.3). Bind opens a BindingBuilder for key; the
// builder's terminal To* call fixes the binding's shape.
type Binder interface {
	Bind(key BindingKey, fn func(*BindingBuilder))
	// Install merges a nested Configuration into this one, exactly as the
	// teacher's Binder.Install merges a nested Module.
	Install(cfg Configuration) error
	// OnStart registers a callback run once, after eager instantiation,
	// in registration order (§4.4 "Ordering guarantees").
	OnStart(fn func() error)
	// OnClose registers a callback run during Injector.Close, in reverse
	// registration order. Callbacks are not tied to bindings, so they are
	// not ordered by the dependency graph.
	OnClose(fn func() error)
}

// Configuration is any value whose Configure method records bindings.
// Two Configurations of the same concrete type may both be installed
// into one Injector.Create call only if they are field-for-field equal,
// or one of them is the zero value, per the teacher's "duplicate module"
// rule (handleDuplicate), generalised here via copier.
type Configuration interface {
	Configure(b Binder) error
}

type binderImpl struct {
	bindings  map[BindingKey]binding
	installed map[reflect.Type]Configuration
	order     []Configuration
	onStart   []func() error
	onClose   []func() error
}

func newBinder() *binderImpl {
	return &binderImpl{
		bindings:  make(map[BindingKey]binding),
		installed: make(map[reflect.Type]Configuration),
	}
}

func (bd *binderImpl) OnStart(fn func() error) {
	bd.onStart = append(bd.onStart, fn)
}

func (bd *binderImpl) OnClose(fn func() error) {
	bd.onClose = append(bd.onClose, fn)
}

func (bd *binderImpl) Bind(key BindingKey, fn func(*BindingBuilder)) {
	bb := newBindingBuilder(key)
	fn(bb)
	if bb.err != nil {
		bd.bindings[key] = &failedBinding{key: key, err: bb.err}
		return
	}
	if bb.binding == nil {
		return
	}

	finalKey := bb.binding.finalKey()
	switch next := bb.binding.(type) {
	case *sequenceBinding:
		if prior, ok := bd.bindings[finalKey].(*sequenceBinding); ok {
			next.next = prior
		}
	case *mappingBinding:
		if prior, ok := bd.bindings[finalKey].(*mappingBinding); ok {
			next.next = prior
		}
	default:
		// Sequence/Mapping bindings are meant to accumulate under one
		// key; every other variant must own its final key exclusively
		// (§4.4 step 3, Testable Property 2).
		if existing, exists := bd.bindings[finalKey]; exists {
			if _, alreadyFailed := existing.(*failedBinding); !alreadyFailed {
				bd.bindings[finalKey] = &failedBinding{key: finalKey, err: &DuplicateBindingError{Key: finalKey}}
			}
			return
		}
	}
	bd.bindings[finalKey] = bb.binding
}

func (bd *binderImpl) Install(cfg Configuration) error {
	t := reflect.TypeOf(cfg)
	existing, ok := bd.installed[t]
	if !ok {
		bd.installed[t] = cfg
		bd.order = append(bd.order, cfg)
		return cfg.Configure(bd)
	}
	merged, err := mergeDuplicateConfiguration(existing, cfg)
	if err != nil {
		return err
	}
	bd.installed[t] = merged
	return nil
}

// mergeDuplicateConfiguration reconciles two installs of the same
// Configuration type: identical values collapse silently, a zero-valued
// side is filled in from the other, otherwise the two genuinely disagree
// and Configure is not re-run (the original install already ran it).
func mergeDuplicateConfiguration(existing, next Configuration) (Configuration, error) {
	if reflect.DeepEqual(existing, next) {
		return existing, nil
	}

	ev := reflect.ValueOf(existing)
	nv := reflect.ValueOf(next)
	existingZero := isZeroValue(ev)
	nextZero := isZeroValue(nv)

	switch {
	case existingZero && !nextZero:
		return next, nil
	case nextZero:
		return existing, nil
	default:
		merged := reflect.New(reflect.TypeOf(existing).Elem()).Interface()
		if err := copier.Copy(merged, existing); err != nil {
			return nil, &DuplicateBindingError{Key: BindingKey{Type: reflect.TypeOf(existing)}}
		}
		if err := copier.CopyWithOption(merged, next, copier.Option{IgnoreEmpty: true}); err != nil {
			return nil, &DuplicateBindingError{Key: BindingKey{Type: reflect.TypeOf(existing)}}
		}
		return merged.(Configuration), nil
	}
}

func isZeroValue(v reflect.Value) bool {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return v.IsZero()
}

// failedBinding surfaces a builder construction error (a bad provider
// signature, for example) through the normal seal-time validation path
// rather than panicking inside Configure.
type failedBinding struct {
	key BindingKey
	err error
}

func (b *failedBinding) finalKey() BindingKey                { return b.key }
func (b *failedBinding) enumerateDependencies() []BindingKey { return nil }
func (b *failedBinding) isThreadLocal() bool                 { return false }
func (b *failedBinding) instantiateIfEager(*Injector) error  { return b.err }
func (b *failedBinding) produce(*Injector) (any, error)      { return nil, b.err }
