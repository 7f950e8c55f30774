package inject

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type greeterConfig struct {
	name string
}

func (c *greeterConfig) Configure(b Binder) error {
	b.Bind(KeyOf[string](""), func(bb *BindingBuilder) {
		bb.ToValue(c.name)
	})
	b.Bind(KeyOf[string]("greeting"), func(bb *BindingBuilder) {
		bb.ToValueProvider(func(name string) (string, error) {
			return "hello, " + name, nil
		})
	})
	return nil
}

func TestValueBinding(t *testing.T) {
	inj, err := Create([]Configuration{&greeterConfig{name: "ada"}})
	require.NoError(t, err)

	name, err := GetValue[string](inj, "")
	require.NoError(t, err)
	require.Equal(t, "ada", name)

	greeting, err := GetValue[string](inj, "greeting")
	require.NoError(t, err)
	require.Equal(t, "hello, ada", greeting)
}

type counter struct {
	n int
}

type singletonConfig struct {
	builds *int
}

func (c *singletonConfig) Configure(b Binder) error {
	b.Bind(KeyOf[*counter](""), func(bb *BindingBuilder) {
		bb.ToSingleton(func() (*counter, error) {
			*c.builds++
			return &counter{n: *c.builds}, nil
		})
	})
	return nil
}

func TestLazySingletonBuildsOnce(t *testing.T) {
	builds := 0
	inj, err := Create([]Configuration{&singletonConfig{builds: &builds}})
	require.NoError(t, err)
	require.Equal(t, 0, builds)

	first, err := GetShared[*counter](inj, "")
	require.NoError(t, err)
	second, err := GetShared[*counter](inj, "")
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, 1, builds)
}

type eagerConfig struct {
	started *bool
}

func (c *eagerConfig) Configure(b Binder) error {
	b.Bind(KeyOf[*counter](""), func(bb *BindingBuilder) {
		bb.ToEagerSingleton(func() (*counter, error) {
			*c.started = true
			return &counter{}, nil
		})
	})
	return nil
}

func TestEagerSingletonBuildsDuringCreate(t *testing.T) {
	started := false
	_, err := Create([]Configuration{&eagerConfig{started: &started}})
	require.NoError(t, err)
	require.True(t, started)
}

func TestMissingDependencyIsReported(t *testing.T) {
	_, err := Create([]Configuration{&greeterConfig{}, &dependentConfig{}})
	require.Error(t, err)
	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
}

type dependentConfig struct{}

func (dependentConfig) Configure(b Binder) error {
	b.Bind(KeyOf[int](""), func(bb *BindingBuilder) {
		bb.ToValueProvider(func(missing float64) (int, error) { return int(missing), nil })
	})
	return nil
}

type selfCyclicConfig struct{}

func (selfCyclicConfig) Configure(b Binder) error {
	b.Bind(KeyOf[int](""), func(bb *BindingBuilder) {
		bb.ToValueProvider(func(v int) (int, error) { return v, nil })
	})
	return nil
}

func TestCyclicDependencyIsReported(t *testing.T) {
	_, err := Create([]Configuration{&selfCyclicConfig{}})
	require.Error(t, err)
	var cyclic *CyclicDependencyError
	require.True(t, errors.As(err, &cyclic))
}

type childOverrideParent struct{}

func (childOverrideParent) Configure(b Binder) error {
	b.Bind(KeyOf[string](""), func(bb *BindingBuilder) {
		bb.ToValue("child")
	})
	return nil
}

func TestChildInjectorOverridesWithoutMutatingParent(t *testing.T) {
	parent, err := Create([]Configuration{&greeterConfig{name: "parent"}})
	require.NoError(t, err)

	child, err := parent.CreateChild([]Configuration{&childOverrideParent{}})
	require.NoError(t, err)

	parentValue, err := GetValue[string](parent, "")
	require.NoError(t, err)
	require.Equal(t, "parent", parentValue)

	childValue, err := GetValue[string](child, "")
	require.NoError(t, err)
	require.Equal(t, "child", childValue)
}

type referenceConfig struct {
	ref *counter
}

func (c *referenceConfig) Configure(b Binder) error {
	b.Bind(KeyOf[*counter](""), func(bb *BindingBuilder) {
		bb.ToReference(c.ref)
	})
	return nil
}

func TestReferenceBindingAliasesCallerOwnedValue(t *testing.T) {
	owned := &counter{n: 7}
	inj, err := Create([]Configuration{&referenceConfig{ref: owned}})
	require.NoError(t, err)

	got, err := GetReference[*counter](inj, "")
	require.NoError(t, err)
	require.Same(t, owned, got)
}

type uniqueConfig struct{}

func (uniqueConfig) Configure(b Binder) error {
	b.Bind(KeyOf[*counter](""), func(bb *BindingBuilder) {
		bb.ToUnique(func() (*counter, error) { return &counter{}, nil })
	})
	return nil
}

func TestUniqueBindingReturnsDistinctInstances(t *testing.T) {
	inj, err := Create([]Configuration{&uniqueConfig{}})
	require.NoError(t, err)

	first, err := GetUnique[*counter](inj, "")
	require.NoError(t, err)
	second, err := GetUnique[*counter](inj, "")
	require.NoError(t, err)

	require.NotSame(t, first, second)
}

type onStartConfig struct {
	events *[]string
}

func (c *onStartConfig) Configure(b Binder) error {
	b.OnStart(func() error {
		*c.events = append(*c.events, "start")
		return nil
	})
	b.OnClose(func() error {
		*c.events = append(*c.events, "close")
		return nil
	})
	return nil
}

func TestLifecycleCallbacksRun(t *testing.T) {
	var events []string
	inj, err := Create([]Configuration{&onStartConfig{events: &events}})
	require.NoError(t, err)
	require.Equal(t, []string{"start"}, events)

	require.NoError(t, inj.Close())
	require.Equal(t, []string{"start", "close"}, events)
}

type widget struct {
	label string
}

type widgetCtor struct{}

func (widgetCtor) Dependencies() []BindingKey {
	return []BindingKey{KeyOf[string]("label")}
}

func (widgetCtor) Construct(inj *Injector) (*widget, error) {
	label, err := GetValue[string](inj, "label")
	if err != nil {
		return nil, err
	}
	return &widget{label: label}, nil
}

type widgetConfig struct{}

func (widgetConfig) Configure(b Binder) error {
	b.Bind(KeyOf[string]("label"), func(bb *BindingBuilder) {
		bb.ToValue("gizmo")
	})
	ctor := widgetCtor{}
	b.Bind(KeyOf[*widget](""), func(bb *BindingBuilder) {
		bb.ToInstantiating(ctor.Construct, DependenciesOf(ctor))
	})
	return nil
}

func TestInstantiatingValueUsesConstructorContract(t *testing.T) {
	inj, err := Create([]Configuration{&widgetConfig{}})
	require.NoError(t, err)

	w, err := GetValue[*widget](inj, "")
	require.NoError(t, err)
	require.Equal(t, "gizmo", w.label)
}

func TestDuplicateConfigurationMerge(t *testing.T) {
	inj, err := Create([]Configuration{
		&greeterConfig{name: "ada"},
		&greeterConfig{},
	})
	require.NoError(t, err)

	name, err := GetValue[string](inj, "")
	require.NoError(t, err)
	require.Equal(t, "ada", name)
}
