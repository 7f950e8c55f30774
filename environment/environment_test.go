package environment

import (
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/kestrion/inject/inject"
)

func TestCascadeInheritsTypeAndOverridesValue(t *testing.T) {
	fsys := fstest.MapFS{
		"base.properties": {Data: []byte(`
server {
    host = "localhost";
    port : int = 8080;
}
`)},
		"override.properties": {Data: []byte(`
server {
    port = 9090;
}
`)},
	}

	base, err := Load(fsys, "base.properties")
	require.NoError(t, err)
	override, err := Load(fsys, "override.properties")
	require.NoError(t, err)

	cfg, err := NewConfiguration(base, override)
	require.NoError(t, err)

	inj, err := inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)

	host, err := inject.GetValue[string](inj, "server.host")
	require.NoError(t, err)
	require.Equal(t, "localhost", host)

	port, err := inject.GetValue[int32](inj, "server.port")
	require.NoError(t, err)
	require.Equal(t, int32(9090), port)
}

func TestGroupSingletonAggregatesLeaves(t *testing.T) {
	fsys := fstest.MapFS{
		"base.properties": {Data: []byte(`
server {
    host = "localhost";
    port : int = 8080;
}
`)},
	}
	base, err := Load(fsys, "base.properties")
	require.NoError(t, err)
	cfg, err := NewConfiguration(base)
	require.NoError(t, err)

	inj, err := inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)

	group, err := inject.GetShared[*Properties](inj, "server")
	require.NoError(t, err)
	require.Equal(t, []string{"host", "port"}, group.Names())

	require.True(t, HasValue[string](group, "host"))
	host, err := GetValue[string](group, "host")
	require.NoError(t, err)
	require.Equal(t, "localhost", host)

	port, err := GetValue[int32](group, "port")
	require.NoError(t, err)
	require.Equal(t, int32(8080), port)

	_, err = GetValue[string](group, "missing")
	require.Error(t, err)

	fallback, err := GetValue[string](group, "missing", "fallback")
	require.NoError(t, err)
	require.Equal(t, "fallback", fallback)
}

func TestIncludeDirectiveMergesEntries(t *testing.T) {
	fsys := fstest.MapFS{
		"main.properties": {Data: []byte(`
include "common.properties";
app_name = "widgets";
`)},
		"common.properties": {Data: []byte(`
log_level = "info";
`)},
	}

	root, err := Load(fsys, "main.properties")
	require.NoError(t, err)
	cfg, err := NewConfiguration(root)
	require.NoError(t, err)

	inj, err := inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)

	name, err := inject.GetValue[string](inj, "app_name")
	require.NoError(t, err)
	require.Equal(t, "widgets", name)

	level, err := inject.GetValue[string](inj, "log_level")
	require.NoError(t, err)
	require.Equal(t, "info", level)
}

func TestURIPropertyBindsAsUniqueClone(t *testing.T) {
	fsys := fstest.MapFS{
		"base.properties": {Data: []byte(`
endpoint : uri = "https://example.com/api";
`)},
	}
	base, err := Load(fsys, "base.properties")
	require.NoError(t, err)
	cfg, err := NewConfiguration(base)
	require.NoError(t, err)

	inj, err := inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)

	first, err := inject.GetUnique[*url.URL](inj, "endpoint")
	require.NoError(t, err)
	second, err := inject.GetUnique[*url.URL](inj, "endpoint")
	require.NoError(t, err)

	require.Equal(t, first.Host, second.Host)
	require.NotSame(t, first, second)
}

func TestTypeSpecDefaultYieldsToPropertyTree(t *testing.T) {
	fsys := fstest.MapFS{
		"types.properties":    {Data: []byte(`count : int = 32;`)},
		"types2.properties":   {Data: []byte(`count : int = 16;`)},
		"override.properties": {Data: []byte(`count = 8;`)},
	}

	typeSpec, err := LoadTypeSpec(fsys, "types.properties")
	require.NoError(t, err)
	cfg, err := NewConfiguration(typeSpec)
	require.NoError(t, err)
	inj, err := inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)
	count, err := inject.GetValue[int32](inj, "count")
	require.NoError(t, err)
	require.Equal(t, int32(32), count)

	laterTypeSpec, err := LoadTypeSpec(fsys, "types2.properties")
	require.NoError(t, err)
	cfg, err = NewConfiguration(typeSpec, laterTypeSpec)
	require.NoError(t, err)
	inj, err = inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)
	count, err = inject.GetValue[int32](inj, "count")
	require.NoError(t, err)
	require.Equal(t, int32(16), count)

	property, err := Load(fsys, "override.properties")
	require.NoError(t, err)
	cfg, err = NewConfiguration(typeSpec, laterTypeSpec, property)
	require.NoError(t, err)
	inj, err = inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)
	count, err = inject.GetValue[int32](inj, "count")
	require.NoError(t, err)
	require.Equal(t, int32(8), count)
}

func TestCascadeRejectsShapeChange(t *testing.T) {
	fsys := fstest.MapFS{
		"base.properties": {Data: []byte(`
server {
    port : int = 8080;
}
`)},
		"override.properties": {Data: []byte(`
server = "not a group";
`)},
	}

	base, err := Load(fsys, "base.properties")
	require.NoError(t, err)
	override, err := Load(fsys, "override.properties")
	require.NoError(t, err)

	_, err = NewConfiguration(base, override)
	require.Error(t, err)

	var shapeErr *inject.EnvironmentConfigurationError
	require.ErrorAs(t, err, &shapeErr)
}

func TestGroupExposesNestedCompositeAndUniqueLeaf(t *testing.T) {
	fsys := fstest.MapFS{
		"base.properties": {Data: []byte(`
cache {
    ttl : int = 1200;
    document {
        root : uri = "https://example.com/docs";
    }
}
`)},
	}
	base, err := Load(fsys, "base.properties")
	require.NoError(t, err)
	cfg, err := NewConfiguration(base)
	require.NoError(t, err)

	inj, err := inject.Create([]inject.Configuration{cfg})
	require.NoError(t, err)

	cache, err := inject.GetShared[*Properties](inj, "cache")
	require.NoError(t, err)

	ttl, err := GetValue[int32](cache, "ttl")
	require.NoError(t, err)
	require.Equal(t, int32(1200), ttl)

	require.True(t, cache.HasComposite("document"))
	document, err := cache.GetComposite("document")
	require.NoError(t, err)
	require.Equal(t, "cache.document", document.Name())

	require.True(t, HasUnique[*url.URL](document, "root"))
	first, err := GetUnique[*url.URL](document, "root")
	require.NoError(t, err)
	second, err := GetUnique[*url.URL](document, "root")
	require.NoError(t, err)
	require.Equal(t, first.Host, second.Host)
	require.NotSame(t, first, second)
}
