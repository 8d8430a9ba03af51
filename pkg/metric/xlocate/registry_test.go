package xlocate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

func newTestRegistry() *Registry {
	return NewRegistry(
		WithProcessTable(NewProcessTable(staticLister(testProcesses(), nil))),
		WithLogger(xlog.Discard()),
	)
}

func TestRegistry_Add(t *testing.T) {
	r := newTestRegistry()
	s := NewStatic("")
	require.NoError(t, r.Add("unittest", s))

	got, ok := r.Get("unittest")
	assert.True(t, ok)
	assert.Same(t, s, got)

	assert.ErrorIs(t, r.Add("nil", nil), ErrNilLocator)
	assert.Equal(t, []string{"unittest"}, r.Names())
}

func TestRegistry_Exists(t *testing.T) {
	r := newTestRegistry()
	a, b, c := NewStatic(""), NewStatic(""), NewStatic("")
	b.SetExists(false)
	require.NoError(t, r.Add("zookeeper", a))
	require.NoError(t, r.Add("hive", b))
	require.NoError(t, r.Add("hdfs", c))

	assert.Equal(t, []string{"hdfs", "zookeeper"}, r.Exists(context.Background()))

	a.SetExists(false)
	c.SetExists(false)
	assert.Empty(t, r.Exists(context.Background()))
}

func TestRegistry_ExistsRefreshesProcesses(t *testing.T) {
	calls := 0
	r := NewRegistry(
		WithProcessTable(NewProcessTable(staticLister(testProcesses(), &calls))),
		WithLogger(xlog.Discard()),
	)
	require.NoError(t, r.Parse([]byte(`
a: {class: ProcessLocator, pattern: java}
b: {class: ProcessLocator, pattern: python}
`), nil))

	assert.Equal(t, []string{"a", "b"}, r.Exists(context.Background()))
	assert.Equal(t, 1, calls)
	r.Exists(context.Background())
	assert.Equal(t, 2, calls)
}

func TestRegistry_Endpoint(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Add("unittest", NewStatic("")))

	ep, err := r.Endpoint("unittest")
	require.NoError(t, err)
	assert.Equal(t, "dummy://", ep)

	_, err = r.Endpoint("missing")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestRegistry_LoadConfig(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.LoadConfig("testdata/locator.yaml", nil))

	assert.Equal(t, []string{
		"hdfs.namenode.jmx",
		"unittest",
		"unittest-argument",
		"yarn.resource-manager.process",
	}, r.Names())

	loc, _ := r.Get("unittest")
	assert.Empty(t, loc.(*Static).Args())
	loc, _ = r.Get("unittest-argument")
	assert.Equal(t, map[string]any{"key": "value"}, loc.(*Static).Args())

	ep, err := r.Endpoint("hdfs.namenode.jmx")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:50070", ep)

	loc, _ = r.Get("yarn.resource-manager.process")
	assert.True(t, loc.Exists(context.Background()))
	assert.Equal(t, "process://unittest@10", loc.Endpoint())
}

func TestRegistry_LoadConfigOverrides(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		overrides map[string]any
		wantArgs  map[string]any
	}{
		{"无参数无覆盖", `s: {class: DummyLocator}`, nil, map[string]any{}},
		{"有参数无覆盖", `s: {class: DummyLocator, key: value}`, nil, map[string]any{"key": "value"}},
		{"覆盖不存在的键被忽略", `s: {class: DummyLocator}`, map[string]any{"key": "value"}, map[string]any{}},
		{"覆盖其他键被忽略", `s: {class: DummyLocator, key: value}`, map[string]any{"another key": "value"}, map[string]any{"key": "value"}},
		{"覆盖已有键", `s: {class: DummyLocator, key: value}`, map[string]any{"key": "another value"}, map[string]any{"key": "another value"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			require.NoError(t, r.Parse([]byte(tt.doc), tt.overrides))
			loc, ok := r.Get("s")
			require.True(t, ok)
			assert.Equal(t, tt.wantArgs, loc.(*Static).Args())
		})
	}
}

func TestRegistry_LoadConfigHostOverride(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.LoadConfig("testdata/locator.yaml", map[string]any{"host": "hadoop"}))

	ep, err := r.Endpoint("hdfs.namenode.jmx")
	require.NoError(t, err)
	assert.Equal(t, "http://hadoop:50070", ep)
}

func TestRegistry_ParseStatic(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Parse([]byte(`
fixed:
  class: StaticLocator
  endpoint: http://10.0.0.1:8088
  exists: false
`), nil))

	ep, err := r.Endpoint("fixed")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8088", ep)
	assert.Empty(t, r.Exists(context.Background()))
}

func TestRegistry_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"未知类", `s: {class: FooLocator}`, ErrUnknownClass},
		{"缺少类", `s: {host: x}`, ErrUnknownClass},
		{"定义不是映射", `s: 1`, ErrLoadConfig},
		{"非法 YAML", "s: [", ErrLoadConfig},
		{"HTTP 多余参数", `s: {class: HttpServiceLocator, path: /jmx}`, ErrInvalidArgument},
		{"HTTP 端口非法", `s: {class: HttpServiceLocator, port: http}`, ErrInvalidArgument},
		{"进程模式非法", `s: {class: ProcessLocator, pattern: "("}`, ErrInvalidArgument},
		{"进程多余参数", `s: {class: ProcessLocator, user: root}`, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestRegistry().Parse([]byte(tt.doc), nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegistry_LoadConfigMissingFile(t *testing.T) {
	err := newTestRegistry().LoadConfig("testdata/missing.yaml", nil)
	assert.ErrorIs(t, err, ErrLoadConfig)
}
