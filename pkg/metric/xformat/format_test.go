package xformat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmon/pkg/metric/xschema"
)

func record(name string, value any, unit string) xschema.Record {
	return xschema.Record{
		Name:        name,
		Type:        xschema.DefaultType,
		Unit:        unit,
		Value:       value,
		DisplayName: xschema.DisplayName(name),
	}
}

func testMetrics() Metrics {
	return Metrics{
		"a.count": record("a.count", 5.0, "times"),
		"a.mem":   record("a.mem", int64(2048), "bytes"),
		"a.name":  record("a.name", "x", ""),
		"a.none":  record("a.none", nil, "bytes"),
		"b.x":     record("b.x", 1, ""),
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{13, "13.0B"},
		{1023, "1023.0B"},
		{1024, "1.0KiB"},
		{2048, "2.0KiB"},
		{1536, "1.5KiB"},
		{1048576, "1.0MiB"},
		{1073741824, "1.0GiB"},
		{-2048, "-2.0KiB"},
		{0, "0.0B"},
		{1 << 60, "1.0EiB"},
		{1 << 80, "1.0YiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanSize(tt.in), "%v", tt.in)
	}
}

func TestHuman(t *testing.T) {
	got, err := Human(testMetrics(), "a.*")
	require.NoError(t, err)
	assert.Equal(t, "a.count: 5 times\n"+
		"a.mem:   2.0KiB\n"+
		"a.name:  x", got)
}

func TestHuman_DefaultPattern(t *testing.T) {
	got, err := Human(Metrics{"b.x": record("b.x", 1, "")}, "")
	require.NoError(t, err)
	assert.Equal(t, "b.x: 1", got)
}

func TestHuman_NoMatch(t *testing.T) {
	got, err := Human(testMetrics(), "zookeeper.*")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHuman_BytesNonNumeric(t *testing.T) {
	got, err := Human(Metrics{"m": record("m", "n/a", "bytes")}, "*")
	require.NoError(t, err)
	assert.Equal(t, "m: n/a bytes", got)
}

func TestSubagent(t *testing.T) {
	metrics := testMetrics()
	metrics["hadoop.yarn.resource-manager.heap"] = record("hadoop.yarn.resource-manager.heap", uint32(7), "")
	noDisplay := record("unit.test.count.2456940119", 3, "")
	noDisplay.DisplayName = ""
	metrics[noDisplay.Name] = noDisplay

	got, err := Subagent(metrics, "")
	require.NoError(t, err)
	assert.Equal(t, "aCount = 5\n"+
		"aMem = 2048\n"+
		"aName = x\n"+
		"bX = 1\n"+
		"hadoopYarnResourceManagerHeap = 7\n"+
		"unitTestCount.2456940119 = 3", got)
}

func TestJSON(t *testing.T) {
	got, err := JSON(testMetrics(), "a.n*")
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "x", decoded["a.name"]["value"])
	assert.Nil(t, decoded["a.none"]["value"])
	assert.Equal(t, "aNone", decoded["a.none"]["display_name"])
}

func TestBadPattern(t *testing.T) {
	for _, f := range []Formatter{Human, Subagent, JSON} {
		_, err := f(testMetrics(), "[")
		assert.ErrorIs(t, err, ErrBadPattern)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Formats() {
		f, err := Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, f)
	}
	_, err := Lookup("mib")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func mibMetrics() Metrics {
	descr := "heap in use"
	heap := xschema.Record{Name: "hadoop.svc.heap", OID: "hadoop.1.1", Type: "Counter64", Description: &descr}
	threads := xschema.Record{Name: "hadoop.svc.threads", OID: "hadoop.1.2", Type: "Gauge32"}
	return Metrics{heap.Name: heap, threads.Name: threads, "x": {Name: "x", OID: "1"}}
}

func TestObjects(t *testing.T) {
	objects := Objects(mibMetrics())
	require.Len(t, objects, 3)

	assert.Equal(t, Object{Parent: "hadoop", Name: "hadoopSvc", OID: "1"}, objects[0])
	assert.Equal(t, "hadoopSvc", objects[1].Parent)
	assert.Equal(t, "hadoopSvcHeap", objects[1].Name)
	assert.Equal(t, "1", objects[1].OID)
	require.NotNil(t, objects[1].Record)
	assert.Equal(t, "Counter64", objects[1].Record.Type)
	assert.Equal(t, "hadoopSvcThreads", objects[2].Name)
	assert.Equal(t, "2", objects[2].OID)
}

func TestRenderMIB(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mib")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.txt"), []byte("old"), 0o644))

	written, err := RenderMIB(Objects(mibMetrics()), "testdata/mib", out)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "DESCR.txt"), filepath.Join(out, "HADOOP-MIB.txt")}, written)

	data, err := os.ReadFile(filepath.Join(out, "HADOOP-MIB.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hadoopSvc OBJECT IDENTIFIER ::= { hadoop 1 }\n"+
		"hadoopSvcHeap OBJECT Counter64 ::= { hadoopSvc 1 }\n"+
		"hadoopSvcThreads OBJECT Gauge32 ::= { hadoopSvc 2 }\n", string(data))

	data, err = os.ReadFile(filepath.Join(out, "DESCR.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hadoopSvcHeap: heap in use\nhadoopSvcThreads: \n", string(data))

	_, err = os.Stat(filepath.Join(out, "stale.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderMIB_BadTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("{{.Missing"), 0o644))

	_, err := RenderMIB(nil, dir, filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, ErrTemplate)
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 1.5, 1.5, true},
		{"float32", float32(2), 2, true},
		{"int", 3, 3, true},
		{"int64", int64(-4), -4, true},
		{"int32", int32(5), 5, true},
		{"uint32", uint32(6), 6, true},
		{"uint64", uint64(7), 7, true},
		{"字符串", "8", 0, false},
		{"nil", nil, 0, false},
		{"布尔", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Float(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
