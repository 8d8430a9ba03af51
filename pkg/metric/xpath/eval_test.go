package xpath

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

const responseJSON = `{
  "table": [
    {"version": "1"},
    {"version": "last", "runs": [
      {"name": "first", "count": 1},
      {"name": "second", "count": 3}
    ]}
  ],
  "memory": [100, 200]
}`

func response(t *testing.T) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(responseJSON), &v))
	return v
}

func TestEvaluator_Eval(t *testing.T) {
	scope := response(t)
	e := NewEvaluator(WithLogger(xlog.Discard()))

	tests := []struct {
		expr string
		want any
	}{
		{"table => filter(version=1) => runs", nil},
		{"unknown", nil},
		{"table => filter(version=last) => runs => filter(name=first) => count", float64(1)},
		{"memory => 0", float64(100)},
		{"memory => 1", float64(200)},
		{"memory => 2", nil},
		{"table => 1 => runs => 0 => hash(key=name)", uint32(2456940119)},
		{"table => 1 => runs => 1 => hash(key=name)", uint32(3055489385)},
		{"table => 1 => runs => 0 => name", "first"},
		{"table => 0 => runs", nil},
		{"memory => name", nil},
		{"table => 1 => version => 0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Eval(context.Background(), scope, MustParse(tt.expr))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_EmptyExpr(t *testing.T) {
	scope := response(t)
	got, err := NewEvaluator().Eval(context.Background(), scope, MustParse(""))
	require.NoError(t, err)
	assert.Equal(t, scope, got)
}

func TestEvaluator_NilScope(t *testing.T) {
	got, err := NewEvaluator().Eval(context.Background(), nil, MustParse("address"))
	require.NoError(t, err)
	assert.Nil(t, got)

	// nil 作用域会短路，未知函数不会被触发
	got, err = NewEvaluator().Eval(context.Background(), nil, MustParse("nope(a=1)"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvaluator_UnknownFunction(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Eval(context.Background(), response(t), MustParse("memory => nope(a=1)"))
	assert.ErrorIs(t, err, ErrUnknownFunction)

	assert.ErrorIs(t, e.Check(MustParse("memory => nope(a=1)")), ErrUnknownFunction)
	assert.NoError(t, e.Check(MustParse("table => filter(version=1) => 0 => hash(key=name)")))
}

func TestEvaluator_MissingArgument(t *testing.T) {
	_, err := NewEvaluator().Eval(context.Background(), map[string]any{"name": "first"}, MustParse("hash(nokey=name)"))
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestEvaluator_WithFunction(t *testing.T) {
	length := func(scope any, _ Args) (any, error) {
		list, ok := scope.([]any)
		if !ok {
			return nil, nil
		}
		return len(list), nil
	}
	e := NewEvaluator(WithFunction("len", length), WithFunction("", length), WithFunction("nil", nil))

	assert.True(t, e.Has("len"))
	assert.True(t, e.Has("filter"))
	assert.False(t, e.Has(""))
	assert.False(t, e.Has("nil"))

	got, err := e.Eval(context.Background(), response(t), MustParse("memory => len(of=items)"))
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestEval(t *testing.T) {
	got, err := Eval(context.Background(), map[string]any{"memory": []any{100, 200}}, "memory => 1")
	require.NoError(t, err)
	assert.Equal(t, 200, got)

	_, err = Eval(context.Background(), nil, "filter(a=1, b)")
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestEvaluator_MapAnyKeys(t *testing.T) {
	scope := map[any]any{"name": "first", 1: "one"}
	got, err := NewEvaluator().Eval(context.Background(), scope, MustParse("name"))
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestList(t *testing.T) {
	got, ok := List([]map[string]any{{"id": 1}, {"id": 2}})
	require.True(t, ok)
	assert.Equal(t, []any{map[string]any{"id": 1}, map[string]any{"id": 2}}, got)

	got, ok = List([]any{1})
	require.True(t, ok)
	assert.Equal(t, []any{1}, got)

	_, ok = List(map[string]any{})
	assert.False(t, ok)
}
