package xpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		scope any
		want  any
	}{
		{"first", map[string]any{"name": "first"}, uint32(2456940119)},
		{"second", map[string]any{"name": "second"}, uint32(3055489385)},
		{"值不存在", map[string]any{"noname": "first"}, nil},
		{"值为 nil", map[string]any{"name": nil}, nil},
		{"非映射", []any{"first"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hash(tt.scope, Args{{Key: "key", Value: "name"}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHash_FloatMatchesInt(t *testing.T) {
	args := Args{{Key: "key", Value: "id"}}
	fromJSON, err := Hash(map[string]any{"id": float64(7)}, args)
	require.NoError(t, err)
	fromInt, err := Hash(map[string]any{"id": 7}, args)
	require.NoError(t, err)
	assert.Equal(t, fromInt, fromJSON)
}

func TestHash_NoKey(t *testing.T) {
	_, err := Hash(map[string]any{"name": "first"}, Args{{Key: "nokey", Value: "name"}})
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestFilter(t *testing.T) {
	data := []any{
		map[string]any{"name": "first", "version": "1", "count": 1},
		map[string]any{"name": "first", "version": "last", "count": 2},
		map[string]any{"name": "second", "version": "last", "count": 3},
	}

	tests := []struct {
		name string
		args Args
		want any
	}{
		{"单个键", Args{{"name", "first"}}, data[0]},
		{"两个键", Args{{"name", "first"}, {"version", "last"}}, data[1]},
		{"未找到", Args{{"name", "third"}}, nil},
		{"数字按字符串比较", Args{{"count", "3"}}, data[2]},
		{"缺失的键不匹配", Args{{"owner", ""}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(data, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_NotValidList(t *testing.T) {
	tests := []struct {
		name  string
		scope any
	}{
		{"字符串", "string"},
		{"整数", 10},
		{"映射", map[string]any{"key": "value"}},
		{"混合序列", []any{"string", 10}},
		{"部分非映射", []any{map[string]any{"name": "first"}, "string"}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(tt.scope, Args{{"name", "first"}})
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestFilter_TypedSlice(t *testing.T) {
	data := []map[string]any{{"name": "first"}, {"name": "second"}}
	got, err := Filter(data, Args{{"name", "second"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "second"}, got)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{float64(1), "1"},
		{float64(1.5), "1.5"},
		{float64(2456940119), "2456940119"},
		{float32(2), "2"},
		{3, "3"},
		{int64(-4), "-4"},
		{int32(5), "5"},
		{uint32(3055489385), "3055489385"},
		{uint64(6), "6"},
		{true, "true"},
		{[]any{1, "a"}, "[1 a]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}
