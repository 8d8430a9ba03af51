package xcollect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "多行属性",
			in: `
{
  "committed" = 29556736;
  "init" = 30504832;
  "max" = 259522560;
  "used" = 15615120;
 }
`,
			want: map[string]any{
				"committed": int64(29556736),
				"init":      int64(30504832),
				"max":       int64(259522560),
				"used":      int64(15615120),
			},
		},
		{"单行无空格", `"count"=7;`, map[string]any{"count": int64(7)}},
		{"同一行多个", `"a" = 1; "b" = 2;`, map[string]any{"a": int64(1), "b": int64(2)}},
		{"布尔被忽略", `"flag" = true; "n" = 3;`, map[string]any{"n": int64(3)}},
		{"小数被忽略", `"ratio" = 0.75;`, map[string]any{}},
		{"负数被忽略", `"delta" = -5;`, map[string]any{}},
		{"字符串值被忽略", `"name" = "x"; "n" = 1;`, map[string]any{"n": int64(1)}},
		{"缺少分号", `"n" = 1`, map[string]any{}},
		{"溢出被忽略", `"big" = 99999999999999999999;`, map[string]any{}},
		{"重复 key 后者覆盖", `"n" = 1; "n" = 2;`, map[string]any{"n": int64(2)}},
		{"无关文本", "Welcome to JMX terminal. Type \"help\" for available commands.", map[string]any{}},
		{"空输入", "", map[string]any{}},
		{"未闭合引号", `"abc`, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOutput([]byte(tt.in)))
		})
	}
}

func FuzzParseOutput(f *testing.F) {
	f.Add(`"committed" = 29556736;`)
	f.Add(`"a"=1;"b"=x;`)
	f.Add(`"`)
	f.Fuzz(func(t *testing.T, in string) {
		for k, v := range ParseOutput([]byte(in)) {
			n, ok := v.(int64)
			if !ok || n < 0 {
				t.Fatalf("key %q: unexpected value %#v", k, v)
			}
		}
	})
}
