package xpath_test

import (
	"context"
	"fmt"

	"github.com/omeyang/xmon/pkg/metric/xpath"
)

func ExampleEval() {
	scope := map[string]any{
		"table": []any{
			map[string]any{"version": "1"},
			map[string]any{"version": "last", "runs": []any{
				map[string]any{"name": "first", "count": 1},
				map[string]any{"name": "second", "count": 3},
			}},
		},
		"memory": []any{100, 200},
	}

	ctx := context.Background()
	for _, expr := range []string{
		"memory => 1",
		"memory => 2",
		"table => filter(version=last) => runs => filter(name=second) => count",
		"table => 1 => runs => 0 => hash(key=name)",
	} {
		v, err := xpath.Eval(ctx, scope, expr)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(v)
	}
	// Output:
	// 200
	// <nil>
	// 3
	// 2456940119
}

func ExampleNewEvaluator() {
	upper := func(scope any, args xpath.Args) (any, error) {
		m, ok := scope.(map[string]any)
		if !ok {
			return nil, nil
		}
		key, _ := args.Lookup("key")
		return fmt.Sprintf("<%v>", m[key]), nil
	}

	e := xpath.NewEvaluator(xpath.WithFunction("wrap", upper))
	v, _ := e.Eval(context.Background(), map[string]any{"name": "nn"}, xpath.MustParse("wrap(key=name)"))
	fmt.Println(v)
	// Output:
	// <nn>
}
