package xpath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// Func 路径表达式中可调用的函数
//
// 函数不得修改 scope。形状不符时应返回 nil, nil；
// 只有配置问题（如缺少必需参数）才返回错误。
type Func func(scope any, args Args) (any, error)

// Option 求值器配置选项
type Option func(*Evaluator)

// WithFunction 注册函数，同名时覆盖已有函数（包括内置函数）
func WithFunction(name string, fn Func) Option {
	return func(e *Evaluator) {
		if name != "" && fn != nil {
			e.funcs[name] = fn
		}
	}
}

// WithLogger 设置求值器使用的日志
func WithLogger(l xlog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// Evaluator 路径表达式求值器，持有函数注册表
//
// 创建后只读，可被多个 goroutine 并发使用。
type Evaluator struct {
	funcs  map[string]Func
	logger xlog.Logger
}

// NewEvaluator 创建求值器，默认注册 filter 和 hash
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		funcs: map[string]Func{
			"filter": Filter,
			"hash":   Hash,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = NewEvaluator()

// Eval 使用默认求值器解析并计算表达式
func Eval(ctx context.Context, scope any, expr string) (any, error) {
	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return defaultEvaluator.Eval(ctx, scope, e)
}

// Has 是否注册了名为 name 的函数
func (e *Evaluator) Has(name string) bool {
	_, ok := e.funcs[name]
	return ok
}

// Check 检查表达式中调用的函数是否都已注册
func (e *Evaluator) Check(expr Expr) error {
	for _, seg := range expr.segments {
		if seg.Kind == SegmentCall && !e.Has(seg.Name) {
			return fmt.Errorf("%w: %s", ErrUnknownFunction, seg.Name)
		}
	}
	return nil
}

// Eval 对 scope 计算表达式
//
// 地址解析失败时返回 nil, nil；未知函数等配置错误返回 error。
func (e *Evaluator) Eval(ctx context.Context, scope any, expr Expr) (any, error) {
	result := scope
	for _, seg := range expr.segments {
		if result == nil {
			return nil, nil
		}

		switch seg.Kind {
		case SegmentIndex:
			list, ok := List(result)
			if !ok || seg.Index >= len(list) {
				e.miss(ctx, expr, seg, result)
				return nil, nil
			}
			result = list[seg.Index]

		case SegmentCall:
			fn, ok := e.funcs[seg.Name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, seg.Name)
			}
			v, err := fn(result, seg.Args)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", seg.Name, err)
			}
			result = v

		default:
			m, ok := asMap(result)
			if !ok {
				e.miss(ctx, expr, seg, result)
				return nil, nil
			}
			v, found := m[seg.Name]
			if !found {
				e.miss(ctx, expr, seg, result)
				return nil, nil
			}
			result = v
		}
	}
	return result, nil
}

func (e *Evaluator) miss(ctx context.Context, expr Expr, seg Segment, scope any) {
	e.log().Debug(ctx, "path miss",
		xlog.Path(expr.String()),
		slog.String("segment", seg.String()),
		slog.String("scope", fmt.Sprintf("%T", scope)),
	)
}

func (e *Evaluator) log() xlog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return xlog.Default()
}
