package xschema

import (
	"github.com/omeyang/xmon/pkg/metric/xpath"
	"github.com/omeyang/xmon/pkg/observability/xlog"
)

type options struct {
	name     string
	eval     *xpath.Evaluator
	logger   xlog.Logger
	executor Executor
}

// Option Schema 配置选项
type Option func(*options)

// WithName 设置 schema 名称，仅用于日志
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithEvaluator 设置路径表达式求值器，默认使用 xpath.NewEvaluator()
func WithEvaluator(e *xpath.Evaluator) Option {
	return func(o *options) {
		if e != nil {
			o.eval = e
		}
	}
}

// WithLogger 设置日志，默认使用 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithExecutor 设置初始的请求执行器
func WithExecutor(fn Executor) Option {
	return func(o *options) {
		o.executor = fn
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) log() xlog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return xlog.Default()
}
