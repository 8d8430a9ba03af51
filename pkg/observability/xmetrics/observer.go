package xmetrics

import (
	"context"
	"strconv"
	"time"
)

// Kind 观测跨度类型
type Kind int

const (
	// KindInternal 内部操作（如一次 schema 扫描）
	KindInternal Kind = iota
	// KindClient 对外部数据源的调用
	KindClient
)

// String 返回 Kind 的可读表示
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "Internal"
	case KindClient:
		return "Client"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Status 观测结果状态
type Status string

const (
	// StatusOK 成功
	StatusOK Status = "ok"
	// StatusError 失败
	StatusError Status = "error"
	// StatusDegraded 数据源失败，结果降级为空值
	StatusDegraded Status = "degraded"
)

// Attr 观测属性
type Attr struct {
	Key   string
	Value any
}

// String 创建字符串属性
func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Int 创建整数属性
func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

// Bool 创建布尔属性
func Bool(key string, value bool) Attr {
	return Attr{Key: key, Value: value}
}

// Duration 创建时间间隔属性，以纳秒记录
func Duration(key string, value time.Duration) Attr {
	return Attr{Key: key, Value: value}
}

// SpanOptions 观测跨度的创建参数
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 观测跨度结束时的结果
type Result struct {
	// Status 为空时根据 Err 推导
	Status Status
	Err    error
	Attrs  []Attr
}

// Span 一次观测跨度
type Span interface {
	// End 结束观测并记录结果，多次调用只生效一次
	End(result Result)
}

// Observer 统一观测接口
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 空实现
type NoopObserver struct{}

// Start 返回 ctx 和空跨度
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度
type NoopSpan struct{}

// End 空实现
func (NoopSpan) End(Result) {}

// Start 使用 observer 开始观测
//
// 保证返回非 nil 的 ctx 和 Span：nil ctx 替换为 context.Background()，
// nil observer 或 observer 返回 nil Span 时使用 NoopSpan。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}
