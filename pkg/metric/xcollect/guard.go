package xcollect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// guard 为单个端点的客户端加上熔断和重试
//
// 调用顺序：重试在外，熔断在内。熔断打开后的拒绝不会再重试。
type guard struct {
	client   Client
	cb       *gobreaker.CircuitBreaker[any]
	attempts uint
	delay    time.Duration
	logger   xlog.Logger
	endpoint string
}

func newGuard(endpoint string, client Client, o *options) *guard {
	g := &guard{
		client:   client,
		attempts: o.attempts,
		delay:    o.retryDelay,
		logger:   o.log(),
		endpoint: endpoint,
	}
	if o.breakerFailures > 0 {
		g.cb = gobreaker.NewCircuitBreaker[any](breakerSettings(endpoint, o, g.logger))
	}
	return g
}

func breakerSettings(endpoint string, o *options, logger xlog.Logger) gobreaker.Settings {
	failures := o.breakerFailures
	return gobreaker.Settings{
		Name:        endpoint,
		MaxRequests: 1,
		Timeout:     o.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 配置错误和调用方取消不代表端点不可用
		IsExcluded: func(err error) bool {
			return IsConfigurationError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "breaker state changed",
				xlog.Endpoint(name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
}

// State 返回熔断器状态，未启用熔断时恒为 closed
func (g *guard) State() gobreaker.State {
	if g.cb == nil {
		return gobreaker.StateClosed
	}
	return g.cb.State()
}

// Request 实现 Client
func (g *guard) Request(ctx context.Context, query xschema.Query) (any, error) {
	if g.attempts <= 1 {
		return g.once(ctx, query)
	}
	return retry.NewWithData[any](
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Debug(ctx, "retry request",
				xlog.Endpoint(g.endpoint),
				slog.Int("attempt", int(n)+1),
				xlog.Err(err),
			)
		}),
	).Do(func() (any, error) {
		return g.once(ctx, query)
	})
}

func (g *guard) once(ctx context.Context, query xschema.Query) (any, error) {
	if g.cb == nil {
		return g.client.Request(ctx, query)
	}
	return g.cb.Execute(func() (any, error) {
		return g.client.Request(ctx, query)
	})
}

// retryable 只重试数据源故障，熔断拒绝和配置错误立即返回
func retryable(err error) bool {
	if IsConfigurationError(err) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrDataSource)
}
