package xrun

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// Group 协调多个服务的并发运行和关闭。
//
// 任一服务返回错误或 Cancel 被调用时，所有服务的 ctx 都会被取消。
// Wait 只能调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 ctx 在任一服务出错时被取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 以 name 启动一个服务，并记录启动和退出日志。
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		log := g.opts.log()
		attrs := []slog.Attr{slog.String("group", g.opts.name), xlog.Component(name)}

		log.Debug(g.ctx, "service starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn(g.ctx, "service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			log.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Wait 等待所有服务退出
//
// 返回第一个非取消错误。由 Cancel(cause) 或信号触发的关闭返回 cause，
// 普通取消返回 nil。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()

	if errors.Is(err, context.Canceled) && g.causeCtx.Err() == nil {
		// 取消来自服务内部
		return err
	}
	if err == nil || errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() != nil {
			if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
				return cause
			}
		}
		return nil
	}
	return err
}

// Cancel 取消所有服务，cause 会由 Wait 返回。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Run 监听信号并运行 services，直到全部退出
//
// 收到信号时返回 *SignalError。所有服务正常返回后信号监听随之结束。
func Run(ctx context.Context, opts []Option, services map[string]func(ctx context.Context) error) error {
	g, gctx := NewGroup(ctx, opts...)
	sigCtx, stopSignals := context.WithCancel(gctx)
	defer stopSignals()

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go("signal", func(ctx context.Context) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, signals...)
			defer signal.Stop(sigCh)

			var sig os.Signal
			select {
			case sig = <-testSigChan(ctx):
			case sig = <-sigCh:
			case <-sigCtx.Done():
				return nil
			}
			g.opts.log().Info(ctx, "received signal",
				slog.String("group", g.opts.name),
				slog.String("signal", sig.String()),
			)
			g.cancel(&SignalError{Signal: sig})
			return nil
		})
	}

	var wg sync.WaitGroup
	for name, svc := range services {
		wg.Add(1)
		g.Go(name, func(ctx context.Context) error {
			defer wg.Done()
			if svc == nil {
				return ErrNilFunc
			}
			return svc(ctx)
		})
	}
	go func() {
		wg.Wait()
		stopSignals()
	}()
	return g.Wait()
}

// HTTPServerInterface HTTP 服务器接口，*http.Server 满足它
type HTTPServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServer 将 HTTP 服务器包装为服务函数，ctx 取消时优雅关闭
//
// shutdownTimeout <= 0 表示等待所有在途请求完成。
func HTTPServer(server HTTPServerInterface, shutdownTimeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if server == nil {
			return ErrNilServer
		}
		shutdownErrCh := make(chan error, 1)
		listenDone := make(chan struct{})

		go func() {
			select {
			case <-ctx.Done():
				shutdownCtx := context.Background()
				if shutdownTimeout > 0 {
					var cancel context.CancelFunc
					shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
					defer cancel()
				}
				shutdownErrCh <- server.Shutdown(shutdownCtx)
			case <-listenDone:
			}
		}()

		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			select {
			case shutdownErr := <-shutdownErrCh:
				return shutdownErr
			case <-ctx.Done():
				return <-shutdownErrCh
			default:
				// 外部直接关闭
				close(listenDone)
				return nil
			}
		}
		close(listenDone)
		return err
	}
}
