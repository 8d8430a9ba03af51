package xrun

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

func quiet() []Option {
	return []Option{WithLogger(xlog.Discard()), WithName("test")}
}

func TestGroup_Wait(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name     string
		services []func(context.Context) error
		cancel   error
		want     error
	}{
		{"无服务", nil, nil, nil},
		{"正常返回", []func(context.Context) error{
			func(context.Context) error { return nil },
		}, nil, nil},
		{"服务出错", []func(context.Context) error{
			func(context.Context) error { return errBoom },
			func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
		}, nil, errBoom},
		{"显式取消原因", []func(context.Context) error{
			func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
		}, errBoom, errBoom},
		{"nil 服务", []func(context.Context) error{nil}, nil, ErrNilFunc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := NewGroup(context.Background(), quiet()...)
			for _, svc := range tt.services {
				g.Go("svc", svc)
			}
			if tt.cancel != nil {
				g.Cancel(tt.cancel)
			}
			err := g.Wait()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGroup_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, _ := NewGroup(ctx, quiet()...)
	g.Go("svc", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()
	assert.NoError(t, g.Wait())
}

func TestGroup_InternalCancelSurfaces(t *testing.T) {
	g, _ := NewGroup(context.Background(), quiet()...)
	g.Go("svc", func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestRun_Signal(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	ctx := withTestSigChan(context.Background(), sigCh)

	var stopped atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, quiet(), map[string]func(context.Context) error{
			"worker": func(ctx context.Context) error {
				<-ctx.Done()
				stopped.Store(true)
				return ctx.Err()
			},
		})
	}()

	sigCh <- syscall.SIGTERM
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSignal)
		var sigErr *SignalError
		require.ErrorAs(t, err, &sigErr)
		assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
		assert.True(t, stopped.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after signal")
	}
}

func TestRun_ServicesFinish(t *testing.T) {
	err := Run(context.Background(), quiet(), map[string]func(context.Context) error{
		"a": func(context.Context) error { return nil },
		"b": func(context.Context) error { return nil },
	})
	assert.NoError(t, err)
}

func TestRun_ServiceError(t *testing.T) {
	errBoom := errors.New("boom")
	err := Run(context.Background(), quiet(), map[string]func(context.Context) error{
		"bad":  func(context.Context) error { return errBoom },
		"good": func(ctx context.Context) error { <-ctx.Done(); return nil },
	})
	assert.ErrorIs(t, err, errBoom)
}

func TestRun_WithoutSignalHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	opts := append(quiet(), WithoutSignalHandler(), WithSignals(syscall.SIGUSR1))
	err := Run(ctx, opts, map[string]func(context.Context) error{
		"svc": func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
	})
	assert.NoError(t, err)
}

func TestHTTPServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	server := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- HTTPServer(server, time.Second)(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHTTPServer_Errors(t *testing.T) {
	assert.ErrorIs(t, HTTPServer(nil, 0)(context.Background()), ErrNilServer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	// 端口已被占用
	server := &http.Server{Addr: ln.Addr().String(), ReadHeaderTimeout: time.Second}
	assert.Error(t, HTTPServer(server, 0)(context.Background()))
}

func TestSignalError(t *testing.T) {
	err := error(&SignalError{Signal: syscall.SIGINT})
	assert.ErrorIs(t, err, ErrSignal)
	assert.Equal(t, "received signal interrupt", err.Error())
	assert.Len(t, DefaultSignals(), 3)
}
