package xcollect

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/observability/xmetrics"
)

const testSchema = `
oid: 1
name: svc
requests:
  - query: /jmx
    resources:
      - oid: 1
        name: heap
        path: heap
      - oid: 2
        name: threads
        path: threads
`

const (
	heapKey    = "hadoop.svc.heap"
	threadsKey = "hadoop.svc.threads"
)

func parseTestSchema(t *testing.T) *xschema.Schema {
	t.Helper()
	s, err := xschema.Parse([]byte(testSchema), xschema.WithName("svc"), xschema.WithLogger(xlog.Discard()))
	require.NoError(t, err)
	return s
}

// mockFactory 让所有端点共用同一个 mock 客户端
func mockFactory(m Client) Option {
	return WithClientFactory(func(string) (Client, error) { return m, nil })
}

func TestNew(t *testing.T) {
	s := parseTestSchema(t)

	_, err := New("ftp://localhost", s)
	assert.ErrorIs(t, err, ErrUnknownScheme)
	assert.True(t, IsConfigurationError(err))

	_, err = New("localhost:8080", s)
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = New("process://root@x", s)
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = New("http://localhost", nil)
	assert.ErrorIs(t, err, ErrNilSchema)

	c, err := New("http://localhost:50070", s)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:50070", c.Endpoint())
	assert.Same(t, s, c.Schema())

	c, err = New("process://root@12212", s)
	require.NoError(t, err)
	assert.Equal(t, "process://root@12212", c.Endpoint())
}

func TestCollector_Collect(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClient(ctrl)
	m.EXPECT().Request(gomock.Any(), "/jmx").Return(map[string]any{"heap": 4096.0, "threads": 12.0}, nil)

	c, err := New("http://localhost:50070", parseTestSchema(t), mockFactory(m), WithLogger(xlog.Discard()))
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), "1.3", "hadoop")
	require.NoError(t, err)
	assert.Equal(t, 4096.0, got[heapKey].Value)
	assert.Equal(t, "hadoop.svc.heap", got[heapKey].Name)
	assert.Equal(t, 12.0, got[threadsKey].Value)
}

func TestCollector_DataSourceDegrades(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"数据源故障", dataSourceError("get: %w", errors.New("connection refused"))},
		{"超时", context.DeadlineExceeded},
		{"未知错误", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := NewMockClient(ctrl)
			m.EXPECT().Request(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			c, err := New("http://localhost", parseTestSchema(t), mockFactory(m), WithLogger(xlog.Discard()))
			require.NoError(t, err)

			got, err := c.Collect(context.Background(), "1.3", "hadoop")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Nil(t, got[heapKey].Value)
			assert.Nil(t, got[threadsKey].Value)
		})
	}
}

func TestCollector_ConfigurationErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClient(ctrl)
	m.EXPECT().Request(gomock.Any(), gomock.Any()).Return(nil, ErrInvalidQuery)

	c, err := New("process://root@1", parseTestSchema(t), mockFactory(m), WithLogger(xlog.Discard()))
	require.NoError(t, err)

	_, err = c.Collect(context.Background(), "1.3", "hadoop")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.ErrorIs(t, err, xschema.ErrConfiguration)
	assert.True(t, xschema.IsConfigurationError(err))
}

func TestCollector_ExecuteEndpointOverride(t *testing.T) {
	var endpoints []string
	factory := WithClientFactory(func(ep string) (Client, error) {
		endpoints = append(endpoints, ep)
		if ep == "ftp://other" {
			return nil, ErrUnknownScheme
		}
		return clientFunc(func(context.Context, xschema.Query) (any, error) { return ep, nil }), nil
	})

	c, err := New("http://default", parseTestSchema(t), factory, WithLogger(xlog.Discard()))
	require.NoError(t, err)

	got, err := c.Execute(context.Background(), "/q", "")
	require.NoError(t, err)
	assert.Equal(t, "http://default", got)

	got, err = c.Execute(context.Background(), "/q", "http://other")
	require.NoError(t, err)
	assert.Equal(t, "http://other", got)

	// 客户端按端点缓存
	_, err = c.Execute(context.Background(), "/q", "http://other")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://default", "http://other"}, endpoints)

	_, err = c.Execute(context.Background(), "/q", "ftp://other")
	assert.ErrorIs(t, err, ErrUnknownScheme)
	assert.ErrorIs(t, err, xschema.ErrConfiguration)
}

func TestCollector_Timeout(t *testing.T) {
	slow := clientFunc(func(ctx context.Context, _ xschema.Query) (any, error) {
		<-ctx.Done()
		return nil, dataSourceError("slow: %w", ctx.Err())
	})
	c, err := New("http://localhost", parseTestSchema(t),
		WithClientFactory(func(string) (Client, error) { return slow, nil }),
		WithTimeout(20*time.Millisecond),
		WithLogger(xlog.Discard()),
	)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), "1.3", "hadoop")
	require.NoError(t, err)
	assert.Nil(t, got[heapKey].Value)
}

func TestCollector_CallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cl := clientFunc(func(context.Context, xschema.Query) (any, error) {
		cancel()
		return nil, dataSourceError("canceled: %w", context.Canceled)
	})
	c, err := New("http://localhost", parseTestSchema(t),
		WithClientFactory(func(string) (Client, error) { return cl, nil }),
		WithLogger(xlog.Discard()),
	)
	require.NoError(t, err)

	_, err = c.Collect(ctx, "1.3", "hadoop")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollector_HTTPEndToEnd(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jmx", r.URL.Path)
		_, _ = w.Write([]byte(`{"heap": 2048, "threads": 3}`))
	})

	c, err := New(srv.URL, parseTestSchema(t), WithHTTPClient(srv.Client()), WithLogger(xlog.Discard()))
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), "1.3", "hadoop")
	require.NoError(t, err)
	assert.Equal(t, float64(2048), got[heapKey].Value)
	assert.Equal(t, float64(3), got[threadsKey].Value)
}

func TestCollector_Observer(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	obs, err := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(mp))
	require.NoError(t, err)

	calls := 0
	cl := clientFunc(func(context.Context, xschema.Query) (any, error) {
		calls++
		if calls == 1 {
			return map[string]any{"heap": 1.0}, nil
		}
		return nil, dataSourceError("down")
	})
	c, err := New("http://localhost", parseTestSchema(t),
		WithClientFactory(func(string) (Client, error) { return cl, nil }),
		WithObserver(obs),
		WithLogger(xlog.Discard()),
	)
	require.NoError(t, err)

	for range 2 {
		_, err = c.Collect(context.Background(), "1.3", "hadoop")
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != xmetrics.MetricOperationTotal {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				counts[status.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"ok": 1, "degraded": 1}, counts)
}

// clientFunc 函数适配 Client
type clientFunc func(ctx context.Context, query xschema.Query) (any, error)

func (f clientFunc) Request(ctx context.Context, query xschema.Query) (any, error) {
	return f(ctx, query)
}
