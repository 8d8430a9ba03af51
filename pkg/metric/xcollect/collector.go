package xcollect

import (
	"context"
	"sync"
	"time"

	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/observability/xmetrics"
)

const component = "xcollect"

// Collector 将 schema 绑定到默认端点
//
// 创建时把自身注册为 schema 的执行器；每个端点的客户端按需创建并缓存，
// 熔断状态随客户端保留。
type Collector struct {
	endpoint string
	schema   *xschema.Schema
	opts     *options

	mu      sync.Mutex
	clients map[string]*guard
}

// New 创建 Collector
//
// 端点协议不受支持时返回 ErrUnknownScheme。
func New(endpoint string, schema *xschema.Schema, opts ...Option) (*Collector, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	o := applyOptions(opts)
	if o.factory == nil {
		o.factory = func(ep string) (Client, error) {
			return NewClient(ep, opts...)
		}
	}

	c := &Collector{
		endpoint: endpoint,
		schema:   schema,
		opts:     o,
		clients:  make(map[string]*guard),
	}
	if _, err := c.client(endpoint); err != nil {
		return nil, err
	}
	schema.SetExecutor(c.Execute)
	return c, nil
}

// Endpoint 返回默认端点
func (c *Collector) Endpoint() string {
	return c.endpoint
}

// Schema 返回绑定的 schema
func (c *Collector) Schema() *xschema.Schema {
	return c.schema
}

// Collect 以 oid、name 为根前缀扫描 schema
func (c *Collector) Collect(ctx context.Context, oid, name string) (map[string]xschema.Record, error) {
	return c.schema.Scan(ctx, oid, name)
}

// Execute 实现 xschema.Executor
//
// endpoint 为空时使用默认端点。数据源故障（含超时和熔断拒绝）记录日志后返回 nil, nil，
// 受影响的子树降级为 nil；配置错误原样返回并终止扫描。
func (c *Collector) Execute(ctx context.Context, query xschema.Query, endpoint string) (any, error) {
	if endpoint == "" {
		endpoint = c.endpoint
	}
	log := c.opts.log()

	client, err := c.client(endpoint)
	if err != nil {
		return nil, configurationError(err)
	}

	scheme, _ := ParseScheme(endpoint)
	ctx, span := xmetrics.Start(ctx, c.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "request",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("scheme", string(scheme))},
	})

	reqCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	start := time.Now()
	data, err := client.Request(reqCtx, query)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Duration("elapsed", elapsed)}})
		return data, nil
	case IsConfigurationError(err):
		span.End(xmetrics.Result{Err: err})
		return nil, configurationError(err)
	case ctx.Err() != nil:
		// 调用方取消，向上传递终止扫描
		span.End(xmetrics.Result{Err: err})
		return nil, ctx.Err()
	default:
		log.Warn(ctx, "could not retrieve data",
			xlog.Endpoint(endpoint),
			xlog.Query(query),
			xlog.Duration(elapsed),
			xlog.Err(err),
		)
		span.End(xmetrics.Result{Status: xmetrics.StatusDegraded, Err: err})
		return nil, nil
	}
}

// client 返回端点对应的受保护客户端，首次使用时创建
func (c *Collector) client(endpoint string) (*guard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.clients[endpoint]; ok {
		return g, nil
	}
	cl, err := c.opts.factory(endpoint)
	if err != nil {
		return nil, err
	}
	g := newGuard(endpoint, cl, c.opts)
	c.clients[endpoint] = g
	return g, nil
}
