package xservice

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xmon/pkg/metric/xcollect"
	"github.com/omeyang/xmon/pkg/metric/xformat"
	"github.com/omeyang/xmon/pkg/metric/xlocate"
	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// 默认值
const (
	DefaultSchemaDir   = "schemas"
	DefaultConcurrency = 1
	DefaultCacheSize   = 128
)

// Config 采集服务配置
type Config struct {
	// SchemaDir schema 文档目录
	SchemaDir string
	// Concurrency 同时采集的服务数，<=1 表示串行
	Concurrency int
	// CacheSize 缓存的 Collector 数量
	CacheSize int
}

// Option Service 配置选项
type Option func(*Service)

// WithLogger 设置日志，默认使用 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithCollectorOptions 设置创建 Collector 时使用的选项
func WithCollectorOptions(opts ...xcollect.Option) Option {
	return func(s *Service) {
		s.collectorOpts = append(s.collectorOpts, opts...)
	}
}

// Service 采集服务
//
// Collect 之间互斥执行；单次 Collect 内部按 Concurrency 并行。
type Service struct {
	cfg           Config
	registry      *xlocate.Registry
	collectorOpts []xcollect.Option
	logger        xlog.Logger

	mu         sync.Mutex
	collectors *lru.Cache[string, *xcollect.Collector]
}

// New 创建采集服务
func New(cfg Config, registry *xlocate.Registry, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.SchemaDir == "" {
		cfg.SchemaDir = DefaultSchemaDir
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.CacheSize < 1 {
		cfg.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, *xcollect.Collector](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("xservice: create cache: %w", err)
	}

	s := &Service{cfg: cfg, registry: registry, collectors: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) log() xlog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return xlog.Default()
}

// Collect 收集本机所有已定位服务的指标
//
// 没有 schema 的服务被跳过；配置错误中止收集并返回。
func (s *Service) Collect(ctx context.Context, oid, name string) (xformat.Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	services := s.registry.Exists(ctx)
	results := make([]xformat.Metrics, len(services))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, service := range services {
		g.Go(func() error {
			metrics, err := s.collectOne(gctx, service, oid, name)
			if err != nil {
				return fmt.Errorf("%s: %w", service, err)
			}
			results[i] = metrics
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(xformat.Metrics)
	for _, metrics := range results {
		maps.Copy(merged, metrics)
	}
	return merged, nil
}

func (s *Service) collectOne(ctx context.Context, service, oid, name string) (xformat.Metrics, error) {
	endpoint, err := s.registry.Endpoint(service)
	if err != nil {
		return nil, err
	}

	c, ok, err := s.collector(service, endpoint)
	if err != nil || !ok {
		return nil, err
	}

	s.log().Info(ctx, "collecting data", xlog.Schema(service), xlog.Endpoint(endpoint))
	return c.Collect(ctx, oid, name)
}

// collector 返回缓存的 Collector，schema 不存在时 ok 为 false
func (s *Service) collector(service, endpoint string) (*xcollect.Collector, bool, error) {
	key := service + "\x00" + endpoint
	if c, ok := s.collectors.Get(key); ok {
		return c, true, nil
	}

	schema, err := xschema.Load(s.cfg.SchemaDir, service, xschema.WithLogger(s.log()))
	if errors.Is(err, xschema.ErrSchemaNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	opts := append([]xcollect.Option{xcollect.WithLogger(s.log())}, s.collectorOpts...)
	c, err := xcollect.New(endpoint, schema, opts...)
	if err != nil {
		return nil, false, err
	}
	s.collectors.Add(key, c)
	return c, true, nil
}

// Output 按格式渲染指标
func (s *Service) Output(metrics xformat.Metrics, pattern, format string) (string, error) {
	f, err := xformat.Lookup(format)
	if err != nil {
		return "", err
	}
	return f(metrics, pattern)
}

// CheckServices 检查服务映射中 host 应有的服务是否都产生了指标
//
// 服务映射格式为 {主机名: [服务名...]}。某个服务在 metrics 中没有
// "<name>.<service>.*" 形式的指标时记录 warn 日志，并出现在返回值中。
func (s *Service) CheckServices(ctx context.Context, metrics xformat.Metrics, serviceMap, host, name string) ([]string, error) {
	services, err := loadServiceMap(serviceMap, host)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, service := range services {
		prefix := name + "." + service
		if !hasMatch(metrics, prefix+".*") {
			s.log().Warn(ctx, "service seems unavailable",
				xlog.Name(xschema.DisplayName(prefix)),
				xlog.Endpoint(host),
			)
			missing = append(missing, service)
		}
	}
	return missing, nil
}

func hasMatch(metrics xformat.Metrics, pattern string) bool {
	for key := range metrics {
		if ok, _ := path.Match(pattern, key); ok {
			return true
		}
	}
	return false
}

// loadServiceMap 返回 host 对应的服务列表，host 不在映射中时为空
func loadServiceMap(filename, host string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadServiceMap, err)
	}

	// 主机名包含 "."，不能作为键路径分隔符
	k := koanf.New("\x1f")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadServiceMap, err)
	}
	if !k.Exists(host) {
		return nil, nil
	}
	return k.Strings(host), nil
}

// Generate 不发请求，扫描 SchemaDir 下的全部 schema
//
// 结果包含每个 schema 声明的所有指标，value 均为 nil。
func (s *Service) Generate(ctx context.Context, oid, name string) (xformat.Metrics, error) {
	names, err := xschema.Available(s.cfg.SchemaDir)
	if err != nil {
		return nil, err
	}

	merged := make(xformat.Metrics)
	for _, schemaName := range names {
		schema, err := xschema.Load(s.cfg.SchemaDir, schemaName, xschema.WithLogger(s.log()))
		if err != nil {
			return nil, err
		}
		metrics, err := schema.Scan(ctx, oid, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", schemaName, err)
		}
		maps.Copy(merged, metrics)
	}
	return merged, nil
}
