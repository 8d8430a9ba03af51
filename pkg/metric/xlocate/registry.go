package xlocate

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"os"
	"slices"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// 配置中的定位器类名
const (
	ClassDummy   = "DummyLocator"
	ClassStatic  = "StaticLocator"
	ClassHTTP    = "HttpServiceLocator"
	ClassProcess = "ProcessLocator"
)

// classKey 配置中指定定位器类型的键
const classKey = "class"

// koanfDelim 服务名包含 "."，不能作为键路径分隔符
const koanfDelim = "\x1f"

// Registry 服务名到定位器的映射
type Registry struct {
	mu       sync.RWMutex
	locators map[string]Locator

	table      *ProcessTable
	httpClient *http.Client
	logger     xlog.Logger
}

// Option Registry 配置选项
type Option func(*Registry)

// WithProcessTable 设置进程快照，默认使用 gopsutil 枚举
func WithProcessTable(t *ProcessTable) Option {
	return func(r *Registry) {
		if t != nil {
			r.table = t
		}
	}
}

// WithHTTPClient 设置 HTTP 定位器使用的客户端
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) {
		r.httpClient = c
	}
}

// WithLogger 设置日志，默认使用 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry 创建空的 Registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{locators: make(map[string]Locator)}
	for _, opt := range opts {
		opt(r)
	}
	if r.table == nil {
		r.table = NewProcessTable(nil)
	}
	return r
}

func (r *Registry) log() xlog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return xlog.Default()
}

// Add 注册服务，同名服务被替换
func (r *Registry) Add(name string, loc Locator) error {
	if loc == nil {
		return fmt.Errorf("%w: %s", ErrNilLocator, name)
	}
	r.mu.Lock()
	r.locators[name] = loc
	r.mu.Unlock()
	return nil
}

// Get 返回服务的定位器
func (r *Registry) Get(name string) (Locator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.locators[name]
	return loc, ok
}

// Names 返回所有已注册服务名（按字母序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.locators))
}

// Exists 探测所有服务，按字母序返回存在的服务名
//
// 每次调用前刷新进程快照。
func (r *Registry) Exists(ctx context.Context) []string {
	r.table.Reset()

	var found []string
	for _, name := range r.Names() {
		loc, ok := r.Get(name)
		if !ok {
			continue
		}
		if loc.Exists(ctx) {
			r.log().Info(ctx, "service found", xlog.Name(name), xlog.Endpoint(loc.Endpoint()))
			found = append(found, name)
		}
	}
	return found
}

// Endpoint 返回服务的采集端点
func (r *Registry) Endpoint(name string) (string, error) {
	loc, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	return loc.Endpoint(), nil
}

// LoadConfig 从 YAML 文件加载服务定义
//
// 文档格式为 {服务名: {class: 类名, 参数...}}。
// overrides 中的键只有在定义已包含该参数时才会替换它。
func (r *Registry) LoadConfig(filename string, overrides map[string]any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	r.log().Debug(context.Background(), "loading locator config", xlog.Path(filename))
	return r.Parse(data, overrides)
}

// Parse 从 YAML 数据加载服务定义，语义同 LoadConfig
func (r *Registry) Parse(data []byte, overrides map[string]any) error {
	k := koanf.New(koanfDelim)
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	raw := k.Raw()
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		args, ok := raw[name].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s: definition must be a mapping", ErrLoadConfig, name)
		}
		args = maps.Clone(args)
		for key, value := range overrides {
			if _, ok := args[key]; ok {
				args[key] = value
			}
		}

		loc, err := r.build(args)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		r.log().Debug(context.Background(), "locator loaded", xlog.Name(name), xlog.Endpoint(loc.Endpoint()))
		if err := r.Add(name, loc); err != nil {
			return err
		}
	}
	return nil
}

// build 按 class 创建定位器，args 会被消费
func (r *Registry) build(args map[string]any) (Locator, error) {
	class, _ := args[classKey].(string)
	delete(args, classKey)

	switch class {
	case ClassDummy, ClassStatic:
		endpoint, _ := args["endpoint"].(string)
		s := NewStatic(endpoint)
		if v, ok := args["exists"].(bool); ok {
			s.SetExists(v)
		}
		s.args = args
		return s, nil

	case ClassHTTP:
		if err := onlyKeys(args, "host", "port"); err != nil {
			return nil, err
		}
		host, _ := args["host"].(string)
		port := 0
		if v, ok := args["port"]; ok {
			p, err := intArg("port", v)
			if err != nil {
				return nil, err
			}
			port = p
		}
		return NewHTTP(host, port, r.httpClient)

	case ClassProcess:
		if err := onlyKeys(args, "pattern"); err != nil {
			return nil, err
		}
		pattern, _ := args["pattern"].(string)
		return NewProcess(pattern, r.table)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
}

func onlyKeys(args map[string]any, allowed ...string) error {
	for key := range args {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("%w: unexpected %q", ErrInvalidArgument, key)
		}
	}
	return nil
}
