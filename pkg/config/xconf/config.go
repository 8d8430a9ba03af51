package xconf

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（默认）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// App xmon 的完整配置。
type App struct {
	Base      Base        `koanf:"base"`
	Logging   Logging     `koanf:"logging"`
	Locator   Locator     `koanf:"locator"`
	Schemas   Schemas     `koanf:"schemas"`
	Collector Collector   `koanf:"collector"`
	Service   Service     `koanf:"service"`
	Watch     WatchConfig `koanf:"watch"`
}

// Base 指标 oid 和名称的根。
type Base struct {
	OID  string `koanf:"oid"`
	Name string `koanf:"name"`
}

// Logging 日志配置。Filename 为空时输出到 stderr。
type Logging struct {
	Filename   string `koanf:"filename"`
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
}

// Logger 按配置构建日志，返回的清理函数关闭轮转文件。
func (l Logging) Logger() (xlog.LoggerWithLevel, func() error, error) {
	return xlog.New().
		SetLevelString(l.Level).
		SetFormat(l.Format).
		SetRotation(l.Filename, xlog.WithMaxSize(l.MaxSize), xlog.WithMaxBackups(l.MaxBackups)).
		Build()
}

// Locator 服务定位配置。
type Locator struct {
	// Filename 定位器定义文件
	Filename string `koanf:"filename"`
	// ServiceMap 主机 → 应有服务列表，为空时不检查
	ServiceMap string `koanf:"service_map"`
}

// Schemas schema 与 MIB 模板目录。
type Schemas struct {
	Directory string `koanf:"directory"`
	Templates string `koanf:"templates"`
}

// Collector 采集器配置。
type Collector struct {
	Timeout time.Duration `koanf:"timeout"`
	Helper  string        `koanf:"helper"`
	Retry   Retry         `koanf:"retry"`
	Breaker Breaker       `koanf:"breaker"`
}

// Retry 请求重试策略，Attempts 为 1 时不重试。
type Retry struct {
	Attempts uint          `koanf:"attempts"`
	Delay    time.Duration `koanf:"delay"`
}

// Breaker 每个端点的熔断策略，Failures 为 0 时关闭熔断。
type Breaker struct {
	Failures uint32        `koanf:"failures"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Service 采集服务配置。
type Service struct {
	Concurrency int `koanf:"concurrency"`
	CacheSize   int `koanf:"cache_size"`
}

// WatchConfig 常驻采集配置。
type WatchConfig struct {
	// Schedule cron 表达式，支持 "@every 30s" 形式
	Schedule string `koanf:"schedule"`
	// Output 每轮结果写入的文件，为空时写 stdout
	Output  string `koanf:"output"`
	Format  string `koanf:"format"`
	Pattern string `koanf:"pattern"`
	// Listen Prometheus 指标监听地址，为空时不启动
	Listen string `koanf:"listen"`
}

// Validate 检查配置值。
func (a *App) Validate() error {
	if a.Base.Name == "" {
		return fmt.Errorf("%w: base.name is empty", ErrInvalidConfig)
	}
	if _, err := xlog.ParseLevel(a.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}
	switch a.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, a.Logging.Format)
	}
	if a.Collector.Timeout <= 0 {
		return fmt.Errorf("%w: collector.timeout must be positive", ErrInvalidConfig)
	}
	if a.Collector.Retry.Delay < 0 || a.Collector.Breaker.Timeout < 0 {
		return fmt.Errorf("%w: negative collector duration", ErrInvalidConfig)
	}
	if a.Service.Concurrency < 0 || a.Service.CacheSize < 0 {
		return fmt.Errorf("%w: negative service limits", ErrInvalidConfig)
	}
	return nil
}

// Config 已加载的配置。
// 基础读取请直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回底层的 koanf 实例。
	Client() *koanf.Koanf

	// App 返回当前配置的快照。
	App() App

	// Unmarshal 将指定路径的配置反序列化到目标结构体，path 为空时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Reload 重新加载配置文件。失败时保留原配置。
	Reload() error

	// Path 返回配置文件路径，只有默认值时为空字符串。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
