package xcollect

import (
	"net/http"
	"time"

	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/observability/xmetrics"
)

// 默认值
const (
	// DefaultTimeout 单次请求超时
	DefaultTimeout = 10 * time.Second

	// DefaultHelper jmxterm 可执行文件路径
	DefaultHelper = "/usr/bin/jmxterm"

	// DefaultAttempts 总尝试次数（1 表示不重试）
	DefaultAttempts = 1

	// DefaultRetryDelay 重试间隔
	DefaultRetryDelay = 100 * time.Millisecond

	// DefaultBreakerFailures 熔断前允许的连续失败次数
	DefaultBreakerFailures = 5

	// DefaultBreakerTimeout 熔断打开后到半开的等待时间
	DefaultBreakerTimeout = 60 * time.Second

	// maxResponseSize HTTP 响应体上限（32MB），JMX 全量 dump 可能较大
	maxResponseSize = 32 * 1024 * 1024
)

type options struct {
	timeout         time.Duration
	helper          string
	attempts        uint
	retryDelay      time.Duration
	breakerFailures uint32
	breakerTimeout  time.Duration
	httpClient      *http.Client
	runner          Runner
	factory         ClientFactory
	observer        xmetrics.Observer
	logger          xlog.Logger
}

// Option 客户端和 Collector 的配置选项
type Option func(*options)

func defaultOptions() *options {
	return &options{
		timeout:         DefaultTimeout,
		helper:          DefaultHelper,
		attempts:        DefaultAttempts,
		retryDelay:      DefaultRetryDelay,
		breakerFailures: DefaultBreakerFailures,
		breakerTimeout:  DefaultBreakerTimeout,
		observer:        xmetrics.NoopObserver{},
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithTimeout 设置单次请求超时，<=0 时忽略
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHelper 设置 jmxterm 可执行文件路径
func WithHelper(path string) Option {
	return func(o *options) {
		if path != "" {
			o.helper = path
		}
	}
}

// WithRetry 设置总尝试次数和重试间隔
//
// attempts 为 0 时视为 1。
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *options) {
		if attempts == 0 {
			attempts = 1
		}
		o.attempts = attempts
		if delay >= 0 {
			o.retryDelay = delay
		}
	}
}

// WithBreaker 设置熔断策略
//
// failures 为 0 时禁用熔断器。
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(o *options) {
		o.breakerFailures = failures
		if timeout > 0 {
			o.breakerTimeout = timeout
		}
	}
}

// WithHTTPClient 设置 HTTP 客户端，默认使用带连接池的 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithRunner 设置外部命令执行器，默认使用 os/exec
func WithRunner(r Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithClientFactory 替换 Collector 按端点创建客户端的方式，默认使用 NewClient
func WithClientFactory(f ClientFactory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithObserver 设置观测器，默认不观测
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger 设置日志，默认使用 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func (o *options) log() xlog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return xlog.Default()
}
