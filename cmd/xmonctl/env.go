package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xmon/pkg/config/xconf"
	"github.com/omeyang/xmon/pkg/metric/xcollect"
	"github.com/omeyang/xmon/pkg/metric/xlocate"
	"github.com/omeyang/xmon/pkg/metric/xservice"
	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/observability/xmetrics"
)

// env 一次命令执行所需的运行时对象
type env struct {
	cfg     xconf.Config
	app     xconf.App
	host    string
	logger  xlog.LoggerWithLevel
	cleanup func() error
	service *xservice.Service
}

// flagOverrides 全局参数到配置键的映射，路径类参数按当前目录解析
var flagOverrides = []struct {
	flag string
	key  string
	path bool
}{
	{"log-level", "logging.level", false},
	{"log-file", "logging.filename", true},
	{"schemas", "schemas.directory", true},
	{"locator", "locator.filename", true},
	{"oid", "base.oid", false},
	{"name", "base.name", false},
}

// configOverrides 收集显式设置的全局参数
func configOverrides(cmd *cli.Command, extra map[string]any) (map[string]any, error) {
	overrides := make(map[string]any, len(flagOverrides)+len(extra))
	for _, o := range flagOverrides {
		if !cmd.IsSet(o.flag) {
			continue
		}
		value := cmd.String(o.flag)
		if o.path && value != "" {
			abs, err := filepath.Abs(value)
			if err != nil {
				return nil, usagef("--%s: %v", o.flag, err)
			}
			value = abs
		}
		overrides[o.key] = value
	}
	for key, value := range extra {
		overrides[key] = value
	}
	return overrides, nil
}

// loadEnv 加载配置并构建日志和采集服务
//
// extra 为子命令追加的配置覆盖。
func loadEnv(ctx context.Context, cmd *cli.Command, extra map[string]any) (*env, error) {
	overrides, err := configOverrides(cmd, extra)
	if err != nil {
		return nil, err
	}

	cfg, err := xconf.Load(cmd.String("config"), xconf.WithOverrides(overrides))
	if err != nil {
		return nil, err
	}
	app := cfg.App()

	logger, cleanup, err := app.Logging.Logger()
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	xlog.SetDefault(logger)

	e := &env{
		cfg:     cfg,
		app:     app,
		host:    cmd.String("host"),
		logger:  logger,
		cleanup: cleanup,
	}
	if path := cfg.Path(); path != "" {
		logger.Debug(ctx, "config loaded", xlog.Path(path))
	}

	e.service, err = newService(app, e.host, logger)
	if err != nil {
		_ = e.Close() //nolint:errcheck // 已有更重要的错误
		return nil, err
	}
	return e, nil
}

// Close 关闭日志文件
func (e *env) Close() error {
	if e.cleanup == nil {
		return nil
	}
	return e.cleanup()
}

// newService 按配置构建定位器和采集服务
//
// 定位器定义中的 host 参数被替换为本机主机名。
func newService(app xconf.App, host string, logger xlog.Logger) (*xservice.Service, error) {
	registry := xlocate.NewRegistry(xlocate.WithLogger(logger))
	if err := registry.LoadConfig(app.Locator.Filename, map[string]any{"host": host}); err != nil {
		return nil, err
	}

	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	c := app.Collector
	return xservice.New(xservice.Config{
		SchemaDir:   app.Schemas.Directory,
		Concurrency: app.Service.Concurrency,
		CacheSize:   app.Service.CacheSize,
	}, registry,
		xservice.WithLogger(logger),
		xservice.WithCollectorOptions(
			xcollect.WithTimeout(c.Timeout),
			xcollect.WithHelper(c.Helper),
			xcollect.WithRetry(c.Retry.Attempts, c.Retry.Delay),
			xcollect.WithBreaker(c.Breaker.Failures, c.Breaker.Timeout),
			xcollect.WithObserver(observer),
		),
	)
}

// absPath 返回绝对路径，失败时原样返回
func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
