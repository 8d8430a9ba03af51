package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xmon/pkg/config/xconf"
	"github.com/omeyang/xmon/pkg/lifecycle/xrun"
	"github.com/omeyang/xmon/pkg/metric/xformat"
	"github.com/omeyang/xmon/pkg/metric/xservice"
	"github.com/omeyang/xmon/pkg/metric/xwatch"
	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/observability/xmetrics"
)

// shutdownTimeout 指标服务优雅关闭的等待时间
const shutdownTimeout = 5 * time.Second

func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "按计划持续采集",
		Description: `按 cron 计划循环采集，每轮结果覆盖写入输出文件。
配置了 --listen 时同时以 Prometheus 格式暴露最近一轮结果。
配置文件变化后在下一轮使用新的定位器、schema 和输出设置；
schedule 和 listen 的修改需要重启生效。`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schedule", Usage: "cron 表达式，如 \"@every 30s\""},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "输出文件，默认 stdout"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "输出格式"},
			&cli.StringFlag{Name: "pattern", Aliases: []string{"p"}, Usage: "指标名称通配符"},
			&cli.StringFlag{Name: "listen", Usage: "Prometheus 指标监听地址，如 :9108"},
			&cli.BoolFlag{Name: "immediate", Usage: "启动时立即采集一轮", Value: true},
		},
		Action: cmdWatch,
	}
}

func watchOverrides(cmd *cli.Command) map[string]any {
	extra := map[string]any{}
	for _, name := range []string{"schedule", "format", "pattern", "listen"} {
		if cmd.IsSet(name) {
			extra["watch."+name] = cmd.String(name)
		}
	}
	if cmd.IsSet("output") {
		extra["watch.output"] = absPath(cmd.String("output"))
	}
	return extra
}

func cmdWatch(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(ctx, cmd, watchOverrides(cmd))
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck // 退出前尽力关闭

	var exporter *xwatch.Exporter
	if e.app.Watch.Listen != "" {
		exporter = xwatch.NewExporter("")
	}

	w := &watchJob{host: e.host, out: cmd.Root().Writer, exporter: exporter, logger: e.logger}
	collect, sinks, err := w.build(e.app, e.service)
	if err != nil {
		return usagef("%v", err)
	}

	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	opts := []xwatch.Option{xwatch.WithLogger(e.logger), xwatch.WithObserver(observer)}
	if cmd.Bool("immediate") {
		opts = append(opts, xwatch.WithImmediate())
	}
	sched, err := xwatch.New(e.app.Watch.Schedule, collect, sinks, opts...)
	if err != nil {
		return usagef("%v", err)
	}

	services := map[string]func(context.Context) error{
		"scheduler": sched.Run,
	}
	if exporter != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler())
		server := &http.Server{Addr: e.app.Watch.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		services["exporter"] = xrun.HTTPServer(server, shutdownTimeout)
		e.logger.Info(ctx, "serving metrics", xlog.Endpoint(e.app.Watch.Listen))
	}
	if e.cfg.Path() != "" {
		watcher, err := xconf.Watch(e.cfg, w.reload(ctx, e.app, sched))
		if err != nil {
			return err
		}
		services["config"] = func(ctx context.Context) error {
			watcher.StartAsync()
			<-ctx.Done()
			return watcher.Stop()
		}
	}

	err = xrun.Run(ctx, []xrun.Option{xrun.WithLogger(e.logger), xrun.WithName("xmonctl")}, services)
	if errors.Is(err, xrun.ErrSignal) {
		return nil
	}
	return err
}

// watchJob 由配置构建每轮的采集函数和输出
type watchJob struct {
	host     string
	out      io.Writer
	exporter *xwatch.Exporter
	logger   xlog.LoggerWithLevel
}

func (w *watchJob) build(app xconf.App, service *xservice.Service) (xwatch.CollectFunc, []xwatch.Sink, error) {
	var out io.Writer
	if app.Watch.Output == "" {
		out = w.out
	}
	sink, err := xwatch.NewOutputSink(app.Watch.Format, app.Watch.Pattern, app.Watch.Output, out)
	if err != nil {
		return nil, nil, err
	}
	sinks := []xwatch.Sink{sink}
	if w.exporter != nil {
		sinks = append(sinks, w.exporter)
	}

	collect := func(ctx context.Context) (xformat.Metrics, error) {
		metrics, err := service.Collect(ctx, app.Base.OID, app.Base.Name)
		if err != nil {
			return nil, err
		}
		if app.Locator.ServiceMap != "" {
			if _, err := service.CheckServices(ctx, metrics, app.Locator.ServiceMap, w.host, app.Base.Name); err != nil {
				w.logger.Warn(ctx, "check services failed", xlog.Err(err))
			}
		}
		return metrics, nil
	}
	return collect, sinks, nil
}

// reload 返回配置变化时的回调，失败时保留当前任务
func (w *watchJob) reload(ctx context.Context, current xconf.App, sched *xwatch.Scheduler) xconf.WatchCallback {
	return func(app xconf.App, err error) {
		if err != nil {
			w.logger.Warn(ctx, "config reload failed, keeping current settings", xlog.Err(err))
			return
		}
		if level, err := xlog.ParseLevel(app.Logging.Level); err == nil {
			w.logger.SetLevel(level)
		}
		if app.Watch.Schedule != current.Watch.Schedule || app.Watch.Listen != current.Watch.Listen {
			w.logger.Warn(ctx, "schedule and listen changes take effect after restart")
		}

		service, err := newService(app, w.host, w.logger)
		if err != nil {
			w.logger.Warn(ctx, "rebuild service failed, keeping current settings", xlog.Err(err))
			return
		}
		collect, sinks, err := w.build(app, service)
		if err == nil {
			err = sched.SetJob(collect, sinks)
		}
		if err != nil {
			w.logger.Warn(ctx, "apply config failed, keeping current settings", xlog.Err(err))
			return
		}
		w.logger.Info(ctx, "config reloaded")
	}
}
