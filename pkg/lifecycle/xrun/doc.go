// Package xrun 提供基于 errgroup + context 的进程生命周期管理。
//
// 常驻模式（xmonctl watch）同时运行采集调度、配置监视和指标 HTTP 服务，
// 任一服务失败或收到终止信号时，其余服务一并退出：
//
//	err := xrun.Run(ctx, []xrun.Option{xrun.WithLogger(logger)}, map[string]func(context.Context) error{
//	    "scheduler": scheduler.Run,
//	    "metrics":   xrun.HTTPServer(server, 5*time.Second),
//	})
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
package xrun
