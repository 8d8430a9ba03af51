// Package xmetrics 为采集链路提供最小化的观测接口（metrics + tracing）。
//
// 业务代码只依赖 Observer/Span；默认实现基于 OpenTelemetry，
// 未配置时使用 NoopObserver，不产生任何开销。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xcollect",
//		Operation: "request",
//		Kind:      xmetrics.KindClient,
//		Attrs:     []xmetrics.Attr{xmetrics.String("scheme", "http")},
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标
//
//   - xmon.operation.total：操作次数
//   - xmon.operation.duration：操作耗时（秒）
//
// 两者都带 component / operation / status 属性。
// status 取值 ok、error，或调用方通过 Result.Status 指定的值（如 degraded）。
package xmetrics
