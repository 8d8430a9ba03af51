// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持按大小轮转的日志文件
//   - xmetrics: 统一可观测性接口（指标、追踪），默认实现基于 OpenTelemetry
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 日志属性使用统一的键名（component、oid、schema 等）
//   - 支持动态级别控制
package observability
