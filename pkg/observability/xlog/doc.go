// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 动态级别调整（运行时热更新）
//   - 全局 Logger 便利函数
//   - 采集链路常用字段（oid、name、endpoint、query、schema）
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，Build 返回该错误）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xmon/xmon.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// SetRotation 基于 lumberjack，默认策略为单文件 1 MiB、保留 5 个备份。
//
// # 全局 Logger
//
// 适用于命令行工具等简单场景，库代码通过 WithLogger 选项注入：
//
//   - [Default]: 获取全局 Logger（惰性初始化：stderr、Info 级别、text 格式）
//   - [SetDefault]: 替换全局 Logger（nil 会被忽略）
//   - [Discard]: 丢弃所有输出的 Logger，常用于测试
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// 可通过 [ParseLevel] 从字符串解析。Level 实现 encoding.TextUnmarshaler，
// 支持从配置文件直接反序列化。
package xlog
