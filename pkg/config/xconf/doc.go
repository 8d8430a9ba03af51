// Package xconf 加载 xmon 的应用配置，基于 koanf 实现。
//
// 配置分三层依次合并：内置默认值（DefaultYAML）、配置文件、覆盖值（WithOverrides，
// 通常来自命令行参数）。合并结果解码为 App 并校验，App() 返回当前快照。
//
// # 查找顺序
//
// Load 的 path 为空时依次查找：
//
//	./.xmon.yaml
//	~/.xmon.yaml
//	/etc/xmon.yaml
//
// 都不存在时只使用默认值。配置中的相对路径相对于配置文件所在目录。
//
// # 支持的格式
//
//   - YAML（默认）：.yaml, .yml
//   - JSON：.json
//
// # 配置监视
//
// Watch 基于 fsnotify 监视配置文件所在目录，内置防抖，支持 vim/emacs 的
// rename 式保存。重载失败时保留原配置，回调收到错误和仍在生效的配置。
// Stop() 返回后不再有回调执行。
package xconf
