package xconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示配置文件读取失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrInvalidConfig 表示配置值不合法。
	ErrInvalidConfig = errors.New("xconf: invalid config")

	// ErrNotWatchable 表示配置没有对应的文件，无法监视。
	ErrNotWatchable = errors.New("xconf: config is not backed by a file")
)
