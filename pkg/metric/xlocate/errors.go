package xlocate

import "errors"

var (
	// ErrUnknownService Registry 中没有该服务。
	ErrUnknownService = errors.New("xlocate: unknown service")

	// ErrUnknownClass 定位器类名不受支持。
	ErrUnknownClass = errors.New("xlocate: unknown locator class")

	// ErrInvalidArgument 定位器参数不合法。
	ErrInvalidArgument = errors.New("xlocate: invalid argument")

	// ErrNilLocator 注册了 nil 定位器。
	ErrNilLocator = errors.New("xlocate: nil locator")

	// ErrLoadConfig 读取或解析定位器配置失败。
	ErrLoadConfig = errors.New("xlocate: failed to load config")

	// ErrListProcesses 枚举进程失败。
	ErrListProcesses = errors.New("xlocate: failed to list processes")
)
