package xformat

import "errors"

var (
	// ErrBadPattern glob 模式语法错误。
	ErrBadPattern = errors.New("xformat: bad pattern")

	// ErrUnknownFormat 输出格式不受支持。
	ErrUnknownFormat = errors.New("xformat: unknown format")

	// ErrTemplate 读取或执行 MIB 模板失败。
	ErrTemplate = errors.New("xformat: template error")
)
