package xfile

import "errors"

var (
	// ErrEmptyPath 必需的路径参数为空。
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrInvalidPath 路径格式无效，例如应为相对路径时传入了绝对路径。
	ErrInvalidPath = errors.New("xfile: invalid path")

	// ErrPathTraversal 路径包含 ".." 路径段。
	ErrPathTraversal = errors.New("xfile: path traversal detected")

	// ErrNullByte 路径包含空字节。内核会在空字节处截断路径。
	ErrNullByte = errors.New("xfile: path contains null byte")
)
