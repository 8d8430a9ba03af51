package xservice

import "errors"

var (
	// ErrNilRegistry 未提供服务注册表。
	ErrNilRegistry = errors.New("xservice: nil registry")

	// ErrLoadServiceMap 读取或解析服务映射失败。
	ErrLoadServiceMap = errors.New("xservice: failed to load service map")
)
