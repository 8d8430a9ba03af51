package xschema

import (
	"errors"

	"github.com/omeyang/xmon/pkg/metric/xpath"
)

var (
	// ErrSchemaNotFound schema 文档不存在。
	ErrSchemaNotFound = errors.New("xschema: schema not found")

	// ErrLoadFailed 读取或解析 schema 文档失败。
	ErrLoadFailed = errors.New("xschema: failed to load schema")
)

// 配置错误：schema 本身有问题，扫描无法继续。
var (
	// ErrConfiguration 配置错误的统一标记，其他包的配置错误以 %w 包装它。
	ErrConfiguration = errors.New("xschema: configuration error")

	// ErrAmbiguousNode 节点同时包含多个判别键。
	ErrAmbiguousNode = errors.New("xschema: ambiguous node")

	// ErrMissingIndex 表格没有名为 index 的字段。
	ErrMissingIndex = errors.New("xschema: table has no index field")

	// ErrInvalidNode 节点结构不合法。
	ErrInvalidNode = errors.New("xschema: invalid node")
)

var configurationErrors = []error{
	ErrConfiguration,
	ErrAmbiguousNode,
	ErrMissingIndex,
	ErrInvalidNode,
	xpath.ErrInvalidExpression,
	xpath.ErrUnknownFunction,
	xpath.ErrMissingArgument,
}

// IsConfigurationError 判断 err 是否为配置错误
//
// 配置错误总是返回给扫描调用方，不会降级为 nil 值。
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range configurationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
