package xpath

import "errors"

// 表达式配置错误，均属于 schema 配置问题，应直接返回给调用方。
var (
	// ErrInvalidExpression 表达式无法解析。
	ErrInvalidExpression = errors.New("xpath: invalid expression")

	// ErrUnknownFunction 调用了未注册的函数。
	ErrUnknownFunction = errors.New("xpath: unknown function")

	// ErrMissingArgument 函数缺少必需参数。
	ErrMissingArgument = errors.New("xpath: missing argument")
)
