package xcollect

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xmon/pkg/metric/xschema"
)

// 配置错误
var (
	// ErrUnknownScheme 端点 scheme 不被支持。
	ErrUnknownScheme = errors.New("xcollect: unknown scheme")

	// ErrInvalidEndpoint 端点格式不合法。
	ErrInvalidEndpoint = errors.New("xcollect: invalid endpoint")

	// ErrInvalidQuery 查询缺少必需字段或类型不符。
	ErrInvalidQuery = errors.New("xcollect: invalid query")

	// ErrNilSchema 创建 Collector 时未提供 schema。
	ErrNilSchema = errors.New("xcollect: nil schema")
)

// 数据源错误，Collector 会将其降级为 nil
var (
	// ErrDataSource 数据源故障的统一标记。
	ErrDataSource = errors.New("xcollect: data source failure")

	// ErrResponseTooLarge 响应体超过大小限制。
	ErrResponseTooLarge = fmt.Errorf("%w: response too large", ErrDataSource)
)

// IsConfigurationError 判断 err 是否为配置错误
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownScheme) ||
		errors.Is(err, ErrInvalidEndpoint) ||
		errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrNilSchema) ||
		xschema.IsConfigurationError(err)
}

// IsDataSourceError 判断 err 是否为数据源故障（包括熔断拒绝和超时）
func IsDataSourceError(err error) bool {
	return errors.Is(err, ErrDataSource) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}

// configurationError 为配置错误附加 xschema.ErrConfiguration 标记
func configurationError(err error) error {
	if errors.Is(err, xschema.ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", xschema.ErrConfiguration, err)
}

func dataSourceError(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrDataSource, fmt.Errorf(format, args...))
}
