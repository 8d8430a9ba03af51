package xcollect

import (
	"context"
	"fmt"
	"strings"

	"github.com/omeyang/xmon/pkg/metric/xschema"
)

//go:generate mockgen -source=client.go -destination=client_mock_test.go -package=xcollect

// Client 数据源客户端
type Client interface {
	// Request 执行一次查询
	//
	// 数据源故障返回包装 ErrDataSource 的错误；查询本身不合法返回 ErrInvalidQuery。
	Request(ctx context.Context, query xschema.Query) (any, error)
}

// ClientFactory 按端点创建客户端
type ClientFactory func(endpoint string) (Client, error)

// Scheme 端点协议
type Scheme string

// 支持的协议
const (
	SchemeHTTP    Scheme = "http"
	SchemeHTTPS   Scheme = "https"
	SchemeProcess Scheme = "process"
)

// ParseScheme 返回端点的协议部分（"://" 之前）
func ParseScheme(endpoint string) (Scheme, error) {
	scheme, _, ok := strings.Cut(endpoint, "://")
	if !ok || scheme == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	return Scheme(strings.ToLower(scheme)), nil
}

// NewClient 根据端点协议创建客户端
func NewClient(endpoint string, opts ...Option) (Client, error) {
	scheme, err := ParseScheme(endpoint)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	switch scheme {
	case SchemeHTTP, SchemeHTTPS:
		return newHTTPClient(endpoint, o), nil
	case SchemeProcess:
		return newProcessClient(endpoint, o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
}
