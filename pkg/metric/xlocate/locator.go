package xlocate

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Locator 判断服务是否存在并给出采集端点
type Locator interface {
	// Exists 探测服务是否存在
	Exists(ctx context.Context) bool

	// Endpoint 返回采集端点，服务尚未找到时可能为空
	Endpoint() string
}

// DefaultStaticEndpoint Static 定位器的默认端点
const DefaultStaticEndpoint = "dummy://"

// Static 固定端点的定位器
type Static struct {
	endpoint string
	exists   bool
	args     map[string]any
}

// NewStatic 创建固定端点的定位器，endpoint 为空时使用 DefaultStaticEndpoint
func NewStatic(endpoint string) *Static {
	if endpoint == "" {
		endpoint = DefaultStaticEndpoint
	}
	return &Static{endpoint: endpoint, exists: true}
}

// SetExists 设置 Exists 的返回值
func (s *Static) SetExists(exists bool) {
	s.exists = exists
}

// Args 返回从配置加载时的原始参数（不含 class）
func (s *Static) Args() map[string]any {
	return s.args
}

// Exists 实现 Locator
func (s *Static) Exists(context.Context) bool {
	return s.exists
}

// Endpoint 实现 Locator
func (s *Static) Endpoint() string {
	return s.endpoint
}

// HTTP 默认值
const (
	DefaultHost = "localhost"
	DefaultPort = 80

	// DefaultTimeout 未指定 client 时单次探测的超时
	DefaultTimeout = 5 * time.Second
)

// HTTP 通过 HEAD 请求探测 HTTP 服务
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP 创建 HTTP 定位器
//
// host 为空时使用 DefaultHost，port 为 0 时使用 DefaultPort。
// client 为 nil 时使用超时为 DefaultTimeout 的独立 client。
func NewHTTP(host string, port int, client *http.Client) (*HTTP, error) {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d", ErrInvalidArgument, port)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTP{
		url:    "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
		client: client,
	}, nil
}

// Exists 发送 HEAD 请求，状态码 <400 或 405 时服务存在
//
// 连接失败视为不存在。
func (h *HTTP) Exists(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.url, nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode < http.StatusBadRequest || resp.StatusCode == http.StatusMethodNotAllowed
}

// Endpoint 实现 Locator
func (h *HTTP) Endpoint() string {
	return h.url
}

// intArg 接受 int、float64（JSON/YAML 数字）或十进制字符串
func intArg(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %s=%v", ErrInvalidArgument, name, v)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q: %w", ErrInvalidArgument, name, n, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidArgument, name, v)
	}
}
