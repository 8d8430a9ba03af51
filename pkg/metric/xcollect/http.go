package xcollect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// HTTPClient 从 HTTP JSON 接口取数
//
// 查询为路径加查询串，直接拼接到端点之后，例如端点 "http://host:50070"
// 加查询 "/jmx?qry=Hadoop:*" 得到完整 URL。
type HTTPClient struct {
	base   string
	client *http.Client
	logger xlog.Logger
}

var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
	},
}

func newHTTPClient(endpoint string, o *options) *HTTPClient {
	c := o.httpClient
	if c == nil {
		c = defaultHTTPClient
	}
	return &HTTPClient{
		base:   strings.TrimRight(endpoint, "/"),
		client: c,
		logger: o.log(),
	}
}

// Base 返回去掉末尾斜杠的端点
func (c *HTTPClient) Base() string {
	return c.base
}

// URL 返回查询对应的完整 URL
func (c *HTTPClient) URL(query xschema.Query) (string, error) {
	path, err := httpPath(query)
	if err != nil {
		return "", err
	}
	return c.base + path, nil
}

// Request 发起 GET 请求并解析 JSON 响应体
func (c *HTTPClient) Request(ctx context.Context, query xschema.Query) (any, error) {
	target, err := c.URL(query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(ctx, "http request", xlog.Endpoint(sanitizeURL(target)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, dataSourceError("get %s: %w", sanitizeURL(target), err)
	}
	defer func() { _ = resp.Body.Close() }()

	limited := &io.LimitedReader{R: resp.Body, N: maxResponseSize + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, dataSourceError("read body: %w", err)
	}
	if int64(len(body)) > maxResponseSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, maxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, dataSourceError("get %s: status %d", sanitizeURL(target), resp.StatusCode)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, dataSourceError("decode %s: %w", sanitizeURL(target), err)
	}
	return data, nil
}

// httpPath 接受字符串查询，或带 "path" 字段的映射
func httpPath(query xschema.Query) (string, error) {
	switch q := query.(type) {
	case string:
		return q, nil
	case map[string]any:
		if p, ok := q["path"].(string); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: http query must be a path, got %T", ErrInvalidQuery, query)
}

// sanitizeURL 去掉 userinfo 和查询串，避免凭据进入日志
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
