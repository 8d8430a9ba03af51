// Package xcollect 实现 schema 扫描使用的数据源采集。
//
// # 客户端
//
// 端点的 URI scheme 决定客户端类型（封闭集合，在 NewClient 中一次性确定）：
//
//   - http / https：HTTPClient，GET <endpoint><query>，期望 JSON 响应
//   - process：ProcessClient，端点形如 process://user@pid，
//     以目标用户身份运行 jmxterm 读取 MBean 属性
//
// 其他 scheme 返回 ErrUnknownScheme。
//
// # Collector
//
// Collector 把客户端绑定为 schema 的请求执行器：
//
//	c, err := xcollect.New("http://localhost:50070", schema)
//	if err != nil {
//	    return err
//	}
//	records, err := c.Collect(ctx, "1.3.6.1.4.1.99999", "hadoop")
//
// 每次请求都受以下保护：
//   - 超时（默认 10s），超时视为数据源故障
//   - 按端点的熔断器（默认连续 5 次失败后打开 60s）
//   - 可选重试（默认 1 次尝试，即不重试）
//
// 数据源故障（网络错误、非 2xx、非 JSON、进程非零退出、熔断打开）记录日志后
// 降级为 nil，扫描继续；配置错误（未知 scheme、非法端点、缺少查询字段）
// 包装 xschema.ErrConfiguration 返回，中止扫描。
package xcollect
