// Package xschema 提供声明式指标 schema 的模型、加载和扫描。
//
// # Schema 文档
//
// Schema 是一棵 YAML 节点树，每个节点恰好是以下四种之一：
//
//   - requests：有序的请求列表，每项包含 query、可选 endpoint，以及嵌套节点字段
//   - resources：共享当前作用域的子节点列表，只做分组
//   - table：{path, fields}，fields 中必须有一个名为 index 的叶子
//   - path：叶子节点，附带 type（默认 "OCTET STRING"）、unit、description
//
// 任意节点都可以带 oid 和 name，扫描时自上而下用 "." 拼接。
// 同时出现多个判别键的节点会在加载时被拒绝（ErrAmbiguousNode）。
// 不含任何判别键的节点只贡献 oid/name。
//
// # 扫描
//
// Schema.Scan 从空作用域开始递归遍历节点树，返回 name → Record 的映射：
//
//	s, err := xschema.Load("schemas", "hdfs.namenode")
//	if err != nil {
//	    return err
//	}
//	s.SetExecutor(collector.Execute)
//	records, err := s.Scan(ctx, "1.3.6.1.4.1.99999", "hadoop")
//
// requests 节点调用注入的 Executor 获取数据；数据缺失、地址解析失败都只会
// 让对应的 Record.Value 为 nil。只有配置错误（见 IsConfigurationError）会中止扫描。
//
// # 并发
//
// 节点树加载后只读。Scan 互不共享状态，但 SetExecutor 与 Scan 不应并发调用。
package xschema
