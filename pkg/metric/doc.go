// Package metric 提供指标提取相关的子包。
//
// 子包列表：
//   - xpath: 路径表达式，从 JSON 风格的数据中选取值，支持 filter 和 hash 函数
//   - xschema: schema 模型、加载和递归扫描
//   - xcollect: 数据源客户端（HTTP JSON、jmxterm）和采集器
//   - xlocate: 服务定位器（静态、HTTP、进程）与注册表
//   - xformat: 输出格式（human、subagent、json）与 MIB 生成
//   - xservice: 串联定位、采集和输出的采集服务
//   - xwatch: 按 cron 计划持续采集，输出到文件或 Prometheus
//
// 数据流：
//
//	xlocate.Registry → xservice.Service → xcollect.Collector → xschema.Schema.Scan → xformat
package metric
