// Package xservice 把定位、schema 加载和采集串成一次完整的指标收集。
//
// Service.Collect 的流程：
//
//  1. Registry.Exists 找出本机存在的服务（按名称排序）
//  2. 以服务名加载 <SchemaDir>/<name>.yaml，不存在则跳过
//  3. 用服务端点创建 xcollect.Collector 并扫描
//  4. 按服务名顺序合并结果，同名指标后者覆盖前者
//
// Collector 按 (服务名, 端点) 缓存在 LRU 中，长期运行时熔断状态得以保留。
// Concurrency > 1 时不同服务并行采集，合并顺序不变。
//
// Generate 不发请求，扫描 SchemaDir 下的全部 schema，得到完整的指标声明集，
// 用于生成 MIB。
package xservice
