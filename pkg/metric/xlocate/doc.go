// Package xlocate 发现本机上运行的服务并给出采集端点。
//
// # 定位器
//
//   - Static：固定端点，用于测试或已知地址的服务
//   - HTTP：对 http://host:port 发 HEAD 请求，状态码 <400 或 405 视为存在
//   - Process：用正则匹配进程命令行，找到后端点为 process://user@pid
//
// # Registry
//
// Registry 是显式创建、显式传递的服务表，不是全局单例。
// LoadConfig 从 YAML 读取服务定义：
//
//	hdfs.namenode.jmx:
//	  class: HttpServiceLocator
//	  host: localhost
//	  port: 50070
//	yarn.resource-manager.process:
//	  class: ProcessLocator
//	  pattern: .*org.apache.hadoop.yarn.server.resourcemanager.ResourceManager.*
//
// overrides 只替换定义中已经存在的参数，例如把所有 host 统一改为命令行指定的主机。
//
// 同一个 Registry 内的 Process 定位器共享一份 ProcessTable 快照，
// 一次 Exists 调用只枚举一次进程。
package xlocate
