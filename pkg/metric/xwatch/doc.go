// Package xwatch 按 cron 计划周期性采集指标并写出结果。
//
// Scheduler 每轮调用一次 CollectFunc，把结果交给所有 Sink：
//
//   - OutputSink 按格式渲染后写入文件（临时文件 + rename）或 io.Writer
//   - Exporter 保存最近一轮结果，以 Prometheus 格式暴露
//
// 同一时刻只有一轮在执行，上一轮未结束时本轮被跳过。每轮有独立的 run id，
// 出现在该轮的所有日志中。
package xwatch
