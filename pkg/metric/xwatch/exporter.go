package xwatch

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omeyang/xmon/pkg/metric/xformat"
)

// DefaultNamespace Prometheus 指标名前缀
const DefaultNamespace = "xmon"

// Exporter 以 Prometheus 格式暴露最近一轮的采集结果
//
// 每条数值型记录输出为一个样本：
//
//	xmon_metric_value{name="hadoop.svc.heap",oid="1.3.1.1",type="Counter64",unit="bytes"} 2048
//
// value 为 nil 或非数值的记录不输出。
type Exporter struct {
	registry *prometheus.Registry
	value    *prometheus.Desc
	updated  *prometheus.Desc
	count    *prometheus.Desc

	mu      sync.RWMutex
	metrics xformat.Metrics
	at      time.Time
}

// NewExporter 创建 Exporter，namespace 为空时使用 DefaultNamespace
func NewExporter(namespace string) *Exporter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		value: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "metric", "value"),
			"Value of a collected metric.",
			[]string{"name", "oid", "type", "unit"}, nil,
		),
		updated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_collect_timestamp_seconds"),
			"Unix time of the last successful collection.",
			nil, nil,
		),
		count: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "metrics"),
			"Number of records in the last collection, including records without value.",
			nil, nil,
		),
	}
	e.registry.MustRegister(e, collectors.NewGoCollector())
	return e
}

// Write 实现 Sink，保存结果快照
func (e *Exporter) Write(_ context.Context, metrics xformat.Metrics) error {
	snapshot := maps.Clone(metrics)
	e.mu.Lock()
	e.metrics = snapshot
	e.at = time.Now()
	e.mu.Unlock()
	return nil
}

// Describe 实现 prometheus.Collector
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.value
	ch <- e.updated
	ch <- e.count
}

// Collect 实现 prometheus.Collector
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.at.IsZero() {
		return
	}

	for _, key := range slices.Sorted(maps.Keys(e.metrics)) {
		rec := e.metrics[key]
		v, ok := xformat.Float(rec.Value)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(e.value, prometheus.GaugeValue, v, key, rec.OID, rec.Type, rec.Unit)
	}
	ch <- prometheus.MustNewConstMetric(e.updated, prometheus.GaugeValue, float64(e.at.UnixNano())/1e9)
	ch <- prometheus.MustNewConstMetric(e.count, prometheus.GaugeValue, float64(len(e.metrics)))
}

// Registry 返回 Exporter 使用的注册表
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler 返回 /metrics 处理器
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
