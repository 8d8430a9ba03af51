package xwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/omeyang/xmon/pkg/metric/xformat"
	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/observability/xmetrics"
)

// CollectFunc 执行一轮采集
type CollectFunc func(ctx context.Context) (xformat.Metrics, error)

// Sink 接收每轮采集结果
type Sink interface {
	Write(ctx context.Context, metrics xformat.Metrics) error
}

// parser 支持可选秒字段和 "@every 30s" 等描述符
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Option Scheduler 配置选项
type Option func(*Scheduler)

// WithLogger 设置日志，默认使用 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithTimeout 设置单轮采集超时，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// WithImmediate 启动时立即执行一轮
func WithImmediate() Option {
	return func(s *Scheduler) {
		s.immediate = true
	}
}

// WithObserver 设置每轮采集的观测器
func WithObserver(o xmetrics.Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// Stats 运行统计
type Stats struct {
	Runs      uint64
	Failures  uint64
	Skipped   uint64
	LastRunID string
	LastCount int
	LastTook  time.Duration
}

// Scheduler 周期采集调度器
type Scheduler struct {
	spec      string
	schedule  cron.Schedule
	timeout   time.Duration
	immediate bool
	logger    xlog.Logger
	observer  xmetrics.Observer

	mu      sync.RWMutex
	collect CollectFunc
	sinks   []Sink

	running atomic.Bool
	statsMu sync.Mutex
	stats   Stats
}

// New 创建调度器，spec 为 cron 表达式
func New(spec string, collect CollectFunc, sinks []Sink, opts ...Option) (*Scheduler, error) {
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
	}
	if collect == nil {
		return nil, ErrNilCollect
	}

	s := &Scheduler{spec: spec, schedule: schedule, collect: collect, sinks: sinks}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scheduler) log() xlog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return xlog.Default()
}

// Next 返回 t 之后的下一次执行时间
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// SetJob 替换采集函数和输出，下一轮生效
func (s *Scheduler) SetJob(collect CollectFunc, sinks []Sink) error {
	if collect == nil {
		return ErrNilCollect
	}
	s.mu.Lock()
	s.collect = collect
	s.sinks = sinks
	s.mu.Unlock()
	return nil
}

// Stats 返回运行统计快照
func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// Run 按计划执行采集，阻塞到 ctx 取消，返回前等待进行中的一轮结束
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{ctx: ctx, logger: s.log()}),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		_ = s.Tick(ctx) //nolint:errcheck // Tick 已记录日志
	}))

	if s.immediate {
		_ = s.Tick(ctx) //nolint:errcheck // Tick 已记录日志
	}

	s.log().Info(ctx, "scheduler started", slog.String("schedule", s.spec))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.log().Info(ctx, "scheduler stopped")
	return nil
}

// Tick 执行一轮采集并写出结果
//
// 上一轮仍在执行时直接返回 nil 并计入 Skipped。
func (s *Scheduler) Tick(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.statsMu.Lock()
		s.stats.Skipped++
		s.statsMu.Unlock()
		s.log().Warn(ctx, "previous run still in progress, skipping")
		return nil
	}
	defer s.running.Store(false)

	s.mu.RLock()
	collect, sinks := s.collect, s.sinks
	s.mu.RUnlock()

	runID := uuid.NewString()
	log := s.log().With(slog.String("run_id", runID))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := xmetrics.Start(ctx, s.observer, xmetrics.SpanOptions{
		Component: "xwatch",
		Operation: "tick",
		Kind:      xmetrics.KindInternal,
	})

	start := time.Now()
	metrics, err := collect(ctx)
	if err == nil {
		err = s.write(ctx, log, sinks, metrics)
	}
	took := time.Since(start)

	s.statsMu.Lock()
	s.stats.Runs++
	s.stats.LastRunID = runID
	s.stats.LastTook = took
	s.stats.LastCount = len(metrics)
	if err != nil {
		s.stats.Failures++
	}
	s.statsMu.Unlock()

	span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Int("count", len(metrics))}})
	if err != nil {
		log.Error(ctx, "collect failed", xlog.Err(err), xlog.Duration(took))
		return err
	}
	log.Info(ctx, "collect finished", slog.Int("count", len(metrics)), xlog.Duration(took))
	return nil
}

func (s *Scheduler) write(ctx context.Context, log xlog.Logger, sinks []Sink, metrics xformat.Metrics) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.Write(ctx, metrics); err != nil {
			log.Warn(ctx, "sink failed", xlog.Err(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSink, errors.Join(errs...))
	}
	return nil
}

// cronLogger 将 cron 的内部日志转到 xlog
type cronLogger struct {
	ctx    context.Context
	logger xlog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(l.ctx, "cron: "+msg, kvAttrs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(l.ctx, "cron: "+msg, append(kvAttrs(keysAndValues), xlog.Err(err))...)
}

func kvAttrs(kv []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, slog.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return attrs
}
