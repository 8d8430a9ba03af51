package xlocate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// ProcessInfo 进程快照中的一项
type ProcessInfo struct {
	Cmdline string
	PID     int
	User    string
}

// ProcessLister 枚举当前进程
type ProcessLister func(ctx context.Context) ([]ProcessInfo, error)

// ListProcesses 基于 gopsutil 枚举进程
//
// 无权读取命令行或用户名的进程被跳过。
func ListProcesses(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListProcesses, err)
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			xlog.Debug(ctx, "skip process", slog.Int("pid", int(p.Pid)), xlog.Err(err))
			continue
		}
		user, err := p.UsernameWithContext(ctx)
		if err != nil {
			xlog.Debug(ctx, "skip process", slog.Int("pid", int(p.Pid)), xlog.Err(err))
			continue
		}
		infos = append(infos, ProcessInfo{
			Cmdline: strings.Join(args, " "),
			PID:     int(p.Pid),
			User:    user,
		})
	}
	return infos, nil
}

// ProcessTable 进程列表快照
//
// 首次 Snapshot 时枚举进程，之后返回同一份结果，直到 Reset。
type ProcessTable struct {
	list ProcessLister

	mu     sync.Mutex
	loaded bool
	procs  []ProcessInfo
	err    error
}

// NewProcessTable 创建进程快照，list 为 nil 时使用 ListProcesses
func NewProcessTable(list ProcessLister) *ProcessTable {
	if list == nil {
		list = ListProcesses
	}
	return &ProcessTable{list: list}
}

// Snapshot 返回进程快照
func (t *ProcessTable) Snapshot(ctx context.Context) ([]ProcessInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		t.procs, t.err = t.list(ctx)
		t.loaded = true
	}
	return t.procs, t.err
}

// Reset 丢弃快照，下次 Snapshot 重新枚举
func (t *ProcessTable) Reset() {
	t.mu.Lock()
	t.loaded = false
	t.procs, t.err = nil, nil
	t.mu.Unlock()
}

// DefaultPattern Process 定位器的默认匹配模式
const DefaultPattern = ".*?"

// Process 按命令行正则定位 JVM 进程
//
// 模式从命令行开头匹配，"." 可以匹配换行。
type Process struct {
	pattern *regexp.Regexp
	table   *ProcessTable

	mu   sync.Mutex
	pid  int
	user string
}

// NewProcess 创建进程定位器，pattern 为空时使用 DefaultPattern
func NewProcess(pattern string, table *ProcessTable) (*Process, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(`(?sm)\A(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", ErrInvalidArgument, pattern, err)
	}
	if table == nil {
		table = NewProcessTable(nil)
	}
	return &Process{pattern: re, table: table}, nil
}

// Exists 在进程快照中查找第一个命令行匹配的进程
func (p *Process) Exists(ctx context.Context) bool {
	procs, err := p.table.Snapshot(ctx)
	if err != nil {
		xlog.Warn(ctx, "could not list processes", xlog.Err(err))
		return false
	}
	for _, proc := range procs {
		if p.pattern.MatchString(proc.Cmdline) {
			p.mu.Lock()
			p.pid, p.user = proc.PID, proc.User
			p.mu.Unlock()
			return true
		}
	}
	p.mu.Lock()
	p.pid, p.user = 0, ""
	p.mu.Unlock()
	return false
}

// Endpoint 返回 process://user@pid，未找到进程时为空
func (p *Process) Endpoint() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == "" || p.pid == 0 {
		return ""
	}
	return fmt.Sprintf("process://%s@%d", p.user, p.pid)
}
