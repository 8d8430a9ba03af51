package xcollect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// Runner 执行外部命令，stdin 写入 input，返回合并后的 stdout 和 stderr
//
// 命令以非零状态退出时，返回的 error 应满足 errors.As(*exec.ExitError)，
// 同时 output 仍包含已捕获的输出。
type Runner interface {
	Run(ctx context.Context, argv []string, input []byte) (output []byte, err error)
}

// helperWaitDelay ctx 取消后等待输出管道关闭的时间，超过后强制返回
const helperWaitDelay = time.Second

// execRunner 基于 os/exec 的默认实现
//
// 命令在独立进程组中运行，ctx 取消时整组被杀死，sudo 派生的 jmxterm 不会
// 持有输出管道拖住调用方。
type execRunner struct{}

func (execRunner) Run(ctx context.Context, argv []string, input []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrInvalidEndpoint)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.WaitDelay = helperWaitDelay
	killProcessGroup(cmd)
	return cmd.CombinedOutput()
}

// ProcessEndpoint process://user@pid 端点
type ProcessEndpoint struct {
	User string
	PID  int
}

// String 还原端点字符串
func (e ProcessEndpoint) String() string {
	return fmt.Sprintf("%s://%s@%d", SchemeProcess, e.User, e.PID)
}

// ParseEndpoint 解析 process://user@pid 端点
func ParseEndpoint(endpoint string) (ProcessEndpoint, error) {
	scheme, rest, ok := strings.Cut(endpoint, "://")
	if !ok || Scheme(strings.ToLower(scheme)) != SchemeProcess {
		return ProcessEndpoint{}, fmt.Errorf("%w: %q is not a process endpoint", ErrInvalidEndpoint, endpoint)
	}
	user, pidStr, ok := strings.Cut(rest, "@")
	if !ok || user == "" {
		return ProcessEndpoint{}, fmt.Errorf("%w: %q missing user", ErrInvalidEndpoint, endpoint)
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return ProcessEndpoint{}, fmt.Errorf("%w: %q invalid pid", ErrInvalidEndpoint, endpoint)
	}
	return ProcessEndpoint{User: user, PID: pid}, nil
}

// ProcessClient 通过 jmxterm 读取目标 JVM 进程的 MBean 属性
//
// 以目标用户身份执行 "sudo -u <user> <helper> -l <pid>"，
// 向 stdin 写入一行 "get -b <bean> -s -q <attr>"。
type ProcessClient struct {
	target ProcessEndpoint
	helper string
	runner Runner
	logger xlog.Logger
}

func newProcessClient(endpoint string, o *options) (*ProcessClient, error) {
	target, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	runner := o.runner
	if runner == nil {
		runner = execRunner{}
	}
	return &ProcessClient{
		target: target,
		helper: o.helper,
		runner: runner,
		logger: o.log(),
	}, nil
}

// Target 返回目标进程
func (c *ProcessClient) Target() ProcessEndpoint {
	return c.target
}

// Command 返回执行的命令行
func (c *ProcessClient) Command() []string {
	return []string{"sudo", "-u", c.target.User, c.helper, "-l", strconv.Itoa(c.target.PID)}
}

// Input 根据查询生成 jmxterm 输入
//
// query 必须是包含非空字符串 bean 和 attr 的映射。
func Input(query xschema.Query) (string, error) {
	var m map[string]any
	switch q := query.(type) {
	case map[string]any:
		m = q
	case map[any]any:
		m = make(map[string]any, len(q))
		for k, v := range q {
			m[fmt.Sprint(k)] = v
		}
	default:
		return "", fmt.Errorf("%w: process query must be a mapping, got %T", ErrInvalidQuery, query)
	}

	bean, _ := m["bean"].(string)
	attr, _ := m["attr"].(string)
	if bean == "" || attr == "" {
		return "", fmt.Errorf("%w: process query requires bean and attr", ErrInvalidQuery)
	}
	return fmt.Sprintf("get -b %s -s -q %s\n", bean, attr), nil
}

// Request 执行 jmxterm 并解析输出中的整数属性
func (c *ProcessClient) Request(ctx context.Context, query xschema.Query) (any, error) {
	input, err := Input(query)
	if err != nil {
		return nil, err
	}

	argv := c.Command()
	c.logger.Debug(ctx, "process request",
		xlog.Endpoint(c.target.String()),
		xlog.Query(strings.TrimSpace(input)),
	)

	out, err := c.runner.Run(ctx, argv, []byte(input))
	if err != nil {
		c.logger.Warn(ctx, "helper command failed",
			xlog.Endpoint(c.target.String()),
			xlog.Err(err),
			xlog.Output(string(out)),
		)
		return nil, dataSourceError("%s: %w", strings.Join(argv, " "), err)
	}
	return ParseOutput(out), nil
}
