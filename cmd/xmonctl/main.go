// xmonctl 按 schema 采集本机服务的指标。
//
// 用法:
//
//	xmonctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     配置文件 (默认依次查找 ./.xmon.yaml, ~/.xmon.yaml, /etc/xmon.yaml)
//	    --host       本机主机名，用于定位器参数覆盖和服务映射 (默认: os.Hostname)
//	    --log-level  日志级别 (debug/info/warn/error)
//	    --log-file   日志文件，按大小轮转
//	    --schemas    schema 目录
//	    --locator    定位器定义文件
//	    --oid        指标 oid 根
//	    --name       指标名称根
//
// 命令:
//
//	collect      采集一次并输出
//	schemas      列出可用 schema
//	generate     由全部 schema 生成 MIB 文件
//	watch        按计划持续采集
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误
//
// 示例:
//
//	xmonctl collect                          # 人类可读格式输出全部指标
//	xmonctl collect -f subagent -p 'hadoop.hdfs.*'
//	xmonctl generate -o /usr/share/snmp/mibs/hadoop
//	xmonctl watch --schedule '@every 30s' --output /var/lib/xmon/metrics.txt --listen :9108
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// usageError 参数错误，退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xmonctl",
		Usage:   "按 schema 采集本机服务的指标",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "本机主机名",
				Value: hostname(),
			},
			&cli.StringFlag{Name: "log-level", Usage: "日志级别 (debug/info/warn/error)"},
			&cli.StringFlag{Name: "log-file", Usage: "日志文件"},
			&cli.StringFlag{Name: "schemas", Usage: "schema 目录"},
			&cli.StringFlag{Name: "locator", Usage: "定位器定义文件"},
			&cli.StringFlag{Name: "oid", Usage: "指标 oid 根"},
			&cli.StringFlag{Name: "name", Usage: "指标名称根"},
		},
		Commands: []*cli.Command{
			createCollectCommand(),
			createSchemasCommand(),
			createGenerateCommand(),
			createWatchCommand(),
		},
		// 退出码由 run 统一映射
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := createApp().Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			// ExitErrHandler 或 flag 解析器已向 stderr 输出错误详情
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// cliUsageMessages CLI 框架产生的参数错误前缀
var cliUsageMessages = []string{
	"flag provided but not defined",
	"invalid value",
	"Required flag",
	"Required flags",
	"No help topic",
}

func isCLIUsageError(err error) bool {
	if _, ok := err.(cli.ExitCoder); ok {
		return true
	}
	msg := err.Error()
	for _, prefix := range cliUsageMessages {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return name
}
