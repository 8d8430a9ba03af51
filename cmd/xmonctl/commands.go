package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xmon/pkg/metric/xformat"
	"github.com/omeyang/xmon/pkg/metric/xschema"
)

func createCollectCommand() *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "采集一次并输出",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "输出格式 (" + strings.Join(xformat.Formats(), "/") + ")",
				Value:   xformat.FormatHuman,
			},
			&cli.StringFlag{
				Name:    "pattern",
				Aliases: []string{"p"},
				Usage:   "指标名称通配符",
				Value:   "*",
			},
			&cli.StringFlag{
				Name:  "service-map",
				Usage: "主机到服务列表的映射文件，覆盖配置",
			},
		},
		Action: cmdCollect,
	}
}

func cmdCollect(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if _, err := xformat.Lookup(format); err != nil {
		return usagef("%v", err)
	}

	extra := map[string]any{}
	if cmd.IsSet("service-map") {
		extra["locator.service_map"] = absPath(cmd.String("service-map"))
	}
	e, err := loadEnv(ctx, cmd, extra)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck // 退出前尽力关闭

	metrics, err := e.service.Collect(ctx, e.app.Base.OID, e.app.Base.Name)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if e.app.Locator.ServiceMap != "" {
		// 缺失的服务已记录 warn 日志，不影响输出
		if _, err := e.service.CheckServices(ctx, metrics, e.app.Locator.ServiceMap, e.host, e.app.Base.Name); err != nil {
			return err
		}
	}

	out, err := e.service.Output(metrics, cmd.String("pattern"), format)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(cmd.Root().Writer, out)
	}
	return nil
}

func createSchemasCommand() *cli.Command {
	return &cli.Command{
		Name:   "schemas",
		Usage:  "列出可用 schema",
		Action: cmdSchemas,
	}
}

func cmdSchemas(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(ctx, cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck // 退出前尽力关闭

	names, err := xschema.Available(e.app.Schemas.Directory)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.Root().Writer, name)
	}
	return nil
}

func createGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "由全部 schema 生成 MIB 文件",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "输出目录，会被清空后重建",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "templates",
				Usage: "MIB 模板目录，覆盖配置",
			},
		},
		Action: cmdGenerate,
	}
}

func cmdGenerate(ctx context.Context, cmd *cli.Command) error {
	extra := map[string]any{}
	if cmd.IsSet("templates") {
		extra["schemas.templates"] = absPath(cmd.String("templates"))
	}
	e, err := loadEnv(ctx, cmd, extra)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck // 退出前尽力关闭

	// MIB 树以名称根作为 oid 根，oid 与名称逐段对应
	name := e.app.Base.Name
	metrics, err := e.service.Generate(ctx, name, name)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	written, err := xformat.RenderMIB(xformat.Objects(metrics), e.app.Schemas.Templates, absPath(cmd.String("output")))
	if err != nil {
		return err
	}
	for _, file := range written {
		fmt.Fprintln(cmd.Root().Writer, file)
	}
	return nil
}
