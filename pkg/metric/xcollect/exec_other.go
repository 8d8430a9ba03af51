//go:build !unix

package xcollect

import "os/exec"

// killProcessGroup 非 Unix 平台只依赖 WaitDelay 释放输出管道
func killProcessGroup(*exec.Cmd) {}
