//go:build unix

package xcollect

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup 让 cmd 成为新进程组的组长，取消时向整组发送 SIGKILL
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		if err != nil {
			// 无权限时（例如组内进程已切换用户）退回只杀直接子进程
			return cmd.Process.Kill()
		}
		return nil
	}
}
