//go:build windows

package command

import (
	"context"
	"os"
	"os/exec"
	"syscall"
)

// windowsShellCommand passes line to cmd.exe verbatim.
func windowsShellCommand(ctx context.Context, line string) *exec.Cmd {
	comspec := os.Getenv("COMSPEC")
	if comspec == "" {
		comspec = "cmd.exe"
	}
	cmd := exec.CommandContext(ctx, comspec)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: comspec + ` /S /C "` + line + `"`}
	return cmd
}
