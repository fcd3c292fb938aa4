//go:build !windows

package command

import (
	"context"
	"os/exec"
)

// windowsShellCommand is only reachable off Windows when a Runner is
// configured for the Windows kind explicitly.
func windowsShellCommand(ctx context.Context, line string) *exec.Cmd {
	return exec.CommandContext(ctx, "cmd.exe", "/S", "/C", line)
}
