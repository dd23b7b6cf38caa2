package portforward

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// SystemProcesses is the ProcessTable of the local host
type SystemProcesses struct{}

// Find scans every visible process. Processes that exit mid-scan or hide
// their command line are skipped, as is the calling process.
func (SystemProcesses) Find(ctx context.Context, signature string) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	self := int32(os.Getpid())
	var pids []int32
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			continue
		}
		if matches(cmdline, signature) {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

// matches reports whether cmdline is a kubectl invocation carrying signature
// as whole arguments, so "-n awx" does not match "-n awx-dev"
func matches(cmdline, signature string) bool {
	return strings.Contains(cmdline, "kubectl") && strings.Contains(cmdline+" ", signature+" ")
}

// Kill sends SIGKILL to pid
func (SystemProcesses) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.KillWithContext(ctx)
}

// ExecLauncher starts detached processes with os/exec
type ExecLauncher struct {
	// LogPath receives the process output. Empty discards it.
	LogPath string
}

// Launch starts the process and releases it so it survives the caller
func (l ExecLauncher) Launch(name string, args []string) (int32, error) {
	cmd := exec.Command(name, args...)
	detach(cmd)

	var out io.WriteCloser
	if l.LogPath != "" {
		f, err := os.OpenFile(l.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", l.LogPath, err)
		}
		out = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		if out != nil {
			out.Close()
		}
		return 0, err
	}
	pid := int32(cmd.Process.Pid)

	// The child holds its own descriptor
	if out != nil {
		out.Close()
	}
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release process %d: %w", pid, err)
	}
	return pid, nil
}
