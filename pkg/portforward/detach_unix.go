//go:build unix

package portforward

import (
	"os/exec"
	"syscall"
)

// detach puts the process in its own session so a closing terminal's SIGHUP
// does not reach it
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
