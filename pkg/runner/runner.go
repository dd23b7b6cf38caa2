package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command describes one external tool invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// String renders the command line the way a user would type it
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner runs external commands to completion
type Runner interface {
	// Run streams the command's output to the runner's writers
	Run(ctx context.Context, cmd Command) error
	// Output returns the command's stdout
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// Exec runs commands with os/exec
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	Log    logrus.FieldLogger
}

// NewExec creates an Exec runner writing to the given streams
func NewExec(stdout, stderr io.Writer, log logrus.FieldLogger) *Exec {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Exec{Stdout: stdout, Stderr: stderr, Log: log}
}

func (e *Exec) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run executes the command with stdout/stderr passthrough.
// The *exec.ExitError stays in the returned chain.
func (e *Exec) Run(ctx context.Context, c Command) error {
	e.Log.WithField("dir", c.Dir).Debugf("running %s", c)

	cmd := e.command(ctx, c)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return nil
}

// Output executes the command and returns its stdout. Stderr is forwarded.
func (e *Exec) Output(ctx context.Context, c Command) ([]byte, error) {
	e.Log.WithField("dir", c.Dir).Debugf("running %s", c)

	var stdout bytes.Buffer
	cmd := e.command(ctx, c)
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return stdout.Bytes(), nil
}
