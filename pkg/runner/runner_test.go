package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	assert.Equal(t, "make", Command{Name: "make"}.String())
	assert.Equal(t, "kubectl apply -f x.yml -n awx",
		Command{Name: "kubectl", Args: []string{"apply", "-f", "x.yml", "-n", "awx"}}.String())
}

func TestExecRunAndOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	var stdout, stderr bytes.Buffer
	log := logrus.New()
	r := NewExec(&stdout, &stderr, log)

	require.NoError(t, r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $GREETING"},
		Env:  []string{"GREETING=hello"},
	}))
	assert.Equal(t, "hello\n", stdout.String())

	out, err := r.Output(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "pwd"},
		Dir:  "/",
	})
	require.NoError(t, err)
	assert.Equal(t, "/\n", string(out))
}

func TestExecKeepsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	r := NewExec(&bytes.Buffer{}, &bytes.Buffer{}, logrus.New())
	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestFakeRecordsCalls(t *testing.T) {
	f := NewFake()
	boom := errors.New("boom")
	f.Fail("git checkout 1.0.0", boom)
	f.Outputs["minikube status"] = []byte("Running")

	require.NoError(t, f.Run(context.Background(), Command{Name: "make", Args: []string{"deploy"}}))
	assert.ErrorIs(t, f.Run(context.Background(), Command{Name: "git", Args: []string{"checkout", "1.0.0"}}), boom)

	out, err := f.Output(context.Background(), Command{Name: "minikube", Args: []string{"status"}})
	require.NoError(t, err)
	assert.Equal(t, "Running", string(out))

	assert.Equal(t, []string{"make deploy", "git checkout 1.0.0", "minikube status"}, f.Lines())
}
