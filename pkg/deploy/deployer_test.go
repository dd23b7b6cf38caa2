package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/kappal-app/awx-local/pkg/logging"
	"github.com/kappal-app/awx-local/pkg/portforward"
	"github.com/kappal-app/awx-local/pkg/readiness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

var (
	ready = readiness.Status{Want: 1, Workloads: []readiness.WorkloadStatus{
		{Name: "awx-demo-web", Exists: true, Available: 1},
		{Name: "awx-demo-task", Exists: true, Available: 1},
	}}
	absent = readiness.Status{Want: 1, Workloads: []readiness.WorkloadStatus{
		{Name: "awx-demo-web"},
		{Name: "awx-demo-task"},
	}}
)

// recorder implements every component and records the calls in order
type recorder struct {
	calls    []string
	statuses []readiness.Status
	cloned   bool
	created  bool
	started  bool
	fail     map[string]error
}

func newRecorder(initial readiness.Status) *recorder {
	return &recorder{statuses: []readiness.Status{initial}, cloned: true, created: true, started: true, fail: map[string]error{}}
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	return r.fail[call]
}

func (r *recorder) Probe(context.Context) readiness.Status {
	_ = r.record("probe")
	s := r.statuses[0]
	if len(r.statuses) > 1 {
		r.statuses = r.statuses[1:]
	}
	return s
}

func (r *recorder) Wait(context.Context) error {
	return r.record("wait")
}

func (r *recorder) Ensure(context.Context) (bool, error) {
	return r.cloned, r.record("source")
}

func (r *recorder) EnsureNamespace(_ context.Context, name string) (bool, error) {
	return r.created, r.record("namespace " + name)
}

func (r *recorder) Install(context.Context) error {
	return r.record("operator")
}

func (r *recorder) RenderManifest(template, placeholder, value string) (string, error) {
	if err := r.record(fmt.Sprintf("render %s %s=%s", template, placeholder, value)); err != nil {
		return "", err
	}
	return ".awx-local/manifests/awx-demo.yml", nil
}

func (r *recorder) Apply(_ context.Context, path, namespace string) error {
	return r.record(fmt.Sprintf("apply %s %s", path, namespace))
}

func (r *recorder) Expose(context.Context) (portforward.Handle, error) {
	if err := r.record("expose"); err != nil {
		return portforward.Handle{}, err
	}
	return portforward.Handle{PID: 42, Started: r.started, Address: "http://localhost:8080"}, nil
}

func (r *recorder) Password(context.Context) (string, error) {
	if err := r.record("password"); err != nil {
		return "", err
	}
	return "s3cr3t", nil
}

func newDeployer(r *recorder, out *bytes.Buffer) *Deployer {
	c := Components{
		Prober:     r,
		Waiter:     r,
		Source:     r,
		Namespaces: r,
		Operator:   r,
		Renderer:   r,
		Applier:    r,
		Exposer:    r,
		Reporter:   r,
	}
	s := Settings{
		Namespace:   "awx",
		Instance:    "awx-demo",
		Version:     "2.19.1",
		Template:    "awx-demo.yml.tmpl",
		Placeholder: "AWX_INSTANCE_NAME",
	}
	return New(c, s, out, logging.Discard())
}

var installPath = []string{
	"probe",
	"source",
	"namespace awx",
	"operator",
	"render awx-demo.yml.tmpl AWX_INSTANCE_NAME=awx-demo",
	"apply .awx-local/manifests/awx-demo.yml awx",
	"wait",
	"expose",
	"password",
}

func TestRunInstallsWhenNotReady(t *testing.T) {
	r := newRecorder(absent)
	var out bytes.Buffer

	result, err := newDeployer(r, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, installPath, r.calls)
	assert.Equal(t, &Result{
		Installed:      true,
		Access:         "http://localhost:8080",
		ForwardPID:     42,
		ForwardStarted: true,
		Password:       "s3cr3t",
	}, result)
	assert.Contains(t, out.String(), "namespace awx created")
	assert.Contains(t, out.String(), "awx-demo is ready")
}

func TestRunSkipsInstallWhenReady(t *testing.T) {
	r := newRecorder(ready)
	r.started = false
	var out bytes.Buffer

	result, err := newDeployer(r, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"probe", "expose", "password"}, r.calls)
	assert.False(t, result.Installed)
	assert.False(t, result.ForwardStarted)
	assert.Equal(t, "s3cr3t", result.Password)
	assert.Contains(t, out.String(), "already running, skipping install")
}

func TestRunProbesExactlyOnce(t *testing.T) {
	r := newRecorder(absent)
	r.statuses = append(r.statuses, ready)

	_, err := newDeployer(r, &bytes.Buffer{}).Run(context.Background())
	require.NoError(t, err)

	probes := 0
	for _, c := range r.calls {
		if c == "probe" {
			probes++
		}
	}
	assert.Equal(t, 1, probes)
}

func TestRunReusesExistingCheckoutAndNamespace(t *testing.T) {
	r := newRecorder(absent)
	r.cloned = false
	r.created = false
	var out bytes.Buffer

	_, err := newDeployer(r, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, installPath, r.calls)
	assert.Contains(t, out.String(), "using existing operator checkout")
	assert.NotContains(t, out.String(), "namespace awx created")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")

	for i, step := range installPath {
		if step == "probe" {
			continue
		}
		t.Run(step, func(t *testing.T) {
			r := newRecorder(absent)
			r.fail[step] = boom

			result, err := newDeployer(r, &bytes.Buffer{}).Run(context.Background())
			assert.ErrorIs(t, err, boom)
			assert.Nil(t, result)
			assert.Equal(t, installPath[:i+1], r.calls)
		})
	}
}

func TestRunKeepsTimeoutInChain(t *testing.T) {
	r := newRecorder(absent)
	r.fail["wait"] = fmt.Errorf("%w after 10m0s", readiness.ErrTimeout)

	_, err := newDeployer(r, &bytes.Buffer{}).Run(context.Background())
	assert.ErrorIs(t, err, readiness.ErrTimeout)
	assert.NotContains(t, r.calls, "expose")
}

// fakeCluster is a Cluster with scripted state
type fakeCluster struct {
	running  bool
	checkErr error
	startErr error
	starts   int
}

func (f *fakeCluster) Name() string {
	return "minikube/minikube"
}

func (f *fakeCluster) Running(context.Context) (bool, error) {
	return f.running, f.checkErr
}

func (f *fakeCluster) Start(context.Context) error {
	f.starts++
	return f.startErr
}

func TestEnsureCluster(t *testing.T) {
	ctx := context.Background()

	t.Run("running", func(t *testing.T) {
		c := &fakeCluster{running: true}
		require.NoError(t, EnsureCluster(ctx, c, &bytes.Buffer{}))
		assert.Zero(t, c.starts)
	})

	t.Run("stopped", func(t *testing.T) {
		c := &fakeCluster{}
		var out bytes.Buffer
		require.NoError(t, EnsureCluster(ctx, c, &out))
		assert.Equal(t, 1, c.starts)
		assert.Contains(t, out.String(), "cluster minikube/minikube started")
	})

	t.Run("check fails", func(t *testing.T) {
		boom := errors.New("minikube not installed")
		err := EnsureCluster(ctx, &fakeCluster{checkErr: boom}, &bytes.Buffer{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("start fails", func(t *testing.T) {
		boom := errors.New("exit status 80")
		err := EnsureCluster(ctx, &fakeCluster{startErr: boom}, &bytes.Buffer{})
		assert.ErrorIs(t, err, boom)
	})
}
