// Package config holds every tunable of a deployment run. A Config is built
// once at startup and handed to each component; nothing reads global state.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Supported cluster providers
const (
	ProviderMinikube = "minikube"
	ProviderKind     = "kind"
)

// Config is the full set of settings for one run
type Config struct {
	Cluster   ClusterConfig   `mapstructure:"cluster"`
	Operator  OperatorConfig  `mapstructure:"operator"`
	Namespace string          `mapstructure:"namespace"`
	Instance  string          `mapstructure:"instance"`
	Manifest  ManifestConfig  `mapstructure:"manifest"`
	Workloads []string        `mapstructure:"workloads"`
	Replicas  int32           `mapstructure:"replicas"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Expose    ExposeConfig    `mapstructure:"expose"`
	Admin     AdminConfig     `mapstructure:"admin"`
	WorkDir   string          `mapstructure:"workDir"`
	LogLevel  string          `mapstructure:"logLevel"`
}

// ClusterConfig selects and addresses the local cluster
type ClusterConfig struct {
	Provider   string   `mapstructure:"provider"`
	Name       string   `mapstructure:"name"`
	StartArgs  []string `mapstructure:"startArgs"`
	Kubeconfig string   `mapstructure:"kubeconfig"`
	Context    string   `mapstructure:"context"`
}

// OperatorConfig pins the operator source
type OperatorConfig struct {
	Repository string `mapstructure:"repository"`
	Version    string `mapstructure:"version"`
	Path       string `mapstructure:"path"`
	Target     string `mapstructure:"target"`
}

// ManifestConfig describes the deployment manifest template
type ManifestConfig struct {
	Template    string `mapstructure:"template"`
	Placeholder string `mapstructure:"placeholder"`
}

// ReadinessConfig bounds the readiness wait
type ReadinessConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Settle   time.Duration `mapstructure:"settle"`
}

// ExposeConfig is the port-forward target
type ExposeConfig struct {
	Service    string `mapstructure:"service"`
	LocalPort  int    `mapstructure:"localPort"`
	RemotePort int    `mapstructure:"remotePort"`
}

// AdminConfig locates the generated admin credential
type AdminConfig struct {
	Secret string `mapstructure:"secret"`
	// Search ignores Secret and picks the single secret whose name contains Marker.
	Search bool   `mapstructure:"search"`
	Marker string `mapstructure:"marker"`
	Key    string `mapstructure:"key"`
}

// Default returns the built-in configuration
func Default() Config {
	cfg := Config{
		Cluster: ClusterConfig{
			Provider: ProviderMinikube,
			Name:     "minikube",
		},
		Operator: OperatorConfig{
			Repository: "https://github.com/ansible/awx-operator.git",
			Version:    "2.19.1",
			Path:       "awx-operator",
			Target:     "deploy",
		},
		Namespace: "awx",
		Instance:  "awx-demo",
		Manifest: ManifestConfig{
			Template:    "awx-demo.yml.tmpl",
			Placeholder: "AWX_INSTANCE_NAME",
		},
		Replicas: 1,
		Readiness: ReadinessConfig{
			Interval: 60 * time.Second,
			Timeout:  600 * time.Second,
			Settle:   120 * time.Second,
		},
		Expose: ExposeConfig{
			LocalPort:  8080,
			RemotePort: 80,
		},
		Admin: AdminConfig{
			Marker: "password",
			Key:    "password",
		},
		WorkDir:  ".awx-local",
		LogLevel: "info",
	}
	cfg.ApplyDerived()
	return cfg
}

// ApplyDerived fills the settings that default to names built from the instance
func (c *Config) ApplyDerived() {
	if len(c.Workloads) == 0 {
		c.Workloads = []string{c.Instance + "-web", c.Instance + "-task"}
	}
	if c.Expose.Service == "" {
		c.Expose.Service = c.Instance + "-service"
	}
	if c.Admin.Secret == "" {
		c.Admin.Secret = c.Instance + "-admin-password"
	}
}

// Address is the local URL the exposed service answers on
func (c Config) Address() string {
	return fmt.Sprintf("http://localhost:%d", c.Expose.LocalPort)
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var errs []error

	switch c.Cluster.Provider {
	case ProviderMinikube, ProviderKind:
	default:
		errs = append(errs, fmt.Errorf("unknown cluster provider %q", c.Cluster.Provider))
	}
	if c.Cluster.Name == "" {
		errs = append(errs, errors.New("cluster name must not be empty"))
	}

	if _, err := url.Parse(c.Operator.Repository); err != nil || c.Operator.Repository == "" {
		errs = append(errs, fmt.Errorf("invalid operator repository %q", c.Operator.Repository))
	}
	if _, err := semver.NewVersion(c.Operator.Version); err != nil {
		errs = append(errs, fmt.Errorf("operator version %q is not a release tag: %w", c.Operator.Version, err))
	}
	if c.Operator.Path == "" {
		errs = append(errs, errors.New("operator path must not be empty"))
	}
	if c.Operator.Target == "" {
		errs = append(errs, errors.New("operator make target must not be empty"))
	}

	if c.Namespace == "" {
		errs = append(errs, errors.New("namespace must not be empty"))
	}
	if c.Instance == "" {
		errs = append(errs, errors.New("instance name must not be empty"))
	}
	if c.Manifest.Template == "" || c.Manifest.Placeholder == "" {
		errs = append(errs, errors.New("manifest template and placeholder must be set"))
	}

	if len(c.Workloads) != 2 {
		errs = append(errs, fmt.Errorf("expected exactly two workloads, got %d", len(c.Workloads)))
	}
	if c.Replicas < 1 {
		errs = append(errs, fmt.Errorf("replicas must be at least 1, got %d", c.Replicas))
	}

	if c.Readiness.Interval <= 0 || c.Readiness.Timeout <= 0 || c.Readiness.Settle < 0 {
		errs = append(errs, errors.New("readiness interval and timeout must be positive, settle must not be negative"))
	}

	if c.Expose.Service == "" {
		errs = append(errs, errors.New("expose service must not be empty"))
	}
	for name, port := range map[string]int{"local": c.Expose.LocalPort, "remote": c.Expose.RemotePort} {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s port %d out of range", name, port))
		}
	}

	if c.Admin.Search && c.Admin.Marker == "" {
		errs = append(errs, errors.New("admin secret marker must be set when searching"))
	}
	if !c.Admin.Search && c.Admin.Secret == "" {
		errs = append(errs, errors.New("admin secret name must not be empty"))
	}
	if c.Admin.Key == "" {
		errs = append(errs, errors.New("admin secret key must not be empty"))
	}

	return errors.Join(errs...)
}
