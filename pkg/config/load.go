package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AWX_LOCAL_NAMESPACE
const EnvPrefix = "AWX_LOCAL"

// flagKeys maps command-line flag names to configuration keys
var flagKeys = map[string]string{
	"namespace":  "namespace",
	"instance":   "instance",
	"provider":   "cluster.provider",
	"cluster":    "cluster.name",
	"kubeconfig": "cluster.kubeconfig",
	"context":    "cluster.context",
	"version":    "operator.version",
	"log-level":  "logLevel",
	"port":       "expose.localPort",
	"timeout":    "readiness.timeout",
}

// Load builds a Config from defaults, an optional config file, AWX_LOCAL_*
// environment variables and flags, in increasing order of precedence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDerived()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides resolve during Unmarshal
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("cluster.provider", d.Cluster.Provider)
	v.SetDefault("cluster.name", d.Cluster.Name)
	v.SetDefault("cluster.startArgs", []string{})
	v.SetDefault("cluster.kubeconfig", "")
	v.SetDefault("cluster.context", "")

	v.SetDefault("operator.repository", d.Operator.Repository)
	v.SetDefault("operator.version", d.Operator.Version)
	v.SetDefault("operator.path", d.Operator.Path)
	v.SetDefault("operator.target", d.Operator.Target)

	v.SetDefault("namespace", d.Namespace)
	v.SetDefault("instance", d.Instance)

	v.SetDefault("manifest.template", d.Manifest.Template)
	v.SetDefault("manifest.placeholder", d.Manifest.Placeholder)

	// Left empty so they derive from the effective instance name.
	v.SetDefault("workloads", []string{})
	v.SetDefault("expose.service", "")
	v.SetDefault("admin.secret", "")

	v.SetDefault("replicas", d.Replicas)
	v.SetDefault("readiness.interval", d.Readiness.Interval)
	v.SetDefault("readiness.timeout", d.Readiness.Timeout)
	v.SetDefault("readiness.settle", d.Readiness.Settle)
	v.SetDefault("expose.localPort", d.Expose.LocalPort)
	v.SetDefault("expose.remotePort", d.Expose.RemotePort)
	v.SetDefault("admin.search", d.Admin.Search)
	v.SetDefault("admin.marker", d.Admin.Marker)
	v.SetDefault("admin.key", d.Admin.Key)
	v.SetDefault("workDir", d.WorkDir)
	v.SetDefault("logLevel", d.LogLevel)
}
