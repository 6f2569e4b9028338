// Package config loads the server options from defaults, an optional
// rslsw.{toml,yaml} file, RSLSW_* environment variables and the client's
// initializationOptions.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding options,
// e.g. RSLSW_LOG_LEVEL for log.level.
const EnvPrefix = "RSLSW"

// Options are the server options.
type Options struct {
	Log        LogOptions        `mapstructure:"log"`
	Completion CompletionOptions `mapstructure:"completion"`
	Hints      HintsOptions      `mapstructure:"hints"`
	Inline     InlineOptions     `mapstructure:"inline"`
	Metrics    MetricsOptions    `mapstructure:"metrics"`
	Workspace  WorkspaceOptions  `mapstructure:"workspace"`
}

type LogOptions struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type CompletionOptions struct {
	// Timeout bounds candidate collection; zero means no limit.
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxItems int           `mapstructure:"maxItems"`
}

type HintsOptions struct {
	ExpandSupertraits bool `mapstructure:"expandSupertraits"`
}

type InlineOptions struct {
	KeepDeclaration bool `mapstructure:"keepDeclaration"`
	ThisOnly        bool `mapstructure:"thisOnly"`
}

type MetricsOptions struct {
	// Addr is the listen address of the metrics endpoint; empty disables it.
	Addr string `mapstructure:"addr"`
}

type WorkspaceOptions struct {
	Watch bool `mapstructure:"watch"`
}

// SetDefaults registers the default value of every option on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("completion.timeout", 500*time.Millisecond)
	v.SetDefault("completion.maxItems", 100)
	v.SetDefault("hints.expandSupertraits", false)
	v.SetDefault("inline.keepDeclaration", false)
	v.SetDefault("inline.thisOnly", false)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("workspace.watch", true)
}

// New returns a viper instance with defaults and environment bindings. The
// config file is configFile when set, otherwise rslsw.{toml,yaml,...} in
// root if present.
func New(configFile, root string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	switch {
	case configFile != "":
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	case root != "":
		v.SetConfigName("rslsw")
		v.AddConfigPath(root)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config in %s: %w", root, err)
			}
		}
	}
	return v, nil
}

// Load decodes the options held by v.
func Load(v *viper.Viper) (*Options, error) {
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &opts, nil
}

// Merge merges settings, such as the client's initializationOptions, into
// v's config layer and decodes the result. Environment variables still take
// precedence.
func Merge(v *viper.Viper, settings map[string]any) (*Options, error) {
	if len(settings) > 0 {
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, fmt.Errorf("failed to merge settings: %w", err)
		}
	}
	return Load(v)
}
