// Package config handles launcher configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (KOI_LAUNCHER_*)
//  2. launcher.yaml next to the launcher executable
//  3. User config file ($XDG_CONFIG_HOME/koi-launcher/config.yaml)
//  4. Built-in defaults
//
// The launcher only ever reads its own KOI_LAUNCHER_* namespace; the child
// process still receives the whole environment untouched.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/killuox/koi-launcher/internal/paths"
)

const (
	// EnvPrefix is the environment namespace read by the launcher.
	EnvPrefix = "KOI_LAUNCHER"
	// InstallFileName is the optional config file next to the launcher.
	InstallFileName = "launcher.yaml"
	// UserFileName is the optional config file in the user config root.
	UserFileName = "config.yaml"

	// DefaultLogLevel is the default structured log level.
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default structured log format.
	DefaultLogFormat = "json"
)

// Config keys.
const (
	KeyInstallDir        = "install.dir"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyLogFile           = "log.file"
	KeyLogStderr         = "log.stderr"
	KeyForwardSignals    = "signals.forward"
	KeyTelemetryEnabled  = "telemetry.enabled"
	KeyTelemetryEndpoint = "telemetry.endpoint"
	KeyMinKoiVersion     = "koi.min_version"
)

var defaults = map[string]any{
	KeyInstallDir:        "",
	KeyLogLevel:          DefaultLogLevel,
	KeyLogFormat:         DefaultLogFormat,
	KeyLogFile:           "",
	KeyLogStderr:         "",
	KeyForwardSignals:    true,
	KeyTelemetryEnabled:  false,
	KeyTelemetryEndpoint: "",
	KeyMinKoiVersion:     "",
}

// Config holds the launcher configuration.
type Config struct {
	v          *viper.Viper
	installDir string
	files      []string
}

// Load reads configuration from all sources. installDir is the directory
// the launcher executable lives in; it is searched for launcher.yaml and is
// the default base for binary resolution. It may be empty.
func Load(installDir string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	c := &Config{v: v, installDir: installDir}

	if root, err := paths.ConfigRoot(); err == nil {
		if err := c.readFile(filepath.Join(root, UserFileName), v.ReadInConfig); err != nil {
			return nil, err
		}
	}

	if installDir != "" {
		if err := c.readFile(filepath.Join(installDir, InstallFileName), v.MergeInConfig); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return c, nil
}

// readFile loads path with read (ReadInConfig or MergeInConfig). A missing
// file is not an error; a malformed one is.
func (c *Config) readFile(path string, read func() error) error {
	c.v.SetConfigFile(path)
	c.v.SetConfigType("yaml")

	if err := read(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("read config file %s: %w", path, err)
	}

	c.files = append(c.files, path)

	return nil
}

// Files returns the config files that were found and read, lowest priority first.
func (c *Config) Files() []string {
	return slices.Clone(c.files)
}

// Get returns a configuration value.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return strings.TrimSpace(c.v.GetString(key))
}

// GetBool returns a configuration value as bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// Keys returns every known configuration key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

// IsKnownKey reports whether key is a launcher configuration key.
func IsKnownKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// All returns the effective value of every known key.
func (c *Config) All() map[string]any {
	out := make(map[string]any, len(defaults))
	for key := range defaults {
		out[key] = c.v.Get(key)
	}

	out[KeyInstallDir] = c.InstallDir()

	return out
}

// InstallDir returns the directory the koi binaries are resolved against:
// install.dir when set, otherwise the launcher's own directory.
func (c *Config) InstallDir() string {
	if dir := c.GetString(KeyInstallDir); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}

		return dir
	}

	return c.installDir
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string {
	return c.GetString(KeyLogLevel)
}

// LogFormat returns the configured log format.
func (c *Config) LogFormat() string {
	return c.GetString(KeyLogFormat)
}

// LogFile returns the configured log file path, if any.
func (c *Config) LogFile() string {
	return c.GetString(KeyLogFile)
}

// LogStderr returns the configured stderr sink mode, or fallback when unset.
func (c *Config) LogStderr(fallback string) string {
	if mode := c.GetString(KeyLogStderr); mode != "" {
		return mode
	}

	return fallback
}

// ForwardSignals reports whether termination signals are relayed to koi.
func (c *Config) ForwardSignals() bool {
	return c.GetBool(KeyForwardSignals)
}

// TelemetryEnabled reports whether launch traces are exported.
func (c *Config) TelemetryEnabled() bool {
	return c.GetBool(KeyTelemetryEnabled)
}

// TelemetryEndpoint returns the OTLP HTTP endpoint override.
func (c *Config) TelemetryEndpoint() string {
	return c.GetString(KeyTelemetryEndpoint)
}

// MinKoiVersion returns the minimum koi version doctor accepts.
func (c *Config) MinKoiVersion() string {
	return c.GetString(KeyMinKoiVersion)
}
