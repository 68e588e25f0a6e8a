// Package config provides configuration management for the inspect launcher.
//
// Configuration controls:
//   - The runtime used to run the target script and the inspector flag it takes
//   - Where the inspector listens: bind host, first candidate port, scan window
//   - The explicit search path used to resolve bare target names
//   - An optional timeout after which the child is killed
//
// Configuration can be loaded from a YAML or JSON file or use defaults.
// The search path default is read from PATH once, when the defaults are
// built; the process environment is never modified.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ctagard/inspect/internal/errors"
	"github.com/ctagard/inspect/internal/resolve"
)

const (
	// DefaultRuntime is the interpreter that runs target scripts.
	DefaultRuntime = "node"

	// DefaultInspectFlag is the runtime flag that enables the inspector.
	DefaultInspectFlag = "--inspect"

	// DefaultHost is the address the inspector binds to.
	DefaultHost = "127.0.0.1"

	// DefaultStartPort is the Node.js inspector default port.
	DefaultStartPort = 9229

	// DefaultScanWindow bounds how many candidate ports are probed.
	DefaultScanWindow = 300

	maxPort = 65535
)

// Config holds the launcher configuration
type Config struct {
	// Runtime executable and arguments placed before the inspector flag
	Runtime     string   `yaml:"runtime" json:"runtime"`
	RuntimeArgs []string `yaml:"runtimeArgs" json:"runtimeArgs"`
	InspectFlag string   `yaml:"inspectFlag" json:"inspectFlag"`

	// Inspector endpoint
	Host       string `yaml:"host" json:"host"`
	StartPort  int    `yaml:"startPort" json:"startPort"`
	ScanWindow int    `yaml:"scanWindow" json:"scanWindow"`

	// Directories searched, in order, for bare target names
	SearchPath []string `yaml:"searchPath" json:"searchPath"`

	// Timeout kills the child after the given duration; zero waits forever
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// AttachFile receives a DAP attach request for the chosen port
	AttachFile string `yaml:"attachFile" json:"attachFile"`
}

// Duration is a time.Duration that unmarshals from Go duration strings.
type Duration struct {
	time.Duration
}

// UnmarshalYAML accepts "30s"-style strings or a plain number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		d.Duration = parsed
		return nil
	}
	var seconds float64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	d.Duration = time.Duration(seconds * float64(time.Second))
	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Runtime:     DefaultRuntime,
		InspectFlag: DefaultInspectFlag,
		Host:        DefaultHost,
		StartPort:   DefaultStartPort,
		ScanWindow:  DefaultScanWindow,
		SearchPath:  resolve.SplitList(os.Getenv("PATH")),
	}
}

// LoadConfig loads configuration from a YAML or JSON file on top of the
// defaults. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// yaml.v3 parses JSON documents as well
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a launch.
func (c *Config) Validate() error {
	if c.Runtime == "" {
		return errors.ConfigInvalid("runtime", "must not be empty")
	}
	if c.InspectFlag == "" {
		return errors.ConfigInvalid("inspectFlag", "must not be empty")
	}
	if c.Host == "" {
		return errors.ConfigInvalid("host", "must not be empty")
	}
	if c.StartPort < 1 || c.StartPort > maxPort {
		return errors.ConfigInvalid("startPort", fmt.Sprintf("%d is outside 1-%d", c.StartPort, maxPort))
	}
	if c.ScanWindow < 1 {
		return errors.ConfigInvalid("scanWindow", "must be at least 1")
	}
	if c.Timeout.Duration < 0 {
		return errors.ConfigInvalid("timeout", "must not be negative")
	}
	return nil
}

// PrependSearchPath puts dirs in front of the configured search path.
func (c *Config) PrependSearchPath(dirs ...string) {
	c.SearchPath = append(append([]string{}, dirs...), c.SearchPath...)
}
