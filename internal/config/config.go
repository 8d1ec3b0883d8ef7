package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for typeloader.
// Unset fields are nil so callers can layer files under flags.
type FileConfig struct {
	Extensions      *string `yaml:"extensions"`
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	Threads         *int    `yaml:"threads"`
	DefaultExcludes *bool   `yaml:"default_excludes"`
	Capability      *string `yaml:"capability"`
	Timeout         *string `yaml:"timeout"`
	Verbose         *bool   `yaml:"verbose"`
	NoColor         *bool   `yaml:"no_color"`
	Baseline        *string `yaml:"baseline"`

	// Provides lists host modules manifest libraries may depend on, as
	// module -> version.
	Provides map[string]string `yaml:"provides"`
}

// ErrNotFound is returned when no config file exists at the searched paths.
var ErrNotFound = errors.New("config not found")

// LocalNames are the file names LoadLocal looks for, in order.
var LocalNames = []string{".typeloader.yml", ".typeloader.yaml", "typeloader.yml", "typeloader.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the plugin root.
func LoadLocal(root string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNotFound
}

// GlobalPath returns the global config location under XDG_CONFIG_HOME or
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "typeloader", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNotFound
	}
	return LoadFile(p)
}

// Merge returns fc with every unset field taken from lower.
func (fc FileConfig) Merge(lower FileConfig) FileConfig {
	out := fc
	pick(&out.Extensions, lower.Extensions)
	pick(&out.Include, lower.Include)
	pick(&out.Exclude, lower.Exclude)
	pick(&out.Threads, lower.Threads)
	pick(&out.DefaultExcludes, lower.DefaultExcludes)
	pick(&out.Capability, lower.Capability)
	pick(&out.Timeout, lower.Timeout)
	pick(&out.Verbose, lower.Verbose)
	pick(&out.NoColor, lower.NoColor)
	pick(&out.Baseline, lower.Baseline)
	if len(lower.Provides) > 0 {
		merged := make(map[string]string, len(lower.Provides)+len(fc.Provides))
		for k, v := range lower.Provides {
			merged[k] = v
		}
		for k, v := range fc.Provides {
			merged[k] = v
		}
		out.Provides = merged
	}
	return out
}

func pick[T any](dst **T, lower *T) {
	if *dst == nil {
		*dst = lower
	}
}

// TimeoutDuration parses Timeout; zero means no timeout.
func (fc FileConfig) TimeoutDuration() (time.Duration, error) {
	if fc.Timeout == nil || *fc.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(*fc.Timeout)
}

// Starter is the file written by `typeloader config init`.
const Starter = `# typeloader configuration
# extensions: ".so,.typelib"
# include: "**/*.typelib"
# exclude: "testdata/**"
threads: 0
default_excludes: true
capability: plugin
# timeout: 30s
# baseline: .typeloader-baseline.json
# provides:
#   example.com/runtime: 1.4.0
`
