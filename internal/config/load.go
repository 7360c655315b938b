package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that may point at a config file.
// The -config flag wins over it.
const EnvConfig = "HEIGHTVIEW_CONFIG"

// FileName is the config file looked up in the search directories.
const FileName = "config.yaml"

// Load builds the effective config: defaults, then the first config file
// found (see ResolvePath), then CLI flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	if path := ResolvePath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile builds a config from defaults and one file, ignoring flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath returns the config file to read, or "" to run on defaults.
// Order: -config flag, $HEIGHTVIEW_CONFIG, then the first existing file
// among SearchPaths. Explicit paths are returned even if missing so that
// Load reports them.
func ResolvePath() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// SearchPaths lists the implicit config locations in priority order.
func SearchPaths() []string {
	return []string{
		FileName,
		filepath.Join(ConfigDir(), FileName),
	}
}

func findConfigFile() string {
	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user heightview directory under the OS config
// root ($XDG_CONFIG_HOME or ~/.config, ~/Library/Application Support, %AppData%).
func ConfigDir() string {
	root, err := os.UserConfigDir()
	if err != nil {
		// No home directory; fall back to the working directory
		root, _ = filepath.Abs(".")
	}
	return filepath.Join(root, "heightview")
}

// loadFromFile merges a YAML file into cfg. Lists such as tile_resolutions
// replace the current value; the bindings map merges key by key. Unknown
// keys are rejected so typos do not silently fall back to defaults. An
// empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
