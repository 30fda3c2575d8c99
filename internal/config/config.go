package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Schema            int      `json:"schema"`
	LibraryDir        string   `json:"library_dir,omitempty"`
	DefaultRoot       string   `json:"default_root,omitempty"`
	TokenModel        string   `json:"token_model,omitempty"`
	BytesPerToken     int      `json:"bytes_per_token,omitempty"`
	Excludes          []string `json:"excludes,omitempty"`
	NoBuiltinExcludes bool     `json:"no_builtin_excludes,omitempty"`

	path string
}

const (
	CurrentConfigSchema  = 1
	DefaultTokenModel    = "gpt-4o"
	DefaultBytesPerToken = 4
)

func DefaultConfig() *Config {
	return &Config{
		Schema:        CurrentConfigSchema,
		LibraryDir:    filepath.Join(configHome(), "pf", "templates"),
		TokenModel:    DefaultTokenModel,
		BytesPerToken: DefaultBytesPerToken,
	}
}

// Load reads the first config file found among the explicit path, the XDG
// location and ~/.pf/config.json. A missing file yields DefaultConfig.
func Load(configPath string) (*Config, error) {
	for _, path := range getConfigPaths(configPath) {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}

		cfg.path = path
		cfg.expandPaths()
		cfg.applyDefaults()
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, filepath.Join(configHome(), "pf", "config.json"))
	if home != "" {
		paths = append(paths, filepath.Join(home, ".pf", "config.json"))
	}
	return paths
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func (c *Config) expandPaths() {
	c.LibraryDir = expandHome(c.LibraryDir)
	c.DefaultRoot = expandHome(c.DefaultRoot)
}

func (c *Config) applyDefaults() {
	if c.Schema == 0 {
		c.Schema = CurrentConfigSchema
	}
	if c.TokenModel == "" {
		c.TokenModel = DefaultTokenModel
	}
	if c.BytesPerToken <= 0 {
		c.BytesPerToken = DefaultBytesPerToken
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// Root returns the selection root used when none is given on the command line.
func (c *Config) Root() string {
	if c.DefaultRoot != "" {
		return c.DefaultRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
