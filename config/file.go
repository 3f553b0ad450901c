package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pelletier/go-toml/v2"
)

// FileNames are the config file names searched for, in order of preference.
var FileNames = []string{"rbgate.yaml", "rbgate.yml", "rbgate.toml"}

// ReadFile reads a config file. Files ending in .toml are parsed as TOML,
// everything else as YAML (which includes JSON).
func ReadFile(p string) (*Config, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if strings.EqualFold(filepath.Ext(p), ".toml") {
		if err := toml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", p, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", p, err)
	}
	return cfg, nil
}

// FindFile looks for a config file in dir and each of its parents. It
// returns an empty string if there is none.
func FindFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			cand := filepath.Join(dir, name)
			_, err := os.Stat(cand)
			if err == nil {
				return cand, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file at p, or searches upward from the working
// directory when p is empty. It returns nil if no file was found.
func Load(p string) (*Config, error) {
	if p != "" {
		return ReadFile(p)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, err := FindFile(wd)
	if err != nil || found == "" {
		return nil, err
	}
	return ReadFile(found)
}

// FromEnv builds a config layer from RBGATE_* environment variables.
func FromEnv(getenv func(string) string) *Config {
	return &Config{
		ServerURL: getenv("RBGATE_SERVER_URL"),
		Username:  getenv("RBGATE_USERNAME"),
		Password:  getenv("RBGATE_PASSWORD"),
		APIToken:  getenv("RBGATE_API_TOKEN"),
	}
}
