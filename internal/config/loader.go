package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Package hooks, replaced in tests.
var (
	userHomeDir = os.UserHomeDir
	getwd       = os.Getwd
	lookupEnv   = os.LookupEnv
)

// Loader finds and reads the configuration file.
type Loader struct {
	Version      string // build version; "dev" also searches the working directory
	OverridePath string // explicit path from the command line
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the configuration file, if any, and applies ANNOVIEW_*
// environment overrides on top.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Candidates lists the paths searched, in order.
func (l *Loader) Candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, ".annoviewrc"))
		}
	}
	if home, err := userHomeDir(); err == nil {
		dir := filepath.Join(home, ".config", "annoview")
		paths = append(paths, filepath.Join(dir, "config.rc"), filepath.Join(dir, "annoview.rc"))
	}
	return paths
}

// GetConfigPath returns the first existing candidate, or "" if none exists.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.Candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
