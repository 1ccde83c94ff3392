// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/gogpu/gralloc"
)

// Config is the optional grallocctl config file.
//
//	device: /dev/dri/card1
//	kernel_driver: i915
//	log_level: info
type Config struct {
	Device       string `yaml:"device,omitempty"`
	Card         *int   `yaml:"card,omitempty"`
	KernelDriver string `yaml:"kernel_driver,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/grallocctl/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "grallocctl", "config.yaml"), nil
}

// LoadConfig reads the config file at path. An empty path means the
// default location, where a missing file yields an empty config.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return Config{}, nil
		}
		path = p
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes a config file. Unknown keys are rejected.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(b, &cfg, yaml.Strict(), yaml.DisallowDuplicateKey()); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the configured log level. The default is warn.
func (c Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Options converts the config to device options.
func (c Config) Options() []gralloc.Option {
	var opts []gralloc.Option
	switch {
	case c.Device != "":
		opts = append(opts, gralloc.WithPath(c.Device))
	case c.Card != nil:
		opts = append(opts, gralloc.WithCard(*c.Card))
	}
	if c.KernelDriver != "" {
		opts = append(opts, gralloc.WithKernelDriver(c.KernelDriver))
	}
	return opts
}
