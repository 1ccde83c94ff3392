// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(n int) *int { return &n }

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Config
	}{
		{"empty", "", Config{}},
		{
			"full",
			"device: /dev/dri/card1\ncard: 2\nkernel_driver: i915\nlog_level: debug\n",
			Config{Device: "/dev/dri/card1", Card: intPtr(2), KernelDriver: "i915", LogLevel: "debug"},
		},
		{"card zero", "card: 0\n", Config{Card: intPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tt.in))
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseConfig mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	for name, in := range map[string]string{
		"unknown key":   "devices: /dev/dri/card0\n",
		"duplicate key": "card: 1\ncard: 2\n",
		"bad level":     "log_level: loud\n",
		"bad type":      "card: first\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(in)); err == nil {
				t.Errorf("ParseConfig(%q) succeeded", in)
			}
		})
	}
}

func TestConfigLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := Config{LogLevel: tt.in}.Level()
		if err != nil || got != tt.want {
			t.Errorf("Level(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestConfigOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"empty", Config{}, 0},
		{"device", Config{Device: "/dev/dri/card0"}, 1},
		{"device wins over card", Config{Device: "/dev/dri/card0", Card: intPtr(1)}, 1},
		{"card and driver", Config{Card: intPtr(1), KernelDriver: "i915"}, 2},
	}
	for _, tt := range tests {
		if got := len(tt.cfg.Options()); got != tt.want {
			t.Errorf("%s: %d options, want %d", tt.name, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("kernel_driver: vc4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.KernelDriver != "vc4" {
		t.Errorf("KernelDriver = %q, want vc4", cfg.KernelDriver)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig of a missing explicit file succeeded")
	}
}

func TestLoadConfigDefaultMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(Config{}, cfg); diff != "" {
		t.Errorf("LoadConfig mismatch (-want +got):\n%s", diff)
	}
}
