// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command grallocctl inspects a graphics device and exercises gralloc
// buffers on it.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/gralloc"
	_ "github.com/gogpu/gralloc/backend/dumb"
)

func main() {
	if err := newApp().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "grallocctl:", err)
		os.Exit(1)
	}
}

func newApp() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grallocctl",
		Short: "Allocate and inspect graphics buffers",
		Example: `  Show the bound backend:
  $ grallocctl info

  Allocate an NV12 buffer on a specific card:
  $ grallocctl alloc --card 1 --format nv12 --usage hw_texture 1280x720

  Render a test pattern through a CPU mapping:
  $ grallocctl dump -o pattern.bmp`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default $XDG_CONFIG_HOME/grallocctl/config.yaml)")
	flags.String("device", "", "DRM device node, e.g. /dev/dri/card0")
	flags.Int("card", -1, "DRM card number")
	flags.String("kernel-driver", "", "Bind as if the device reported this kernel driver")
	flags.BoolP("verbose", "v", false, "Log at debug level")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadFlags(cmd)
		if err != nil {
			return err
		}
		return setupLogging(cfg)
	}

	rootCmd.AddCommand(
		newInfoCommand(),
		newAllocCommand(),
		newDumpCommand(),
		newFormatsCommand(),
	)
	return rootCmd
}

// loadFlags reads the config file and applies the flags the user set on
// top of it.
func loadFlags(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}

	if flags.Changed("device") {
		cfg.Device, _ = flags.GetString("device")
	}
	if flags.Changed("card") {
		n, _ := flags.GetInt("card")
		cfg.Card = &n
	}
	if flags.Changed("kernel-driver") {
		cfg.KernelDriver, _ = flags.GetString("kernel-driver")
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func setupLogging(cfg Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	gralloc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// openDevice opens the device selected by the config file and flags.
func openDevice(cmd *cobra.Command) (*gralloc.Device, error) {
	cfg, err := loadFlags(cmd)
	if err != nil {
		return nil, err
	}
	return gralloc.Open(cfg.Options()...)
}
