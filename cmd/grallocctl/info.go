// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/gogpu/gralloc"
)

// primeCapable is implemented by backends that report PRIME support.
type primeCapable interface {
	CanImport() bool
	CanExport() bool
}

type deviceInfo struct {
	KernelDriver string   `yaml:"kernel_driver"`
	Backend      string   `yaml:"backend"`
	Backends     []string `yaml:"backends"`
	ProcessID    int      `yaml:"pid"`
	PrimeImport  *bool    `yaml:"prime_import,omitempty"`
	PrimeExport  *bool    `yaml:"prime_export,omitempty"`
}

func newInfoCommand() *cobra.Command {
	infoCommand := &cobra.Command{
		Use:   "info",
		Short: "Show the device, its kernel driver and the bound backend",
		Args:  cobra.NoArgs,
		RunE:  infoAction,
	}
	infoCommand.Flags().StringP("output", "o", "text", "Output format [text, yaml]")
	return infoCommand
}

func infoAction(cmd *cobra.Command, _ []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	dev, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	info := describeDevice(dev)
	switch output {
	case "yaml":
		b, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	case "text":
		return writeInfo(cmd.OutOrStdout(), info)
	}
	return fmt.Errorf("unsupported output format: %q", output)
}

func describeDevice(dev *gralloc.Device) deviceInfo {
	info := deviceInfo{
		KernelDriver: dev.KernelDriver(),
		Backend:      dev.DriverName(),
		Backends:     gralloc.Drivers(),
		ProcessID:    dev.ProcessID(),
	}
	if pc, ok := dev.Driver().(primeCapable); ok {
		imp, exp := pc.CanImport(), pc.CanExport()
		info.PrimeImport = &imp
		info.PrimeExport = &exp
	}
	return info
}

func writeInfo(w io.Writer, info deviceInfo) error {
	var b strings.Builder
	fmt.Fprintf(&b, "kernel driver: %s\n", info.KernelDriver)
	fmt.Fprintf(&b, "backend:       %s\n", info.Backend)
	fmt.Fprintf(&b, "backends:      %s\n", strings.Join(info.Backends, ", "))
	fmt.Fprintf(&b, "pid:           %d\n", info.ProcessID)
	if info.PrimeImport != nil {
		fmt.Fprintf(&b, "prime import:  %t\n", *info.PrimeImport)
		fmt.Fprintf(&b, "prime export:  %t\n", *info.PrimeExport)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
