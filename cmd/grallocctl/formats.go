// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/gralloc"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported pixel formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeFormats(cmd.OutOrStdout())
		},
	}
}

func writeFormats(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-10s %4s %6s %5s %s\n", "NAME", "CODE", "BPP", "PLANES", "MASK", "TEXTURE")
	for _, f := range gralloc.Formats() {
		texture := "-"
		if tf, err := f.TextureFormat(); err == nil {
			texture = tf.String()
		}
		fmt.Fprintf(&b, "%-10s %-10s %4d %6d %5s %s\n",
			f, fmt.Sprintf("%#x", int32(f)), f.BitsPerPixel(), f.Planes(),
			fmt.Sprintf("%#x", f.PlaneMask()), texture)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
