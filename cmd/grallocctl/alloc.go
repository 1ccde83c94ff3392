// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/gralloc"
)

func newAllocCommand() *cobra.Command {
	allocCommand := &cobra.Command{
		Use:   "alloc [WIDTHxHEIGHT]",
		Short: "Allocate a buffer and print its handle",
		Long: `Allocate a buffer, print its handle, wire encoding and plane layout,
then free it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: allocAction,
	}
	addBufferFlags(allocCommand, "hw_texture|hw_render")
	return allocCommand
}

// addBufferFlags adds the --format and --usage flags.
func addBufferFlags(cmd *cobra.Command, usage string) {
	cmd.Flags().String("format", "rgba8888", "Pixel format name or HAL code")
	cmd.Flags().String("usage", usage, "Usage flags separated by '|'")
}

// bufferFlags parses the size argument and the --format and --usage flags.
func bufferFlags(cmd *cobra.Command, args []string) (width, height int, format gralloc.Format, usage gralloc.Usage, err error) {
	width, height = 640, 480
	if len(args) > 0 {
		if width, height, err = parseSize(args[0]); err != nil {
			return
		}
	}
	f, _ := cmd.Flags().GetString("format")
	if format, err = gralloc.ParseFormat(f); err != nil {
		return
	}
	u, _ := cmd.Flags().GetString("usage")
	usage, err = gralloc.ParseUsage(u)
	return
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
	}
	if width, err = strconv.Atoi(w); err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	if height, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return width, height, nil
}

func allocAction(cmd *cobra.Command, args []string) error {
	width, height, format, usage, err := bufferFlags(cmd, args)
	if err != nil {
		return err
	}

	dev, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	bo, err := dev.Create(width, height, format, usage)
	if err != nil {
		return err
	}
	defer bo.Decref()

	return writeBuffer(cmd.OutOrStdout(), dev, bo)
}

func writeBuffer(w io.Writer, dev *gralloc.Device, bo *gralloc.BufferObject) error {
	h := bo.Handle()
	wire, err := h.MarshalBinary()
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "handle: %v\n", h)
	fmt.Fprintf(&b, "size:   %d bytes\n", bo.Storage().Size())
	fmt.Fprintf(&b, "wire:   %s\n", hex.EncodeToString(wire))

	layout, err := dev.ResolveFormat(h)
	switch {
	case err == nil:
		for i, p := range h.Format.Layout(int(h.Height), int(h.Stride)) {
			fmt.Fprintf(&b, "plane %d: offset %d pitch %d rows %d (gem %d)\n",
				i, layout.Offsets[i], layout.Pitches[i], p.Rows, layout.Handles[i])
		}
	case errors.Is(err, gralloc.ErrNotSupported):
	default:
		return err
	}

	if desc, err := h.TextureDescriptor(); err == nil {
		fmt.Fprintf(&b, "texture: %v usage %#x\n", desc.Format, uint64(desc.Usage))
	}
	_, err = io.WriteString(w, b.String())
	return err
}
