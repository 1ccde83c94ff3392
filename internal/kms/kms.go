// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

// Package kms wraps the kernel DRM buffer-management protocol: opening the
// device node, querying the driver, GEM names, PRIME descriptors, dumb
// buffers, authentication and master control.
//
// Every function is a thin call into the kernel; none of them keep state.
package kms

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NeowayLabs/drm"
	"golang.org/x/sys/unix"
)

const (
	driPath   = "/dev/dri"
	sysfsPath = "/sys/class/graphics"
)

// ErrNoCard is returned when a framebuffer device has no DRM card.
var ErrNoCard = errors.New("kms: no DRM card for framebuffer")

// Open opens a DRM device node for reading and writing.
func Open(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("kms: open %s: %w", path, err)
	}
	return f, nil
}

// OpenCard opens /dev/dri/card<n>.
func OpenCard(n int) (*os.File, error) {
	f, err := drm.OpenCard(n)
	if err != nil {
		return nil, fmt.Errorf("kms: open card%d: %w", n, err)
	}
	return f, nil
}

// CardForFramebuffer returns the device node of the DRM card that drives
// the fbdev framebuffer /dev/fb<fb>.
func CardForFramebuffer(fb int) (string, error) {
	return cardForFramebuffer(sysfsPath, driPath, fb)
}

func cardForFramebuffer(sysfs, dri string, fb int) (string, error) {
	dir := filepath.Join(sysfs, fmt.Sprintf("fb%d", fb), "device", "drm")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: fb%d: %w", ErrNoCard, fb, err)
	}

	var cards []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "card") {
			cards = append(cards, e.Name())
		}
	}
	if len(cards) == 0 {
		return "", fmt.Errorf("%w: fb%d", ErrNoCard, fb)
	}
	sort.Strings(cards)
	return filepath.Join(dri, cards[0]), nil
}

// DriverName returns the name of the kernel driver behind file (e.g. "i915").
func DriverName(file *os.File) (string, error) {
	v, err := drm.GetVersion(file)
	if err != nil {
		return "", fmt.Errorf("kms: invalid DRM fd: %w", err)
	}
	return v.Name, nil
}

// PRIME capability bits reported for drm.CapPrime.
const (
	PrimeCapImport = 0x1
	PrimeCapExport = 0x2
)

// HasDumbBuffer reports whether the device supports dumb buffers.
func HasDumbBuffer(file *os.File) bool {
	return drm.HasDumbBuffer(file)
}

// PrimeCaps returns the PRIME capability bits of the device, or 0 if the
// device does not report them.
func PrimeCaps(file *os.File) uint64 {
	caps, err := drm.GetCap(file, drm.CapPrime)
	if err != nil {
		return 0
	}
	return caps
}
