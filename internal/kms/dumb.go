// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package kms

import (
	"fmt"
	"math"
	"os"

	"github.com/NeowayLabs/drm/mode"
	"golang.org/x/sys/unix"
)

// DumbBuffer is a dumb buffer created by the kernel.
type DumbBuffer struct {
	Handle uint32
	Pitch  uint32
	Size   uint64
}

// CreateDumb allocates a linear, CPU-mappable buffer.
func CreateDumb(file *os.File, width, height, bpp int) (DumbBuffer, error) {
	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return DumbBuffer{}, fmt.Errorf("kms: dumb buffer size %dx%d out of range", width, height)
	}
	fb, err := mode.CreateFB(file, uint16(width), uint16(height), uint32(bpp))
	if err != nil {
		return DumbBuffer{}, fmt.Errorf("kms: create dumb buffer: %w", err)
	}
	return DumbBuffer{Handle: fb.Handle, Pitch: fb.Pitch, Size: fb.Size}, nil
}

// DestroyDumb frees a dumb buffer.
func DestroyDumb(file *os.File, handle uint32) error {
	return mode.DestroyDumb(file, handle)
}

// MapDumb maps size bytes of a dumb buffer into the process.
func MapDumb(file *os.File, handle uint32, size int, write bool) ([]byte, error) {
	offset, err := mode.MapDumb(file, handle)
	if err != nil {
		return nil, fmt.Errorf("kms: map dumb buffer: %w", err)
	}
	prot := unix.PROT_READ
	if write {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(file.Fd()), int64(offset), size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("kms: mmap: %w", err)
	}
	return data, nil
}

// Unmap releases a mapping returned by MapDumb.
func Unmap(data []byte) error {
	return unix.Munmap(data)
}

// RemoveFramebuffer unregisters a framebuffer from the display engine.
func RemoveFramebuffer(file *os.File, fbID uint32) error {
	return mode.RmFB(file, fbID)
}
