// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"image"
	"os"
)

// Storage is the driver-private backing of a buffer object.
// Only the driver that returned it may interpret it.
type Storage interface {
	// Size returns the size of the backing memory in bytes.
	Size() int64
}

// Driver is the capability a backend provides for one GPU family.
//
// A Driver is bound to exactly one Device and is called only from the
// Device's goroutines; it needs no internal locking beyond what its own
// resources require.
type Driver interface {
	// Name returns the backend identifier (e.g., "dumb").
	Name() string

	// Allocate creates the backing storage for h.
	//
	// When h.Name is zero the driver allocates new memory and fills in
	// h.Name, h.Stride and, if it can export one, h.PrimeFD.
	// When h.Name is set the handle came from another process and the
	// driver imports the existing memory instead.
	Allocate(h *Handle) (Storage, error)

	// Free releases storage returned by Allocate. It is called exactly
	// once per storage.
	Free(s Storage) error

	// Map makes the storage visible to the CPU and returns the mapping.
	// The driver waits for pending hardware access before returning.
	// Map is called once per successful CPU lock and balanced by Unmap.
	Map(s Storage, region image.Rectangle, write bool) ([]byte, error)

	// Unmap tears down one mapping established by Map.
	Unmap(s Storage) error

	// Close releases the driver's own resources. The device file is owned
	// by the Device and must not be closed by the driver.
	Close() error
}

// PlaneLayout is the per-plane placement of a multi-plane buffer as
// expected by framebuffer registration: up to four planes, each with its
// pitch, byte offset and kernel buffer handle.
type PlaneLayout struct {
	Pitches [4]uint32
	Offsets [4]uint32
	Handles [4]uint32
}

// FormatResolver is implemented by drivers that can describe the plane
// layout of their buffers.
type FormatResolver interface {
	ResolveFormat(s Storage, h *Handle) (PlaneLayout, error)
}

// DriverFactory constructs a driver for an opened device whose kernel
// driver reported kernelName.
type DriverFactory func(file *os.File, kernelName string) (Driver, error)
