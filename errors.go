// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"errors"
	"fmt"
)

// Common gralloc errors.
var (
	// ErrInvalidArgument is returned for malformed handles, incompatible
	// usage requests and handles that cannot be resolved in this process.
	ErrInvalidArgument = errors.New("gralloc: invalid argument")

	// ErrInvalidHandle is returned when opaque data is not a gralloc handle.
	// It matches ErrInvalidArgument with errors.Is.
	ErrInvalidHandle = fmt.Errorf("%w: not a gralloc handle", ErrInvalidArgument)

	// ErrUnsupportedDriver is returned when no registered backend accepts
	// the kernel driver of the opened device.
	ErrUnsupportedDriver = errors.New("gralloc: unsupported driver")

	// ErrNotSupported is returned when the bound backend does not implement
	// an optional capability.
	ErrNotSupported = errors.New("gralloc: operation not supported by driver")

	// ErrNoTextureFormat is returned when a buffer format has no texture
	// format equivalent.
	ErrNoTextureFormat = errors.New("gralloc: no texture format for buffer format")

	// ErrDeviceClosed is returned by operations on a closed Device.
	ErrDeviceClosed = errors.New("gralloc: device closed")
)

// UnsupportedDriverError indicates that the kernel driver reported by the
// device matched none of the registered backends.
type UnsupportedDriverError struct {
	Name string
}

func (e *UnsupportedDriverError) Error() string {
	name := e.Name
	if name == "" {
		name = "NULL"
	}
	return "gralloc: unsupported driver: " + name
}

// Unwrap allows errors.Is(err, ErrUnsupportedDriver).
func (e *UnsupportedDriverError) Unwrap() error {
	return ErrUnsupportedDriver
}
