// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"errors"
	"os"

	"github.com/gogpu/gralloc/internal/table"
)

// FramebufferRemover releases a display framebuffer bound to a buffer.
type FramebufferRemover interface {
	RemoveFramebuffer(fbID uint32) error
}

// FramebufferRemoverFunc adapts a function to FramebufferRemover.
type FramebufferRemoverFunc func(fbID uint32) error

// RemoveFramebuffer calls fn(fbID).
func (fn FramebufferRemoverFunc) RemoveFramebuffer(fbID uint32) error {
	return fn(fbID)
}

// Device is an opened graphics device with its bound backend driver.
// There is normally one Device per process; it owns the device file and
// the driver and caches the buffer objects resolved in this process.
//
// The Device itself is set up once by Open and only read afterwards.
// Buffer objects are not synchronized internally: callers serialize
// Register, Unregister, Decref, Lock and Unlock on any one buffer object
// (see BufferObject.Locker).
type Device struct {
	file      *os.File
	kernel    string
	drv       Driver
	pid       int32
	planes    PlaneResolver
	fbRemover FramebufferRemover

	// bos maps kernel buffer names to the buffer objects resolved in this
	// process.
	bos *table.Table[*BufferObject]

	firstPost bool
	closed    bool
}

// Open opens the graphics device and binds the backend driver matching its
// kernel driver.
//
// The device is, in order of preference: the file given by WithFile, the
// node given by WithPath, the card given by WithCard, the DRM card behind
// framebuffer 0, card 0. If the kernel driver matches no registered
// backend, or the matching backend fails to initialize, the device file is
// closed and an error is returned.
func Open(opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	file, err := openDeviceFile(&o)
	if err != nil {
		return nil, err
	}

	kernel := o.kernelDriver
	if kernel == "" {
		kernel, err = kernelDriverName(file)
		if err != nil {
			Logger().Error("invalid DRM fd", "err", err)
			_ = file.Close()
			return nil, err
		}
	}

	drv, err := o.registry.Bind(file, kernel)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	pid := o.pid
	if pid == 0 {
		pid = processID()
	}

	d := &Device{
		file:      file,
		kernel:    kernel,
		drv:       drv,
		pid:       int32(pid),
		planes:    o.planes,
		fbRemover: o.fbRemover,
		bos:       table.New[*BufferObject](),
	}
	if d.fbRemover == nil {
		d.fbRemover = defaultFramebufferRemover(file)
	}
	return d, nil
}

// Close destroys the backend driver and closes the device file.
// Buffer objects still alive are abandoned.
func (d *Device) Close() error {
	if d.closed {
		return ErrDeviceClosed
	}
	d.closed = true

	if n := d.bos.Len(); n > 0 {
		Logger().Warn("closing device with live buffers", "buffers", n)
		d.bos.Range(func(name uint32, bo *BufferObject) bool {
			Logger().Debug("live buffer", "name", name, "refcount", bo.refcount, "imported", bo.imported)
			return true
		})
	}

	var errs []error
	if d.drv != nil {
		if err := d.drv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.file.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// File returns the device file.
func (d *Device) File() *os.File {
	return d.file
}

// Fd returns the descriptor of the device file.
func (d *Device) Fd() uintptr {
	return d.file.Fd()
}

// KernelDriver returns the name the kernel driver reported (e.g. "i915").
func (d *Device) KernelDriver() string {
	return d.kernel
}

// DriverName returns the name of the bound backend.
func (d *Device) DriverName() string {
	return d.drv.Name()
}

// Driver returns the bound backend.
func (d *Device) Driver() Driver {
	return d.drv
}

// ProcessID returns the process identity stamped into resolved handles.
func (d *Device) ProcessID() int {
	return int(d.pid)
}

// Buffers returns the number of buffer objects alive in this process.
func (d *Device) Buffers() int {
	return d.bos.Len()
}

// CacheStats returns lookup statistics of the per-process buffer table.
func (d *Device) CacheStats() table.Stats {
	return d.bos.Stats()
}

// FirstPost reports whether the device became DRM master, after which the
// display owner is expected to post its first frame.
func (d *Device) FirstPost() bool {
	return d.firstPost
}
