// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"
	"sync"
)

// BufferObject is the in-process representation of a buffer. Each process
// holds at most one BufferObject per kernel buffer.
//
// A BufferObject is either created locally (Device.Create), in which case
// it owns its Handle, or imported from a handle that came from another
// process (Device.Register), in which case the handle belongs to the caller.
type BufferObject struct {
	dev     *Device
	handle  *Handle
	storage Storage

	// imported is set when the buffer was resolved from a foreign handle.
	imported bool
	refcount int

	lockCount int
	lockedFor Usage

	// fbID is the display framebuffer bound to this buffer, or 0.
	fbID uint32

	destroyed bool

	mu sync.Mutex
}

// Create allocates a new buffer and returns its buffer object with one
// reference.
func (d *Device) Create(width, height int, format Format, usage Usage) (*BufferObject, error) {
	if d.closed {
		return nil, ErrDeviceClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidArgument, width, height)
	}

	handle := NewHandle(width, height, format, usage)
	handle.PlaneMask = d.planes.PlanesForFormat(format)

	storage, err := d.drv.Allocate(handle)
	if err != nil {
		Logger().Debug("allocate failed", "width", width, "height", height,
			"format", format, "usage", usage, "err", err)
		return nil, err
	}
	if handle.Name == 0 {
		if ferr := d.drv.Free(storage); ferr != nil {
			Logger().Error("free failed", "err", ferr)
		}
		return nil, fmt.Errorf("gralloc: %s backend allocated a buffer without a name", d.drv.Name())
	}

	bo := &BufferObject{
		dev:      d,
		handle:   handle,
		storage:  storage,
		refcount: 1,
	}
	handle.DataOwner = d.pid
	d.bos.Put(handle.Name, bo)

	Logger().Debug("buffer created", "handle", handle)
	return bo, nil
}

// validateHandle resolves h to the buffer object of this process.
//
// A handle whose buffer is already known in this process resolves to the
// cached buffer object without calling the driver. Otherwise, when
// allowImport is set and the handle names a kernel buffer, the driver
// imports it and the new buffer object starts with one reference.
func (d *Device) validateHandle(h *Handle, allowImport bool) *BufferObject {
	if ValidateHandle(h) == nil {
		return nil
	}

	if bo, ok := d.bos.Get(h.Name); ok && h.Name != 0 {
		h.DataOwner = d.pid
		return bo
	}

	// The handle came from another process, or was never resolved here.
	if !allowImport || d.closed {
		return nil
	}
	if h.Name == 0 {
		return nil
	}

	storage, err := d.drv.Allocate(h)
	if err != nil {
		Logger().Debug("import failed", "handle", h, "err", err)
		return nil
	}

	bo := &BufferObject{
		dev:      d,
		handle:   h,
		storage:  storage,
		imported: true,
		refcount: 1,
	}
	h.DataOwner = d.pid
	d.bos.Put(h.Name, bo)

	Logger().Debug("buffer imported", "handle", h)
	return bo
}

// Register resolves a handle received from another process, importing its
// buffer if needed, and takes a reference on the buffer object.
func (d *Device) Register(h *Handle) error {
	bo := d.validateHandle(h, true)
	if bo == nil {
		return ErrInvalidArgument
	}

	bo.refcount++
	return nil
}

// Unregister drops the reference taken by Register. For an imported
// buffer it also drops the reference the import created, so a buffer
// registered once is destroyed by its matching Unregister.
func (d *Device) Unregister(h *Handle) error {
	bo := d.validateHandle(h, false)
	if bo == nil {
		return ErrInvalidArgument
	}

	bo.Decref()
	if bo.imported {
		bo.Decref()
	}
	return nil
}

// Lookup returns the buffer object of a handle already resolved in this
// process. It never imports.
func (d *Device) Lookup(h *Handle) (*BufferObject, error) {
	bo := d.validateHandle(h, false)
	if bo == nil {
		return nil, ErrInvalidArgument
	}
	return bo, nil
}

// ResolveFormat returns the per-plane layout of a resolved handle.
// It returns ErrNotSupported if the backend cannot describe its buffers.
func (d *Device) ResolveFormat(h *Handle) (PlaneLayout, error) {
	bo := d.validateHandle(h, false)
	if bo == nil {
		return PlaneLayout{}, ErrInvalidArgument
	}
	fr, ok := d.drv.(FormatResolver)
	if !ok {
		return PlaneLayout{}, ErrNotSupported
	}
	return fr.ResolveFormat(bo.storage, bo.handle)
}

// Decref drops one reference and destroys the buffer object when none are
// left.
func (bo *BufferObject) Decref() {
	if bo.destroyed {
		Logger().Warn("decref of destroyed buffer", "name", bo.handle.Name)
		return
	}
	bo.refcount--
	if bo.refcount == 0 {
		bo.destroy()
	}
}

// destroy frees the buffer. It runs only when the last reference is gone.
func (bo *BufferObject) destroy() {
	if bo.refcount != 0 {
		return
	}

	// The display engine must stop scanning out the memory before it is
	// freed.
	if err := bo.ReleaseFramebuffer(); err != nil {
		Logger().Warn("failed to remove framebuffer", "name", bo.handle.Name, "err", err)
	}

	d := bo.dev
	handle := bo.handle
	if err := d.drv.Free(bo.storage); err != nil {
		Logger().Error("free failed", "name", handle.Name, "err", err)
	}
	bo.storage = nil
	bo.destroyed = true

	d.bos.CompareAndDelete(handle.Name, func(v *BufferObject) bool { return v == bo })

	if bo.imported {
		handle.DataOwner = 0
	} else {
		*handle = Handle{}
	}
	Logger().Debug("buffer destroyed", "imported", bo.imported)
}

// Handle returns the handle of the buffer. For a locally created buffer
// the handle is owned by the buffer object and is invalidated when the
// buffer is destroyed.
func (bo *BufferObject) Handle() *Handle {
	return bo.handle
}

// Stride returns the row pitch of the first plane in bytes.
func (bo *BufferObject) Stride() int {
	return int(bo.handle.Stride)
}

// Storage returns the backend storage of the buffer.
func (bo *BufferObject) Storage() Storage {
	return bo.storage
}

// Device returns the device the buffer belongs to.
func (bo *BufferObject) Device() *Device {
	return bo.dev
}

// Imported reports whether the buffer was resolved from a foreign handle.
func (bo *BufferObject) Imported() bool {
	return bo.imported
}

// RefCount returns the number of references held on the buffer.
func (bo *BufferObject) RefCount() int {
	return bo.refcount
}

// Destroyed reports whether the buffer has been freed.
func (bo *BufferObject) Destroyed() bool {
	return bo.destroyed
}

// Locker returns a mutex callers can use to serialize operations on this
// buffer object. gralloc never takes it itself.
func (bo *BufferObject) Locker() sync.Locker {
	return &bo.mu
}

// FramebufferID returns the display framebuffer bound to the buffer, or 0.
func (bo *BufferObject) FramebufferID() uint32 {
	return bo.fbID
}

// BindFramebuffer records the display framebuffer created for this buffer.
// It is removed before the buffer's storage is freed.
func (bo *BufferObject) BindFramebuffer(fbID uint32) {
	bo.fbID = fbID
}

// ReleaseFramebuffer removes the bound framebuffer, if any.
func (bo *BufferObject) ReleaseFramebuffer() error {
	if bo.fbID == 0 {
		return nil
	}
	id := bo.fbID
	bo.fbID = 0
	return bo.dev.fbRemover.RemoveFramebuffer(id)
}
