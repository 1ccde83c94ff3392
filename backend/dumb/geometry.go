// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dumb

import (
	"errors"
	"fmt"

	"github.com/gogpu/gralloc"
)

const (
	// Name is the backend identifier.
	Name = "dumb"

	// Priority is below any hardware-specific backend.
	Priority = 10
)

var (
	// ErrNoDumbBuffers is returned by New for devices that cannot create
	// dumb buffers.
	ErrNoDumbBuffers = errors.New("dumb: device has no dumb buffer support")

	// ErrReadOnlyMapping is returned by Map when a write mapping is
	// requested while the buffer is mapped read-only.
	ErrReadOnlyMapping = errors.New("dumb: buffer is mapped read-only")

	// ErrForeignStorage is returned when a driver is given storage it did
	// not allocate.
	ErrForeignStorage = errors.New("dumb: storage not allocated by this backend")
)

// geometry is the size of the dumb buffer holding a gralloc buffer.
type geometry struct {
	width  int
	height int
	bpp    int
}

// geometryFor returns the dumb buffer geometry for a buffer of the given
// format and size. Planar YUV formats become one 8 bpp block whose extra
// rows hold the chroma planes.
func geometryFor(format gralloc.Format, width, height int) (geometry, error) {
	if !format.Valid() {
		return geometry{}, fmt.Errorf("%w: %v", gralloc.ErrInvalidArgument, format)
	}
	if width <= 0 || height <= 0 {
		return geometry{}, fmt.Errorf("%w: size %dx%d", gralloc.ErrInvalidArgument, width, height)
	}
	align := format.StrideAlign()
	return geometry{
		width:  (width + align - 1) / align * align,
		height: format.StorageRows(height),
		bpp:    format.BitsPerPixel(),
	}, nil
}

// planeLayout converts the color planes of h into the framebuffer layout
// of a buffer whose planes all live in the GEM object gem.
func planeLayout(h *gralloc.Handle, gem uint32) (gralloc.PlaneLayout, error) {
	planes := h.Format.Layout(int(h.Height), int(h.Stride))
	if len(planes) == 0 {
		return gralloc.PlaneLayout{}, fmt.Errorf("%w: %v", gralloc.ErrInvalidArgument, h.Format)
	}
	var l gralloc.PlaneLayout
	for i, p := range planes {
		l.Pitches[i] = uint32(p.Pitch)
		l.Offsets[i] = uint32(p.Offset)
		l.Handles[i] = gem
	}
	return l, nil
}
