// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package dumb

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/sys/unix"

	"github.com/gogpu/gralloc"
	"github.com/gogpu/gralloc/internal/kms"
)

func init() {
	gralloc.RegisterDriver(Name, Priority, gralloc.MatchAny, New)
}

// storage is the backing of one buffer: a GEM object of the device.
type storage struct {
	gem      uint32
	size     int64
	imported bool

	// primeFD is the dma-buf exported for a locally created buffer, or
	// gralloc.NoFD.
	primeFD int

	mapping  []byte
	writable bool
	mapRefs  int
}

func (s *storage) Size() int64 { return s.size }

// Driver allocates dumb buffers on one device.
type Driver struct {
	file   *os.File
	kernel string
	caps   uint64
}

// New returns a dumb-buffer driver for file. It fails with
// ErrNoDumbBuffers if the device cannot create dumb buffers.
func New(file *os.File, kernelName string) (gralloc.Driver, error) {
	if !kms.HasDumbBuffer(file) {
		return nil, fmt.Errorf("%w: %s", ErrNoDumbBuffers, kernelName)
	}
	return &Driver{
		file:   file,
		kernel: kernelName,
		caps:   kms.PrimeCaps(file),
	}, nil
}

// Name returns "dumb".
func (d *Driver) Name() string { return Name }

// CanExport reports whether new buffers get a PRIME descriptor.
func (d *Driver) CanExport() bool { return d.caps&kms.PrimeCapExport != 0 }

// CanImport reports whether the device accepts PRIME descriptors.
func (d *Driver) CanImport() bool { return d.caps&kms.PrimeCapImport != 0 }

// Allocate creates a dumb buffer for h, or opens the buffer h names.
func (d *Driver) Allocate(h *gralloc.Handle) (gralloc.Storage, error) {
	if h.Name != 0 {
		return d.open(h)
	}
	return d.create(h)
}

func (d *Driver) create(h *gralloc.Handle) (*storage, error) {
	g, err := geometryFor(h.Format, int(h.Width), int(h.Height))
	if err != nil {
		return nil, err
	}

	db, err := kms.CreateDumb(d.file, g.width, g.height, g.bpp)
	if err != nil {
		return nil, err
	}

	name, err := kms.Flink(d.file, db.Handle)
	if err != nil {
		if derr := kms.DestroyDumb(d.file, db.Handle); derr != nil {
			gralloc.Logger().Warn("dumb: destroy after failed flink", "gem", db.Handle, "err", derr)
		}
		return nil, fmt.Errorf("dumb: flink: %w", err)
	}

	s := &storage{
		gem:     db.Handle,
		size:    int64(db.Size),
		primeFD: gralloc.NoFD,
	}
	if d.CanExport() {
		fd, err := kms.HandleToFD(d.file, db.Handle)
		if err != nil {
			gralloc.Logger().Warn("dumb: prime export failed", "gem", db.Handle, "err", err)
		} else {
			s.primeFD = fd
		}
	}

	h.Name = name
	h.Stride = int32(db.Pitch)
	h.PrimeFD = int32(s.primeFD)

	gralloc.Logger().Debug("dumb: created",
		"gem", s.gem, "name", name, "width", g.width, "height", g.height,
		"bpp", g.bpp, "pitch", db.Pitch, "size", db.Size)
	return s, nil
}

func (d *Driver) open(h *gralloc.Handle) (*storage, error) {
	gem, size, err := kms.OpenName(d.file, h.Name)
	if err != nil {
		return nil, fmt.Errorf("dumb: open name %d: %w", h.Name, err)
	}
	gralloc.Logger().Debug("dumb: opened", "gem", gem, "name", h.Name, "size", size)
	return &storage{
		gem:      gem,
		size:     int64(size),
		imported: true,
		primeFD:  gralloc.NoFD,
	}, nil
}

// Free unmaps the buffer if needed and releases its GEM handle.
func (d *Driver) Free(s gralloc.Storage) error {
	st, err := own(s)
	if err != nil {
		return err
	}

	if st.mapping != nil {
		if err := kms.Unmap(st.mapping); err != nil {
			gralloc.Logger().Warn("dumb: unmap on free", "gem", st.gem, "err", err)
		}
		st.mapping = nil
		st.mapRefs = 0
	}
	if st.primeFD >= 0 {
		_ = unix.Close(st.primeFD)
		st.primeFD = gralloc.NoFD
	}

	if st.imported {
		return kms.CloseHandle(d.file, st.gem)
	}
	return kms.DestroyDumb(d.file, st.gem)
}

// Map maps the whole buffer. Nested maps share one mapping.
func (d *Driver) Map(s gralloc.Storage, region image.Rectangle, write bool) ([]byte, error) {
	st, err := own(s)
	if err != nil {
		return nil, err
	}

	if st.mapping != nil {
		if write && !st.writable {
			return nil, ErrReadOnlyMapping
		}
		st.mapRefs++
		return st.mapping, nil
	}

	data, err := kms.MapDumb(d.file, st.gem, int(st.size), write)
	if err != nil {
		return nil, err
	}
	st.mapping = data
	st.writable = write
	st.mapRefs = 1

	gralloc.Logger().Debug("dumb: mapped", "gem", st.gem, "region", region, "write", write)
	return data, nil
}

// Unmap drops one mapping reference and unmaps the buffer at zero.
func (d *Driver) Unmap(s gralloc.Storage) error {
	st, err := own(s)
	if err != nil {
		return err
	}
	if st.mapRefs == 0 {
		return nil
	}
	st.mapRefs--
	if st.mapRefs > 0 {
		return nil
	}
	data := st.mapping
	st.mapping = nil
	return kms.Unmap(data)
}

// ResolveFormat reports the plane layout of the buffer. All planes live
// in the same GEM object.
func (d *Driver) ResolveFormat(s gralloc.Storage, h *gralloc.Handle) (gralloc.PlaneLayout, error) {
	st, err := own(s)
	if err != nil {
		return gralloc.PlaneLayout{}, err
	}
	return planeLayout(h, st.gem)
}

// Close does nothing; the device file belongs to the gralloc.Device.
func (d *Driver) Close() error { return nil }

func own(s gralloc.Storage) (*storage, error) {
	st, ok := s.(*storage)
	if !ok || st == nil {
		return nil, ErrForeignStorage
	}
	return st, nil
}
