// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package drivertest provides a recording gralloc backend for tests.
//
// A Kernel stands in for the kernel's global buffer name space. Drivers
// sharing one Kernel see each other's buffers, so two Devices opened with
// different process ids behave like two processes exchanging handles:
//
//	k := drivertest.NewKernel()
//	producer := drivertest.OpenDevice(t, drivertest.New(k), gralloc.WithProcessID(100))
//	consumer := drivertest.OpenDevice(t, drivertest.New(k), gralloc.WithProcessID(200))
package drivertest

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"testing"

	"github.com/gogpu/gralloc"
)

// KernelDriverName is the kernel driver name OpenDevice binds under.
const KernelDriverName = "drivertest"

// ErrNoSuchName is returned when importing a name the Kernel does not know.
var ErrNoSuchName = errors.New("drivertest: no buffer with that name")

// Op names a recorded driver call.
type Op string

// Recorded operations.
const (
	OpAllocate       Op = "allocate"
	OpImport         Op = "import"
	OpFree           Op = "free"
	OpMap            Op = "map"
	OpUnmap          Op = "unmap"
	OpResolveFormat  Op = "resolve-format"
	OpRemoveFramebuf Op = "remove-framebuffer"
	OpClose          Op = "close"
)

// Call is one recorded driver call.
type Call struct {
	Op     Op
	Name   uint32
	Write  bool
	Region image.Rectangle
	FB     uint32
}

// Buffer is a simulated kernel buffer.
type Buffer struct {
	Name   uint32
	Stride int
	Data   []byte

	// refs counts the open storages across all drivers.
	refs int
}

// Kernel is a simulated global buffer name space. It is safe for
// concurrent use.
type Kernel struct {
	mu      sync.Mutex
	next    uint32
	buffers map[uint32]*Buffer
}

// NewKernel returns an empty Kernel.
func NewKernel() *Kernel {
	return &Kernel{next: 1, buffers: make(map[uint32]*Buffer)}
}

// Buffers returns the number of live kernel buffers.
func (k *Kernel) Buffers() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buffers)
}

// Buffer returns the live buffer with the given name.
func (k *Kernel) Buffer(name uint32) (*Buffer, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, ok := k.buffers[name]
	return b, ok
}

func (k *Kernel) create(stride, size int) *Buffer {
	k.mu.Lock()
	defer k.mu.Unlock()
	b := &Buffer{Name: k.next, Stride: stride, Data: make([]byte, size), refs: 1}
	k.buffers[b.Name] = b
	k.next++
	return b
}

func (k *Kernel) open(name uint32) (*Buffer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, ok := k.buffers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchName, name)
	}
	b.refs++
	return b, nil
}

func (k *Kernel) release(b *Buffer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b.refs--
	if b.refs == 0 {
		delete(k.buffers, b.Name)
	}
}

// Storage is the backing the fake driver hands out.
type Storage struct {
	Buffer   *Buffer
	Imported bool

	// Maps is the number of outstanding Map calls.
	Maps  int
	freed bool
}

// Size returns the buffer size in bytes.
func (s *Storage) Size() int64 { return int64(len(s.Buffer.Data)) }

// Driver is a gralloc.Driver that records every call. The exported error
// fields make the matching operation fail.
type Driver struct {
	Kernel *Kernel

	AllocateErr error
	ImportErr   error
	MapErr      error
	UnmapErr    error
	FreeErr     error
	RemoveFBErr error

	// NoName makes Allocate succeed without assigning a buffer name.
	NoName bool

	mu    sync.Mutex
	calls []Call
}

// New returns a driver allocating from k.
func New(k *Kernel) *Driver {
	return &Driver{Kernel: k}
}

// Factory returns a gralloc.DriverFactory that always yields d.
func (d *Driver) Factory() gralloc.DriverFactory {
	return func(*os.File, string) (gralloc.Driver, error) {
		return d, nil
	}
}

func (d *Driver) record(c Call) {
	d.mu.Lock()
	d.calls = append(d.calls, c)
	d.mu.Unlock()
}

// Calls returns a copy of the recorded calls in order.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Ops returns the recorded operations in order.
func (d *Driver) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := make([]Op, len(d.calls))
	for i, c := range d.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (d *Driver) Count(op Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets the recorded calls.
func (d *Driver) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

// Name returns "drivertest".
func (d *Driver) Name() string { return "drivertest" }

// Allocate creates a zeroed buffer for h, or opens the buffer h names.
func (d *Driver) Allocate(h *gralloc.Handle) (gralloc.Storage, error) {
	if h.Name != 0 {
		d.record(Call{Op: OpImport, Name: h.Name})
		if d.ImportErr != nil {
			return nil, d.ImportErr
		}
		b, err := d.Kernel.open(h.Name)
		if err != nil {
			return nil, err
		}
		return &Storage{Buffer: b, Imported: true}, nil
	}

	d.record(Call{Op: OpAllocate})
	if d.AllocateErr != nil {
		return nil, d.AllocateErr
	}
	if !h.Format.Valid() {
		return nil, fmt.Errorf("%w: %v", gralloc.ErrInvalidArgument, h.Format)
	}

	stride := (int(h.Width)*h.Format.BitsPerPixel() + 7) / 8
	stride = (stride + 3) &^ 3
	b := d.Kernel.create(stride, stride*h.Format.StorageRows(int(h.Height)))

	if !d.NoName {
		h.Name = b.Name
	}
	h.Stride = int32(stride)
	return &Storage{Buffer: b}, nil
}

// Free releases the storage's reference on its kernel buffer.
func (d *Driver) Free(s gralloc.Storage) error {
	st := s.(*Storage)
	d.record(Call{Op: OpFree, Name: st.Buffer.Name})
	if d.FreeErr != nil {
		return d.FreeErr
	}
	if st.freed {
		return errors.New("drivertest: storage freed twice")
	}
	st.freed = true
	d.Kernel.release(st.Buffer)
	return nil
}

// Map returns the buffer memory.
func (d *Driver) Map(s gralloc.Storage, region image.Rectangle, write bool) ([]byte, error) {
	st := s.(*Storage)
	d.record(Call{Op: OpMap, Name: st.Buffer.Name, Write: write, Region: region})
	if d.MapErr != nil {
		return nil, d.MapErr
	}
	st.Maps++
	return st.Buffer.Data, nil
}

// Unmap balances Map.
func (d *Driver) Unmap(s gralloc.Storage) error {
	st := s.(*Storage)
	d.record(Call{Op: OpUnmap, Name: st.Buffer.Name})
	if d.UnmapErr != nil {
		return d.UnmapErr
	}
	st.Maps--
	return nil
}

// ResolveFormat reports the color planes of the buffer.
func (d *Driver) ResolveFormat(s gralloc.Storage, h *gralloc.Handle) (gralloc.PlaneLayout, error) {
	st := s.(*Storage)
	d.record(Call{Op: OpResolveFormat, Name: st.Buffer.Name})

	var l gralloc.PlaneLayout
	for i, p := range h.Format.Layout(int(h.Height), st.Buffer.Stride) {
		l.Pitches[i] = uint32(p.Pitch)
		l.Offsets[i] = uint32(p.Offset)
		l.Handles[i] = st.Buffer.Name
	}
	return l, nil
}

// RemoveFramebuffer records the removal of a framebuffer. OpenDevice
// installs the driver as the device's gralloc.FramebufferRemover.
func (d *Driver) RemoveFramebuffer(fbID uint32) error {
	d.record(Call{Op: OpRemoveFramebuf, FB: fbID})
	return d.RemoveFBErr
}

// Close records the call.
func (d *Driver) Close() error {
	d.record(Call{Op: OpClose})
	return nil
}

// OpenDevice opens a gralloc.Device bound to d on a null device file.
// The device is closed when the test ends.
func OpenDevice(tb testing.TB, d *Driver, opts ...gralloc.Option) *gralloc.Device {
	tb.Helper()

	f, err := os.Open(os.DevNull)
	if err != nil {
		tb.Fatalf("open %s: %v", os.DevNull, err)
	}

	r := gralloc.NewRegistry()
	r.Register(KernelDriverName, 100, gralloc.MatchName(KernelDriverName), d.Factory())

	base := []gralloc.Option{
		gralloc.WithFile(f),
		gralloc.WithKernelDriver(KernelDriverName),
		gralloc.WithRegistry(r),
		gralloc.WithFramebufferRemover(d),
	}
	dev, err := gralloc.Open(append(base, opts...)...)
	if err != nil {
		tb.Fatalf("gralloc.Open: %v", err)
	}
	tb.Cleanup(func() {
		if err := dev.Close(); err != nil && !errors.Is(err, gralloc.ErrDeviceClosed) {
			tb.Errorf("close device: %v", err)
		}
	})
	return dev
}
