// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"encoding/binary"
	"fmt"
)

// Handle layout constants.
const (
	// HandleMagic tags every gralloc handle.
	HandleMagic uint32 = 0x12345678

	// HandleHeaderSize is the size of the native handle header
	// (version, fd count, int count).
	HandleHeaderSize = 12

	// HandleNumFds is the number of descriptor slots in a handle.
	HandleNumFds = 1

	// HandleNumInts is the number of integer fields after the descriptors.
	HandleNumInts = 9

	// HandleWireSize is the length of a marshaled handle in bytes.
	HandleWireSize = HandleHeaderSize + 4*(HandleNumFds+HandleNumInts)

	// NoFD marks an empty descriptor slot.
	NoFD = -1
)

// Handle is the cross-process identity of a buffer. It has a fixed shape
// and is copied by value between processes; nothing in it refers to memory
// of the process that created it.
//
// The buffer object a handle resolves to is cached per process by the
// Device (keyed by Name), never inside the handle.
type Handle struct {
	// Native handle header.
	Version int32
	NumFds  int32
	NumInts int32

	// PrimeFD is an exportable descriptor of the backing memory, or NoFD.
	PrimeFD int32

	Magic  uint32
	Width  int32
	Height int32
	Format Format
	Usage  Usage

	// PlaneMask is resolved from Format when the buffer is created.
	PlaneMask uint32

	// Name is the kernel-wide buffer name. Zero means the handle is not
	// backed by any buffer.
	Name uint32

	// Stride is the row pitch of the first plane in bytes.
	Stride int32

	// DataOwner is the id of the last process that resolved the handle to a
	// local buffer object. Zero when unresolved.
	DataOwner int32
}

// NewHandle returns a new, unbacked handle for the given attributes.
func NewHandle(width, height int, format Format, usage Usage) *Handle {
	return &Handle{
		Version: HandleHeaderSize,
		NumFds:  HandleNumFds,
		NumInts: HandleNumInts,
		PrimeFD: NoFD,
		Magic:   HandleMagic,
		Width:   int32(width),
		Height:  int32(height),
		Format:  format,
		Usage:   usage,
	}
}

// ValidateHandle returns h if it is a well-formed gralloc handle and nil
// otherwise.
func ValidateHandle(h *Handle) *Handle {
	if h == nil ||
		h.Version != HandleHeaderSize ||
		h.NumFds != HandleNumFds ||
		h.NumInts != HandleNumInts ||
		h.Magic != HandleMagic {
		return nil
	}
	return h
}

// Clone returns a copy of h, as another process would receive it.
// The descriptor number is copied as is, not duplicated.
func (h *Handle) Clone() *Handle {
	c := *h
	return &c
}

// HandleName returns the kernel buffer name of h, or 0 if h is invalid.
func HandleName(h *Handle) uint32 {
	if ValidateHandle(h) == nil {
		return 0
	}
	return h.Name
}

// HandlePrimeFD returns the prime descriptor of h, or NoFD if h is invalid.
func HandlePrimeFD(h *Handle) int {
	if ValidateHandle(h) == nil {
		return NoFD
	}
	return int(h.PrimeFD)
}

// MarshalBinary encodes the handle in its fixed little-endian layout.
func (h *Handle) MarshalBinary() ([]byte, error) {
	if ValidateHandle(h) == nil {
		return nil, ErrInvalidHandle
	}
	buf := make([]byte, 0, HandleWireSize)
	for _, v := range h.words() {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return buf, nil
}

// UnmarshalBinary decodes a handle produced by MarshalBinary. Input of the
// wrong size or without the gralloc magic yields ErrInvalidHandle and
// leaves h unchanged.
func (h *Handle) UnmarshalBinary(data []byte) error {
	if len(data) != HandleWireSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInvalidHandle, len(data), HandleWireSize)
	}
	var w [HandleWireSize / 4]uint32
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	decoded := Handle{
		Version:   int32(w[0]),
		NumFds:    int32(w[1]),
		NumInts:   int32(w[2]),
		PrimeFD:   int32(w[3]),
		Magic:     w[4],
		Width:     int32(w[5]),
		Height:    int32(w[6]),
		Format:    Format(w[7]),
		Usage:     Usage(w[8]),
		PlaneMask: w[9],
		Name:      w[10],
		Stride:    int32(w[11]),
		DataOwner: int32(w[12]),
	}
	if ValidateHandle(&decoded) == nil {
		return ErrInvalidHandle
	}
	*h = decoded
	return nil
}

func (h *Handle) words() [HandleWireSize / 4]uint32 {
	return [...]uint32{
		uint32(h.Version),
		uint32(h.NumFds),
		uint32(h.NumInts),
		uint32(h.PrimeFD),
		h.Magic,
		uint32(h.Width),
		uint32(h.Height),
		uint32(h.Format),
		uint32(h.Usage),
		h.PlaneMask,
		h.Name,
		uint32(h.Stride),
		uint32(h.DataOwner),
	}
}

// String implements fmt.Stringer for logging.
func (h *Handle) String() string {
	if h == nil {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(name=%d %dx%d %v usage=%v stride=%d fd=%d owner=%d)",
		h.Name, h.Width, h.Height, h.Format, h.Usage, h.Stride, h.PrimeFD, h.DataOwner)
}
