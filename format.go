// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is a pixel format code. Values follow the Android HAL pixel
// formats so handles stay interchangeable with native gralloc users.
type Format int32

const (
	FormatRGBA8888   Format = 1
	FormatRGBX8888   Format = 2
	FormatRGB888     Format = 3
	FormatRGB565     Format = 4
	FormatBGRA8888   Format = 5
	FormatYCbCr422SP Format = 0x10 // NV16
	FormatYCrCb420SP Format = 0x11 // NV21
	FormatYCbCr422I  Format = 0x14 // YUY2
	FormatDRMNV12    Format = 0x102
	FormatYV12       Format = 0x32315659
)

// formatInfo describes the memory layout of a format.
type formatInfo struct {
	name string
	// bpp is the size of a pixel of the first color plane in bits.
	bpp int
	// planes is the number of color planes.
	planes int
	// chromaRows is the number of extra rows, per two luma rows, that the
	// chroma planes occupy when the buffer is allocated as one 8 bpp block.
	chromaRows int
}

var formats = map[Format]formatInfo{
	FormatRGBA8888:   {name: "rgba8888", bpp: 32, planes: 1},
	FormatRGBX8888:   {name: "rgbx8888", bpp: 32, planes: 1},
	FormatRGB888:     {name: "rgb888", bpp: 24, planes: 1},
	FormatRGB565:     {name: "rgb565", bpp: 16, planes: 1},
	FormatBGRA8888:   {name: "bgra8888", bpp: 32, planes: 1},
	FormatYCbCr422SP: {name: "nv16", bpp: 8, planes: 2, chromaRows: 2},
	FormatYCrCb420SP: {name: "nv21", bpp: 8, planes: 2, chromaRows: 1},
	FormatYCbCr422I:  {name: "yuy2", bpp: 16, planes: 1},
	FormatDRMNV12:    {name: "nv12", bpp: 8, planes: 2, chromaRows: 1},
	FormatYV12:       {name: "yv12", bpp: 8, planes: 3, chromaRows: 1},
}

// Formats returns every known format in ascending code order.
func Formats() []Format {
	return []Format{
		FormatRGBA8888, FormatRGBX8888, FormatRGB888, FormatRGB565,
		FormatBGRA8888, FormatYCbCr422SP, FormatYCrCb420SP, FormatYCbCr422I,
		FormatDRMNV12, FormatYV12,
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	_, ok := formats[f]
	return ok
}

// String returns the short lower-case name of the format.
func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.name
	}
	return fmt.Sprintf("format(0x%x)", int32(f))
}

// BitsPerPixel returns the pixel size of the first color plane in bits,
// or 0 for an unknown format.
func (f Format) BitsPerPixel() int {
	return formats[f].bpp
}

// Planes returns the number of color planes of the format.
func (f Format) Planes() int {
	return formats[f].planes
}

// IsYUV reports whether the format stores luma and chroma.
func (f Format) IsYUV() bool {
	switch f {
	case FormatYCbCr422SP, FormatYCrCb420SP, FormatYCbCr422I, FormatDRMNV12, FormatYV12:
		return true
	}
	return false
}

// PlaneMask returns a bitmask with bit i set for each color plane i of
// the format. Unknown formats have an empty mask.
func (f Format) PlaneMask() uint32 {
	return uint32(1)<<formats[f].planes - 1
}

// StorageRows returns how many rows of the first plane's stride a buffer
// of the given height needs to hold every color plane.
func (f Format) StorageRows(height int) int {
	info := formats[f]
	if info.chromaRows == 0 {
		return height
	}
	return height + info.chromaRows*((height+1)/2)
}

// StrideAlign returns the pixel alignment the first plane's width needs so
// that every chroma plane starts on an aligned row.
func (f Format) StrideAlign() int {
	if f == FormatYV12 {
		return 32
	}
	return 1
}

// ColorPlane is the placement of one color plane inside a buffer.
type ColorPlane struct {
	Offset int
	Pitch  int
	Rows   int
}

// Layout returns the color planes of a buffer with the given height whose
// first plane has the given stride in bytes. YV12 follows the Android rule: the
// chroma stride is the luma stride halved and aligned to 16 bytes, with the
// Cr plane stored before the Cb plane.
func (f Format) Layout(height, stride int) []ColorPlane {
	chromaRows := (height + 1) / 2
	switch f {
	case FormatYCrCb420SP, FormatDRMNV12:
		return []ColorPlane{
			{Offset: 0, Pitch: stride, Rows: height},
			{Offset: stride * height, Pitch: stride, Rows: chromaRows},
		}
	case FormatYCbCr422SP:
		return []ColorPlane{
			{Offset: 0, Pitch: stride, Rows: height},
			{Offset: stride * height, Pitch: stride, Rows: height},
		}
	case FormatYV12:
		cstride := alignUp(stride/2, 16)
		ysize := stride * height
		return []ColorPlane{
			{Offset: 0, Pitch: stride, Rows: height},
			{Offset: ysize, Pitch: cstride, Rows: chromaRows},
			{Offset: ysize + cstride*chromaRows, Pitch: cstride, Rows: chromaRows},
		}
	}
	if !f.Valid() {
		return nil
	}
	return []ColorPlane{{Offset: 0, Pitch: stride, Rows: height}}
}

// ParseFormat parses a format name ("rgba8888", "yv12", ...) or a numeric
// HAL format code.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, info := range formats {
		if info.name == s {
			return f, nil
		}
	}
	if v, err := strconv.ParseInt(s, 0, 32); err == nil && Format(v).Valid() {
		return Format(v), nil
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidArgument, s)
}

// PlaneResolver computes the plane mask stored in a new handle.
type PlaneResolver interface {
	PlanesForFormat(format Format) uint32
}

// PlaneResolverFunc adapts a function to PlaneResolver.
type PlaneResolverFunc func(format Format) uint32

// PlanesForFormat calls fn(format).
func (fn PlaneResolverFunc) PlanesForFormat(format Format) uint32 {
	return fn(format)
}

// colorPlaneResolver is the default resolver: the color-plane layout of
// the format.
type colorPlaneResolver struct{}

func (colorPlaneResolver) PlanesForFormat(format Format) uint32 {
	return format.PlaneMask()
}

func alignUp(v, a int) int {
	return (v + a - 1) / a * a
}
