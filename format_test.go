// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		format Format
		name   string
		bpp    int
		planes int
		mask   uint32
		yuv    bool
	}{
		{FormatRGBA8888, "rgba8888", 32, 1, 0x1, false},
		{FormatRGBX8888, "rgbx8888", 32, 1, 0x1, false},
		{FormatRGB888, "rgb888", 24, 1, 0x1, false},
		{FormatRGB565, "rgb565", 16, 1, 0x1, false},
		{FormatBGRA8888, "bgra8888", 32, 1, 0x1, false},
		{FormatYCbCr422SP, "nv16", 8, 2, 0x3, true},
		{FormatYCrCb420SP, "nv21", 8, 2, 0x3, true},
		{FormatYCbCr422I, "yuy2", 16, 1, 0x1, true},
		{FormatDRMNV12, "nv12", 8, 2, 0x3, true},
		{FormatYV12, "yv12", 8, 3, 0x7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.format
			if !f.Valid() {
				t.Fatal("Valid() = false")
			}
			if f.String() != tt.name {
				t.Errorf("String() = %q, want %q", f.String(), tt.name)
			}
			if f.BitsPerPixel() != tt.bpp {
				t.Errorf("BitsPerPixel() = %d, want %d", f.BitsPerPixel(), tt.bpp)
			}
			if f.Planes() != tt.planes {
				t.Errorf("Planes() = %d, want %d", f.Planes(), tt.planes)
			}
			if f.PlaneMask() != tt.mask {
				t.Errorf("PlaneMask() = %#x, want %#x", f.PlaneMask(), tt.mask)
			}
			if f.IsYUV() != tt.yuv {
				t.Errorf("IsYUV() = %v, want %v", f.IsYUV(), tt.yuv)
			}

			parsed, err := ParseFormat(tt.name)
			if err != nil || parsed != f {
				t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.name, parsed, err, f)
			}
		})
	}
	if n := len(Formats()); n != len(tests) {
		t.Errorf("len(Formats()) = %d, want %d", n, len(tests))
	}
}

func TestUnknownFormat(t *testing.T) {
	f := Format(0x7f)
	if f.Valid() {
		t.Error("Valid() = true for an unknown format")
	}
	if f.String() != "format(0x7f)" {
		t.Errorf("String() = %q, want format(0x7f)", f.String())
	}
	if f.PlaneMask() != 0 {
		t.Errorf("PlaneMask() = %#x, want 0", f.PlaneMask())
	}
	if f.Layout(4, 16) != nil {
		t.Error("Layout of an unknown format is not nil")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{" RGBA8888 ", FormatRGBA8888},
		{"0x32315659", FormatYV12},
		{"258", FormatDRMNV12},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	for _, in := range []string{"", "argb", "0x7f"} {
		if _, err := ParseFormat(in); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseFormat(%q): err = %v, want ErrInvalidArgument", in, err)
		}
	}
}

func TestStorageRows(t *testing.T) {
	tests := []struct {
		format Format
		height int
		want   int
	}{
		{FormatRGBA8888, 480, 480},
		{FormatYCbCr422I, 480, 480},
		{FormatDRMNV12, 480, 720},
		{FormatYCrCb420SP, 5, 8},
		{FormatYCbCr422SP, 480, 960},
		{FormatYV12, 480, 720},
	}
	for _, tt := range tests {
		if got := tt.format.StorageRows(tt.height); got != tt.want {
			t.Errorf("%v.StorageRows(%d) = %d, want %d", tt.format, tt.height, got, tt.want)
		}
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		format Format
		height int
		stride int
		want   []ColorPlane
	}{
		{FormatRGB565, 4, 32, []ColorPlane{{0, 32, 4}}},
		{FormatDRMNV12, 5, 64, []ColorPlane{{0, 64, 5}, {320, 64, 3}}},
		{FormatYCbCr422SP, 4, 64, []ColorPlane{{0, 64, 4}, {256, 64, 4}}},
		{FormatYV12, 4, 96, []ColorPlane{{0, 96, 4}, {384, 48, 2}, {480, 48, 2}}},
		{FormatYV12, 2, 32, []ColorPlane{{0, 32, 2}, {64, 16, 1}, {80, 16, 1}}},
	}
	for _, tt := range tests {
		got := tt.format.Layout(tt.height, tt.stride)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%v.Layout(%d, %d) mismatch (-want +got):\n%s", tt.format, tt.height, tt.stride, diff)
		}
	}
}

func TestPlaneResolverFunc(t *testing.T) {
	r := PlaneResolverFunc(func(f Format) uint32 { return uint32(f) })
	if got := r.PlanesForFormat(FormatBGRA8888); got != 5 {
		t.Errorf("PlanesForFormat = %d, want 5", got)
	}
	if got := (colorPlaneResolver{}).PlanesForFormat(FormatYV12); got != 0x7 {
		t.Errorf("default PlanesForFormat(yv12) = %#x, want 0x7", got)
	}
}
