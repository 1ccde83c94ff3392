// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
)

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		format Format
		want   gputypes.TextureFormat
	}{
		{FormatRGBA8888, gputypes.TextureFormatRGBA8Unorm},
		{FormatRGBX8888, gputypes.TextureFormatRGBA8Unorm},
		{FormatBGRA8888, gputypes.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		got, err := tt.format.TextureFormat()
		if err != nil || got != tt.want {
			t.Errorf("%v.TextureFormat() = %v, %v; want %v", tt.format, got, err, tt.want)
		}
	}

	for _, f := range []Format{FormatRGB565, FormatRGB888, FormatDRMNV12, FormatYV12} {
		if _, err := f.TextureFormat(); !errors.Is(err, ErrNoTextureFormat) {
			t.Errorf("%v.TextureFormat(): err = %v, want ErrNoTextureFormat", f, err)
		}
	}
}

func TestTextureUsage(t *testing.T) {
	tests := []struct {
		usage Usage
		want  gputypes.TextureUsage
	}{
		{0, 0},
		{UsageHWTexture, gputypes.TextureUsageTextureBinding},
		{UsageHWRender, gputypes.TextureUsageRenderAttachment},
		{UsageHWFB | UsageHWComposer, gputypes.TextureUsageRenderAttachment},
		{UsageSWWriteOften, gputypes.TextureUsageCopyDst},
		{UsageSWReadRarely, gputypes.TextureUsageCopySrc},
		{
			UsageSWReadOften | UsageSWWriteOften | UsageHWTexture | UsageHWRender,
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst |
				gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
		},
	}
	for _, tt := range tests {
		if got := tt.usage.TextureUsage(); got != tt.want {
			t.Errorf("%v.TextureUsage() = %#x, want %#x", tt.usage, uint64(got), uint64(tt.want))
		}
	}
}

func TestHandleTextureDescriptor(t *testing.T) {
	h := NewHandle(1920, 1080, FormatBGRA8888, UsageHWTexture|UsageHWComposer)
	h.Name = 7

	got, err := h.TextureDescriptor()
	if err != nil {
		t.Fatalf("TextureDescriptor: %v", err)
	}
	want := gputypes.TextureDescriptor{
		Label:         "gralloc:7",
		Size:          gputypes.Extent3D{Width: 1920, Height: 1080, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TextureDescriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleTextureDescriptorErrors(t *testing.T) {
	if _, err := (&Handle{}).TextureDescriptor(); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("invalid handle: err = %v, want ErrInvalidHandle", err)
	}
	h := NewHandle(4, 4, FormatYV12, UsageHWTexture)
	if _, err := h.TextureDescriptor(); !errors.Is(err, ErrNoTextureFormat) {
		t.Errorf("yv12: err = %v, want ErrNoTextureFormat", err)
	}
}
