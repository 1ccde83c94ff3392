// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TextureFormat returns the WebGPU texture format with the same memory
// layout as f.
func (f Format) TextureFormat() (gputypes.TextureFormat, error) {
	switch f {
	case FormatRGBA8888, FormatRGBX8888:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case FormatBGRA8888:
		return gputypes.TextureFormatBGRA8Unorm, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %v", ErrNoTextureFormat, f)
}

// TextureUsage returns the WebGPU texture usage matching u.
func (u Usage) TextureUsage() gputypes.TextureUsage {
	var tu gputypes.TextureUsage
	if u&UsageHWTexture != 0 {
		tu |= gputypes.TextureUsageTextureBinding
	}
	if u&(UsageHWRender|UsageHWFB|UsageHWComposer) != 0 {
		tu |= gputypes.TextureUsageRenderAttachment
	}
	if u&UsageSWWriteMask != 0 {
		tu |= gputypes.TextureUsageCopyDst
	}
	if u&UsageSWReadMask != 0 {
		tu |= gputypes.TextureUsageCopySrc
	}
	return tu
}

// TextureDescriptor describes the buffer of h as a 2D texture, for a
// compositor importing it into a WebGPU device.
func (h *Handle) TextureDescriptor() (gputypes.TextureDescriptor, error) {
	if ValidateHandle(h) == nil {
		return gputypes.TextureDescriptor{}, ErrInvalidHandle
	}
	format, err := h.Format.TextureFormat()
	if err != nil {
		return gputypes.TextureDescriptor{}, err
	}
	return gputypes.TextureDescriptor{
		Label: fmt.Sprintf("gralloc:%d", h.Name),
		Size: gputypes.Extent3D{
			Width:              uint32(h.Width),
			Height:             uint32(h.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         h.Usage.TextureUsage(),
	}, nil
}
