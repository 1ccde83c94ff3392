// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dumb provides a gralloc backend built on DRM dumb buffers.
//
// Dumb buffers are linear, CPU-mappable buffers that every modesetting
// kernel driver can create, which makes this backend the fallback for
// devices without a dedicated one. It registers itself on import with a
// low priority and accepts any kernel driver:
//
//	import _ "github.com/gogpu/gralloc/backend/dumb"
//
// Buffers are shared through their GEM flink name; when the device
// supports PRIME export, each new buffer also gets a dma-buf descriptor.
// YUV formats are allocated as a single 8 bpp block tall enough to hold
// the chroma planes.
package dumb
