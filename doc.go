// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gralloc allocates graphics buffers and manages their lifecycle
// across processes.
//
// # Overview
//
// A graphics buffer is a block of kernel-managed memory holding pixels
// that the GPU, the display engine and the CPU can all reach. Buffers are
// shared between processes through a Handle: a small fixed-size record
// that names the kernel buffer and carries its geometry, format and
// declared usage. Each process resolves a handle into a BufferObject, its
// own reference-counted view of the buffer.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/gralloc"
//		_ "github.com/gogpu/gralloc/backend/dumb"
//	)
//
//	dev, err := gralloc.Open()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	bo, err := dev.Create(640, 480, gralloc.FormatRGBA8888,
//		gralloc.UsageSWWriteOften|gralloc.UsageHWTexture)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer bo.Decref()
//
//	pixels, err := bo.Lock(gralloc.UsageSWWriteOften, image.Rect(0, 0, 640, 480))
//	if err != nil {
//		log.Fatal(err)
//	}
//	// draw into pixels, bo.Stride() bytes per row
//	bo.Unlock()
//
// # Backends
//
// Open queries the kernel driver name of the device and binds the highest
// priority backend registered for it. Backends register themselves from
// init functions, so a program selects them with blank imports. The dumb
// backend works on any kernel driver with dumb-buffer support.
//
// # Sharing buffers
//
// The producer sends the handle (Handle.MarshalBinary, or SendHandle over a
// Unix socket to also pass the prime descriptor). The consumer calls
// Device.Register, which imports the buffer on first sight, and
// Device.Unregister when done. Within one process a kernel buffer is
// resolved to a single BufferObject.
//
// # Concurrency
//
// The per-process buffer table is safe for concurrent use. Operations on
// one BufferObject are not: callers serialize Register, Unregister, Decref,
// Lock and Unlock on a buffer, for example with BufferObject.Locker.
package gralloc
