// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import "os"

// Option configures a Device during Open.
//
// Example:
//
//	// Device behind /dev/fb0 with the globally registered backends
//	dev, err := gralloc.Open()
//
//	// A specific node
//	dev, err := gralloc.Open(gralloc.WithPath("/dev/dri/card1"))
type Option func(*deviceOptions)

// deviceOptions holds optional configuration for Device creation.
type deviceOptions struct {
	file         *os.File
	path         string
	card         int
	kernelDriver string
	registry     *Registry
	pid          int
	planes       PlaneResolver
	fbRemover    FramebufferRemover
}

// defaultOptions returns the default device options.
func defaultOptions() deviceOptions {
	return deviceOptions{
		card:     -1,
		registry: globalRegistry,
		planes:   colorPlaneResolver{},
	}
}

// WithFile uses an already opened DRM device. The Device takes ownership
// of file and closes it on Close or on a failed Open.
func WithFile(file *os.File) Option {
	return func(o *deviceOptions) {
		o.file = file
	}
}

// WithPath opens the DRM device node at path.
func WithPath(path string) Option {
	return func(o *deviceOptions) {
		o.path = path
	}
}

// WithCard opens /dev/dri/card<n>.
func WithCard(n int) Option {
	return func(o *deviceOptions) {
		o.card = n
	}
}

// WithKernelDriver skips the kernel version query and binds a backend as if
// the device had reported name.
func WithKernelDriver(name string) Option {
	return func(o *deviceOptions) {
		o.kernelDriver = name
	}
}

// WithRegistry selects backends from r instead of the global registry.
func WithRegistry(r *Registry) Option {
	return func(o *deviceOptions) {
		o.registry = r
	}
}

// WithProcessID sets the process identity stamped into resolved handles.
// By default the id of the calling process is used.
func WithProcessID(pid int) Option {
	return func(o *deviceOptions) {
		o.pid = pid
	}
}

// WithPlaneResolver sets how the plane mask of new handles is computed.
// By default it is the color-plane layout of the format.
func WithPlaneResolver(r PlaneResolver) Option {
	return func(o *deviceOptions) {
		if r != nil {
			o.planes = r
		}
	}
}

// WithFramebufferRemover sets how framebuffers bound to buffer objects are
// released before their storage is freed. By default the framebuffer is
// removed from the device's display engine.
func WithFramebufferRemover(r FramebufferRemover) Option {
	return func(o *deviceOptions) {
		o.fbRemover = r
	}
}
