// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !linux

package gralloc

import "os"

func openDeviceFile(o *deviceOptions) (*os.File, error) {
	if o.file != nil {
		return o.file, nil
	}
	return nil, ErrNotSupported
}

func kernelDriverName(*os.File) (string, error) {
	return "", ErrNotSupported
}

func processID() int {
	return os.Getpid()
}

func defaultFramebufferRemover(*os.File) FramebufferRemover {
	return FramebufferRemoverFunc(func(uint32) error { return ErrNotSupported })
}

// Magic is not supported outside Linux.
func (d *Device) Magic() (uint32, error) { return 0, ErrNotSupported }

// AuthMagic is not supported outside Linux.
func (d *Device) AuthMagic(uint32) error { return ErrNotSupported }

// SetMaster is not supported outside Linux.
func (d *Device) SetMaster() error { return ErrNotSupported }

// DropMaster is not supported outside Linux.
func (d *Device) DropMaster() error { return ErrNotSupported }
