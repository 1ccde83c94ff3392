// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package gralloc

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/gogpu/gralloc/internal/kms"
)

func openDeviceFile(o *deviceOptions) (*os.File, error) {
	switch {
	case o.file != nil:
		return o.file, nil
	case o.path != "":
		return kms.Open(o.path)
	case o.card >= 0:
		return kms.OpenCard(o.card)
	}

	path, err := kms.CardForFramebuffer(0)
	if err != nil {
		Logger().Debug("no DRM card behind fb0, using card0", "err", err)
		f, err := kms.OpenCard(0)
		if err != nil {
			Logger().Error("failed to open DRM device of fb0", "err", err)
		}
		return f, err
	}
	f, err := kms.Open(path)
	if err != nil {
		Logger().Error("failed to open DRM device of fb0", "path", path, "err", err)
	}
	return f, err
}

func kernelDriverName(file *os.File) (string, error) {
	return kms.DriverName(file)
}

func processID() int {
	return unix.Getpid()
}

func defaultFramebufferRemover(file *os.File) FramebufferRemover {
	return FramebufferRemoverFunc(func(fbID uint32) error {
		return kms.RemoveFramebuffer(file, fbID)
	})
}

// Magic returns an authentication token another client can hand to the DRM
// master to get access to this device.
func (d *Device) Magic() (uint32, error) {
	return kms.GetMagic(d.file)
}

// AuthMagic authenticates the client that obtained magic. The device must
// be the DRM master.
func (d *Device) AuthMagic(magic uint32) error {
	return kms.AuthMagic(d.file, magic)
}

// SetMaster makes this device the DRM master and marks it as due for its
// first post.
func (d *Device) SetMaster() error {
	Logger().Debug("set master")
	err := kms.SetMaster(d.file)
	d.firstPost = true
	return err
}

// DropMaster gives up DRM master.
func (d *Device) DropMaster() error {
	return kms.DropMaster(d.file)
}
