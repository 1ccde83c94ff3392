// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package kms

import (
	"errors"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/drm"
	"github.com/NeowayLabs/drm/ioctl"
	"golang.org/x/sys/unix"
)

type (
	sysAuth struct {
		magic uint32
	}

	sysGemClose struct {
		handle uint32
		pad    uint32
	}

	sysGemFlink struct {
		handle uint32
		name   uint32
	}

	sysGemOpen struct {
		name   uint32
		handle uint32
		size   uint64
	}

	sysPrimeHandle struct {
		handle uint32
		flags  uint32
		fd     int32
	}
)

var (
	// DRM_IOR(0x02, struct drm_auth)
	IOCTLGetMagic = ioctl.NewCode(ioctl.Read,
		uint16(unsafe.Sizeof(sysAuth{})), drm.IOCTLBase, 0x02)

	// DRM_IOW(0x09, struct drm_gem_close)
	IOCTLGemClose = ioctl.NewCode(ioctl.Write,
		uint16(unsafe.Sizeof(sysGemClose{})), drm.IOCTLBase, 0x09)

	// DRM_IOWR(0x0a, struct drm_gem_flink)
	IOCTLGemFlink = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGemFlink{})), drm.IOCTLBase, 0x0a)

	// DRM_IOWR(0x0b, struct drm_gem_open)
	IOCTLGemOpen = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGemOpen{})), drm.IOCTLBase, 0x0b)

	// DRM_IOW(0x11, struct drm_auth)
	IOCTLAuthMagic = ioctl.NewCode(ioctl.Write,
		uint16(unsafe.Sizeof(sysAuth{})), drm.IOCTLBase, 0x11)

	// DRM_IO(0x1e)
	IOCTLSetMaster = ioctl.NewCode(ioctl.None, 0, drm.IOCTLBase, 0x1e)

	// DRM_IO(0x1f)
	IOCTLDropMaster = ioctl.NewCode(ioctl.None, 0, drm.IOCTLBase, 0x1f)

	// DRM_IOWR(0x2d, struct drm_prime_handle)
	IOCTLPrimeHandleToFD = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysPrimeHandle{})), drm.IOCTLBase, 0x2d)

	// DRM_IOWR(0x2e, struct drm_prime_handle)
	IOCTLPrimeFDToHandle = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysPrimeHandle{})), drm.IOCTLBase, 0x2e)
)

// do issues an ioctl, restarting it when interrupted.
func do(file *os.File, code uint32, arg unsafe.Pointer) error {
	for {
		err := ioctl.Do(file.Fd(), uintptr(code), uintptr(arg))
		runtime.KeepAlive(arg)
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			continue
		}
		return err
	}
}

// GetMagic returns an authentication token for this client.
func GetMagic(file *os.File) (uint32, error) {
	a := &sysAuth{}
	if err := do(file, IOCTLGetMagic, unsafe.Pointer(a)); err != nil {
		return 0, err
	}
	return a.magic, nil
}

// AuthMagic authenticates the client that obtained magic. The caller must
// be the DRM master.
func AuthMagic(file *os.File, magic uint32) error {
	return do(file, IOCTLAuthMagic, unsafe.Pointer(&sysAuth{magic: magic}))
}

// SetMaster makes file the DRM master.
func SetMaster(file *os.File) error {
	return do(file, IOCTLSetMaster, nil)
}

// DropMaster gives up DRM master.
func DropMaster(file *os.File) error {
	return do(file, IOCTLDropMaster, nil)
}

// Flink returns the global name of a GEM handle, creating it if needed.
func Flink(file *os.File, handle uint32) (uint32, error) {
	f := &sysGemFlink{handle: handle}
	if err := do(file, IOCTLGemFlink, unsafe.Pointer(f)); err != nil {
		return 0, err
	}
	return f.name, nil
}

// OpenName opens the GEM object with the given global name and returns a
// handle local to file together with the object size.
func OpenName(file *os.File, name uint32) (handle uint32, size uint64, err error) {
	o := &sysGemOpen{name: name}
	if err := do(file, IOCTLGemOpen, unsafe.Pointer(o)); err != nil {
		return 0, 0, err
	}
	return o.handle, o.size, nil
}

// CloseHandle releases a GEM handle.
func CloseHandle(file *os.File, handle uint32) error {
	return do(file, IOCTLGemClose, unsafe.Pointer(&sysGemClose{handle: handle}))
}

// HandleToFD exports a GEM handle as a PRIME descriptor.
func HandleToFD(file *os.File, handle uint32) (int, error) {
	p := &sysPrimeHandle{handle: handle, flags: unix.O_CLOEXEC | unix.O_RDWR, fd: -1}
	if err := do(file, IOCTLPrimeHandleToFD, unsafe.Pointer(p)); err != nil {
		return -1, err
	}
	return int(p.fd), nil
}

// FDToHandle imports a PRIME descriptor as a GEM handle.
func FDToHandle(file *os.File, fd int) (uint32, error) {
	p := &sysPrimeHandle{fd: int32(fd)}
	if err := do(file, IOCTLPrimeFDToHandle, unsafe.Pointer(p)); err != nil {
		return 0, err
	}
	return p.handle, nil
}
