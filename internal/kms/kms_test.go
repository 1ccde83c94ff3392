// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package kms

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIOCTLCodes(t *testing.T) {
	// Values from the kernel's drm.h as compiled for Linux.
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"GET_MAGIC", IOCTLGetMagic, 0x80046402},
		{"GEM_CLOSE", IOCTLGemClose, 0x40086409},
		{"GEM_FLINK", IOCTLGemFlink, 0xc008640a},
		{"GEM_OPEN", IOCTLGemOpen, 0xc010640b},
		{"AUTH_MAGIC", IOCTLAuthMagic, 0x40046411},
		{"SET_MASTER", IOCTLSetMaster, 0x0000641e},
		{"DROP_MASTER", IOCTLDropMaster, 0x0000641f},
		{"PRIME_HANDLE_TO_FD", IOCTLPrimeHandleToFD, 0xc00c642d},
		{"PRIME_FD_TO_HANDLE", IOCTLPrimeFDToHandle, 0xc00c642e},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("DRM_IOCTL_%s = %#08x, want %#08x", tt.name, tt.got, tt.want)
		}
	}
}

// fakeSysfs creates graphics/fb<n>/device/drm/<entries...> under a temp dir.
func fakeSysfs(t *testing.T, fb string, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, fb, "device", "drm")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if err := os.Mkdir(filepath.Join(dir, e), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCardForFramebuffer(t *testing.T) {
	sysfs := fakeSysfs(t, "fb0", "controlD64", "card1", "renderD128")

	got, err := cardForFramebuffer(sysfs, "/dev/dri", 0)
	if err != nil {
		t.Fatalf("cardForFramebuffer: %v", err)
	}
	if got != "/dev/dri/card1" {
		t.Errorf("cardForFramebuffer = %q, want /dev/dri/card1", got)
	}
}

func TestCardForFramebufferPicksLowest(t *testing.T) {
	sysfs := fakeSysfs(t, "fb1", "card2", "card0")

	got, err := cardForFramebuffer(sysfs, "/dev/dri", 1)
	if err != nil {
		t.Fatalf("cardForFramebuffer: %v", err)
	}
	if got != "/dev/dri/card0" {
		t.Errorf("cardForFramebuffer = %q, want /dev/dri/card0", got)
	}
}

func TestCardForFramebufferMissing(t *testing.T) {
	tests := []struct {
		name  string
		sysfs string
	}{
		{"no framebuffer", t.TempDir()},
		{"no card", fakeSysfs(t, "fb0", "renderD128")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cardForFramebuffer(tt.sysfs, "/dev/dri", 0)
			if !errors.Is(err, ErrNoCard) {
				t.Errorf("err = %v, want ErrNoCard", err)
			}
		})
	}
}

func TestCreateDumbRange(t *testing.T) {
	for _, size := range [][2]int{{0, 1}, {1, 0}, {1 << 16, 1}, {1, 1 << 16}} {
		if _, err := CreateDumb(nil, size[0], size[1], 32); err == nil {
			t.Errorf("CreateDumb(%dx%d) succeeded", size[0], size[1])
		}
	}
}

func TestNotDRM(t *testing.T) {
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := DriverName(f); err == nil {
		t.Error("DriverName of /dev/null succeeded")
	}
	if HasDumbBuffer(f) {
		t.Error("HasDumbBuffer(/dev/null) = true")
	}
	if caps := PrimeCaps(f); caps != 0 {
		t.Errorf("PrimeCaps(/dev/null) = %#x, want 0", caps)
	}
	if _, err := GetMagic(f); err == nil {
		t.Error("GetMagic of /dev/null succeeded")
	}
}
