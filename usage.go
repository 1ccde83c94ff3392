// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"
	"strconv"
	"strings"
)

// Usage describes how a buffer is going to be accessed.
// The bit values follow the Android gralloc usage flags.
type Usage uint32

const (
	UsageSWReadNever  Usage = 0x00000000
	UsageSWReadRarely Usage = 0x00000002
	UsageSWReadOften  Usage = 0x00000003
	UsageSWReadMask   Usage = 0x0000000F

	UsageSWWriteNever  Usage = 0x00000000
	UsageSWWriteRarely Usage = 0x00000020
	UsageSWWriteOften  Usage = 0x00000030
	UsageSWWriteMask   Usage = 0x000000F0

	UsageHWTexture      Usage = 0x00000100
	UsageHWRender       Usage = 0x00000200
	UsageHW2D           Usage = 0x00000400
	UsageHWComposer     Usage = 0x00000800
	UsageHWFB           Usage = 0x00001000
	UsageProtected      Usage = 0x00004000
	UsageCursor         Usage = 0x00008000
	UsageHWVideoEncoder Usage = 0x00010000
	UsageHWCameraWrite  Usage = 0x00020000
	UsageHWCameraRead   Usage = 0x00040000
)

// usageCPUMask covers every software read and write bit.
const usageCPUMask = UsageSWReadMask | UsageSWWriteMask

// usageDisplayExceptions are declared usages that let a buffer be locked
// for usages it was not allocated with, so a software renderer can draw
// into display-class buffers.
const usageDisplayExceptions = UsageSWReadOften | UsageHWFB | UsageHWTexture | UsageHWVideoEncoder

// Contains reports whether every bit of flags is set in u.
func (u Usage) Contains(flags Usage) bool {
	return u&flags == flags
}

// CPUAccess reports whether u includes any software read or write bit.
func (u Usage) CPUAccess() bool {
	return u&usageCPUMask != 0
}

// CPUWrite reports whether u includes any software write bit.
func (u Usage) CPUWrite() bool {
	return u&UsageSWWriteMask != 0
}

var usageNames = []struct {
	name  string
	usage Usage
}{
	// Multi-bit values first so String prefers them.
	{"sw_read_often", UsageSWReadOften},
	{"sw_read_rarely", UsageSWReadRarely},
	{"sw_write_often", UsageSWWriteOften},
	{"sw_write_rarely", UsageSWWriteRarely},
	{"hw_texture", UsageHWTexture},
	{"hw_render", UsageHWRender},
	{"hw_2d", UsageHW2D},
	{"hw_composer", UsageHWComposer},
	{"hw_fb", UsageHWFB},
	{"protected", UsageProtected},
	{"cursor", UsageCursor},
	{"hw_video_encoder", UsageHWVideoEncoder},
	{"hw_camera_write", UsageHWCameraWrite},
	{"hw_camera_read", UsageHWCameraRead},
}

// String returns the flags joined with "|", e.g. "sw_read_often|hw_texture".
// Unknown bits are appended in hex.
func (u Usage) String() string {
	if u == 0 {
		return "none"
	}
	var parts []string
	rest := u
	for _, n := range usageNames {
		if rest&n.usage == n.usage && rest&n.usage != 0 {
			parts = append(parts, n.name)
			rest &^= n.usage
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseUsage parses a "|" or "," separated list of usage names, or a
// numeric value such as "0x133".
func ParseUsage(s string) (Usage, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Usage(v), nil
	}

	var u Usage
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		field = strings.ToLower(strings.TrimSpace(field))
		found := false
		for _, n := range usageNames {
			if n.name == field {
				u |= n.usage
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown usage %q", ErrInvalidArgument, field)
		}
	}
	return u, nil
}
