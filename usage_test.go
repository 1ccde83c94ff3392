// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"errors"
	"testing"
)

func TestUsageBits(t *testing.T) {
	tests := []struct {
		usage Usage
		cpu   bool
		write bool
	}{
		{0, false, false},
		{UsageHWTexture | UsageHWRender, false, false},
		{UsageSWReadRarely, true, false},
		{UsageSWReadOften | UsageHWFB, true, false},
		{UsageSWWriteRarely, true, true},
		{UsageSWWriteOften | UsageSWReadOften, true, true},
	}
	for _, tt := range tests {
		if got := tt.usage.CPUAccess(); got != tt.cpu {
			t.Errorf("%v.CPUAccess() = %v, want %v", tt.usage, got, tt.cpu)
		}
		if got := tt.usage.CPUWrite(); got != tt.write {
			t.Errorf("%v.CPUWrite() = %v, want %v", tt.usage, got, tt.write)
		}
	}
}

func TestUsageContains(t *testing.T) {
	u := UsageSWReadOften | UsageHWTexture
	if !u.Contains(UsageHWTexture) {
		t.Error("Contains(hw_texture) = false")
	}
	if !u.Contains(UsageSWReadRarely) {
		t.Error("Contains(sw_read_rarely) = false, read often includes its bits")
	}
	if u.Contains(UsageHWTexture | UsageHWRender) {
		t.Error("Contains(hw_texture|hw_render) = true")
	}
	if !u.Contains(0) {
		t.Error("Contains(0) = false")
	}
}

func TestUsageString(t *testing.T) {
	tests := []struct {
		usage Usage
		want  string
	}{
		{0, "none"},
		{UsageSWReadOften, "sw_read_often"},
		{UsageSWReadRarely | UsageSWWriteOften, "sw_read_rarely|sw_write_often"},
		{UsageHWFB | UsageHWComposer | UsageHWRender, "hw_render|hw_composer|hw_fb"},
		{UsageCursor | 0x1000000, "cursor|0x1000000"},
	}
	for _, tt := range tests {
		if got := tt.usage.String(); got != tt.want {
			t.Errorf("Usage(%#x).String() = %q, want %q", uint32(tt.usage), got, tt.want)
		}
	}
}

func TestParseUsage(t *testing.T) {
	tests := []struct {
		in   string
		want Usage
	}{
		{"", 0},
		{"none", 0},
		{"0x133", 0x133},
		{"sw_read_often|hw_texture", UsageSWReadOften | UsageHWTexture},
		{"SW_WRITE_OFTEN, hw_fb", UsageSWWriteOften | UsageHWFB},
	}
	for _, tt := range tests {
		got, err := ParseUsage(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseUsage(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseUsage("sw_read|bogus"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseUsage: err = %v, want ErrInvalidArgument", err)
	}
}

func TestUsageStringRoundTrip(t *testing.T) {
	for _, n := range usageNames {
		got, err := ParseUsage(n.usage.String())
		if err != nil || got != n.usage {
			t.Errorf("ParseUsage(%q) = %v, %v; want %v", n.usage.String(), got, err, n.usage)
		}
	}
}
