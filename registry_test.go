// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"errors"
	"image"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// nullDriver is a Driver that does nothing.
type nullDriver struct{ name string }

func (d *nullDriver) Name() string                                       { return d.name }
func (d *nullDriver) Allocate(*Handle) (Storage, error)                  { return nil, ErrNotSupported }
func (d *nullDriver) Free(Storage) error                                 { return nil }
func (d *nullDriver) Map(Storage, image.Rectangle, bool) ([]byte, error) { return nil, nil }
func (d *nullDriver) Unmap(Storage) error                                { return nil }
func (d *nullDriver) Close() error                                       { return nil }

// recordingFactory returns a factory that appends name to *tried.
func recordingFactory(name string, tried *[]string, err error) DriverFactory {
	return func(*os.File, string) (Driver, error) {
		*tried = append(*tried, name)
		if err != nil {
			return nil, err
		}
		return &nullDriver{name: name}, nil
	}
}

// TestRegistryRegister tests backend registration.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	var tried []string
	r.Register("test", 50, MatchAny, recordingFactory("test", &tried, nil))

	entry, ok := r.Get("test")
	if !ok {
		t.Fatal("registered backend not found")
	}
	if entry.Name != "test" {
		t.Errorf("Name = %s, want test", entry.Name)
	}
	if entry.Priority != 50 {
		t.Errorf("Priority = %d, want 50", entry.Priority)
	}

	// Get returns a copy.
	entry.Priority = 1
	if again, _ := r.Get("test"); again.Priority != 50 {
		t.Error("modifying the returned entry changed the registry")
	}
}

// TestRegistryUnregister tests backend removal.
func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("temp", 10, MatchAny, nil)

	if _, ok := r.Get("temp"); !ok {
		t.Fatal("backend should exist before unregister")
	}
	r.Unregister("temp")
	if _, ok := r.Get("temp"); ok {
		t.Error("backend should not exist after unregister")
	}
}

// TestRegistryList tests that backends are listed in binding order.
func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 10, MatchAny, nil)
	r.Register("high", 100, MatchAny, nil)
	r.Register("mid-b", 50, MatchAny, nil)
	r.Register("mid-a", 50, MatchAny, nil)

	want := []string{"high", "mid-a", "mid-b", "low"}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryZeroValue(t *testing.T) {
	var r Registry
	r.Register("late", 1, MatchAny, nil)
	if _, ok := r.Get("late"); !ok {
		t.Error("zero Registry did not accept a registration")
	}
}

func TestMatchName(t *testing.T) {
	m := MatchName("i915", "xe")
	for name, want := range map[string]bool{"i915": true, "xe": true, "radeon": false, "": false} {
		if got := m(name); got != want {
			t.Errorf("MatchName(i915, xe)(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBindFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	var tried []string
	r.Register("intel", 100, MatchName("i915"), recordingFactory("intel", &tried, nil))
	r.Register("nouveau", 100, MatchName("nouveau"), recordingFactory("nouveau", &tried, nil))
	r.Register("fallback", 10, MatchAny, recordingFactory("fallback", &tried, nil))

	drv, err := r.Bind(nil, "i915")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if drv.Name() != "intel" {
		t.Errorf("bound %q, want intel", drv.Name())
	}

	drv, err = r.Bind(nil, "vmwgfx")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if drv.Name() != "fallback" {
		t.Errorf("bound %q, want fallback", drv.Name())
	}

	if diff := cmp.Diff([]string{"intel", "fallback"}, tried); diff != "" {
		t.Errorf("factories tried mismatch (-want +got):\n%s", diff)
	}
}

func TestBindFactoryFailureDoesNotFallThrough(t *testing.T) {
	r := NewRegistry()
	var tried []string
	initErr := errors.New("no such chip")
	r.Register("intel", 100, MatchName("i915"), recordingFactory("intel", &tried, initErr))
	r.Register("fallback", 10, MatchAny, recordingFactory("fallback", &tried, nil))

	_, err := r.Bind(nil, "i915")
	if !errors.Is(err, initErr) {
		t.Errorf("Bind: err = %v, want %v", err, initErr)
	}
	if diff := cmp.Diff([]string{"intel"}, tried); diff != "" {
		t.Errorf("factories tried mismatch (-want +got):\n%s", diff)
	}
}

func TestBindUnsupported(t *testing.T) {
	r := NewRegistry()
	r.Register("intel", 100, MatchName("i915"), nil)

	for _, name := range []string{"radeon", ""} {
		_, err := r.Bind(nil, name)
		if !errors.Is(err, ErrUnsupportedDriver) {
			t.Errorf("Bind(%q): err = %v, want ErrUnsupportedDriver", name, err)
		}
		var ude *UnsupportedDriverError
		if !errors.As(err, &ude) || ude.Name != name {
			t.Errorf("Bind(%q): err = %#v, want *UnsupportedDriverError for %q", name, err, name)
		}
	}
}

func TestBindNilDriver(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", 1, MatchAny, func(*os.File, string) (Driver, error) { return nil, nil })

	if _, err := r.Bind(nil, "any"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Bind: err = %v, want ErrUnsupportedDriver", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("intel", 100, MatchName("i915"), nil)
	r.Register("fallback", 10, MatchAny, nil)

	entry, ok := r.Lookup("i915")
	if !ok || entry.Name != "intel" {
		t.Errorf("Lookup(i915) = %v, %v; want intel", entry, ok)
	}
	r.Unregister("fallback")
	if _, ok := r.Lookup("radeon"); ok {
		t.Error("Lookup(radeon) found a backend")
	}
}

func TestUnsupportedDriverErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"radeon", "gralloc: unsupported driver: radeon"},
		{"", "gralloc: unsupported driver: NULL"},
	}
	for _, tt := range tests {
		err := &UnsupportedDriverError{Name: tt.name}
		if got := err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestGlobalRegistry(t *testing.T) {
	RegisterDriver("global-test", 1, MatchName("global-test"), nil)
	t.Cleanup(func() { UnregisterDriver("global-test") })

	found := false
	for _, name := range Drivers() {
		if name == "global-test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Drivers() = %v, want it to contain global-test", Drivers())
	}
}
