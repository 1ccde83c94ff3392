// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// MatchFunc reports whether a backend handles the named kernel driver.
type MatchFunc func(kernelName string) bool

// MatchName returns a MatchFunc accepting exactly the given kernel driver
// names.
func MatchName(names ...string) MatchFunc {
	return func(kernelName string) bool {
		for _, n := range names {
			if n == kernelName {
				return true
			}
		}
		return false
	}
}

// MatchAny accepts every kernel driver. Backends using it should register
// with the lowest priority so that specific backends are tried first.
func MatchAny(string) bool { return true }

// DriverEntry represents a registered backend.
type DriverEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines the order candidates are tried in
	// (higher first). Vendor backends use 100, generic fallbacks 10.
	Priority int

	// Match selects the kernel drivers the backend handles.
	Match MatchFunc

	// Factory creates the driver.
	Factory DriverFactory
}

// globalRegistry is the registry used by Open unless WithRegistry is given.
var globalRegistry = &Registry{}

// Registry holds the candidate backends for driver binding.
//
// Binding is mutually exclusive: candidates are tried in a fixed order
// (priority, then name) and the first one whose Match accepts the kernel
// driver is the only one constructed.
//
// Example registration:
//
//	func init() {
//	    gralloc.RegisterDriver("intel", 100, gralloc.MatchName("i915"), newIntel)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*DriverEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via RegisterDriver.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*DriverEntry),
	}
}

// RegisterDriver adds a backend to the global registry.
// This is typically called from init() functions in backend packages.
// Registering a name that already exists replaces the previous entry.
func RegisterDriver(name string, priority int, match MatchFunc, factory DriverFactory) {
	globalRegistry.Register(name, priority, match, factory)
}

// UnregisterDriver removes a backend from the global registry.
func UnregisterDriver(name string) {
	globalRegistry.Unregister(name)
}

// Drivers returns the names of all globally registered backends in the
// order they are tried.
func Drivers() []string {
	return globalRegistry.List()
}

// Register adds a backend to this registry. A nil match accepts nothing.
func (r *Registry) Register(name string, priority int, match MatchFunc, factory DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*DriverEntry)
	}

	if match == nil {
		match = func(string) bool { return false }
	}

	r.entries[name] = &DriverEntry{
		Name:     name,
		Priority: priority,
		Match:    match,
		Factory:  factory,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names in the order they are tried.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sorted()
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.Name
	}
	return names
}

// Get returns information about a specific backend.
func (r *Registry) Get(name string) (*DriverEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// Lookup returns the backend that Bind would construct for kernelName,
// without constructing it.
func (r *Registry) Lookup(kernelName string) (*DriverEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.sorted() {
		if e.Match(kernelName) {
			entryCopy := *e
			return &entryCopy, true
		}
	}
	return nil, false
}

// Bind constructs the driver for a device whose kernel driver reported
// kernelName. Only the first matching candidate is tried; if its factory
// fails, binding fails.
func (r *Registry) Bind(file *os.File, kernelName string) (Driver, error) {
	entry, ok := r.Lookup(kernelName)
	if !ok {
		Logger().Error("unsupported driver", "driver", kernelName)
		return nil, &UnsupportedDriverError{Name: kernelName}
	}

	drv, err := entry.Factory(file, kernelName)
	if err != nil {
		Logger().Error("driver initialization failed",
			"driver", kernelName, "backend", entry.Name, "err", err)
		return nil, fmt.Errorf("gralloc: create %s backend for driver %s: %w",
			entry.Name, kernelName, err)
	}
	if drv == nil {
		Logger().Error("unsupported driver", "driver", kernelName, "backend", entry.Name)
		return nil, &UnsupportedDriverError{Name: kernelName}
	}

	Logger().Info("driver bound", "driver", kernelName, "backend", entry.Name)
	return drv, nil
}

// sorted returns entries by priority (highest first), then by name.
// Must be called with lock held.
func (r *Registry) sorted() []*DriverEntry {
	entries := make([]*DriverEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	return entries
}
