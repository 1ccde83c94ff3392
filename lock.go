// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"
	"image"
)

// Lock gives access to the buffer for the given usage.
//
// usage must be a subset of the usage the buffer was created with, except
// for buffers declared for display or texturing, which accept any usage.
// Locks nest: a buffer already locked can only be locked again for a
// subset of what it is locked for. When the lock includes CPU access, the
// buffer is mapped (for writing if any write bit is set) and the mapping
// is returned; otherwise the returned slice is nil.
//
// Each Lock must be matched by one Unlock.
func (bo *BufferObject) Lock(usage Usage, region image.Rectangle) ([]byte, error) {
	declared := bo.handle.Usage

	if !declared.Contains(usage) && declared&usageDisplayExceptions == 0 {
		Logger().Debug("lock usage not declared", "usage", usage, "declared", declared)
		return nil, fmt.Errorf("%w: usage %v not in %v", ErrInvalidArgument, usage, declared)
	}

	if bo.lockCount > 0 && !bo.lockedFor.Contains(usage) {
		Logger().Debug("lock usage conflicts with held lock", "usage", usage, "locked", bo.lockedFor)
		return nil, fmt.Errorf("%w: usage %v while locked for %v", ErrInvalidArgument, usage, bo.lockedFor)
	}

	effective := usage | bo.lockedFor

	var data []byte
	if effective.CPUAccess() {
		var err error
		data, err = bo.dev.drv.Map(bo.storage, region, effective.CPUWrite())
		if err != nil {
			return nil, err
		}
	}

	bo.lockCount++
	bo.lockedFor |= effective
	return data, nil
}

// Unlock releases one lock taken by Lock. Unlocking a buffer that is not
// locked does nothing.
func (bo *BufferObject) Unlock() {
	if bo.lockCount == 0 {
		return
	}

	if bo.lockedFor.CPUAccess() {
		if err := bo.dev.drv.Unmap(bo.storage); err != nil {
			Logger().Warn("unmap failed", "name", bo.handle.Name, "err", err)
		}
	}

	bo.lockCount--
	if bo.lockCount == 0 {
		bo.lockedFor = 0
	}
}

// LockCount returns the number of outstanding locks.
func (bo *BufferObject) LockCount() int {
	return bo.lockCount
}

// LockedFor returns the union of the usages the buffer is locked for.
func (bo *BufferObject) LockedFor() Usage {
	return bo.lockedFor
}
