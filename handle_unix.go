// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build unix

package gralloc

import (
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// SendHandle writes h to a unix socket. The prime descriptor, if any,
// travels as SCM_RIGHTS ancillary data so the peer receives its own
// descriptor for the same memory.
func SendHandle(conn *net.UnixConn, h *Handle) error {
	data, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	var oob []byte
	if h.PrimeFD != NoFD {
		oob = unix.UnixRights(int(h.PrimeFD))
	}
	n, oobn, err := conn.WriteMsgUnix(data, oob, nil)
	if err != nil {
		return fmt.Errorf("gralloc: send handle: %w", err)
	}
	if n != len(data) || oobn != len(oob) {
		return fmt.Errorf("gralloc: send handle: %w", io.ErrShortWrite)
	}
	return nil
}

// RecvHandle reads a handle written by SendHandle. The returned handle's
// PrimeFD is the descriptor installed in this process; the caller owns it.
func RecvHandle(conn *net.UnixConn) (*Handle, error) {
	buf := make([]byte, HandleWireSize+1)
	oob := make([]byte, unix.CmsgSpace(4*HandleNumFds))
	n, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, fmt.Errorf("gralloc: receive handle: %w", err)
	}

	fds, err := parseRights(oob[:oobn])
	if err != nil {
		return nil, err
	}

	h := new(Handle)
	if err := h.UnmarshalBinary(buf[:n]); err != nil {
		closeAll(fds)
		return nil, err
	}

	switch {
	case h.PrimeFD == NoFD:
		closeAll(fds)
	case len(fds) == 0:
		return nil, fmt.Errorf("%w: descriptor missing", ErrInvalidHandle)
	default:
		h.PrimeFD = int32(fds[0])
		closeAll(fds[1:])
	}
	return h, nil
}

func parseRights(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("gralloc: receive handle: %w", err)
	}
	var fds []int
	for i := range msgs {
		rights, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		fds = append(fds, rights...)
	}
	return fds, nil
}

func closeAll(fds []int) {
	for _, fd := range fds {
		_ = unix.Close(fd)
	}
}
