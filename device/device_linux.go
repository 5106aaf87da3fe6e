// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultPath is the compute driver device node.
const DefaultPath = "/dev/kfd"

// KFD opens the kernel compute driver node.
type KFD struct {
	// Path overrides the device node location. Empty means DefaultPath.
	Path string
}

// Open acquires the privileged device connection. The descriptor is
// opened close-on-exec so it never leaks into exec'd children.
func (d *KFD) Open() (*Conn, error) {
	p := d.Path
	if p == "" {
		p = DefaultPath
	}
	fd, err := unix.Open(p, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return &Conn{fd: fd}, nil
}

// Conn is an open connection to the device.
type Conn struct {
	fd     int
	closed bool
}

// FD returns the raw descriptor, for ioctl-level collaborators.
func (c *Conn) FD() int {
	return c.fd
}

// Close releases the connection. Closing an already-closed connection
// is a no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Close(c.fd)
}
