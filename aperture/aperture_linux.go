// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aperture

import (
	"fmt"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
)

// reservationSize is how much address space each node gets. It costs
// no memory until pages are actually committed by the device manager.
const reservationSize = 1 << 30

// Manager holds one address-space reservation per compute node.
type Manager struct {
	reservations [][]byte
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Name() string {
	return "aperture"
}

// Init reserves one aperture per node. Calling Init on an initialized
// manager is a no-op.
func (m *Manager) Init(nodes int) error {
	if m.reservations != nil {
		return nil
	}
	for i := 0; i < nodes; i++ {
		b, err := unix.Mmap(-1, 0, reservationSize, unix.PROT_NONE,
			unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_NORESERVE)
		if err != nil {
			m.Teardown()
			return fmt.Errorf("reserve aperture for node %d: %w", i, err)
		}
		m.reservations = append(m.reservations, b)
	}
	return nil
}

// Range returns the [base, limit) virtual address range reserved for a
// node.
func (m *Manager) Range(node int) (base, limit uintptr, err error) {
	if node < 0 || node >= len(m.reservations) {
		return 0, 0, fmt.Errorf("no aperture for node %d", node)
	}
	r := m.reservations[node]
	base = uintptr(unsafe.Pointer(&r[0]))
	return base, base + uintptr(len(r)), nil
}

// Teardown releases every reservation. Safe to call repeatedly and on
// a partially initialized manager.
func (m *Manager) Teardown() error {
	var result *multierror.Error
	for _, b := range m.reservations {
		if err := unix.Munmap(b); err != nil {
			result = multierror.Append(result, err)
		}
	}
	m.reservations = nil
	return result.ErrorOrNil()
}
