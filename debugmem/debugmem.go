// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package debugmem allocates the per-node scratch buffers the debugger
// interface writes wave state into.
package debugmem

import (
	"fmt"

	"github.com/gpudev/kfd/device"
)

// Manager owns one debug scratch buffer per compute node.
type Manager struct {
	bufs [][]byte
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Name() string {
	return "debugmem"
}

// Init allocates one page-sized buffer per node. A no-op when already
// initialized.
func (m *Manager) Init(nodes int) error {
	if m.bufs != nil {
		return nil
	}
	m.bufs = make([][]byte, nodes)
	for i := range m.bufs {
		m.bufs[i] = make([]byte, device.PageSize())
	}
	return nil
}

// Buffer returns the debug scratch buffer for a node.
func (m *Manager) Buffer(node int) ([]byte, error) {
	if node < 0 || node >= len(m.bufs) {
		return nil, fmt.Errorf("no debug buffer for node %d", node)
	}
	return m.bufs[node], nil
}

// Teardown drops all buffers. Safe to call repeatedly.
func (m *Manager) Teardown() error {
	m.bufs = nil
	return nil
}
