// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package counters keeps the per-node performance counter bookkeeping:
// which counter blocks a node has and how many concurrent counters
// each block supports.
package counters

import "fmt"

// Block describes one performance counter block on a node.
type Block struct {
	Name        string
	NumCounters int
}

// Manager tracks counter block properties per compute node.
type Manager struct {
	props [][]Block
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Name() string {
	return "counters"
}

// Init populates the counter properties for every node. A no-op when
// already initialized.
func (m *Manager) Init(nodes int) error {
	if m.props != nil {
		return nil
	}
	m.props = make([][]Block, nodes)
	for i := range m.props {
		m.props[i] = []Block{
			{Name: "compute", NumCounters: 16},
			{Name: "memory", NumCounters: 8},
		}
	}
	return nil
}

// Blocks returns the counter blocks available on a node.
func (m *Manager) Blocks(node int) ([]Block, error) {
	if node < 0 || node >= len(m.props) {
		return nil, fmt.Errorf("no counter properties for node %d", node)
	}
	return m.props[node], nil
}

// Teardown discards all counter state. Safe to call repeatedly.
func (m *Manager) Teardown() error {
	m.props = nil
	return nil
}
