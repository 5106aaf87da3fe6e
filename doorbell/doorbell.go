// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package doorbell tracks per-node doorbell page allocations. Each
// node owns one page of 64-bit doorbell slots; queues ring the device
// by writing through a slot.
package doorbell

import (
	"errors"
	"fmt"

	"github.com/gpudev/kfd/device"
)

// slotBytes is the width of one doorbell.
const slotBytes = 8

// Manager hands out doorbell slots, one page per compute node.
type Manager struct {
	pages []*page
}

type page struct {
	used []bool
	free int
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Name() string {
	return "doorbell"
}

// Init sets up one doorbell page per node. A no-op when already
// initialized.
func (m *Manager) Init(nodes int) error {
	if m.pages != nil {
		return nil
	}
	slots := device.PageSize() / slotBytes
	m.pages = make([]*page, nodes)
	for i := range m.pages {
		m.pages[i] = &page{used: make([]bool, slots), free: slots}
	}
	return nil
}

// Allocate grabs the lowest free slot on a node's page and returns its
// byte offset.
func (m *Manager) Allocate(node int) (int, error) {
	p, err := m.page(node)
	if err != nil {
		return 0, err
	}
	if p.free == 0 {
		return 0, fmt.Errorf("node %d: doorbell page exhausted", node)
	}
	for i, used := range p.used {
		if !used {
			p.used[i] = true
			p.free--
			return i * slotBytes, nil
		}
	}
	return 0, fmt.Errorf("node %d: doorbell page exhausted", node)
}

// Free releases a slot by byte offset. Freeing a free slot is a no-op.
func (m *Manager) Free(node, offset int) error {
	p, err := m.page(node)
	if err != nil {
		return err
	}
	i := offset / slotBytes
	if offset%slotBytes != 0 || i < 0 || i >= len(p.used) {
		return fmt.Errorf("node %d: bad doorbell offset %#x", node, offset)
	}
	if p.used[i] {
		p.used[i] = false
		p.free++
	}
	return nil
}

func (m *Manager) page(node int) (*page, error) {
	if m.pages == nil {
		return nil, errors.New("doorbells not initialized")
	}
	if node < 0 || node >= len(m.pages) {
		return nil, fmt.Errorf("no doorbell page for node %d", node)
	}
	return m.pages[node], nil
}

// Teardown discards all doorbell state. Safe to call repeatedly.
func (m *Manager) Teardown() error {
	m.pages = nil
	return nil
}
