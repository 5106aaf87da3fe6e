// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events manages the process event page: a single shared page
// of event slots the device signals through. Slot ids are process-wide
// and bounded.
package events

import (
	"errors"

	"golang.org/x/exp/slices"

	"github.com/gpudev/kfd/device"
)

// SlotLimit bounds how many events one process can hold.
const SlotLimit = 4096

// Manager owns the event page and its slot allocations.
type Manager struct {
	page []byte
	// alloc is the sorted list of live slot ids.
	alloc []int
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Name() string {
	return "events"
}

// Init maps the event page. The page is process-wide, so the node
// count only matters for sizing sanity; one page serves all nodes. A
// no-op when already initialized.
func (m *Manager) Init(nodes int) error {
	if m.page != nil {
		return nil
	}
	m.page = make([]byte, device.PageSize())
	m.alloc = nil
	return nil
}

// Allocate returns the lowest free slot id.
func (m *Manager) Allocate() (int, error) {
	if m.page == nil {
		return 0, errors.New("event page not initialized")
	}
	id := 0
	for ; id < len(m.alloc) && m.alloc[id] == id; id++ {
	}
	if id >= SlotLimit {
		return 0, errors.New("event slots exhausted")
	}
	m.alloc = slices.Insert(m.alloc, id, id)
	return id, nil
}

// Free releases a slot id. Freeing a free slot is a no-op.
func (m *Manager) Free(id int) {
	if i, ok := slices.BinarySearch(m.alloc, id); ok {
		m.alloc = slices.Delete(m.alloc, i, i+1)
	}
}

// Live reports how many slots are currently allocated.
func (m *Manager) Live() int {
	return len(m.alloc)
}

// Teardown discards the event page and all slots. Safe to call
// repeatedly.
func (m *Manager) Teardown() error {
	m.page = nil
	m.alloc = nil
	return nil
}
