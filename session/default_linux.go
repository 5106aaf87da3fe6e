// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"sync"

	"github.com/gpudev/kfd/aperture"
	"github.com/gpudev/kfd/counters"
	"github.com/gpudev/kfd/debugmem"
	"github.com/gpudev/kfd/device"
	"github.com/gpudev/kfd/doorbell"
	"github.com/gpudev/kfd/events"
	"github.com/gpudev/kfd/topology"
)

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// Default returns the process-wide manager wired to the real device
// node, sysfs topology, and the standard subsystem chain.
func Default() *Manager {
	defaultOnce.Do(func() {
		kfd := &device.KFD{}
		defaultMgr = New(
			WithDevice(DeviceFunc(func() (Handle, error) { return kfd.Open() })),
			WithTopology(&topology.Sysfs{}),
			WithSubsystems(
				aperture.New(),
				doorbell.New(),
				debugmem.New(),
				counters.New(),
				events.New(),
			),
		)
	})
	return defaultMgr
}

// Open takes a reference on the process-wide session.
func Open() (Outcome, error) {
	return Default().Open()
}

// Close drops a reference on the process-wide session.
func Close() error {
	return Default().Close()
}
