// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gpudev/kfd/config"
)

// v allows debug printing.
var v = func(string, ...interface{}) {}

// SetVerbose sets the debug print function.
func SetVerbose(f func(string, ...interface{})) {
	v = f
}

var (
	// ErrNotOpen is returned by Close when no open is outstanding.
	// Closing an unopened session surfaces a caller bug; it is not a
	// no-op.
	ErrNotOpen = errors.New("kernel i/o channel not opened")
	// ErrDeviceUnavailable means the underlying device could not be
	// opened.
	ErrDeviceUnavailable = errors.New("kernel i/o channel cannot be opened")
	// ErrTopologyFailed means the compute-node query failed.
	ErrTopologyFailed = errors.New("topology query failed")
	// ErrConfigInvalid mirrors config.ErrInvalid for callers that only
	// import this package.
	ErrConfigInvalid = config.ErrInvalid
)

// Outcome distinguishes the two success cases of Open. Callers may
// branch on which occurred; the device is available either way.
type Outcome int

const (
	// Opened means this call established the session.
	Opened Outcome = iota
	// AlreadyOpen means the session was established earlier and this
	// call only took another reference.
	AlreadyOpen
)

func (o Outcome) String() string {
	switch o {
	case Opened:
		return "opened"
	case AlreadyOpen:
		return "already open"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Handle is the exclusive connection to the underlying device.
type Handle interface {
	Close() error
}

// Device acquires the one underlying privileged connection.
type Device interface {
	Open() (Handle, error)
}

// DeviceFunc adapts a plain open function to the Device interface.
type DeviceFunc func() (Handle, error)

func (f DeviceFunc) Open() (Handle, error) { return f() }

// Topology reports the number of compute nodes. It is queried once per
// successful open sequence.
type Topology interface {
	NodeCount() (int, error)
}

// Manager is the session lifecycle manager. All state transitions are
// serialized by one mutex, held for the full duration of Open and
// Close including every subsystem init and teardown call; subsystems
// must therefore never call back into Open or Close.
type Manager struct {
	mu *sync.Mutex

	dev        Device
	topo       Topology
	subsystems []Subsystem
	lookupEnv  func(string) (string, bool)
	installFn  func(pre, parent, child func())

	handle    Handle
	openCount int
	nodes     int
	cfg       *config.Config
	gen       uuid.UUID

	tracker     forkTracker
	installOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithDevice sets the device collaborator.
func WithDevice(d Device) Option {
	return func(m *Manager) { m.dev = d }
}

// WithTopology sets the topology collaborator.
func WithTopology(t Topology) Option {
	return func(m *Manager) { m.topo = t }
}

// WithSubsystems sets the dependent subsystems in their init order.
// Teardown always runs in exactly the reverse order.
func WithSubsystems(subs ...Subsystem) Option {
	return func(m *Manager) { m.subsystems = subs }
}

// WithEnv overrides the environment source used for the configuration
// snapshot.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(m *Manager) { m.lookupEnv = lookup }
}

// WithForkInstaller provides the platform hook that registers the
// three fork handlers. It runs at most once, after the first
// successful open sequence.
func WithForkInstaller(install func(pre, parent, child func())) Option {
	return func(m *Manager) { m.installFn = install }
}

// WithProcessIdentity overrides how the manager observes the calling
// process's identity (pid and start time). Used by tests to simulate a
// fork.
func WithProcessIdentity(id func() (pid int32, started int64)) Option {
	return func(m *Manager) { m.tracker.identity = id }
}

// New builds a Manager. The zero collaborators are not usable; wire
// them with options or use Default for the real device stack.
func New(opts ...Option) *Manager {
	m := &Manager{mu: &sync.Mutex{}}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open takes a reference on the session, establishing it first if this
// is the initial reference (or the first one after a fork). On the
// establishing call the whole acquisition sequence runs: configuration
// snapshot, device open, topology query, ordered subsystem init. A
// failure at any stage unwinds exactly the stages that completed and
// leaves the session closed, so a retry starts clean.
func (m *Manager) Open() (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker.forkedChild() {
		m.resetAfterFork()
	}

	if m.openCount > 0 {
		m.openCount++
		v("session: open count %d", m.openCount)
		return AlreadyOpen, nil
	}

	cfg, err := config.FromEnv(m.lookupEnv)
	if err != nil {
		return 0, err
	}

	h, err := m.dev.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	m.handle = h
	m.openCount = 1

	nodes, err := m.topo.NodeCount()
	if err != nil {
		m.abortOpen()
		return 0, fmt.Errorf("%w: %v", ErrTopologyFailed, err)
	}

	if err := m.initSubsystems(nodes); err != nil {
		m.abortOpen()
		return 0, err
	}

	m.cfg = cfg
	m.nodes = nodes
	m.gen = uuid.New()
	m.tracker.record()
	m.installAtFork()
	m.debugf(config.LevelInfo, "session %s: open, %d nodes", m.gen, nodes)
	return Opened, nil
}

// abortOpen unwinds the device acquisition after a later stage failed.
// Subsystem unwinding already happened stage-exactly in initSubsystems.
func (m *Manager) abortOpen() {
	if err := m.handle.Close(); err != nil {
		v("session: close during rollback: %v", err)
	}
	m.handle = nil
	m.openCount = 0
}

// Close drops a reference. The last reference tears the subsystems
// down in reverse init order and releases the device. Teardown is
// unconditional best effort: its failures are logged, never returned,
// because there is nothing further to roll back to.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openCount == 0 {
		return ErrNotOpen
	}
	m.openCount--
	if m.openCount > 0 {
		v("session: open count %d", m.openCount)
		return nil
	}

	m.debugf(config.LevelInfo, "session %s: last close", m.gen)
	m.teardownSubsystems()
	if m.handle != nil {
		if err := m.handle.Close(); err != nil {
			v("session: device close: %v", err)
		}
		m.handle = nil
	}
	m.nodes = 0
	m.cfg = nil
	m.gen = uuid.Nil
	return nil
}

// resetAfterFork discards everything inherited from the parent. The
// handles are presumed stale in this process, so subsystems get an
// unconditional best-effort teardown and the descriptor is closed
// without the usual release protocol.
func (m *Manager) resetAfterFork() {
	v("session: fork detected, discarding inherited state")
	m.teardownSubsystems()
	if m.handle != nil {
		m.handle.Close()
		m.handle = nil
	}
	m.openCount = 0
	m.nodes = 0
	m.cfg = nil
	m.gen = uuid.Nil
	m.tracker.reset()
}

// Config returns the configuration snapshot taken when the session was
// established, or nil while closed.
func (m *Manager) Config() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Nodes returns the compute-node count queried when the session was
// established, or 0 while closed.
func (m *Manager) Nodes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes
}

// debugf prints through the verbose hook, gated on the configured
// debug level. Callers hold the session lock.
func (m *Manager) debugf(level int, f string, a ...interface{}) {
	if m.cfg != nil && m.cfg.DebugLevel >= level {
		v(f, a...)
	}
}
