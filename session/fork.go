// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"os"
	"sync"

	"github.com/shirou/gopsutil/process"
)

// forkTracker decides whether the current call runs in a descendant of
// the process that last established the session. A process can fork
// through raw system calls that bypass any registered fork hooks, so
// identity comparison on the Open path is the primary signal; the
// child-side fork handler is only a faster, redundant path to the same
// latch.
type forkTracker struct {
	recorded bool
	pid      int32
	started  int64 // process start time, unix ms; 0 when unknown
	forked   bool

	// identity overrides processIdentity, for tests.
	identity func() (int32, int64)
}

// processIdentity returns the live pid and, when available, the
// process start time. The start time catches the pathological case of
// a fork chain landing back on a recycled pid.
func processIdentity() (int32, int64) {
	pid := int32(os.Getpid())
	var started int64
	if p, err := process.NewProcess(pid); err == nil {
		if t, err := p.CreateTime(); err == nil {
			started = t
		}
	}
	return pid, started
}

// forkedChild latches true once a fork is observed, by any path, and
// stays true until reset. The first call ever records the identity and
// reports false.
func (t *forkTracker) forkedChild() bool {
	if t.forked {
		return true
	}
	pid, started := t.observe()
	if !t.recorded {
		t.recorded = true
		t.pid, t.started = pid, started
		return false
	}
	if pid != t.pid || (started != 0 && t.started != 0 && started != t.started) {
		t.forked = true
		return true
	}
	return false
}

func (t *forkTracker) observe() (int32, int64) {
	if t.identity != nil {
		return t.identity()
	}
	return processIdentity()
}

// record notes the current process as the session owner. Called when
// an open sequence completes.
func (t *forkTracker) record() {
	t.recorded = true
	t.pid, t.started = t.observe()
}

// markForked is the child-side fast path.
func (t *forkTracker) markForked() {
	t.forked = true
}

// reset clears the owner identity and the forked latch. Only a full
// session reset may call this.
func (t *forkTracker) reset() {
	*t = forkTracker{identity: t.identity}
}

// ForkHandlers returns the three callbacks for the process's fork
// notification mechanism. prepare blocks the forking thread until any
// in-flight open or close completes, so a child is only ever forked
// from a quiescent session. parent releases the lock. child replaces
// the lock outright, because a mutex's internal state must not be
// reused across fork, and latches the forked flag so the child's next
// Open rebuilds the session.
func (m *Manager) ForkHandlers() (prepare, parent, child func()) {
	prepare = func() { m.mu.Lock() }
	parent = func() { m.mu.Unlock() }
	child = func() {
		m.mu = &sync.Mutex{}
		m.tracker.markForked()
	}
	return prepare, parent, child
}

// installAtFork registers the fork handlers through the configured
// installer, at most once for the life of the process. Handlers cannot
// be unregistered, and registering twice would deadlock in prepare on
// the next fork, so the latch is independent of the open count.
func (m *Manager) installAtFork() {
	if m.installFn == nil {
		return
	}
	m.installOnce.Do(func() {
		pre, parent, child := m.ForkHandlers()
		m.installFn(pre, parent, child)
	})
}
