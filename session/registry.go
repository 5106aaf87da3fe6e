// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Subsystem is one dependent subsystem of the session: apertures,
// doorbells, debug memory, counters, events. The manager invokes but
// does not own them. Init and Teardown are called with the session
// lock held, so they must not re-enter Open or Close. Teardown must be
// idempotent; its error is informational only.
type Subsystem interface {
	Name() string
	Init(nodes int) error
	Teardown() error
}

// InitError reports which subsystem stage failed during an open
// sequence. The stages before it were unwound; the failing stage never
// completed and is not torn down.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// initSubsystems runs the init chain in declared order. Later stages
// may assume earlier ones completed, so the order is fixed even where
// stages look independent. On failure at stage k, stages 1..k-1 are
// torn down in reverse and the first error is returned.
func (m *Manager) initSubsystems(nodes int) error {
	for i, s := range m.subsystems {
		if err := s.Init(nodes); err != nil {
			for j := i - 1; j >= 0; j-- {
				if terr := m.subsystems[j].Teardown(); terr != nil {
					v("session: unwind %s: %v", m.subsystems[j].Name(), terr)
				}
			}
			return &InitError{Stage: s.Name(), Err: err}
		}
	}
	return nil
}

// teardownSubsystems tears every subsystem down in exact reverse init
// order. Failures are aggregated and logged; teardown never propagates
// an error.
func (m *Manager) teardownSubsystems() {
	var result *multierror.Error
	for i := len(m.subsystems) - 1; i >= 0; i-- {
		if err := m.subsystems[i].Teardown(); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("%s: %w", m.subsystems[i].Name(), err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		v("session: teardown: %v", err)
	}
}
