// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugmem

import "testing"

func TestBuffers(t *testing.T) {
	m := New()
	if err := m.Init(2); err != nil {
		t.Fatalf("Init: %v != nil", err)
	}
	b, err := m.Buffer(1)
	if err != nil {
		t.Fatalf("Buffer(1): %v != nil", err)
	}
	if len(b) == 0 {
		t.Errorf("Buffer(1) is empty")
	}
	if _, err := m.Buffer(2); err == nil {
		t.Errorf("Buffer(2): nil != error")
	}

	if err := m.Teardown(); err != nil {
		t.Errorf("Teardown: %v != nil", err)
	}
	if err := m.Teardown(); err != nil {
		t.Errorf("second Teardown: %v != nil", err)
	}
	if _, err := m.Buffer(0); err == nil {
		t.Errorf("Buffer after Teardown: nil != error")
	}
}
