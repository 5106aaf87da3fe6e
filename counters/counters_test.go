// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counters

import "testing"

func TestBlocks(t *testing.T) {
	m := New()
	if err := m.Init(3); err != nil {
		t.Fatalf("Init: %v != nil", err)
	}
	blocks, err := m.Blocks(2)
	if err != nil {
		t.Fatalf("Blocks(2): %v != nil", err)
	}
	if len(blocks) == 0 {
		t.Errorf("node 2 has no counter blocks")
	}
	if _, err := m.Blocks(3); err == nil {
		t.Errorf("Blocks(3): nil != error")
	}

	if err := m.Teardown(); err != nil {
		t.Errorf("Teardown: %v != nil", err)
	}
	if err := m.Teardown(); err != nil {
		t.Errorf("second Teardown: %v != nil", err)
	}
}
