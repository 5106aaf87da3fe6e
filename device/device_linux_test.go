// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingNode(t *testing.T) {
	d := &KFD{Path: filepath.Join(t.TempDir(), "kfd")}
	if _, err := d.Open(); err == nil {
		t.Fatalf("Open of missing node: nil != error")
	}
}

func TestOpenClose(t *testing.T) {
	// A plain file stands in for the device node; open/close semantics
	// are the same at this layer.
	p := filepath.Join(t.TempDir(), "kfd")
	if err := os.WriteFile(p, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	d := &KFD{Path: p}
	c, err := d.Open()
	if err != nil {
		t.Fatalf("Open: %v != nil", err)
	}
	if c.FD() < 0 {
		t.Errorf("FD = %d, want >= 0", c.FD())
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v != nil", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v != nil", err)
	}
}

func TestPageSize(t *testing.T) {
	if PageSize() != 1<<PageShift() {
		t.Errorf("PageSize %d != 1<<%d", PageSize(), PageShift())
	}
}
