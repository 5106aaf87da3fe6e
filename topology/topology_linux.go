// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/moby/sys/mountinfo"
)

// DefaultRoot is where the driver publishes its topology.
const DefaultRoot = "/sys/devices/virtual/kfd/kfd/topology"

// Sysfs counts compute nodes from the driver's sysfs tree.
type Sysfs struct {
	// Root overrides the topology directory, mainly for tests. When
	// empty, DefaultRoot is used and sysfs must actually be mounted.
	Root string
}

// NodeCount returns the number of compute nodes the driver exposes.
// Node directories are numeric; anything else under nodes/ is ignored.
func (s *Sysfs) NodeCount() (int, error) {
	root := s.Root
	if root == "" {
		root = DefaultRoot
		mounted, err := mountinfo.Mounted("/sys")
		if err != nil {
			return 0, fmt.Errorf("sysfs: %w", err)
		}
		if !mounted {
			return 0, errors.New("sysfs is not mounted")
		}
	}

	ents, err := os.ReadDir(filepath.Join(root, "nodes"))
	if err != nil {
		return 0, fmt.Errorf("topology nodes: %w", err)
	}
	var n int
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err == nil {
			n++
		}
	}
	if n == 0 {
		return 0, errors.New("no compute nodes")
	}
	return n, nil
}
