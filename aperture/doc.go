// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aperture reserves a virtual address range per compute node.
// The reservations are PROT_NONE anonymous mappings: the device memory
// manager needs stable address space, not backing store.
package aperture
