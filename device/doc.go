// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package device acquires and releases the one privileged connection
// to the kernel compute driver. The connection is exclusively owned by
// the session layer and is never aliased outside it.
package device
