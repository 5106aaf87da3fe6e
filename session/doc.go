// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package session mediates shared access to the one privileged device
// connection a process may hold. Any number of call sites can Open and
// Close independently; the device is acquired on the first Open and
// released on the last Close. A fork invalidates the connection and
// all state derived from it, so the manager detects forks by process
// identity and rebuilds the session in the child on its next Open.
package session
