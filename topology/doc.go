// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package topology answers how many compute nodes the driver exposes.
// The session layer queries it once per successful open sequence and
// hands the count to every dependent subsystem.
package topology
