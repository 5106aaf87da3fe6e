// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import (
	"math/bits"
	"os"
)

var (
	pageSize  = os.Getpagesize()
	pageShift = bits.TrailingZeros(uint(pageSize))
)

// PageSize is the system page size. Apertures, doorbell pages and the
// event page are all sized and aligned to it.
func PageSize() int {
	return pageSize
}

// PageShift is log2(PageSize).
func PageShift() int {
	return pageShift
}
