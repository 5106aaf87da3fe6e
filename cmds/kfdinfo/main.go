// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// kfdinfo opens a session against the compute driver and reports what
// it finds. It doubles as a smoke test for the session lifecycle: the
// second open must come back "already open" and the final close must
// release the device.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gpudev/kfd/session"
)

var (
	debug = flag.Bool("d", false, "enable debug prints")
	// v allows debug printing.
	v = func(string, ...interface{}) {}
)

func main() {
	flag.Parse()
	if *debug {
		v = log.Printf
		session.SetVerbose(log.Printf)
	}

	out, err := session.Open()
	if err != nil {
		log.Fatalf("kfdinfo: %v", err)
	}
	v("open: %v", out)
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("kfdinfo: close: %v", err)
		}
	}()

	// A second reference is cheap and must report AlreadyOpen.
	out, err = session.Open()
	if err != nil {
		log.Fatalf("kfdinfo: reopen: %v", err)
	}
	if out != session.AlreadyOpen {
		log.Fatalf("kfdinfo: reopen outcome %v, want %v", out, session.AlreadyOpen)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("kfdinfo: close: %v", err)
		}
	}()

	m := session.Default()
	fmt.Printf("nodes: %d\n", m.Nodes())
	cfg := m.Config()
	fmt.Printf("debug level: %d\n", cfg.DebugLevel)
	fmt.Printf("zero frame buffer: %d\n", cfg.ZFB)
	if fd := cfg.ForceDevice; fd != nil {
		fmt.Printf("forced identity: %s %d.%d.%d family %d dgpu %v\n",
			fd.ASIC, fd.Major, fd.Minor, fd.Step, fd.Family, fd.DGPU)
	}
}
