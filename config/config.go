// Copyright 2025 the kfd Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the environment-derived tunables for a device
// session. The snapshot is taken once, when the session is first
// opened, and is immutable until the session is reset.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Recognized environment variables.
const (
	EnvDebugLevel  = "KFD_DEBUG_LEVEL"
	EnvZFB         = "KFD_ZFB"
	EnvForceDevice = "KFD_FORCE_DEVICE"
)

// Debug verbosity levels. The numbering follows the kernel printk
// convention; values outside [LevelErr, LevelDebug] are ignored and
// the default retained.
const (
	LevelErr   = 3
	LevelWarn  = 4
	LevelInfo  = 6
	LevelDebug = 7

	LevelDefault = LevelErr
)

// maxASICName bounds the forced-identity device name.
const maxASICName = 63

// ErrInvalid is returned when a forced device identity override does
// not parse. Loading fails atomically: no partial override is ever
// installed.
var ErrInvalid = errors.New("invalid forced device identity")

// Family identifies a device generation. The values match the driver's
// family ids; FamilyLast bounds the valid range.
type Family uint32

const (
	FamilyKaveri Family = iota
	FamilyHawaii
	FamilyCarrizo
	FamilyTonga
	FamilyFiji
	FamilyPolaris10
	FamilyPolaris11
	FamilyPolaris12
	FamilyVegaM
	FamilyVega10
	FamilyVega12
	FamilyVega20
	FamilyRaven
	FamilyRenoir
	FamilyArcturus
	FamilyAldebaran
	FamilyNavi10
	FamilyNavi12
	FamilyNavi14
	FamilySiennaCichlid
	FamilyNavyFlounder
	FamilyVanGogh
	FamilyDimgreyCavefish
	FamilyBeigeGoby
	FamilyYellowCarp

	FamilyLast
)

// ForcedIdentity overrides the hardware identity reported for every
// device, mainly for emulation and bring-up.
type ForcedIdentity struct {
	Major, Minor, Step uint32
	DGPU               bool
	ASIC               string
	Family             Family
}

// Config is one immutable snapshot of the session tunables.
type Config struct {
	// DebugLevel gates library debug messages.
	DebugLevel int
	// ZFB enables zero-frame-buffer mode, mainly used under emulation.
	ZFB int
	// ForceDevice, when non-nil, forces all devices to one identity.
	ForceDevice *ForcedIdentity
}

// FromEnv builds a snapshot from the given lookup function. A nil
// lookup reads the process environment. A malformed forced-identity
// override is a hard error and no snapshot is returned.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	c := &Config{DebugLevel: LevelDefault}

	if s, ok := lookup(EnvDebugLevel); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil &&
			n >= LevelErr && n <= LevelDebug {
			c.DebugLevel = n
		}
	}

	if s, ok := lookup(EnvZFB); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			c.ZFB = n
		}
	}

	if s, ok := lookup(EnvForceDevice); ok {
		id, err := ParseForcedIdentity(s)
		if err != nil {
			return nil, err
		}
		c.ForceDevice = id
	}

	return c, nil
}

// ParseForcedIdentity parses an override of the form
//
//	major.minor.step dgpu asic_name family
//
// e.g. "10.1.0 1 Navi10 14": six fields in all, the first three joined
// by dots. Each numeric field must fit its bound (major <= 63, minor
// and step <= 255, dgpu 0 or 1, family < FamilyLast).
func ParseForcedIdentity(s string) (*ForcedIdentity, error) {
	tokens := strings.Fields(s)
	if len(tokens) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	ver := strings.Split(tokens[0], ".")
	if len(ver) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	major, err := parseBounded(ver[0], 63)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: major: %v", ErrInvalid, s, err)
	}
	minor, err := parseBounded(ver[1], 255)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: minor: %v", ErrInvalid, s, err)
	}
	step, err := parseBounded(ver[2], 255)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: step: %v", ErrInvalid, s, err)
	}
	dgpu, err := parseBounded(tokens[1], 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: dgpu: %v", ErrInvalid, s, err)
	}
	if len(tokens[2]) > maxASICName {
		return nil, fmt.Errorf("%w: %q: name too long", ErrInvalid, s)
	}
	family, err := parseBounded(tokens[3], uint64(FamilyLast)-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: family: %v", ErrInvalid, s, err)
	}

	return &ForcedIdentity{
		Major:  uint32(major),
		Minor:  uint32(minor),
		Step:   uint32(step),
		DGPU:   dgpu == 1,
		ASIC:   tokens[2],
		Family: Family(family),
	}, nil
}

func parseBounded(s string, max uint64) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("%d out of range (max %d)", n, max)
	}
	return n, nil
}
