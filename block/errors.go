// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import "errors"

// Sentinel errors for the block substrate's fallible operations (spec
// §7 error taxonomy: Configuration, Lifecycle, I/O, Internal). Callers
// match with errors.Is; the core never logs or prints these itself.
var (
	// ErrOutOfRange is returned when a bit/word index or parameter falls
	// outside its declared domain.
	ErrOutOfRange = errors.New("block: value out of range")

	// ErrLengthMismatch is returned when two BitField-backed values that
	// must share a length do not.
	ErrLengthMismatch = errors.New("block: length mismatch")

	// ErrNotInitialized is returned when an operation requires Init to
	// have run first.
	ErrNotInitialized = errors.New("block: not initialized")

	// ErrAlreadyInitialized is returned by a second call to Init on a
	// block that does not support re-wiring after first build.
	ErrAlreadyInitialized = errors.New("block: already initialized")

	// ErrSourceDestroyed signals a BlockInput entry whose source output
	// is no longer reachable -- the owning Network is responsible for
	// guaranteeing this never happens during normal execution.
	ErrSourceDestroyed = errors.New("block: source output destroyed")

	// ErrVersionMismatch is returned by Load when a saved file's format
	// version does not match the version this build of gnomics writes
	// (spec §4.9, §6 "fails clearly on an unknown version").
	ErrVersionMismatch = errors.New("block: save file version mismatch")

	// ErrWrongKind is returned by Load when a saved file was written by
	// a different block kind than the receiver (e.g. loading a
	// PatternPooler save into a PatternClassifier).
	ErrWrongKind = errors.New("block: save file kind mismatch")

	// ErrConfigMismatch is returned by Load when a saved file's
	// construction-time configuration does not match the receiver's --
	// Load never reshapes a block, it only restores learned state into
	// one already built with matching parameters.
	ErrConfigMismatch = errors.New("block: save file config mismatch")
)
