// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import "errors"

// Sentinel errors returned by Network operations (spec §7 Configuration
// and Lifecycle error kinds).
var (
	ErrUnknownBlock   = errors.New("network: unknown block id")
	ErrCycleDetected  = errors.New("network: cycle detected in build")
	ErrNotBuilt       = errors.New("network: execute called before build")
	ErrWrongType      = errors.New("network: block does not support the requested operation")
	ErrHasDependents  = errors.New("network: block has dependents and cannot be removed")
	ErrMalformedInput = errors.New("network: malformed configuration")

	// ErrBuildFailed wraps an error returned by a block kind's
	// constructor while replaying an imported configuration, so callers
	// can tell a bad config file apart from an unrelated wiring error.
	ErrBuildFailed = errors.New("network: block construction failed during build")
)
