// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import "sync/atomic"

// OutputID is a process-wide unique 32-bit identifier for a BlockOutput,
// minted by the monotonic counter below. It exists purely so external
// tooling (the editor/viewer, trace export) can disambiguate outputs;
// the core never interprets it beyond equality.
type OutputID uint32

var nextOutputID uint32

// NewOutputID mints the next process-unique output id. This is the only
// process-wide state in the package (spec §9 "Global state"): a
// monotonic counter with no teardown requirements.
func NewOutputID() OutputID {
	return OutputID(atomic.AddUint32(&nextOutputID, 1))
}

// ID is a process-unique handle for a block owned by a Network.
type ID uint32
