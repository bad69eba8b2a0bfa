// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package temporal

import "github.com/jacobeverist/gnomics/block"

// SequenceLearner is a columnar temporal learner whose context is
// automatically self-wired to its own output one cycle lagged (time
// PREV), making it predict its own next activation pattern -- this
// self-edge is the sole topological feature distinguishing it from
// ContextLearner and is established once, at construction, not as a
// scheduling edge (spec §4.8, §9 Design Notes).
type SequenceLearner struct {
	*base
}

// NewSequenceLearner constructs a SequenceLearner and immediately wires
// its context input to its own output at PREV. Only Input() needs
// further wiring by the caller before Init.
func NewSequenceLearner(p Params, seed int64) (*SequenceLearner, error) {
	b, err := newBase(p, seed, "SequenceLearner")
	if err != nil {
		return nil, err
	}
	b.context.AddChild(b.out, block.PREV)
	return &SequenceLearner{base: b}, nil
}
