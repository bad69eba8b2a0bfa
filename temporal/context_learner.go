// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package temporal

// ContextLearner is a columnar temporal learner whose context input is
// wired by the caller (typically a Network) to some other block's
// output -- as opposed to SequenceLearner, whose context is always its
// own lagged output (spec §4.8).
type ContextLearner struct {
	*base
}

// NewContextLearner constructs a ContextLearner. Input and Context must
// both be wired (via Input().AddChild / Context().AddChild) before Init.
func NewContextLearner(p Params, seed int64) (*ContextLearner, error) {
	b, err := newBase(p, seed, "ContextLearner")
	if err != nil {
		return nil, err
	}
	return &ContextLearner{base: b}, nil
}
