// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transform implements the three pure-encoder block kinds of
// spec §4.5: ScalarTransformer, DiscreteTransformer, and
// PersistenceTransformer. None of the three consumes a dataflow input;
// each exposes a value setter and writes a sparse pattern into its
// Output on Encode. Learn is a no-op for all three.
//
// The range-normalized window math is the binary-pattern analogue of
// the teacher's population-code encoder (popcode/popcode1d.go OneD.Encode),
// generalized from a graded Gaussian-bump activation over every unit to
// a contiguous run of fully-active bits -- the representation the rest
// of gnomics' dendrite overlap math expects.
package transform

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/jacobeverist/gnomics/block"
)

// window computes the contiguous [start, start+numAS) run of bit
// indices for a pct in [0,1] mapped onto a span of numS-numAS possible
// start positions, and returns it ready for BitField.SetActs. The
// center's round-to-nearest uses math32.Round rather than the
// add-0.5-then-truncate idiom, matching how the teacher's population
// encoder rounds a normalized value onto a discrete unit index
// (popcode/popcode1d.go).
func window(pct float64, numS, numAS int) []int {
	span := numS - numAS
	center := int(math32.Round(float32(pct) * float32(span)))
	acts := make([]int, numAS)
	for i := range acts {
		acts[i] = center + i
	}
	return acts
}

// ScalarTransformer encodes a bounded real value as a contiguous window
// of numAS active bits among numS, such that nearby values share most of
// their active bits and distant values share none (spec §4.5, §8
// property 7).
type ScalarTransformer struct {
	block.Base

	minVal, maxVal float64
	numS, numAS    int
	numT           int
	seed           int64

	out *block.Output

	value      float64
	hasValue   bool
	lastEncVal float64
	dirty      bool
}

// NewScalarTransformer constructs a ScalarTransformer. numAS must be <=
// numS and numT must be >= 2 (ring depth, spec §4.2).
func NewScalarTransformer(minVal, maxVal float64, numS, numAS, numT int, seed int64) (*ScalarTransformer, error) {
	if numAS <= 0 || numAS > numS {
		return nil, fmt.Errorf("%w: numAS=%d must be in (0,numS=%d]", block.ErrOutOfRange, numAS, numS)
	}
	if maxVal <= minVal {
		return nil, fmt.Errorf("%w: maxVal must exceed minVal", block.ErrOutOfRange)
	}
	if numT < 2 {
		numT = 2
	}
	st := &ScalarTransformer{minVal: minVal, maxVal: maxVal, numS: numS, numAS: numAS, numT: numT, seed: seed}
	st.InitBase(seed)
	st.out = block.NewOutput()
	st.out.Setup(numT, numS)
	return st, nil
}

// ScalarConfig is the exported, JSON-serializable snapshot of a
// ScalarTransformer's constructor parameters, used by Network's
// export_config/import_config (spec §6).
type ScalarConfig struct {
	MinVal, MaxVal    float64
	NumS, NumAS, NumT int
	Seed              int64
}

// Config returns this ScalarTransformer's constructor parameters.
func (st *ScalarTransformer) Config() ScalarConfig {
	return ScalarConfig{MinVal: st.minVal, MaxVal: st.maxVal, NumS: st.numS, NumAS: st.numAS, NumT: st.numT, Seed: st.seed}
}

// Init is idempotent; allocation already happened at construction.
func (st *ScalarTransformer) Init() error {
	st.MarkInitialized()
	return nil
}

// SetValue clamps v to [minVal,maxVal] and marks the encoder dirty if it
// differs from the last value seen.
func (st *ScalarTransformer) SetValue(v float64) {
	if v < st.minVal {
		v = st.minVal
	}
	if v > st.maxVal {
		v = st.maxVal
	}
	if !st.hasValue || v != st.value {
		st.dirty = true
	}
	st.value = v
	st.hasValue = true
}

// Value returns the most recently set (clamped) value.
func (st *ScalarTransformer) Value() float64 { return st.value }

func (st *ScalarTransformer) Step()  { st.out.Step() }
func (st *ScalarTransformer) Pull()  {}
func (st *ScalarTransformer) Store() { st.out.Store() }
func (st *ScalarTransformer) Learn() {}

// Encode writes the active window for the current value, skipping the
// rewrite if the value has not changed since the last encode.
func (st *ScalarTransformer) Encode() {
	if !st.dirty && st.lastEncVal == st.value {
		return
	}
	pct := (st.value - st.minVal) / (st.maxVal - st.minVal)
	st.out.State().SetActs(window(pct, st.numS, st.numAS))
	st.lastEncVal = st.value
	st.dirty = false
}

func (st *ScalarTransformer) Feedforward(learn bool) { block.Feedforward(st, learn) }

func (st *ScalarTransformer) Clear() {
	st.out.Clear()
	st.hasValue = false
	st.dirty = true
}

func (st *ScalarTransformer) MemoryUsage() int { return st.numS / 8 }

func (st *ScalarTransformer) Output() *block.Output { return st.out }

// scalarSave is the gob payload written by ScalarTransformer.Save --
// construction config plus everything that moves during a cycle: the
// output history ring, RNG stream position, and the dirty-check state
// (spec §4.9, §6).
type scalarSave struct {
	Config     ScalarConfig
	RandState  uint64
	Output     block.OutputState
	HasValue   bool
	Value      float64
	LastEncVal float64
	Dirty      bool
}

// Save persists this ScalarTransformer's full runtime state to path.
func (st *ScalarTransformer) Save(path string) error {
	return block.WriteSave(path, "ScalarTransformer", scalarSave{
		Config:     st.Config(),
		RandState:  st.Rand.State(),
		Output:     st.out.Snapshot(),
		HasValue:   st.hasValue,
		Value:      st.value,
		LastEncVal: st.lastEncVal,
		Dirty:      st.dirty,
	})
}

// Load restores state previously written by Save. st must already be
// constructed with matching configuration.
func (st *ScalarTransformer) Load(path string) error {
	var s scalarSave
	if err := block.ReadSave(path, "ScalarTransformer", &s); err != nil {
		return err
	}
	if s.Config != st.Config() {
		return fmt.Errorf("%w: ScalarTransformer", block.ErrConfigMismatch)
	}
	if err := st.out.Restore(s.Output); err != nil {
		return err
	}
	st.Rand.SetState(s.RandState)
	st.hasValue = s.HasValue
	st.value = s.Value
	st.lastEncVal = s.LastEncVal
	st.dirty = s.Dirty
	return nil
}

var _ block.Block = (*ScalarTransformer)(nil)
