// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transform

import (
	"fmt"

	"github.com/jacobeverist/gnomics/block"
)

// DiscreteTransformer encodes one of numV categories as a dedicated,
// non-overlapping group of numAS = numS/numV bits (spec §4.5, §8
// property 7: distinct categories share zero bits).
type DiscreteTransformer struct {
	block.Base

	numV, numS, numAS int
	numT              int
	seed              int64

	out *block.Output

	value    int
	hasValue bool
	dirty    bool
}

// NewDiscreteTransformer constructs a DiscreteTransformer. numS must be
// evenly divisible by numV.
func NewDiscreteTransformer(numV, numS, numT int, seed int64) (*DiscreteTransformer, error) {
	if numV <= 0 {
		return nil, fmt.Errorf("%w: numV must be positive", block.ErrOutOfRange)
	}
	if numS%numV != 0 {
		return nil, fmt.Errorf("%w: numS=%d must be divisible by numV=%d", block.ErrOutOfRange, numS, numV)
	}
	if numT < 2 {
		numT = 2
	}
	dt := &DiscreteTransformer{numV: numV, numS: numS, numAS: numS / numV, numT: numT, seed: seed}
	dt.InitBase(seed)
	dt.out = block.NewOutput()
	dt.out.Setup(numT, numS)
	return dt, nil
}

// DiscreteConfig is the exported, JSON-serializable snapshot of a
// DiscreteTransformer's constructor parameters (spec §6).
type DiscreteConfig struct {
	NumV, NumS, NumT int
	Seed             int64
}

// Config returns this DiscreteTransformer's constructor parameters.
func (dt *DiscreteTransformer) Config() DiscreteConfig {
	return DiscreteConfig{NumV: dt.numV, NumS: dt.numS, NumT: dt.numT, Seed: dt.seed}
}

func (dt *DiscreteTransformer) Init() error {
	dt.MarkInitialized()
	return nil
}

// SetValue selects category k, which must satisfy 0 <= k < numV.
func (dt *DiscreteTransformer) SetValue(k int) error {
	if k < 0 || k >= dt.numV {
		return fmt.Errorf("%w: category %d out of [0,%d)", block.ErrOutOfRange, k, dt.numV)
	}
	if !dt.hasValue || k != dt.value {
		dt.dirty = true
	}
	dt.value = k
	dt.hasValue = true
	return nil
}

// Value returns the currently selected category.
func (dt *DiscreteTransformer) Value() int { return dt.value }

func (dt *DiscreteTransformer) Step()  { dt.out.Step() }
func (dt *DiscreteTransformer) Pull()  {}
func (dt *DiscreteTransformer) Store() { dt.out.Store() }
func (dt *DiscreteTransformer) Learn() {}

func (dt *DiscreteTransformer) Encode() {
	if !dt.dirty {
		return
	}
	start := dt.value * dt.numAS
	acts := make([]int, dt.numAS)
	for i := range acts {
		acts[i] = start + i
	}
	dt.out.State().SetActs(acts)
	dt.dirty = false
}

func (dt *DiscreteTransformer) Feedforward(learn bool) { block.Feedforward(dt, learn) }

func (dt *DiscreteTransformer) Clear() {
	dt.out.Clear()
	dt.hasValue = false
	dt.dirty = true
}

func (dt *DiscreteTransformer) MemoryUsage() int { return dt.numS / 8 }

func (dt *DiscreteTransformer) Output() *block.Output { return dt.out }

// discreteSave is the gob payload written by DiscreteTransformer.Save.
type discreteSave struct {
	Config    DiscreteConfig
	RandState uint64
	Output    block.OutputState
	HasValue  bool
	Value     int
	Dirty     bool
}

// Save persists this DiscreteTransformer's full runtime state to path.
func (dt *DiscreteTransformer) Save(path string) error {
	return block.WriteSave(path, "DiscreteTransformer", discreteSave{
		Config:    dt.Config(),
		RandState: dt.Rand.State(),
		Output:    dt.out.Snapshot(),
		HasValue:  dt.hasValue,
		Value:     dt.value,
		Dirty:     dt.dirty,
	})
}

// Load restores state previously written by Save. dt must already be
// constructed with matching configuration.
func (dt *DiscreteTransformer) Load(path string) error {
	var s discreteSave
	if err := block.ReadSave(path, "DiscreteTransformer", &s); err != nil {
		return err
	}
	if s.Config != dt.Config() {
		return fmt.Errorf("%w: DiscreteTransformer", block.ErrConfigMismatch)
	}
	if err := dt.out.Restore(s.Output); err != nil {
		return err
	}
	dt.Rand.SetState(s.RandState)
	dt.hasValue = s.HasValue
	dt.value = s.Value
	dt.dirty = s.Dirty
	return nil
}

var _ block.Block = (*DiscreteTransformer)(nil)
