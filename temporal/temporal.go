// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package temporal implements the columnar HTM-like learners of spec
// §4.8: ContextLearner and SequenceLearner. Both share the same
// column/statelet architecture, prediction/activation/anomaly cycle,
// and growth-on-surprise learning rule; they differ only in how their
// context BlockInput is wired (external source vs. the block's own
// output one step lagged).
//
// The column-of-statelets-with-per-statelet-dendrites structure and its
// burst-on-surprise learning rule generalize the teacher's deep/pulvinar
// predictive-coding layers (leabra/deep) from graded predictive error
// signals to the spec's discrete dendrite-overlap-threshold model.
package temporal

import (
	"fmt"

	"github.com/jacobeverist/gnomics/block"
	"github.com/jacobeverist/gnomics/memory"
)

// Params bundles the construction-time parameters shared by
// ContextLearner and SequenceLearner (spec §4.8).
type Params struct {
	NumC, NumSpc         int
	NumDps, NumRpd       int
	DThresh              int
	PermThr, PermInc, PermDec int
	NumT                 int
}

// base is the shared columnar engine; ContextLearner and SequenceLearner
// are thin wrappers that differ only in how context gets wired.
type base struct {
	block.Base

	params Params
	numC, numSpc, numS int
	numDps, numRpd     int
	dThresh            int

	in      *block.Input
	context *block.Input
	out     *block.Output

	mems       []memory.Memory
	dendActive [][]bool // [statelet][dendrite]
	predicted  []bool   // [statelet]

	anomaly float64
	seed    int64
	kind    string // "ContextLearner" or "SequenceLearner", for Save/Load's envelope tag
}

func newBase(p Params, seed int64, kind string) (*base, error) {
	if p.NumC <= 0 || p.NumSpc <= 0 {
		return nil, fmt.Errorf("%w: numC and numSpc must be positive", block.ErrOutOfRange)
	}
	if p.NumDps <= 0 || p.NumRpd <= 0 {
		return nil, fmt.Errorf("%w: numDps and numRpd must be positive", block.ErrOutOfRange)
	}
	numS := p.NumC * p.NumSpc
	b := &base{
		params: p, numC: p.NumC, numSpc: p.NumSpc, numS: numS,
		numDps: p.NumDps, numRpd: p.NumRpd, dThresh: p.DThresh, seed: seed, kind: kind,
	}
	b.InitBase(seed)
	b.in = block.NewInput()
	b.context = block.NewInput()
	b.out = block.NewOutput()
	numT := p.NumT
	if numT < 2 {
		numT = 2
	}
	b.out.Setup(numT, numS)
	b.mems = make([]memory.Memory, numS)
	b.dendActive = make([][]bool, numS)
	for s := range b.dendActive {
		b.dendActive[s] = make([]bool, p.NumDps)
	}
	b.predicted = make([]bool, numS)
	return b, nil
}

func (b *base) Input() *block.Input   { return b.in }
func (b *base) Context() *block.Input { return b.context }
func (b *base) Output() *block.Output { return b.out }

// GetAnomalyScore returns the anomaly score computed by the most recent
// Encode, in [0,1] (spec §4.8, §8 property 10).
func (b *base) GetAnomalyScore() float64 { return b.anomaly }

func (b *base) Init() error {
	if b.Initialized() {
		return nil
	}
	if b.in.NumBits() != b.numS {
		return fmt.Errorf("%w: input width %d must equal num_c*num_spc=%d", block.ErrOutOfRange, b.in.NumBits(), b.numS)
	}
	numI := b.context.NumBits()
	if numI == 0 {
		return fmt.Errorf("%w: context must be wired before Init", block.ErrNotInitialized)
	}
	for s := 0; s < b.numS; s++ {
		if err := b.mems[s].Init(b.numDps, b.numRpd, numI, b.params.PermThr, b.params.PermInc, b.params.PermDec, b.params.PermThr-1, b.Rand, true, 1.0, 0.0, true); err != nil {
			return err
		}
	}
	b.MarkInitialized()
	return nil
}

func (b *base) Step()  { b.out.Step() }
func (b *base) Pull()  { b.in.Pull(); b.context.Pull() }
func (b *base) Store() { b.out.Store() }

// Encode runs the prediction then activation phases and computes the
// cycle's anomaly score (spec §4.8).
func (b *base) Encode() {
	state := b.out.State()
	state.ClearAll()

	ctx := b.context.State()
	for s := 0; s < b.numS; s++ {
		predicted := false
		for d := 0; d < b.numDps; d++ {
			active := b.mems[s].OverlapConn(d, ctx) >= b.dThresh
			b.dendActive[s][d] = active
			if active {
				predicted = true
			}
		}
		b.predicted[s] = predicted
	}

	in := b.in.State()
	activeColumns := 0
	surprisedColumns := 0
	acts := make([]int, 0, b.numS)
	for c := 0; c < b.numC; c++ {
		lo := c * b.numSpc
		hi := lo + b.numSpc
		colActive := false
		for i := lo; i < hi; i++ {
			if in.GetBit(i) {
				colActive = true
				break
			}
		}
		if !colActive {
			continue
		}
		activeColumns++
		anyPredicted := false
		for s := lo; s < hi; s++ {
			if b.predicted[s] {
				anyPredicted = true
				acts = append(acts, s)
			}
		}
		if !anyPredicted {
			surprisedColumns++
			for s := lo; s < hi; s++ {
				acts = append(acts, s)
			}
		}
	}
	state.SetActs(acts)

	if activeColumns > 0 {
		b.anomaly = float64(surprisedColumns) / float64(activeColumns)
	} else {
		b.anomaly = 0
	}
}

// Learn grows a new dendrite for one statelet per surprised column,
// reinforces dendrites that correctly predicted an input-active column,
// and punishes dendrites that predicted a column which did not actually
// activate this cycle (spec §4.8).
func (b *base) Learn() {
	ctx := b.context.State()
	in := b.in.State()

	for c := 0; c < b.numC; c++ {
		lo := c * b.numSpc
		hi := lo + b.numSpc
		colActive := false
		for i := lo; i < hi; i++ {
			if in.GetBit(i) {
				colActive = true
				break
			}
		}
		if colActive {
			anyPredicted := false
			for s := lo; s < hi; s++ {
				if b.predicted[s] {
					anyPredicted = true
				}
			}
			if !anyPredicted {
				b.growOne(lo, hi, ctx)
			} else {
				for s := lo; s < hi; s++ {
					if !b.predicted[s] {
						continue
					}
					for d := 0; d < b.numDps; d++ {
						if b.dendActive[s][d] {
							b.mems[s].Learn(d, ctx)
						}
					}
				}
			}
		} else {
			for s := lo; s < hi; s++ {
				for d := 0; d < b.numDps; d++ {
					if b.dendActive[s][d] {
						b.mems[s].Punish(d, ctx)
					}
				}
			}
		}
	}
}

// growOne picks the lowest-index statelet in [lo,hi) as this cycle's
// learner, recruits its dendrite with fewest connected receptors, and
// grows that dendrite onto the context's currently active bits.
func (b *base) growOne(lo, hi int, ctx interface{ GetActs() []int }) {
	s := lo
	best := 0
	bestConn := b.mems[s].NumConnected(0)
	for d := 1; d < b.numDps; d++ {
		n := b.mems[s].NumConnected(d)
		if n < bestConn {
			bestConn = n
			best = d
		}
	}
	addrs := ctx.GetActs()
	if len(addrs) > b.numRpd {
		addrs = addrs[:b.numRpd]
	}
	b.mems[s].Grow(best, addrs, b.params.PermThr+1)
}

func (b *base) Feedforward(learn bool) { block.Feedforward(b, learn) }

func (b *base) Clear() {
	b.out.Clear()
	for s := range b.dendActive {
		for d := range b.dendActive[s] {
			b.dendActive[s][d] = false
		}
		b.predicted[s] = false
	}
	b.anomaly = 0
}

func (b *base) MemoryUsage() int {
	n := b.numS / 8
	for s := range b.mems {
		n += b.mems[s].MemoryUsage()
	}
	return n
}

// Config returns this block's constructor parameters and seed, for
// Network's export_config/import_config (spec §6).
func (b *base) Config() (Params, int64) { return b.params, b.seed }

// Weights snapshots every statelet's learned receptor addresses and
// permanences, separate from the topology/params captured by a network
// config export (spec §6).
func (b *base) Weights() []memory.Weights {
	w := make([]memory.Weights, len(b.mems))
	for s := range b.mems {
		w[s] = b.mems[s].Snapshot()
	}
	return w
}

// SetWeights restores learned receptor state previously captured by
// Weights. b must already be Init'd with the same numS.
func (b *base) SetWeights(w []memory.Weights) error {
	if len(w) != len(b.mems) {
		return fmt.Errorf("temporal: weights has %d statelets, block has %d", len(w), len(b.mems))
	}
	for s := range b.mems {
		if err := b.mems[s].Restore(w[s]); err != nil {
			return err
		}
	}
	return nil
}

// baseSave is the gob payload written by base.Save: Params/seed, the
// output ring, RNG stream position, and every statelet's learned
// dendrites plus the activation bookkeeping needed to resume mid-cycle
// (spec §4.9, §6).
type baseSave struct {
	Params     Params
	Seed       int64
	RandState  uint64
	Output     block.OutputState
	Weights    []memory.Weights
	DendActive [][]bool
	Predicted  []bool
	Anomaly    float64
}

// Save persists this block's full runtime state to path.
func (b *base) Save(path string) error {
	dendActive := make([][]bool, len(b.dendActive))
	for s := range b.dendActive {
		dendActive[s] = append([]bool(nil), b.dendActive[s]...)
	}
	return block.WriteSave(path, b.kind, baseSave{
		Params:     b.params,
		Seed:       b.seed,
		RandState:  b.Rand.State(),
		Output:     b.out.Snapshot(),
		Weights:    b.Weights(),
		DendActive: dendActive,
		Predicted:  append([]bool(nil), b.predicted...),
		Anomaly:    b.anomaly,
	})
}

// Load restores state previously written by Save. b must already be
// constructed with matching Params/seed; if it has not yet been Init'd,
// Load allocates each statelet's BlockMemory at the saved shape
// directly (no random fill) rather than requiring a wasted Init call
// first.
func (b *base) Load(path string) error {
	var s baseSave
	if err := block.ReadSave(path, b.kind, &s); err != nil {
		return err
	}
	if s.Params != b.params || s.Seed != b.seed {
		return fmt.Errorf("%w: %s", block.ErrConfigMismatch, b.kind)
	}
	if len(s.Weights) != len(b.mems) {
		return fmt.Errorf("%w: %s: saved %d statelets, block has %d", block.ErrConfigMismatch, b.kind, len(s.Weights), len(b.mems))
	}
	if !b.Initialized() {
		for si := range b.mems {
			w := s.Weights[si]
			if err := b.mems[si].InitShape(w.NumD, w.NumRPD, w.NumI, b.params.PermThr, b.params.PermInc, b.params.PermDec, true); err != nil {
				return err
			}
		}
		b.MarkInitialized()
	}
	if err := b.SetWeights(s.Weights); err != nil {
		return err
	}
	if err := b.out.Restore(s.Output); err != nil {
		return err
	}
	b.Rand.SetState(s.RandState)
	for si := range b.dendActive {
		copy(b.dendActive[si], s.DendActive[si])
	}
	copy(b.predicted, s.Predicted)
	b.anomaly = s.Anomaly
	return nil
}

var _ block.Block = (*base)(nil)
