// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pooler implements PatternPooler, the winner-take-all spatial
// learner of spec §4.6: one dendrite per output bit, competing for the
// numAS highest-overlap slots against the (concatenated) input pattern.
//
// This generalizes the teacher's inhibition-then-learn layer cycle
// (leabra/leabra/layer.go's k-winners-take-all over unit Ge, followed by
// learn.go's XCAL update) from graded rate-code activation to a sparse
// binary code with a fixed number of winners and integer permanences.
package pooler

import (
	"fmt"
	"sort"

	"github.com/jacobeverist/gnomics/block"
	"github.com/jacobeverist/gnomics/erand"
	"github.com/jacobeverist/gnomics/memory"
)

// PatternPooler selects the numAS dendrites (of numS total, one per
// output bit) with the highest overlap against its input, and learns by
// reinforcing the winning dendrites' receptors toward the active input
// bits.
type PatternPooler struct {
	block.Base

	params      Params
	numS, numAS int
	pctLearn    float64
	alwaysUpd   bool
	seed        int64

	in  *block.Input
	out *block.Output
	mem memory.Memory

	overlap []int
	winners []int
}

// Params bundles PatternPooler's construction-time parameters (spec
// §4.6) so the constructor signature stays readable.
type Params struct {
	NumS, NumAS                   int
	PermThr, PermInc, PermDec     int
	PctPool, PctConn, PctLearn    float64
	AlwaysUpdate                  bool
	NumT                          int
}

// New constructs a PatternPooler. The width of its BlockInput is not a
// parameter: Init reads it from the wired input and sizes the receptor
// pools from it.
func New(p Params, seed int64) (*PatternPooler, error) {
	if p.NumAS <= 0 || p.NumAS > p.NumS {
		return nil, fmt.Errorf("%w: numAS=%d must be in (0,numS=%d]", block.ErrOutOfRange, p.NumAS, p.NumS)
	}
	if p.PctLearn < 0 || p.PctLearn > 1 {
		return nil, fmt.Errorf("%w: pctLearn must be in [0,1]", block.ErrOutOfRange)
	}
	pp := &PatternPooler{params: p, numS: p.NumS, numAS: p.NumAS, pctLearn: p.PctLearn, alwaysUpd: p.AlwaysUpdate, seed: seed}
	pp.InitBase(seed)
	pp.in = block.NewInput()
	pp.out = block.NewOutput()
	numT := p.NumT
	if numT < 2 {
		numT = 2
	}
	pp.out.Setup(numT, p.NumS)
	pp.overlap = make([]int, p.NumS)
	return pp, nil
}

// Input returns the pooler's (not-yet-wired) BlockInput, for the
// Network to connect sources to.
func (pp *PatternPooler) Input() *block.Input { return pp.in }

func (pp *PatternPooler) Output() *block.Output { return pp.out }

// Init allocates the BlockMemory once the input has been wired and its
// width is known. Idempotent.
func (pp *PatternPooler) Init() error {
	if pp.Initialized() {
		return nil
	}
	p := pp.params
	numI := pp.in.NumBits()
	if numI == 0 {
		return fmt.Errorf("%w: PatternPooler input must be wired before Init", block.ErrNotInitialized)
	}
	numRPD := int(p.PctPool*float64(numI) + 0.5)
	if numRPD < 1 {
		numRPD = 1
	}
	initPerm := p.PermThr
	if err := pp.mem.Init(p.NumS, numRPD, numI, p.PermThr, p.PermInc, p.PermDec, initPerm, pp.Rand, true, p.PctPool, p.PctConn, true); err != nil {
		return err
	}
	pp.MarkInitialized()
	return nil
}

func (pp *PatternPooler) Step()  { pp.out.Step() }
func (pp *PatternPooler) Pull()  { pp.in.Pull() }
func (pp *PatternPooler) Store() { pp.out.Store() }

// Encode computes every dendrite's overlap against the input and sets
// the top numAS bits, breaking overlap ties by ascending dendrite index
// (spec §4.6 step 4). Skips the recompute entirely when the input
// hasn't changed and AlwaysUpdate is false (the Level-2 skip).
func (pp *PatternPooler) Encode() {
	if !pp.alwaysUpd && !pp.in.ChildrenChanged() {
		return
	}
	x := pp.in.State()
	for d := 0; d < pp.numS; d++ {
		pp.overlap[d] = pp.mem.OverlapConn(d, x)
	}
	pp.winners = topK(pp.overlap, pp.numAS)
	pp.out.State().SetActs(pp.winners)
}

// topK returns the indices of the k largest values in scores, sorted
// descending by (score, -index) so ties break toward the smaller index.
func topK(scores []int, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if scores[idx[i]] != scores[idx[j]] {
			return scores[idx[i]] > scores[idx[j]]
		}
		return idx[i] < idx[j]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return append([]int(nil), idx[:k]...)
}

// Learn reinforces each winning dendrite's receptors toward the current
// input, independently with probability pctLearn per dendrite per cycle
// (spec §4.6).
func (pp *PatternPooler) Learn() {
	x := pp.in.State()
	for _, d := range pp.winners {
		if erand.BoolP(pp.Rand, pp.pctLearn) {
			pp.mem.Learn(d, x)
		}
	}
}

func (pp *PatternPooler) Feedforward(learn bool) { block.Feedforward(pp, learn) }

func (pp *PatternPooler) Clear() {
	pp.out.Clear()
	pp.winners = nil
}

func (pp *PatternPooler) MemoryUsage() int {
	return pp.mem.MemoryUsage() + pp.numS/8
}

// Weights snapshots the learned receptor addresses/permanences,
// separate from the topology/params captured by a network config
// export (spec §6).
func (pp *PatternPooler) Weights() memory.Weights { return pp.mem.Snapshot() }

// SetWeights restores learned receptor state previously captured by
// Weights. pp must already be Init'd.
func (pp *PatternPooler) SetWeights(w memory.Weights) error { return pp.mem.Restore(w) }

// Config returns this PatternPooler's constructor parameters, for
// Network's export_config/import_config (spec §6).
func (pp *PatternPooler) Config() (Params, int64) { return pp.params, pp.seed }

// poolerSave is the gob payload written by PatternPooler.Save: enough
// to reconstruct learned state and exact future RNG output on top of a
// block built from matching Params/seed (spec §4.9, §6).
type poolerSave struct {
	Params    Params
	Seed      int64
	RandState uint64
	Output    block.OutputState
	Weights   memory.Weights
	Overlap   []int
	Winners   []int
}

// Save persists this PatternPooler's full runtime state to path.
func (pp *PatternPooler) Save(path string) error {
	return block.WriteSave(path, "PatternPooler", poolerSave{
		Params:    pp.params,
		Seed:      pp.seed,
		RandState: pp.Rand.State(),
		Output:    pp.out.Snapshot(),
		Weights:   pp.mem.Snapshot(),
		Overlap:   append([]int(nil), pp.overlap...),
		Winners:   append([]int(nil), pp.winners...),
	})
}

// Load restores state previously written by Save. pp must already be
// constructed with matching Params and seed; if it has not yet been
// Init'd, Load allocates BlockMemory at the saved shape directly (no
// random fill) rather than requiring a wasted Init call first.
func (pp *PatternPooler) Load(path string) error {
	var s poolerSave
	if err := block.ReadSave(path, "PatternPooler", &s); err != nil {
		return err
	}
	if s.Params != pp.params || s.Seed != pp.seed {
		return fmt.Errorf("%w: PatternPooler", block.ErrConfigMismatch)
	}
	if !pp.Initialized() {
		if err := pp.mem.InitShape(s.Weights.NumD, s.Weights.NumRPD, s.Weights.NumI, pp.params.PermThr, pp.params.PermInc, pp.params.PermDec, true); err != nil {
			return err
		}
		pp.MarkInitialized()
	}
	if err := pp.mem.Restore(s.Weights); err != nil {
		return err
	}
	if err := pp.out.Restore(s.Output); err != nil {
		return err
	}
	pp.Rand.SetState(s.RandState)
	pp.overlap = append([]int(nil), s.Overlap...)
	pp.winners = append([]int(nil), s.Winners...)
	return nil
}

var _ block.Block = (*PatternPooler)(nil)
