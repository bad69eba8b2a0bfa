// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classifier implements PatternClassifier, the supervised
// spatial learner of spec §4.7: numL label groups of numSpl = numS/numL
// dendrites each, winner-take-all independently within every group, and
// a soft probability readout over group overlap totals.
//
// The Sorted-index-alongside-raw-scores idiom for the probability
// readout is lifted from the teacher's decoder package (decoder/softmax.go
// Sort()); here SortedLabels recomputes Probabilities and sorts the label
// indices on every call, nothing is cached between reads.
package classifier

import (
	"fmt"
	"sort"

	"github.com/jacobeverist/gnomics/block"
	"github.com/jacobeverist/gnomics/erand"
	"github.com/jacobeverist/gnomics/memory"
)

// Params bundles PatternClassifier's construction-time parameters.
type Params struct {
	NumL, NumAS                int
	PermThr, PermInc, PermDec  int
	PctPool, PctConn, PctLearn float64
	AlwaysUpdate               bool
	NumT                       int
}

// PatternClassifier is PatternPooler's supervised sibling: dendrites are
// partitioned into numL equal-sized label groups, each competing for its
// own numAS winners, and only the current label's group is reinforced
// on Learn.
type PatternClassifier struct {
	block.Base

	params      Params
	numL, numAS int
	numSpl      int
	numS        int
	pctLearn    float64
	alwaysUpd   bool
	seed        int64

	in  *block.Input
	out *block.Output
	mem memory.Memory

	currLabel int
	overlap   []int
	winners   []int
}

// New constructs a PatternClassifier with an output width of numS bits.
// numS must be divisible by p.NumL; each label group gets numS/p.NumL
// dendrites, and p.NumAS must lie in (0, numS/p.NumL].
func New(numS int, p Params, seed int64) (*PatternClassifier, error) {
	if p.NumL <= 0 || numS%p.NumL != 0 {
		return nil, fmt.Errorf("%w: numS=%d must be divisible by numL=%d", block.ErrOutOfRange, numS, p.NumL)
	}
	numSpl := numS / p.NumL
	if p.NumAS <= 0 || p.NumAS > numSpl {
		return nil, fmt.Errorf("%w: numAS=%d must be in (0,numSpl=%d]", block.ErrOutOfRange, p.NumAS, numSpl)
	}
	pc := &PatternClassifier{
		params: p, numL: p.NumL, numAS: p.NumAS, numSpl: numSpl, numS: numS,
		pctLearn: p.PctLearn, alwaysUpd: p.AlwaysUpdate, seed: seed,
	}
	pc.InitBase(seed)
	pc.in = block.NewInput()
	pc.out = block.NewOutput()
	numT := p.NumT
	if numT < 2 {
		numT = 2
	}
	pc.out.Setup(numT, numS)
	pc.overlap = make([]int, numS)
	return pc, nil
}

func (pc *PatternClassifier) Input() *block.Input   { return pc.in }
func (pc *PatternClassifier) Output() *block.Output { return pc.out }

// SetLabel sets the current training/inference label, in [0,numL).
func (pc *PatternClassifier) SetLabel(l int) error {
	if l < 0 || l >= pc.numL {
		return fmt.Errorf("%w: label %d out of [0,%d)", block.ErrOutOfRange, l, pc.numL)
	}
	pc.currLabel = l
	return nil
}

// Label returns the currently set label.
func (pc *PatternClassifier) Label() int { return pc.currLabel }

func (pc *PatternClassifier) Init() error {
	if pc.Initialized() {
		return nil
	}
	p := pc.params
	numI := pc.in.NumBits()
	if numI == 0 {
		return fmt.Errorf("%w: PatternClassifier input must be wired before Init", block.ErrNotInitialized)
	}
	numRPD := int(p.PctPool*float64(numI) + 0.5)
	if numRPD < 1 {
		numRPD = 1
	}
	initPerm := p.PermThr
	if err := pc.mem.Init(pc.numS, numRPD, numI, p.PermThr, p.PermInc, p.PermDec, initPerm, pc.Rand, true, p.PctPool, p.PctConn, true); err != nil {
		return err
	}
	pc.MarkInitialized()
	return nil
}

func (pc *PatternClassifier) Step()  { pc.out.Step() }
func (pc *PatternClassifier) Pull()  { pc.in.Pull() }
func (pc *PatternClassifier) Store() { pc.out.Store() }

// Encode computes overlap for every dendrite, then independently
// selects the top numAS dendrites (ties toward smaller index) within
// each label group (spec §4.7).
func (pc *PatternClassifier) Encode() {
	if !pc.alwaysUpd && !pc.in.ChildrenChanged() {
		return
	}
	x := pc.in.State()
	for d := 0; d < pc.numS; d++ {
		pc.overlap[d] = pc.mem.OverlapConn(d, x)
	}
	pc.winners = pc.winners[:0]
	for l := 0; l < pc.numL; l++ {
		lo := l * pc.numSpl
		group := pc.overlap[lo : lo+pc.numSpl]
		top := topKOffset(group, pc.numAS, lo)
		pc.winners = append(pc.winners, top...)
	}
	sort.Ints(pc.winners)
	pc.out.State().SetActs(pc.winners)
}

func topKOffset(scores []int, k, base int) []int {
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
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = base + idx[i]
	}
	return out
}

// Learn reinforces, with probability pctLearn per dendrite, only the
// winning dendrites within the current label's group -- other groups
// are left untouched this cycle (no punishment, spec §4.7).
func (pc *PatternClassifier) Learn() {
	x := pc.in.State()
	lo := pc.currLabel * pc.numSpl
	hi := lo + pc.numSpl
	for _, d := range pc.winners {
		if d < lo || d >= hi {
			continue
		}
		if erand.BoolP(pc.Rand, pc.pctLearn) {
			pc.mem.Learn(d, x)
		}
	}
}

func (pc *PatternClassifier) Feedforward(learn bool) { block.Feedforward(pc, learn) }

func (pc *PatternClassifier) Clear() {
	pc.out.Clear()
	pc.winners = nil
}

func (pc *PatternClassifier) MemoryUsage() int {
	return pc.mem.MemoryUsage() + pc.numS/8
}

// Weights snapshots the learned receptor addresses/permanences,
// separate from the topology/params captured by a network config
// export (spec §6).
func (pc *PatternClassifier) Weights() memory.Weights { return pc.mem.Snapshot() }

// SetWeights restores learned receptor state previously captured by
// Weights. pc must already be Init'd.
func (pc *PatternClassifier) SetWeights(w memory.Weights) error { return pc.mem.Restore(w) }

// Probabilities returns, per label, the normalized sum of overlap over
// that label's dendrite group: if the total across all labels is > 0,
// the vector sums to 1; otherwise it is all zeros (spec §4.7, §8
// property 9).
func (pc *PatternClassifier) Probabilities() []float64 {
	sums := make([]float64, pc.numL)
	total := 0.0
	for l := 0; l < pc.numL; l++ {
		lo := l * pc.numSpl
		s := 0
		for _, v := range pc.overlap[lo : lo+pc.numSpl] {
			s += v
		}
		sums[l] = float64(s)
		total += float64(s)
	}
	if total <= 0 {
		return sums // all zero
	}
	for l := range sums {
		sums[l] /= total
	}
	return sums
}

// SortedLabels returns label indices sorted by descending probability,
// so SortedLabels()[0] is the most likely label -- mirrors the
// teacher's decoder.SoftMax.Sorted convenience (decoder/softmax.go).
func (pc *PatternClassifier) SortedLabels() []int {
	probs := pc.Probabilities()
	idx := make([]int, pc.numL)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return probs[idx[i]] > probs[idx[j]] })
	return idx
}

// Config returns this PatternClassifier's constructor parameters
// (output width, Params, seed), for Network's export_config/import_config
// (spec §6).
func (pc *PatternClassifier) Config() (int, Params, int64) { return pc.numS, pc.params, pc.seed }

// classifierSave is the gob payload written by PatternClassifier.Save.
type classifierSave struct {
	NumS      int
	Params    Params
	Seed      int64
	RandState uint64
	Output    block.OutputState
	Weights   memory.Weights
	CurrLabel int
	Overlap   []int
	Winners   []int
}

// Save persists this PatternClassifier's full runtime state to path.
func (pc *PatternClassifier) Save(path string) error {
	return block.WriteSave(path, "PatternClassifier", classifierSave{
		NumS:      pc.numS,
		Params:    pc.params,
		Seed:      pc.seed,
		RandState: pc.Rand.State(),
		Output:    pc.out.Snapshot(),
		Weights:   pc.mem.Snapshot(),
		CurrLabel: pc.currLabel,
		Overlap:   append([]int(nil), pc.overlap...),
		Winners:   append([]int(nil), pc.winners...),
	})
}

// Load restores state previously written by Save. pc must already be
// constructed with matching NumS/Params/seed; if it has not yet been
// Init'd, Load allocates BlockMemory at the saved shape directly (no
// random fill) rather than requiring a wasted Init call first.
func (pc *PatternClassifier) Load(path string) error {
	var s classifierSave
	if err := block.ReadSave(path, "PatternClassifier", &s); err != nil {
		return err
	}
	if s.NumS != pc.numS || s.Params != pc.params || s.Seed != pc.seed {
		return fmt.Errorf("%w: PatternClassifier", block.ErrConfigMismatch)
	}
	if !pc.Initialized() {
		if err := pc.mem.InitShape(s.Weights.NumD, s.Weights.NumRPD, s.Weights.NumI, pc.params.PermThr, pc.params.PermInc, pc.params.PermDec, true); err != nil {
			return err
		}
		pc.MarkInitialized()
	}
	if err := pc.mem.Restore(s.Weights); err != nil {
		return err
	}
	if err := pc.out.Restore(s.Output); err != nil {
		return err
	}
	pc.Rand.SetState(s.RandState)
	pc.currLabel = s.CurrLabel
	pc.overlap = append([]int(nil), s.Overlap...)
	pc.winners = append([]int(nil), s.Winners...)
	return nil
}

var _ block.Block = (*PatternClassifier)(nil)
