// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transform

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/jacobeverist/gnomics/block"
)

// jumpThreshold is the normalized-value delta above which the
// persistence counter resets (spec §4.5, hard-coded at 0.1).
const jumpThreshold = 0.1

// PersistenceTransformer encodes how long a normalized value has stayed
// roughly constant: a jump greater than jumpThreshold resets a counter
// to 0 and updates the reference value; otherwise the counter increments
// (saturating at maxStep) and the reference value is left untouched --
// only a reset may update it (spec §4.5, §8 property 8).
type PersistenceTransformer struct {
	block.Base

	numS, numAS, maxStep int
	numT                 int
	seed                 int64

	out *block.Output

	counter    int
	lastV      float64
	pendingPct float64
	dirty      bool
}

// NewPersistenceTransformer constructs a PersistenceTransformer.
func NewPersistenceTransformer(numS, numAS, numT, maxStep int, seed int64) (*PersistenceTransformer, error) {
	if numAS <= 0 || numAS > numS {
		return nil, fmt.Errorf("%w: numAS=%d must be in (0,numS=%d]", block.ErrOutOfRange, numAS, numS)
	}
	if maxStep <= 0 {
		return nil, fmt.Errorf("%w: maxStep must be positive", block.ErrOutOfRange)
	}
	if numT < 2 {
		numT = 2
	}
	pt := &PersistenceTransformer{numS: numS, numAS: numAS, maxStep: maxStep, numT: numT, seed: seed}
	pt.InitBase(seed)
	pt.out = block.NewOutput()
	pt.out.Setup(numT, numS)
	return pt, nil
}

// PersistenceConfig is the exported, JSON-serializable snapshot of a
// PersistenceTransformer's constructor parameters (spec §6).
type PersistenceConfig struct {
	NumS, NumAS, NumT, MaxStep int
	Seed                       int64
}

// Config returns this PersistenceTransformer's constructor parameters.
func (pt *PersistenceTransformer) Config() PersistenceConfig {
	return PersistenceConfig{NumS: pt.numS, NumAS: pt.numAS, NumT: pt.numT, MaxStep: pt.maxStep, Seed: pt.seed}
}

func (pt *PersistenceTransformer) Init() error {
	pt.MarkInitialized()
	return nil
}

// SetPctValue provides the new normalized value p in [0,1] for the next
// Encode to consider against the running reference.
func (pt *PersistenceTransformer) SetPctValue(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	pt.pendingPct = p
	pt.dirty = true
}

// Counter returns the current persistence counter, in [0,maxStep].
func (pt *PersistenceTransformer) Counter() int { return pt.counter }

func (pt *PersistenceTransformer) Step()  { pt.out.Step() }
func (pt *PersistenceTransformer) Pull()  {}
func (pt *PersistenceTransformer) Store() { pt.out.Store() }
func (pt *PersistenceTransformer) Learn() {}

func (pt *PersistenceTransformer) Encode() {
	if pt.dirty {
		d := math32.Abs(float32(pt.pendingPct - pt.lastV))
		if d > jumpThreshold {
			pt.counter = 0
			pt.lastV = pt.pendingPct
		} else {
			pt.counter++
			if pt.counter > pt.maxStep {
				pt.counter = pt.maxStep
			}
		}
		pt.dirty = false
	}

	pct := float64(pt.counter) / float64(pt.maxStep)
	pt.out.State().SetActs(window(pct, pt.numS, pt.numAS))
}

func (pt *PersistenceTransformer) Feedforward(learn bool) { block.Feedforward(pt, learn) }

func (pt *PersistenceTransformer) Clear() {
	pt.out.Clear()
	pt.counter = 0
	pt.lastV = 0
	pt.dirty = false
}

func (pt *PersistenceTransformer) MemoryUsage() int { return pt.numS / 8 }

func (pt *PersistenceTransformer) Output() *block.Output { return pt.out }

// persistenceSave is the gob payload written by
// PersistenceTransformer.Save.
type persistenceSave struct {
	Config      PersistenceConfig
	RandState   uint64
	Output      block.OutputState
	Counter     int
	LastV       float64
	PendingPct  float64
	Dirty       bool
}

// Save persists this PersistenceTransformer's full runtime state to path.
func (pt *PersistenceTransformer) Save(path string) error {
	return block.WriteSave(path, "PersistenceTransformer", persistenceSave{
		Config:     pt.Config(),
		RandState:  pt.Rand.State(),
		Output:     pt.out.Snapshot(),
		Counter:    pt.counter,
		LastV:      pt.lastV,
		PendingPct: pt.pendingPct,
		Dirty:      pt.dirty,
	})
}

// Load restores state previously written by Save. pt must already be
// constructed with matching configuration.
func (pt *PersistenceTransformer) Load(path string) error {
	var s persistenceSave
	if err := block.ReadSave(path, "PersistenceTransformer", &s); err != nil {
		return err
	}
	if s.Config != pt.Config() {
		return fmt.Errorf("%w: PersistenceTransformer", block.ErrConfigMismatch)
	}
	if err := pt.out.Restore(s.Output); err != nil {
		return err
	}
	pt.Rand.SetState(s.RandState)
	pt.counter = s.Counter
	pt.lastV = s.LastV
	pt.pendingPct = s.PendingPct
	pt.dirty = s.Dirty
	return nil
}

var _ block.Block = (*PersistenceTransformer)(nil)
