// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/jacobeverist/gnomics/bitfield"
)

// Output owns a block's current state plus a ring of T prior states and
// per-slot change flags, giving downstream blocks O(1) temporal access
// (CURR/PREV/t) without copying history on every pull (spec §3, §4.2).
//
// An Output is owned by exactly one block; it is referenced by zero or
// more Inputs elsewhere in the graph via a plain pointer -- the producer
// controls the lifetime, readers never extend it.
type Output struct {
	id      OutputID
	numS    int
	state   *bitfield.BitField
	history []*bitfield.BitField
	changes []bool
	currIdx int
	lastVer uint64
}

// NewOutput allocates an Output and assigns it a fresh process-unique id.
// Setup must still be called before use.
func NewOutput() *Output {
	return &Output{id: NewOutputID()}
}

// ID returns this output's stable process-unique identifier.
func (o *Output) ID() OutputID { return o.id }

// Setup sizes the ring to depth T (must be >= 2) and each slot to N
// bits, all zeroed, and resets bookkeeping to the initial condition.
func (o *Output) Setup(t, n int) {
	if t < 2 {
		panic("block: Output ring depth T must be >= 2")
	}
	o.numS = n
	o.state = bitfield.New(n)
	o.history = make([]*bitfield.BitField, t)
	o.changes = make([]bool, t)
	for i := range o.history {
		o.history[i] = bitfield.New(n)
	}
	o.currIdx = 0
	o.lastVer = 0
}

// NumStatelets returns the output's bit width N.
func (o *Output) NumStatelets() int { return o.numS }

// State returns the mutable current-cycle BitField; a block's encode
// writes here before Store commits it into history.
func (o *Output) State() *bitfield.BitField { return o.state }

// Step advances curr_idx to (curr_idx+1) mod T. Must run at the start
// of a cycle, before state is mutated. Does not touch state itself.
func (o *Output) Step() {
	o.currIdx = (o.currIdx + 1) % len(o.history)
}

// Store compares state's version against the version recorded at the
// previous Store, records the resulting changed flag for the current
// ring slot, and copies state into history[curr_idx].
func (o *Output) Store() {
	changed := o.state.Version() != o.lastVer
	o.lastVer = o.state.Version()
	o.history[o.currIdx] = o.state.Clone()
	// Clone resets version to 0; state itself keeps accumulating so the
	// next Store's comparison is still meaningful.
	o.changes[o.currIdx] = changed
}

// depth returns T, the ring length.
func (o *Output) depth() int { return len(o.history) }

func (o *Output) slotAt(t int) int {
	if t < 0 || t >= o.depth() {
		panic("block: time offset out of range [0,T)")
	}
	idx := o.currIdx - t
	d := o.depth()
	idx = ((idx % d) + d) % d
	return idx
}

// GetBitfield returns the BitField at logical time offset t: t=0 is
// CURR (history[curr_idx]), t=1 is PREV, and so on up to t < T.
func (o *Output) GetBitfield(t int) *bitfield.BitField {
	return o.history[o.slotAt(t)]
}

// HasChanged reports the most recently recorded changed flag (t=0).
func (o *Output) HasChanged() bool {
	return o.changes[o.currIdx]
}

// HasChangedAt reports the changed flag recorded at logical offset t.
func (o *Output) HasChangedAt(t int) bool {
	return o.changes[o.slotAt(t)]
}

// Clear zeroes state and every history slot, marks every changes slot
// true (a clear must always read as a change downstream), and resyncs
// lastVer to state's current version.
func (o *Output) Clear() {
	o.state.ClearAll()
	for i := range o.history {
		o.history[i].ClearAll()
		o.changes[i] = true
	}
	o.lastVer = o.state.Version()
}

// OutputState is a serializable snapshot of an Output's ring: every
// history slot's active bits, the per-slot changed flags, and the ring's
// current write position. Used by a block kind's Save/Load (spec §4.9,
// §6) alongside its BlockMemory weights and RNG state.
type OutputState struct {
	NumS    int
	History [][]int
	Changes []bool
	CurrIdx int
}

// Snapshot captures this Output's current ring contents. The returned
// value shares no memory with the Output -- safe to gob-encode or retain
// across further Step/Store calls.
func (o *Output) Snapshot() OutputState {
	hist := make([][]int, len(o.history))
	for i, h := range o.history {
		hist[i] = h.GetActs()
	}
	return OutputState{
		NumS:    o.numS,
		History: hist,
		Changes: append([]bool(nil), o.changes...),
		CurrIdx: o.currIdx,
	}
}

// Restore rebuilds this Output's ring from a previously captured
// OutputState. The Output must already be Setup with the same T and N
// as when the snapshot was taken -- Restore only replaces contents, it
// never resizes. state and lastVer are resynced to history[currIdx] so
// the next Store's changed comparison is correct.
func (o *Output) Restore(s OutputState) error {
	if s.NumS != o.numS {
		return fmt.Errorf("%w: output snapshot has %d statelets, output has %d", ErrLengthMismatch, s.NumS, o.numS)
	}
	if len(s.History) != len(o.history) || len(s.Changes) != len(o.changes) {
		return fmt.Errorf("%w: output snapshot ring depth does not match", ErrLengthMismatch)
	}
	for i, acts := range s.History {
		o.history[i].ClearAll()
		o.history[i].SetActs(acts)
	}
	copy(o.changes, s.Changes)
	o.currIdx = s.CurrIdx
	o.state.ClearAll()
	o.state.SetActs(s.History[s.CurrIdx])
	o.lastVer = o.state.Version()
	return nil
}
