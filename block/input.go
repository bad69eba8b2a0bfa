// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import "github.com/jacobeverist/gnomics/bitfield"

// inputChild is one entry in an Input's source list: a reference to an
// upstream Output at a fixed time offset, plus the word-aligned slice of
// the concatenated destination state it owns.
type inputChild struct {
	source     *Output
	time       int
	wordOffset int
	wordCount  int
}

// Input concatenates one or more upstream Outputs (each at a fixed
// logical time offset) into a single destination BitField by lazy
// word-level copy, skipping sources that have not changed since the
// last pull (spec §4.3, the "Level-1 skip optimization").
type Input struct {
	children []inputChild
	state    *bitfield.BitField
}

// NewInput returns an empty Input with no children and a zero-length
// destination state.
func NewInput() *Input {
	return &Input{state: bitfield.New(0)}
}

// AddChild appends a new source entry at the given time offset and
// recomputes the destination length as the sum of all children's
// word-rounded widths. Word offsets are assigned here and are stable
// thereafter -- no data is copied by this call.
func (in *Input) AddChild(source *Output, time int) {
	wc := (source.NumStatelets() + bitfield.WordBits - 1) / bitfield.WordBits
	off := 0
	for _, c := range in.children {
		off += c.wordCount
	}
	in.children = append(in.children, inputChild{source: source, time: time, wordOffset: off, wordCount: wc})
	totalWords := off + wc
	in.state = bitfield.New(totalWords * bitfield.WordBits)
}

// NumChildren returns the number of wired source entries.
func (in *Input) NumChildren() int { return len(in.children) }

// NumBits returns the destination state's bit width.
func (in *Input) NumBits() int { return in.state.NumBits() }

// State returns the concatenated destination BitField, read by the
// owning block's Encode/Learn.
func (in *Input) State() *bitfield.BitField { return in.state }

// ChildrenChanged reports whether any source changed since the current
// cycle's last pull, short-circuiting on the first true.
func (in *Input) ChildrenChanged() bool {
	for _, c := range in.children {
		if c.source.HasChangedAt(c.time) {
			return true
		}
	}
	return false
}

// Pull refreshes state by copying each changed source's words into its
// word-aligned slice of the destination. Sources that did not change
// since the previous pull are skipped entirely -- correctness of the
// skip relies on the invariant that an unskipped copy always leaves the
// destination slice equal to the source's current words (spec §8
// property 4).
func (in *Input) Pull() {
	dst := in.state.WordsMut()
	for _, c := range in.children {
		if !c.source.HasChangedAt(c.time) {
			continue
		}
		src := c.source.GetBitfield(c.time).Words()
		bitfield.CopyWords(dst, src, c.wordOffset, 0, c.wordCount)
	}
}
