// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"testing"

	"github.com/jacobeverist/gnomics/bitfield"
)

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestOutputRingWraparound drives an Output through more cycles than its
// ring depth T and checks that CURR/PREV still resolve to the correct
// cycle's content at every step (spec §3, §4.2).
func TestOutputRingWraparound(t *testing.T) {
	out := NewOutput()
	out.Setup(3, 8)

	cycles := [][]int{{0, 1}, {2}, {3, 4, 5}, {1}, {6, 7}, {0, 7}}
	for i, acts := range cycles {
		out.Step()
		out.State().SetActs(acts)
		out.Store()

		if got := out.GetBitfield(CURR).GetActs(); !equalInts(got, acts) {
			t.Fatalf("cycle %d: CURR = %v, want %v", i, got, acts)
		}
		if i > 0 {
			want := cycles[i-1]
			if got := out.GetBitfield(PREV).GetActs(); !equalInts(got, want) {
				t.Fatalf("cycle %d: PREV = %v, want %v", i, got, want)
			}
		}
	}
}

// TestOutputStoreChangeDetection checks that Store's changed flag
// tracks whether State was mutated since the previous Store, not
// whether its content differs from history -- a cycle that never
// touches State() after Step must read as unchanged.
func TestOutputStoreChangeDetection(t *testing.T) {
	out := NewOutput()
	out.Setup(2, 4)

	out.Step()
	out.State().SetActs([]int{1, 2})
	out.Store()
	if !out.HasChanged() {
		t.Fatalf("first Store from a fresh Output should register changed")
	}

	out.Step()
	out.Store() // no SetActs this cycle: state untouched since last Store
	if out.HasChanged() {
		t.Fatalf("Store with no intervening mutation should register unchanged")
	}

	out.Step()
	out.State().SetActs([]int{3})
	out.Store()
	if !out.HasChanged() {
		t.Fatalf("Store after a SetActs mutation should register changed")
	}
}

// TestOutputSnapshotRestoreRoundTrip checks Snapshot/Restore reproduce
// an Output's full ring, change flags and Store-comparison state.
func TestOutputSnapshotRestoreRoundTrip(t *testing.T) {
	out := NewOutput()
	out.Setup(3, 8)
	out.Step()
	out.State().SetActs([]int{0, 3})
	out.Store()
	out.Step()
	out.State().SetActs([]int{5})
	out.Store()

	snap := out.Snapshot()

	restored := NewOutput()
	restored.Setup(3, 8)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if got, want := restored.GetBitfield(CURR).GetActs(), out.GetBitfield(CURR).GetActs(); !equalInts(got, want) {
		t.Fatalf("restored CURR = %v, want %v", got, want)
	}
	if got, want := restored.GetBitfield(PREV).GetActs(), out.GetBitfield(PREV).GetActs(); !equalInts(got, want) {
		t.Fatalf("restored PREV = %v, want %v", got, want)
	}
	if restored.HasChanged() != out.HasChanged() {
		t.Fatalf("restored HasChanged = %v, want %v", restored.HasChanged(), out.HasChanged())
	}

	// A Store immediately after Restore, with no mutation, must read as
	// unchanged -- proving lastVer was resynced rather than left at 0.
	restored.Step()
	restored.Store()
	if restored.HasChanged() {
		t.Fatalf("Store right after Restore with no mutation should be unchanged")
	}
}

// TestInputSkipsUnchangedSource exercises the Level-1 skip optimization
// (spec §8 property 4): a source whose Output did not change since the
// last Store must not have its words re-copied into the Input's
// destination state, even though Pull runs every cycle.
func TestInputSkipsUnchangedSource(t *testing.T) {
	src1 := NewOutput()
	src1.Setup(2, bitfield.WordBits)
	src2 := NewOutput()
	src2.Setup(2, bitfield.WordBits)

	in := NewInput()
	in.AddChild(src1, CURR)
	in.AddChild(src2, CURR)

	src1.Step()
	src1.State().SetActs([]int{0, 1})
	src1.Store()
	src2.Step()
	src2.State().SetActs([]int{5, 6})
	src2.Store()
	in.Pull()

	if got := in.State().GetActs(); !equalInts(got, []int{0, 1, bitfield.WordBits + 5, bitfield.WordBits + 6}) {
		t.Fatalf("after first pull, state = %v", got)
	}

	// Second cycle: src1 changes, src2's Encode is skipped entirely (no
	// SetActs call), so its Output reads as unchanged.
	src1.Step()
	src1.State().SetActs([]int{2})
	src1.Store()
	src2.Step()
	src2.Store()

	if src2.HasChangedAt(CURR) {
		t.Fatalf("src2 should read unchanged when its state was never touched this cycle")
	}

	// Corrupt src2's word slot in the destination directly; if Pull
	// still copies unchanged sources this corruption would be wiped out
	// by a correct re-copy of src2's (identical) words, masking the bug.
	// Instead we poison it with a value src2's real word never contains,
	// so we can tell a skip apart from a redundant-but-correct copy.
	dst := in.State().WordsMut()
	dst[1] = ^bitfield.Word(0)

	in.Pull()

	got := in.State().WordsMut()
	if got[1] != ^bitfield.Word(0) {
		t.Fatalf("src2's unchanged word slot was overwritten by Pull; skip optimization not applied (got %#x)", got[1])
	}
	if got := in.State().GetActs()[:1]; !equalInts(got, []int{2}) {
		t.Fatalf("src1's changed word slot was not copied by Pull: %v", in.State().GetActs())
	}
}
