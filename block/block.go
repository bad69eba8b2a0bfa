// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import "github.com/jacobeverist/gnomics/erand"

// Logical time offsets for Output.GetBitfield / Input.AddChild: CURR is
// this cycle's committed state, PREV is one cycle lagged.
const (
	CURR = 0
	PREV = 1
)

// Block is the lifecycle every dataflow node in the network implements
// (spec §4.9). The Network drives these methods through Feedforward
// once per cycle; individual block kinds supply Encode/Learn, the rest
// is common plumbing shared via Base.
type Block interface {
	// Init performs one-shot allocation of internal memory and sizing
	// of the block's Output(s). Idempotent after the first successful
	// call.
	Init() error

	// Step advances the owned Output's ring at the start of a cycle.
	Step()

	// Pull refreshes every Input from its wired sources.
	Pull()

	// Encode computes this cycle's output state from the (already
	// pulled) input state. Block-kind specific.
	Encode()

	// Store commits the Output for this cycle.
	Store()

	// Learn adapts internal synaptic state, when called with learning
	// enabled. A no-op for pure encoders.
	Learn()

	// Feedforward is the default per-cycle composition:
	// Step -> Pull -> Encode -> Store -> (Learn if learn).
	Feedforward(learn bool)

	// Clear zeroes Output and its history and resets the block's
	// per-cycle state (current value, winners, predictions, anomaly).
	// BlockMemory receptor addresses and permanences are not reset.
	Clear()

	// MemoryUsage is a conservative byte estimate, used by tooling only.
	MemoryUsage() int

	// Output returns the block's primary output, or nil if it has none.
	Output() *Output

	// Save persists this block's full runtime state -- output history
	// ring, BlockMemory receptor addresses/permanences, RNG stream
	// position, and scalar configuration -- to path, in a versioned
	// format that Load refuses to misread (spec §4.9, §6).
	Save(path string) error

	// Load restores state previously written by Save into this block.
	// The receiver must already be constructed (and typically Init'd)
	// with matching configuration; Load returns ErrConfigMismatch if the
	// saved configuration does not match, ErrWrongKind if the file was
	// written by a different block kind, and ErrVersionMismatch if the
	// file's format version is not one this build understands.
	Load(path string) error
}

// Base holds the fields every Block implementation shares: identity,
// lifecycle flag, and a private deterministic RNG seeded at
// construction (spec §4.9 -- "No block uses a process-wide or
// thread-local RNG").
type Base struct {
	id       ID
	name     string
	initFlag bool
	Rand     erand.Rand
}

// InitBase seeds the block's private RNG. Every concrete block kind
// calls this from its constructor; the block's ID is assigned later,
// when a Network takes ownership of it (see SetID).
func (b *Base) InitBase(seed int64) {
	b.Rand = erand.NewSysRand(seed)
}

// ID returns the block's process-unique handle, zero until a Network
// has taken ownership of it.
func (b *Base) ID() ID { return b.id }

// SetID assigns the block's handle. Called exactly once, by the owning
// Network when the block is added.
func (b *Base) SetID(id ID) { b.id = id }

// Name returns the block's free-form label, empty if unset.
func (b *Base) Name() string { return b.name }

// SetName sets the block's free-form label, used by external tooling.
func (b *Base) SetName(name string) { b.name = name }

// Initialized reports whether Init has already succeeded once.
func (b *Base) Initialized() bool { return b.initFlag }

// MarkInitialized records that Init has succeeded; called by concrete
// Init implementations once their allocation is done.
func (b *Base) MarkInitialized() { b.initFlag = true }

// Feedforward runs the standard step/pull/encode/store/(learn)
// composition against a concrete Block. Base has no Feedforward method,
// so every block kind defines its own Feedforward, which calls this
// helper.
func Feedforward(blk Block, learn bool) {
	blk.Step()
	blk.Pull()
	blk.Encode()
	blk.Store()
	if learn {
		blk.Learn()
	}
}
