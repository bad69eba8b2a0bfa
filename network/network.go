// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package network implements Network, the type-erased block container
// and scheduler of spec §4.10: topological build via Kahn's algorithm
// (ties broken by ascending BlockId), single-threaded cycle execution,
// and typed downcast recovery.
//
// This generalizes the teacher's NetworkStru layer-ordering pass
// (leabra/leabra/networkstru.go BuildPaths/bottom-up layer indexing)
// from a fixed feedforward-then-feedback layer stack to an arbitrary
// user-declared dependency DAG over heterogeneous block kinds.
package network

import (
	"fmt"
	"sort"

	"github.com/jacobeverist/gnomics/block"
)

// hasInput is satisfied by block kinds that accept a driving input
// (everything except the pure transformers).
type hasInput interface {
	Input() *block.Input
}

// hasContext is satisfied by the temporal learner kinds.
type hasContext interface {
	Context() *block.Input
}

// identifiable is satisfied by every concrete block kind via the
// promoted methods of block.Base.
type identifiable interface {
	SetID(block.ID)
}

type entry struct {
	blk   block.Block
	name  string
	preds map[block.ID]struct{}
}

// wire records one connect_to_input/connect_to_context call, preserved
// so export_config can reproduce the "connections" array (spec §6). A
// bare Connect (scheduling-only, no input/context wiring) has no
// representation in the JSON schema and is therefore not recorded here.
type wire struct {
	src, dst block.ID
	kind     string // "input" or "context"
	offset   int
}

// Network owns a set of blocks behind the common Block interface, a
// declared-dependency DAG over them, and (once built) a deterministic
// execution order.
type Network struct {
	blocks map[block.ID]*entry
	wires  []wire
	nextID uint32
	order  []block.ID
	built  bool

	recorder *Recorder
	timer    *CycleTimer
}

// New returns an empty Network.
func New() *Network {
	return &Network{blocks: make(map[block.ID]*entry)}
}

// Add takes ownership of blk, assigns it a fresh BlockId, and
// invalidates any previous build.
func (n *Network) Add(blk block.Block) block.ID {
	n.nextID++
	id := block.ID(n.nextID)
	if s, ok := blk.(identifiable); ok {
		s.SetID(id)
	}
	n.blocks[id] = &entry{blk: blk, preds: make(map[block.ID]struct{})}
	n.built = false
	return id
}

func (n *Network) get(id block.ID) (*entry, error) {
	e, ok := n.blocks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlock, id)
	}
	return e, nil
}

// Connect declares that dst depends on src for scheduling purposes
// only. Idempotent; invalidates any previous build.
func (n *Network) Connect(src, dst block.ID) error {
	if _, err := n.get(src); err != nil {
		return err
	}
	e, err := n.get(dst)
	if err != nil {
		return err
	}
	e.preds[src] = struct{}{}
	n.built = false
	return nil
}

// ConnectToInput is Connect(src,dst) plus wiring dst.Input().AddChild(
// src.Output(), CURR).
func (n *Network) ConnectToInput(src, dst block.ID) error {
	return n.ConnectToInputOffset(src, dst, block.CURR)
}

// ConnectToInputOffset is ConnectToInput with an explicit time offset
// into src's ring.
func (n *Network) ConnectToInputOffset(src, dst block.ID, offset int) error {
	se, err := n.get(src)
	if err != nil {
		return err
	}
	de, err := n.get(dst)
	if err != nil {
		return err
	}
	hi, ok := de.blk.(hasInput)
	if !ok {
		return fmt.Errorf("%w: block %d does not accept an input", ErrWrongType, dst)
	}
	hi.Input().AddChild(se.blk.Output(), offset)
	n.wires = append(n.wires, wire{src: src, dst: dst, kind: "input", offset: offset})
	return n.Connect(src, dst)
}

// ConnectToContext is like ConnectToInput but wires into dst.Context().
func (n *Network) ConnectToContext(src, dst block.ID) error {
	return n.ConnectToContextOffset(src, dst, block.CURR)
}

// ConnectToContextOffset is ConnectToContext with an explicit time
// offset into src's ring.
func (n *Network) ConnectToContextOffset(src, dst block.ID, offset int) error {
	se, err := n.get(src)
	if err != nil {
		return err
	}
	de, err := n.get(dst)
	if err != nil {
		return err
	}
	hc, ok := de.blk.(hasContext)
	if !ok {
		return fmt.Errorf("%w: block %d does not accept a context", ErrWrongType, dst)
	}
	hc.Context().AddChild(se.blk.Output(), offset)
	n.wires = append(n.wires, wire{src: src, dst: dst, kind: "context", offset: offset})
	return n.Connect(src, dst)
}

// ConnectManyToInput wires each of srcs into dst's input in order,
// preserving declaration order in the resulting concatenation (spec
// §4.10, scenario S5).
func (n *Network) ConnectManyToInput(srcs []block.ID, dst block.ID) error {
	for _, s := range srcs {
		if err := n.ConnectToInput(s, dst); err != nil {
			return err
		}
	}
	return nil
}

// RemoveBlock removes a block and its scheduling edges. Because
// BlockInput has no child-removal primitive (spec §4.3 exposes no such
// operation), a block that any other block still schedules after
// (including via input/context wiring) cannot be safely removed; this
// is a deliberate, documented restriction rather than a silent dangling
// reference.
func (n *Network) RemoveBlock(id block.ID) error {
	if _, err := n.get(id); err != nil {
		return err
	}
	for other, e := range n.blocks {
		if other == id {
			continue
		}
		if _, ok := e.preds[id]; ok {
			return fmt.Errorf("%w: %d", ErrHasDependents, id)
		}
	}
	delete(n.blocks, id)
	kept := n.wires[:0]
	for _, w := range n.wires {
		if w.src == id || w.dst == id {
			continue
		}
		kept = append(kept, w)
	}
	n.wires = kept
	n.built = false
	return nil
}

// Build computes a deterministic topological order over the declared
// dependency DAG via Kahn's algorithm, ties broken by ascending BlockId
// (spec §4.10, §8 property 5). On a cycle, the previous order (if any)
// is left untouched and is_built stays false.
func (n *Network) Build() error {
	ids := make([]block.ID, 0, len(n.blocks))
	for id := range n.blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	indeg := make(map[block.ID]int, len(ids))
	for _, id := range ids {
		indeg[id] = len(n.blocks[id].preds)
	}

	order := make([]block.ID, 0, len(ids))
	visited := make(map[block.ID]bool, len(ids))
	for len(order) < len(ids) {
		progressed := false
		for _, id := range ids {
			if visited[id] || indeg[id] != 0 {
				continue
			}
			order = append(order, id)
			visited[id] = true
			for _, other := range ids {
				if _, ok := n.blocks[other].preds[id]; ok {
					indeg[other]--
				}
			}
			progressed = true
			break
		}
		if !progressed {
			return ErrCycleDetected
		}
	}

	n.order = order
	n.built = true
	return nil
}

// IsBuilt reports whether Build has succeeded since the last mutation.
func (n *Network) IsBuilt() bool { return n.built }

// Execute requires a successful prior Build and runs Feedforward(learn)
// on every block in topological order (spec §4.10). Every concrete
// block kind in this module treats encode/learn as infallible (clamping
// and saturation are silent by design, spec §7), so there is no
// mid-cycle error to abort on once the network is built; Execute's only
// failure mode is an unbuilt network.
func (n *Network) Execute(learn bool) error {
	if !n.built {
		return ErrNotBuilt
	}
	if n.timer != nil {
		n.timer.start_()
	}
	cycle := make([]BlockTrace, 0, len(n.order))
	for _, id := range n.order {
		e := n.blocks[id]
		e.blk.Feedforward(learn)
		if n.recorder != nil {
			cycle = append(cycle, traceOf(e.name, e.blk))
		}
	}
	if n.recorder != nil {
		n.recorder.record(cycle)
	}
	if n.timer != nil {
		n.timer.stop()
	}
	return nil
}

// Get recovers a typed reference to the block registered under id,
// failing if the id is unknown or the stored block is not of type T
// (spec §4.10 get<T>/get_mut<T> -- Go has no const/mut reference
// distinction, so one generic accessor serves both).
func Get[T block.Block](n *Network, id block.ID) (T, error) {
	var zero T
	e, err := n.get(id)
	if err != nil {
		return zero, err
	}
	t, ok := e.blk.(T)
	if !ok {
		return zero, fmt.Errorf("%w: block %d is not a %T", ErrWrongType, id, zero)
	}
	return t, nil
}

// SetBlockName attaches a free-form label to a block for external
// tooling.
func (n *Network) SetBlockName(id block.ID, name string) error {
	e, err := n.get(id)
	if err != nil {
		return err
	}
	e.name = name
	return nil
}

// GetBlockName returns a block's free-form label, empty if unset.
func (n *Network) GetBlockName(id block.ID) (string, error) {
	e, err := n.get(id)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// GetActiveBits returns the set bit indices of id's current output
// state (spec §6, the recording surface's get_active_bits()).
func (n *Network) GetActiveBits(id block.ID) ([]int, error) {
	e, err := n.get(id)
	if err != nil {
		return nil, err
	}
	out := e.blk.Output()
	if out == nil {
		return nil, nil
	}
	return out.State().GetActs(), nil
}

// NumStatelets returns the bit width of id's output (spec §6
// num_statelets()).
func (n *Network) NumStatelets(id block.ID) (int, error) {
	e, err := n.get(id)
	if err != nil {
		return 0, err
	}
	out := e.blk.Output()
	if out == nil {
		return 0, nil
	}
	return out.NumStatelets(), nil
}
