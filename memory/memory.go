// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory implements BlockMemory: the D-dendrite by R-receptor
// synaptic array shared by every learning block kind. Receptors carry
// an (address, permanence) pair into an input BitField; permanences are
// small saturating integers, never floats, per spec §1 Non-goals.
//
// This is the Go-idiom generalization of the teacher's per-projection
// Synapse arrays (leabra/leabra/prjn.go: Prjn.Syns []Synapse indexed
// parallel to a receiving unit's SConIdx), adapted from one synapse per
// (sending unit, receiving unit) pair to one receptor per (dendrite,
// receptor-slot) pair addressing an arbitrary input bit.
package memory

import (
	"errors"
	"fmt"

	"github.com/jacobeverist/gnomics/bitfield"
	"github.com/jacobeverist/gnomics/erand"
)

// Permanence bounds, fixed by the spec (small integers, never floats).
const (
	MinPerm = 0
	MaxPerm = 99
)

// Errors returned by Init when parameters are out of the contract's
// declared domain (spec §4.4 "init is the only fallible step").
var (
	ErrInvalidParams = errors.New("memory: invalid parameters")
)

// Memory is D dendrites x R receptors each, with integer permanences
// and an optional precomputed connectivity mask per dendrite.
type Memory struct {
	numD     int
	numRPD   int
	numI     int
	permThr  int
	permInc  int
	permDec  int
	rAddrs   [][]int
	rPerms   [][]int
	dConns   []*bitfield.BitField // nil entry => no mask maintained for that dendrite
	connsSet bool
}

// NumDendrites returns D.
func (m *Memory) NumDendrites() int { return m.numD }

// NumReceptors returns R (receptors per dendrite).
func (m *Memory) NumReceptors() int { return m.numRPD }

// clamp saturates a permanence update into [MinPerm, MaxPerm].
func clamp(v int) int {
	if v < MinPerm {
		return MinPerm
	}
	if v > MaxPerm {
		return MaxPerm
	}
	return v
}

// Init allocates receptor arrays and initializes addresses/permanences
// in full or pooled mode (spec §3, §4.4).
//
// Full mode (pooled=false) requires numRPD == numI: every dendrite gets
// a random permutation of all input addresses, every receptor starts at
// initPerm.
//
// Pooled mode draws, per dendrite, a random pool of numRPD addresses
// from [0, int(numI*pctPool)) without replacement, that range widened to
// numRPD addresses when it is smaller (numRPD may not exceed numI); a
// pctConn fraction of those start connected (at initPerm, or permThr if
// initPerm would not itself be connected), the rest below (permThr-1,
// floored at MinPerm).
//
// If withConns is true, the connectivity mask flag is set before
// UpdateConns is called for each dendrite -- reversing that order is
// the documented bug class the spec warns about (§4.4).
func (m *Memory) Init(numD, numRPD, numI, permThr, permInc, permDec, initPerm int, rng erand.Rand, pooled bool, pctPool, pctConn float64, withConns bool) error {
	if numD <= 0 || numRPD <= 0 || numI <= 0 {
		return fmt.Errorf("%w: numD=%d numRPD=%d numI=%d must be positive", ErrInvalidParams, numD, numRPD, numI)
	}
	if permThr < MinPerm || permThr > MaxPerm {
		return fmt.Errorf("%w: permThr=%d out of [%d,%d]", ErrInvalidParams, permThr, MinPerm, MaxPerm)
	}
	if !pooled && numRPD != numI {
		return fmt.Errorf("%w: full init requires numRPD(%d) == numI(%d)", ErrInvalidParams, numRPD, numI)
	}
	if pooled && numRPD > numI {
		return fmt.Errorf("%w: pooled init needs numRPD(%d) <= numI(%d)", ErrInvalidParams, numRPD, numI)
	}

	m.numD = numD
	m.numRPD = numRPD
	m.numI = numI
	m.permThr = permThr
	m.permInc = permInc
	m.permDec = permDec
	m.rAddrs = make([][]int, numD)
	m.rPerms = make([][]int, numD)

	if pooled {
		m.initPooled(numRPD, numI, permThr, initPerm, rng, pctPool, pctConn)
	} else {
		m.initFull(numRPD, numI, initPerm, rng)
	}

	if withConns {
		m.connsSet = true
		m.dConns = make([]*bitfield.BitField, numD)
		for d := 0; d < numD; d++ {
			m.dConns[d] = bitfield.New(numI)
			m.UpdateConns(d)
		}
	}
	return nil
}

// InitShape allocates receptor arrays and (optionally) connectivity
// masks to the given dimensions without drawing any randomness or
// filling in addresses/permanences -- the Load counterpart to Init,
// used right before Restore overwrites every dendrite's contents with
// saved values. Passing withConns true pre-allocates dConns so the
// first SetAddrsPerms call during Restore rebuilds the connectivity
// masks from the restored permanences (spec §4.9, §6).
func (m *Memory) InitShape(numD, numRPD, numI, permThr, permInc, permDec int, withConns bool) error {
	if numD <= 0 || numRPD <= 0 || numI <= 0 {
		return fmt.Errorf("%w: numD=%d numRPD=%d numI=%d must be positive", ErrInvalidParams, numD, numRPD, numI)
	}
	if permThr < MinPerm || permThr > MaxPerm {
		return fmt.Errorf("%w: permThr=%d out of [%d,%d]", ErrInvalidParams, permThr, MinPerm, MaxPerm)
	}
	m.numD = numD
	m.numRPD = numRPD
	m.numI = numI
	m.permThr = permThr
	m.permInc = permInc
	m.permDec = permDec
	m.rAddrs = make([][]int, numD)
	m.rPerms = make([][]int, numD)
	for d := 0; d < numD; d++ {
		m.rAddrs[d] = make([]int, numRPD)
		m.rPerms[d] = make([]int, numRPD)
	}
	if withConns {
		m.connsSet = true
		m.dConns = make([]*bitfield.BitField, numD)
		for d := 0; d < numD; d++ {
			m.dConns[d] = bitfield.New(numI)
		}
	}
	return nil
}

func (m *Memory) initFull(numRPD, numI, initPerm int, rng erand.Rand) {
	for d := 0; d < m.numD; d++ {
		addrs := make([]int, numI)
		for i := range addrs {
			addrs[i] = i
		}
		erand.PermuteInts(rng, addrs)
		perms := make([]int, numRPD)
		for r := range perms {
			perms[r] = clamp(initPerm)
		}
		m.rAddrs[d] = addrs
		m.rPerms[d] = perms
	}
}

func (m *Memory) initPooled(numRPD, numI, permThr, initPerm int, rng erand.Rand, pctPool, pctConn float64) {
	poolSize := int(pctPool * float64(numI))
	if poolSize < numRPD {
		poolSize = numRPD
	}
	if poolSize > numI {
		poolSize = numI
	}
	numConn := int(pctConn*float64(numRPD) + 0.5)
	connectedPerm := initPerm
	if connectedPerm < permThr {
		connectedPerm = permThr
	}
	unconnectedPerm := permThr - 1
	if unconnectedPerm < MinPerm {
		unconnectedPerm = MinPerm
	}

	for d := 0; d < m.numD; d++ {
		pool := make([]int, poolSize)
		for i := range pool {
			pool[i] = i
		}
		erand.PermuteInts(rng, pool)
		addrs := append([]int(nil), pool[:numRPD]...)
		erand.PermuteInts(rng, addrs)

		perms := make([]int, numRPD)
		for r := 0; r < numRPD; r++ {
			if r < numConn {
				perms[r] = clamp(connectedPerm)
			} else {
				perms[r] = clamp(unconnectedPerm)
			}
		}
		m.rAddrs[d] = addrs
		m.rPerms[d] = perms
	}
}

func (m *Memory) checkDendrite(d int) {
	if d < 0 || d >= m.numD {
		panic(fmt.Sprintf("memory: dendrite index %d out of range [0,%d)", d, m.numD))
	}
}

// Addrs returns dendrite d's receptor addresses, for save/load.
func (m *Memory) Addrs(d int) []int { m.checkDendrite(d); return m.rAddrs[d] }

// Perms returns dendrite d's receptor permanences, for save/load.
func (m *Memory) Perms(d int) []int { m.checkDendrite(d); return m.rPerms[d] }

// SetAddrsPerms overwrites dendrite d's receptor addresses and
// permanences wholesale -- used by Load to restore saved state.
func (m *Memory) SetAddrsPerms(d int, addrs, perms []int) {
	m.checkDendrite(d)
	m.rAddrs[d] = append([]int(nil), addrs...)
	m.rPerms[d] = append([]int(nil), perms...)
	if m.connsSet {
		m.UpdateConns(d)
	}
}

// Overlap counts dendrite d's receptors that are both connected
// (perm >= permThr) and whose addressed bit is set in x.
func (m *Memory) Overlap(d int, x *bitfield.BitField) int {
	m.checkDendrite(d)
	n := 0
	addrs, perms := m.rAddrs[d], m.rPerms[d]
	for r, addr := range addrs {
		if perms[r] >= m.permThr && x.GetBit(addr) {
			n++
		}
	}
	return n
}

// OverlapConn is Overlap computed via the precomputed connectivity mask
// (popcount of dConns[d] AND x) rather than per-receptor scanning.
// Falls back to Overlap when no mask was requested at Init time.
func (m *Memory) OverlapConn(d int, x *bitfield.BitField) int {
	m.checkDendrite(d)
	if m.dConns == nil || m.dConns[d] == nil {
		return m.Overlap(d, x)
	}
	return m.dConns[d].NumSimilar(x)
}

// Learn applies the Hebbian update to dendrite d given active input x:
// receptors addressing a set bit in x get permInc (saturating at 99),
// all others get -permDec (saturating at 0). Updates the connectivity
// mask afterward if one is maintained for d.
func (m *Memory) Learn(d int, x *bitfield.BitField) {
	m.checkDendrite(d)
	addrs, perms := m.rAddrs[d], m.rPerms[d]
	for r, addr := range addrs {
		if x.GetBit(addr) {
			perms[r] = clamp(perms[r] + m.permInc)
		} else {
			perms[r] = clamp(perms[r] - m.permDec)
		}
	}
	if m.connsSet {
		m.UpdateConns(d)
	}
}

// Punish weakens only the receptors of d whose address is active in x,
// by permDec (saturating at 0). Used by temporal learners to weaken
// dendrites that fired but should not have.
func (m *Memory) Punish(d int, x *bitfield.BitField) {
	m.checkDendrite(d)
	addrs, perms := m.rAddrs[d], m.rPerms[d]
	for r, addr := range addrs {
		if x.GetBit(addr) {
			perms[r] = clamp(perms[r] - m.permDec)
		}
	}
	if m.connsSet {
		m.UpdateConns(d)
	}
}

// UpdateConns recomputes dConns[d] as the set of addresses whose
// receptor permanence is >= permThr. No-op if no mask is maintained.
func (m *Memory) UpdateConns(d int) {
	m.checkDendrite(d)
	if m.dConns == nil || m.dConns[d] == nil {
		return
	}
	addrs, perms := m.rAddrs[d], m.rPerms[d]
	set := make([]int, 0, len(addrs))
	for r, addr := range addrs {
		if perms[r] >= m.permThr {
			set = append(set, addr)
		}
	}
	m.dConns[d].SetActs(set)
}

// NumConnected returns the count of dendrite d's receptors currently at
// or above threshold -- used by temporal learners choosing which
// dendrite to grow (fewest connected receptors wins).
func (m *Memory) NumConnected(d int) int {
	m.checkDendrite(d)
	n := 0
	for _, p := range m.rPerms[d] {
		if p >= m.permThr {
			n++
		}
	}
	return n
}

// Grow overwrites dendrite d's receptor addresses with the given list
// (typically the currently-active bits of a context pattern) and resets
// their permanences to initPerm, used by temporal learners when a new
// dendrite must be recruited to represent a novel context (spec §4.8).
// If len(addrs) < numRPD, the remaining receptor slots keep their prior
// address but are reset to an unconnected permanence so they do not
// spuriously contribute overlap.
func (m *Memory) Grow(d int, addrs []int, initPerm int) {
	m.checkDendrite(d)
	existing := m.rAddrs[d]
	perms := m.rPerms[d]
	n := len(addrs)
	if n > len(existing) {
		n = len(existing)
	}
	for r := 0; r < len(existing); r++ {
		if r < n {
			existing[r] = addrs[r]
			perms[r] = clamp(initPerm)
		} else {
			perms[r] = clamp(m.permThr - 1)
		}
	}
	if m.connsSet {
		m.UpdateConns(d)
	}
}

// MemoryUsage returns a conservative byte estimate of the receptor
// arrays and connectivity masks, for tooling only.
func (m *Memory) MemoryUsage() int {
	n := 0
	for d := 0; d < m.numD; d++ {
		n += len(m.rAddrs[d])*8 + len(m.rPerms[d])*8
	}
	if m.dConns != nil {
		for _, c := range m.dConns {
			if c != nil {
				n += c.NumWords() * 4
			}
		}
	}
	return n
}
