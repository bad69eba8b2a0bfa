// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"encoding/json"

	"github.com/jacobeverist/gnomics/block"
)

// BlockTrace is one block's readout for one executed cycle: its active
// bits, width, and whatever type-specific scalar readouts it exposes
// (spec §6 recording surface).
type BlockTrace struct {
	Name          string    `json:"name"`
	ActiveBits    []int     `json:"active_bits"`
	NumBits       int       `json:"num_bits"`
	CurrentValue  *float64  `json:"current_value,omitempty"`
	AnomalyScore  *float64  `json:"anomaly_score,omitempty"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// CycleTrace is one execute cycle's worth of per-block traces.
type CycleTrace struct {
	Cycle  int          `json:"cycle"`
	Blocks []BlockTrace `json:"blocks"`
}

// Recorder accumulates a trace across Execute calls for offline
// rendering by an external viewer/editor (spec §6). It is deliberately
// minimal: the trace schema itself is declared out of scope by the
// spec beyond the per-block readouts it names.
type Recorder struct {
	cycles []CycleTrace
	next   int
}

// EnableRecording attaches a fresh Recorder to the network; subsequent
// Execute calls accumulate a trace into it.
func (n *Network) EnableRecording() *Recorder {
	n.recorder = &Recorder{}
	return n.recorder
}

// DisableRecording detaches any active recorder.
func (n *Network) DisableRecording() { n.recorder = nil }

func (r *Recorder) record(blocks []BlockTrace) {
	r.cycles = append(r.cycles, CycleTrace{Cycle: r.next, Blocks: blocks})
	r.next++
}

// Cycles returns every recorded cycle trace, oldest first.
func (r *Recorder) Cycles() []CycleTrace { return r.cycles }

// ExportJSON serializes the accumulated trace for offline rendering.
func (r *Recorder) ExportJSON() ([]byte, error) {
	return json.Marshal(r.cycles)
}

// Optional type-specific readouts a block kind may implement; probed via
// type assertion when building a trace entry.
type hasFloatValue interface{ Value() float64 }
type hasIntValue interface{ Value() int }
type hasAnomalyScore interface{ GetAnomalyScore() float64 }
type hasProbabilities interface{ Probabilities() []float64 }

func traceOf(name string, blk block.Block) BlockTrace {
	t := BlockTrace{Name: name}
	if out := blk.Output(); out != nil {
		t.ActiveBits = out.State().GetActs()
		t.NumBits = out.NumStatelets()
	}
	switch v := blk.(type) {
	case hasFloatValue:
		f := v.Value()
		t.CurrentValue = &f
	case hasIntValue:
		f := float64(v.Value())
		t.CurrentValue = &f
	}
	if a, ok := blk.(hasAnomalyScore); ok {
		s := a.GetAnomalyScore()
		t.AnomalyScore = &s
	}
	if p, ok := blk.(hasProbabilities); ok {
		t.Probabilities = p.Probabilities()
	}
	return t
}
