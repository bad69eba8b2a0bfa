// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"encoding/json"
	"fmt"
	"io"

	"cogentcore.org/core/base/indent"
)

// DendriteWeights is one dendrite's receptor addresses and permanences,
// the unit of save/load for a Memory (spec §4.4 Addrs/Perms). This is
// the SDR analogue of the teacher's weights.Recv -- one recv unit's
// sending indices (Si) and weights (Wt) -- generalized from float
// synaptic weights to integer receptor permanences.
type DendriteWeights struct {
	Addrs []int `json:"addrs"`
	Perms []int `json:"perms"`
}

// Weights is a whole Memory's receptor state, keyed by dendrite index,
// the SDR analogue of the teacher's weights.Layer/weights.Prjn nesting.
// Unlike the teacher's format there is no per-layer/per-projection
// naming: a Memory belongs to exactly one block, so the nesting
// collapses to a flat per-dendrite list.
type Weights struct {
	NumD      int               `json:"num_d"`
	NumRPD    int               `json:"num_rpd"`
	NumI      int               `json:"num_i"`
	Dendrites []DendriteWeights `json:"dendrites"`
}

// Snapshot captures m's current receptor addresses and permanences,
// independent of the topology/params captured by a network config
// export (spec §6) -- this is learned state, not configuration.
func (m *Memory) Snapshot() Weights {
	w := Weights{NumD: m.numD, NumRPD: m.numRPD, NumI: m.numI, Dendrites: make([]DendriteWeights, m.numD)}
	for d := 0; d < m.numD; d++ {
		w.Dendrites[d] = DendriteWeights{
			Addrs: append([]int(nil), m.rAddrs[d]...),
			Perms: append([]int(nil), m.rPerms[d]...),
		}
	}
	return w
}

// Restore overwrites m's receptor addresses and permanences from a
// snapshot previously produced by Snapshot on a Memory of identical
// shape. m must already be Init'd (dimensions are checked, not
// allocated here) per the same "init first" contract as the rest of
// this package.
func (m *Memory) Restore(w Weights) error {
	if w.NumD != m.numD || w.NumRPD != m.numRPD || w.NumI != m.numI {
		return fmt.Errorf("%w: snapshot shape (%d,%d,%d) does not match memory shape (%d,%d,%d)",
			ErrInvalidParams, w.NumD, w.NumRPD, w.NumI, m.numD, m.numRPD, m.numI)
	}
	if len(w.Dendrites) != m.numD {
		return fmt.Errorf("%w: snapshot has %d dendrites, memory has %d", ErrInvalidParams, len(w.Dendrites), m.numD)
	}
	for d, dw := range w.Dendrites {
		if len(dw.Addrs) != m.numRPD || len(dw.Perms) != m.numRPD {
			return fmt.Errorf("%w: dendrite %d has wrong receptor count", ErrInvalidParams, d)
		}
		m.SetAddrsPerms(d, dw.Addrs, dw.Perms)
	}
	return nil
}

// WriteJSON serializes a Snapshot to out, mirroring the teacher's
// NetworkBase.WriteWeightsJSON (emer/weights.go): indentation is built
// in by hand with indent.TabBytes rather than routed through
// json.Encoder.SetIndent, so the per-dendrite entries can be written
// incrementally instead of buffering the whole Weights value at once.
func (w Weights) WriteJSON(out io.Writer) error {
	depth := 0
	out.Write(indent.TabBytes(depth))
	out.Write([]byte("{\n"))
	depth++
	out.Write(indent.TabBytes(depth))
	fmt.Fprintf(out, "\"num_d\": %d,\n", w.NumD)
	out.Write(indent.TabBytes(depth))
	fmt.Fprintf(out, "\"num_rpd\": %d,\n", w.NumRPD)
	out.Write(indent.TabBytes(depth))
	fmt.Fprintf(out, "\"num_i\": %d,\n", w.NumI)
	out.Write(indent.TabBytes(depth))
	if len(w.Dendrites) == 0 {
		out.Write([]byte("\"dendrites\": null\n"))
	} else {
		out.Write([]byte("\"dendrites\": [\n"))
		depth++
		for i, d := range w.Dendrites {
			out.Write(indent.TabBytes(depth))
			addrs, err := json.Marshal(d.Addrs)
			if err != nil {
				return fmt.Errorf("memory: encode dendrite %d addrs: %w", i, err)
			}
			perms, err := json.Marshal(d.Perms)
			if err != nil {
				return fmt.Errorf("memory: encode dendrite %d perms: %w", i, err)
			}
			fmt.Fprintf(out, "{\"addrs\": %s, \"perms\": %s}", addrs, perms)
			if i == len(w.Dendrites)-1 {
				out.Write([]byte("\n"))
			} else {
				out.Write([]byte(",\n"))
			}
		}
		depth--
		out.Write(indent.TabBytes(depth))
		out.Write([]byte("]\n"))
	}
	depth--
	out.Write(indent.TabBytes(depth))
	_, err := out.Write([]byte("}\n"))
	return err
}

// ReadWeightsJSON decodes a Weights value written by WriteJSON.
func ReadWeightsJSON(r io.Reader) (Weights, error) {
	var w Weights
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return Weights{}, fmt.Errorf("memory: decode weights: %w", err)
	}
	return w, nil
}
