// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jacobeverist/gnomics/block"
	"github.com/jacobeverist/gnomics/memory"
)

func sortIDs(ids []block.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// blockWeights carries whichever flavor of memory.Weights a block kind
// exposes: a single Memory for PatternPooler/PatternClassifier, or one
// per statelet for the temporal learners.
type blockWeights struct {
	Name    string            `json:"name"`
	Single  *memory.Weights   `json:"single,omitempty"`
	PerStatelet []memory.Weights `json:"per_statelet,omitempty"`
}

type hasSingleWeights interface {
	Weights() memory.Weights
	SetWeights(memory.Weights) error
}

type hasStateletWeights interface {
	Weights() []memory.Weights
	SetWeights([]memory.Weights) error
}

// ExportWeights snapshots the learned state of every block in id order
// that carries one (PatternPooler, PatternClassifier, ContextLearner,
// SequenceLearner). This is deliberately separate from ExportConfig:
// the teacher keeps topology (params.Sheet selectors) and learned
// synapses (weights.Network) in two independent files, and this module
// preserves that split (spec §6 names only a topology/params schema).
func (n *Network) ExportWeights() ([]byte, error) {
	ids := make([]block.ID, 0, len(n.blocks))
	for id := range n.blocks {
		ids = append(ids, id)
	}
	sortIDs(ids)

	out := make([]blockWeights, 0, len(ids))
	for _, id := range ids {
		e := n.blocks[id]
		switch b := e.blk.(type) {
		case hasStateletWeights:
			w := b.Weights()
			out = append(out, blockWeights{Name: e.name, PerStatelet: w})
		case hasSingleWeights:
			w := b.Weights()
			out = append(out, blockWeights{Name: e.name, Single: &w})
		}
	}
	return json.Marshal(out)
}

// ImportWeights restores learned state exported by ExportWeights into
// this network's current blocks, matched by position (ascending
// BlockId), mirroring ExportWeights' own ordering. The network's block
// kinds and shapes must already match what produced data -- typically
// this is called right after ImportConfig and each learning block's
// Init.
func (n *Network) ImportWeights(data []byte) error {
	var in []blockWeights
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	ids := make([]block.ID, 0, len(n.blocks))
	for id := range n.blocks {
		ids = append(ids, id)
	}
	sortIDs(ids)

	i := 0
	for _, id := range ids {
		e := n.blocks[id]
		switch b := e.blk.(type) {
		case hasStateletWeights:
			if i >= len(in) {
				return fmt.Errorf("%w: weights payload shorter than weighted block count", ErrMalformedInput)
			}
			if err := b.SetWeights(in[i].PerStatelet); err != nil {
				return err
			}
			i++
		case hasSingleWeights:
			if i >= len(in) || in[i].Single == nil {
				return fmt.Errorf("%w: weights payload shorter than weighted block count", ErrMalformedInput)
			}
			if err := b.SetWeights(*in[i].Single); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}
