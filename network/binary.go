// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// ExportConfigBinary is a shorter, lossless binary encoding of the same
// information as ExportConfig (spec §6 "Binary configuration"). The
// byte layout is implementation-defined (encoding/gob here); only
// fidelity with the JSON round-trip is contractual.
func (n *Network) ExportConfigBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(n.buildConfig()); err != nil {
		return nil, fmt.Errorf("network: binary export: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportConfigBinary reconstructs a Network from ExportConfigBinary's
// output, following the same block/connections/build sequence as
// ImportConfig.
func ImportConfigBinary(data []byte) (*Network, error) {
	var cfg netConfig
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return buildNetworkFromConfig(cfg)
}
