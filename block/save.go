// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// SaveFormatVersion is bumped whenever a block kind's save payload shape
// changes incompatibly. WriteSave stamps every file with it; ReadSave
// rejects anything else with ErrVersionMismatch rather than attempting a
// partial decode (spec §4.9, §6: "fails clearly on an unknown version").
const SaveFormatVersion = 1

// saveEnvelope is the on-disk wrapper every block kind's Save writes:
// a version tag, the writing kind's name (so Load can refuse to restore
// a PatternPooler's file into a PatternClassifier), and the gob-encoded
// block-specific payload.
type saveEnvelope struct {
	Version int
	Kind    string
	Payload []byte
}

// WriteSave gob-encodes payload, wraps it in a versioned envelope tagged
// with kind, and writes it to path. Used by every concrete block kind's
// Save method.
func WriteSave(path, kind string, payload interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("block: encoding save payload for %s: %w", kind, err)
	}
	env := saveEnvelope{Version: SaveFormatVersion, Kind: kind, Payload: buf.Bytes()}
	var outer bytes.Buffer
	if err := gob.NewEncoder(&outer).Encode(env); err != nil {
		return fmt.Errorf("block: encoding save envelope for %s: %w", kind, err)
	}
	return os.WriteFile(path, outer.Bytes(), 0o644)
}

// ReadSave reads the versioned envelope at path, checks its version and
// kind tag against wantKind, and gob-decodes its payload into dst (which
// must be a pointer to the kind-specific payload struct the caller's
// Save wrote).
func ReadSave(path, wantKind string, dst interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("block: reading save file %s: %w", path, err)
	}
	var env saveEnvelope
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return fmt.Errorf("block: decoding save envelope %s: %w", path, err)
	}
	if env.Version != SaveFormatVersion {
		return fmt.Errorf("%w: %s has version %d, this build writes %d", ErrVersionMismatch, path, env.Version, SaveFormatVersion)
	}
	if env.Kind != wantKind {
		return fmt.Errorf("%w: %s was saved by %s, not %s", ErrWrongKind, path, env.Kind, wantKind)
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(dst); err != nil {
		return fmt.Errorf("block: decoding save payload %s: %w", path, err)
	}
	return nil
}
