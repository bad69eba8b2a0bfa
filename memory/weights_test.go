package memory_test

import (
	"bytes"
	"testing"

	"github.com/jacobeverist/gnomics/erand"
	"github.com/jacobeverist/gnomics/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsSnapshotRestoreRoundTrip(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(5)
	require.NoError(t, m.Init(3, 6, 12, 20, 2, 1, 50, rng, false, 0, 0, false))

	snap := m.Snapshot()

	var m2 memory.Memory
	rng2 := erand.NewSysRand(99) // deliberately different seed/state
	require.NoError(t, m2.Init(3, 6, 12, 20, 2, 1, 50, rng2, false, 0, 0, false))
	require.NoError(t, m2.Restore(snap))

	for d := 0; d < 3; d++ {
		assert.Equal(t, m.Addrs(d), m2.Addrs(d))
		assert.Equal(t, m.Perms(d), m2.Perms(d))
	}
}

func TestWeightsJSONRoundTrip(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(6)
	require.NoError(t, m.Init(2, 4, 8, 20, 2, 1, 50, rng, false, 0, 0, false))

	var buf bytes.Buffer
	require.NoError(t, m.Snapshot().WriteJSON(&buf))

	decoded, err := memory.ReadWeightsJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Snapshot(), decoded)
}

func TestWeightsRestoreRejectsShapeMismatch(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(7)
	require.NoError(t, m.Init(2, 4, 8, 20, 2, 1, 50, rng, false, 0, 0, false))
	snap := m.Snapshot()

	var m2 memory.Memory
	rng2 := erand.NewSysRand(8)
	require.NoError(t, m2.Init(3, 4, 8, 20, 2, 1, 50, rng2, false, 0, 0, false))
	err := m2.Restore(snap)
	assert.ErrorIs(t, err, memory.ErrInvalidParams)
}
