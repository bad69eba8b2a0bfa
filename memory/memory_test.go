package memory_test

import (
	"testing"

	"github.com/jacobeverist/gnomics/bitfield"
	"github.com/jacobeverist/gnomics/erand"
	"github.com/jacobeverist/gnomics/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullInitRequiresMatchingSize(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(1)
	err := m.Init(4, 10, 20, 20, 2, 1, 50, rng, false, 0, 0, false)
	assert.ErrorIs(t, err, memory.ErrInvalidParams)
}

func TestFullInitAndOverlap(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(1)
	require.NoError(t, m.Init(2, 10, 10, 20, 2, 1, 50, rng, false, 0, 0, false))

	x := bitfield.New(10)
	x.SetAll()
	assert.Equal(t, 10, m.Overlap(0, x))

	empty := bitfield.New(10)
	assert.Equal(t, 0, m.Overlap(0, empty))
}

func TestLearnSaturates(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(2)
	require.NoError(t, m.Init(1, 5, 5, 20, 50, 50, 98, rng, false, 0, 0, false))
	x := bitfield.New(5)
	x.SetAll()
	m.Learn(0, x)
	for _, p := range m.Perms(0) {
		assert.Equal(t, memory.MaxPerm, p)
	}
	empty := bitfield.New(5)
	m.Learn(0, empty)
	for _, p := range m.Perms(0) {
		assert.Equal(t, memory.MaxPerm-50, p)
	}
}

func TestPunishOnlyActiveReceptors(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(3)
	require.NoError(t, m.Init(1, 4, 4, 20, 2, 10, 50, rng, false, 0, 0, false))
	x := bitfield.New(4)
	x.SetActs([]int{0, 1})
	before := append([]int(nil), m.Perms(0)...)
	m.Punish(0, x)
	after := m.Perms(0)
	for r := range before {
		if x.GetBit(m.Addrs(0)[r]) {
			assert.Less(t, after[r], before[r])
		} else {
			assert.Equal(t, before[r], after[r])
		}
	}
}

func TestConnMaskOrderingBug(t *testing.T) {
	// Setting the conns flag before calling UpdateConns (the order the
	// spec calls out) must yield a correctly populated mask, not an
	// all-zero one.
	var m memory.Memory
	rng := erand.NewSysRand(4)
	require.NoError(t, m.Init(1, 8, 8, 20, 2, 1, 50, rng, false, 0, 0, true))
	x := bitfield.New(8)
	x.SetAll()
	assert.Equal(t, m.Overlap(0, x), m.OverlapConn(0, x))
	assert.Greater(t, m.OverlapConn(0, x), 0)
}

func TestPooledInitConnectFraction(t *testing.T) {
	var m memory.Memory
	rng := erand.NewSysRand(5)
	require.NoError(t, m.Init(1, 10, 100, 20, 2, 1, 50, rng, true, 0.5, 0.5, false))
	assert.Equal(t, 5, m.NumConnected(0))
}

func TestGrowResetsAddresses(t *testing.T) {
	var m2 memory.Memory
	rng := erand.NewSysRand(6)
	require.NoError(t, m2.Init(1, 4, 20, 20, 2, 1, 50, rng, true, 0.5, 0.5, false))
	m2.Grow(0, []int{1, 2, 3, 4}, 21)
	assert.Equal(t, []int{1, 2, 3, 4}, m2.Addrs(0))
	for _, p := range m2.Perms(0) {
		assert.Equal(t, 21, p)
	}
}
