package bitfield_test

import (
	"testing"

	"github.com/jacobeverist/gnomics/bitfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsEmpty(t *testing.T) {
	b := bitfield.New(100)
	assert.Equal(t, 100, b.NumBits())
	assert.Equal(t, 0, b.NumSet())
	assert.Equal(t, 100, b.NumCleared())
}

func TestVersionMonotonic(t *testing.T) {
	b := bitfield.New(64)
	v0 := b.Version()
	b.SetBit(3)
	v1 := b.Version()
	assert.Greater(t, v1, v0)
	// non-mutating op: version unchanged
	_ = b.GetBit(3)
	assert.Equal(t, v1, b.Version())
	b.ClearBit(3)
	assert.Greater(t, b.Version(), v1)
}

func TestSetClearToggleAssign(t *testing.T) {
	b := bitfield.New(10)
	b.SetBit(2)
	assert.True(t, b.GetBit(2))
	b.ClearBit(2)
	assert.False(t, b.GetBit(2))
	b.ToggleBit(5)
	assert.True(t, b.GetBit(5))
	b.ToggleBit(5)
	assert.False(t, b.GetBit(5))
	b.AssignBit(7, true)
	assert.True(t, b.GetBit(7))
	b.AssignBit(7, false)
	assert.False(t, b.GetBit(7))
}

func TestRangeOps(t *testing.T) {
	b := bitfield.New(20)
	b.SetRange(4, 6)
	assert.Equal(t, 6, b.NumSet())
	for i := 4; i < 10; i++ {
		assert.True(t, b.GetBit(i))
	}
	b.ClearRange(4, 6)
	assert.Equal(t, 0, b.NumSet())
	b.ToggleRange(0, 20)
	assert.Equal(t, 20, b.NumSet())
}

func TestSetActsGetActs(t *testing.T) {
	b := bitfield.New(16)
	b.SetActs([]int{1, 3, 5, 100, -1})
	assert.Equal(t, []int{1, 3, 5}, b.GetActs())
}

func TestNumSimilarAndEquality(t *testing.T) {
	a := bitfield.New(40)
	b := bitfield.New(40)
	a.SetActs([]int{1, 2, 3, 39})
	b.SetActs([]int{2, 3, 4, 39})
	assert.Equal(t, 3, a.NumSimilar(b))
	assert.False(t, a.Equal(b))
	c := bitfield.New(40)
	c.SetActs([]int{1, 2, 3, 39})
	assert.True(t, a.Equal(c))
}

func TestFindNextSetBitWraps(t *testing.T) {
	b := bitfield.New(8)
	b.SetBit(2)
	i, ok := b.FindNextSetBit(5)
	require.True(t, ok)
	assert.Equal(t, 2, i)

	empty := bitfield.New(8)
	_, ok = empty.FindNextSetBit(0)
	assert.False(t, ok)
}

func TestBitwiseOps(t *testing.T) {
	a := bitfield.New(8)
	b := bitfield.New(8)
	a.SetActs([]int{0, 1, 2})
	b.SetActs([]int{1, 2, 3})
	assert.Equal(t, []int{1, 2}, bitfield.And(a, b).GetActs())
	assert.Equal(t, []int{0, 1, 2, 3}, bitfield.Or(a, b).GetActs())
	assert.Equal(t, []int{0, 3}, bitfield.Xor(a, b).GetActs())
	notA := bitfield.Not(a)
	assert.Equal(t, 5, notA.NumSet())
}

func TestCloneResetsVersion(t *testing.T) {
	a := bitfield.New(8)
	a.SetBit(0)
	a.SetBit(1)
	clone := a.Clone()
	assert.Equal(t, uint64(0), clone.Version())
	assert.True(t, a.Equal(clone))
}

type seqRand struct{ vals []int }

func (s *seqRand) Intn(n int) int {
	v := s.vals[0] % n
	s.vals = s.vals[1:]
	return v
}

func TestRandomSetNumExactCount(t *testing.T) {
	b := bitfield.New(32)
	rng := &seqRand{vals: make([]int, 32)}
	b.RandomSetNum(rng, 10)
	assert.Equal(t, 10, b.NumSet())
}

func TestWordsMutBumpsVersion(t *testing.T) {
	b := bitfield.New(32)
	v0 := b.Version()
	w := b.WordsMut()
	w[0] = 1
	assert.Greater(t, b.Version(), v0)
	assert.True(t, b.GetBit(0))
}

func TestCopyWords(t *testing.T) {
	src := bitfield.New(64)
	src.SetActs([]int{0, 33})
	dst := bitfield.New(64)
	bitfield.CopyWords(dst.WordsMut(), src.Words(), 0, 0, 2)
	assert.True(t, dst.Equal(src))
}
