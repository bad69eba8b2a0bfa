package erand_test

import (
	"testing"

	"github.com/jacobeverist/gnomics/erand"
	"github.com/stretchr/testify/assert"
)

func TestSysRandDeterministic(t *testing.T) {
	a := erand.NewSysRand(42)
	b := erand.NewSysRand(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeedReset(t *testing.T) {
	r := erand.NewSysRand(1)
	first := make([]int, 5)
	for i := range first {
		first[i] = r.Intn(100)
	}
	r.Seed(1)
	for i := range first {
		assert.Equal(t, first[i], r.Intn(100))
	}
}

func TestPermuteIntsIsPermutation(t *testing.T) {
	rng := erand.NewSysRand(7)
	ins := []int{0, 1, 2, 3, 4, 5, 6, 7}
	orig := append([]int(nil), ins...)
	erand.PermuteInts(rng, ins)
	assert.ElementsMatch(t, orig, ins)
}

func TestPChoose64(t *testing.T) {
	rng := erand.NewSysRand(3)
	idx := erand.PChoose64(rng, []float64{0, 1, 0})
	assert.Equal(t, 1, idx)
}
