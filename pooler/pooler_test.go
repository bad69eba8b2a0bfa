package pooler_test

import (
	"path/filepath"
	"testing"

	"github.com/jacobeverist/gnomics/pooler"
	"github.com/jacobeverist/gnomics/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPooler(t *testing.T) (*transform.ScalarTransformer, *pooler.PatternPooler) {
	t.Helper()
	enc, err := transform.NewScalarTransformer(0, 1, 1024, 128, 2, 1)
	require.NoError(t, err)
	require.NoError(t, enc.Init())

	pp, err := pooler.New(pooler.Params{
		NumS: 1024, NumAS: 40,
		PermThr: 20, PermInc: 2, PermDec: 1,
		PctPool: 0.8, PctConn: 0.5, PctLearn: 0.3,
		NumT: 2,
	}, 2)
	require.NoError(t, err)
	pp.Input().AddChild(enc.Output(), 0)
	require.NoError(t, pp.Init())
	return enc, pp
}

func TestPatternPoolerS3WinnersStable(t *testing.T) {
	enc, pp := buildPooler(t)
	enc.SetValue(0.5)

	for i := 0; i < 500; i++ {
		enc.Feedforward(false)
		pp.Feedforward(true)
	}

	enc.SetValue(0.5)
	enc.Feedforward(false)
	pp.Feedforward(false)
	winners1 := append([]int(nil), pp.Output().State().GetActs()...)
	assert.Len(t, winners1, 40)

	enc.SetValue(0.5)
	enc.Feedforward(false)
	pp.Feedforward(false)
	winners2 := pp.Output().State().GetActs()
	assert.Equal(t, winners1, winners2)
}

func TestPatternPoolerSaveLoadRoundTrip(t *testing.T) {
	enc, pp := buildPooler(t)
	enc.SetValue(0.5)
	for i := 0; i < 50; i++ {
		enc.Feedforward(false)
		pp.Feedforward(true)
	}

	path := filepath.Join(t.TempDir(), "pooler.save")
	require.NoError(t, pp.Save(path))

	enc2, pp2 := buildPooler(t)
	require.NoError(t, pp2.Load(path))
	assert.Equal(t, pp.Weights(), pp2.Weights())

	// Continuing both past the round trip, including further learning,
	// must produce bit-identical outputs (spec §8 property 11).
	enc.SetValue(0.7)
	enc.Feedforward(false)
	pp.Feedforward(true)

	enc2.SetValue(0.7)
	enc2.Feedforward(false)
	pp2.Feedforward(true)

	assert.Equal(t, pp.Output().State().GetActs(), pp2.Output().State().GetActs())
	assert.Equal(t, pp.Weights(), pp2.Weights())
}

func TestPatternPoolerSkipsWhenInputUnchanged(t *testing.T) {
	enc, pp := buildPooler(t)
	enc.SetValue(0.2)
	enc.Feedforward(false)
	pp.Feedforward(false)
	v0 := pp.Output().State().Version()

	enc.SetValue(0.2)
	enc.Feedforward(false)
	pp.Feedforward(false)
	assert.Equal(t, v0, pp.Output().State().Version())
}
