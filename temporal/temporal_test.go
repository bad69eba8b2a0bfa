package temporal_test

import (
	"path/filepath"
	"testing"

	"github.com/jacobeverist/gnomics/temporal"
	"github.com/jacobeverist/gnomics/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSequenceLearner wires a DiscreteTransformer whose output width
// equals num_c*num_spc into a SequenceLearner, matching the "one bit per
// column" input-compatibility contract of spec §4.8.
func buildSequenceLearner(t *testing.T) (*transform.DiscreteTransformer, *temporal.SequenceLearner) {
	t.Helper()
	enc, err := transform.NewDiscreteTransformer(4, 2048, 2, 0)
	require.NoError(t, err)
	require.NoError(t, enc.Init())

	sl, err := temporal.NewSequenceLearner(temporal.Params{
		NumC: 512, NumSpc: 4,
		NumDps: 8, NumRpd: 32, DThresh: 10,
		PermThr: 20, PermInc: 2, PermDec: 1,
		NumT: 2,
	}, 0)
	require.NoError(t, err)
	sl.Input().AddChild(enc.Output(), 0)
	require.NoError(t, sl.Init())
	return enc, sl
}

func TestSequenceLearnerAnomalyBounds(t *testing.T) {
	enc, sl := buildSequenceLearner(t)
	seq := []int{0, 1, 2, 3}

	for pass := 0; pass < 40; pass++ {
		for _, v := range seq {
			require.NoError(t, enc.SetValue(v))
			enc.Feedforward(false)
			sl.Feedforward(true)
			a := sl.GetAnomalyScore()
			assert.GreaterOrEqual(t, a, 0.0)
			assert.LessOrEqual(t, a, 1.0)
		}
	}

	// In-sequence continuation: after ...,3 the trained transition is 3->0.
	require.NoError(t, enc.SetValue(0))
	enc.Feedforward(false)
	sl.Feedforward(false)
	inSeqAnomaly := sl.GetAnomalyScore()

	// Out-of-sequence: the trained transition after 0 is 0->1, not 0->2.
	require.NoError(t, enc.SetValue(2))
	enc.Feedforward(false)
	sl.Feedforward(false)
	outOfSeqAnomaly := sl.GetAnomalyScore()

	assert.Less(t, inSeqAnomaly, outOfSeqAnomaly)
	assert.Greater(t, outOfSeqAnomaly, 0.5)
}

func TestSequenceLearnerAnomalyZeroIffAllColumnsPredicted(t *testing.T) {
	enc, sl := buildSequenceLearner(t)
	// Before any input cycle, no columns are active: anomaly defined as
	// 0 when there are no input-active columns this cycle.
	sl.Feedforward(false)
	assert.Equal(t, 0.0, sl.GetAnomalyScore())

	// An untrained learner predicts nothing, so every column that the
	// first category activates is surprised: anomaly 1.
	require.NoError(t, enc.SetValue(0))
	enc.Feedforward(false)
	sl.Feedforward(false)
	assert.Equal(t, 1.0, sl.GetAnomalyScore())
}

func TestSequenceLearnerSaveLoadRoundTrip(t *testing.T) {
	enc, sl := buildSequenceLearner(t)
	seq := []int{0, 1, 2, 3}
	for pass := 0; pass < 10; pass++ {
		for _, v := range seq {
			require.NoError(t, enc.SetValue(v))
			enc.Feedforward(false)
			sl.Feedforward(true)
		}
	}

	path := filepath.Join(t.TempDir(), "sequence.save")
	require.NoError(t, sl.Save(path))

	enc2, sl2 := buildSequenceLearner(t)
	require.NoError(t, sl2.Load(path))
	assert.Equal(t, sl.Weights(), sl2.Weights())
	assert.Equal(t, sl.GetAnomalyScore(), sl2.GetAnomalyScore())

	for _, v := range []int{0, 1, 2} {
		require.NoError(t, enc.SetValue(v))
		enc.Feedforward(false)
		sl.Feedforward(true)

		require.NoError(t, enc2.SetValue(v))
		enc2.Feedforward(false)
		sl2.Feedforward(true)

		assert.Equal(t, sl.Output().State().GetActs(), sl2.Output().State().GetActs())
		assert.Equal(t, sl.GetAnomalyScore(), sl2.GetAnomalyScore())
	}
	assert.Equal(t, sl.Weights(), sl2.Weights())
}

func TestContextLearnerRequiresContextWiring(t *testing.T) {
	cl, err := temporal.NewContextLearner(temporal.Params{
		NumC: 16, NumSpc: 2, NumDps: 4, NumRpd: 8, DThresh: 2,
		PermThr: 20, PermInc: 2, PermDec: 1, NumT: 2,
	}, 1)
	require.NoError(t, err)
	enc, err := transform.NewDiscreteTransformer(2, 32, 2, 1)
	require.NoError(t, err)
	require.NoError(t, enc.Init())
	cl.Input().AddChild(enc.Output(), 0)
	assert.Error(t, cl.Init())
}
