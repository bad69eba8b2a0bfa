package classifier_test

import (
	"testing"

	"github.com/jacobeverist/gnomics/classifier"
	"github.com/stretchr/testify/assert"
)

func TestConfusionMatrixPerfectClassifier(t *testing.T) {
	cm := classifier.NewConfusionMatrix(3)
	for class := 0; class < 3; class++ {
		for i := 0; i < 10; i++ {
			cm.Incr(class, class)
		}
	}
	cm.Probs()
	cm.Score()

	for class := 0; class < 3; class++ {
		assert.InDelta(t, 1.0, cm.Prob(class, class), 1e-9)
		p, r, f1 := cm.ClassScore(class)
		assert.Equal(t, 1.0, p)
		assert.Equal(t, 1.0, r)
		assert.Equal(t, 1.0, f1)
	}
	assert.InDelta(t, 1.0, cm.MicroF1(), 1e-9)
	assert.InDelta(t, 1.0, cm.MacroF1(), 1e-9)
	assert.InDelta(t, 1.0, cm.WeightedF1(), 1e-9)
}

func TestConfusionMatrixAllConfused(t *testing.T) {
	cm := classifier.NewConfusionMatrix(2)
	for i := 0; i < 5; i++ {
		cm.Incr(0, 1)
		cm.Incr(1, 0)
	}
	cm.Probs()
	cm.Score()

	assert.InDelta(t, 1.0, cm.Prob(0, 1), 1e-9)
	assert.InDelta(t, 1.0, cm.Prob(1, 0), 1e-9)
	for class := 0; class < 2; class++ {
		p, r, f1 := cm.ClassScore(class)
		assert.Equal(t, 0.0, p)
		assert.Equal(t, 0.0, r)
		assert.Equal(t, 0.0, f1)
	}
}

func TestConfusionMatrixIgnoresOutOfRangeLabels(t *testing.T) {
	cm := classifier.NewConfusionMatrix(2)
	cm.Incr(-1, 0)
	cm.Incr(0, 5)
	cm.Incr(0, 0)
	cm.Probs()
	assert.InDelta(t, 1.0, cm.Prob(0, 0), 1e-9)
}
