package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCurveCumulative(t *testing.T) {
	// TP, FP, TP against two ground-truth boxes.
	c := buildCurve([]bool{true, false, true}, 2)

	assert.Equal(t, []float64{0.5, 0.5, 1.0}, c.recall)
	assert.InDeltaSlice(t, []float64{1.0, 0.5, 2.0 / 3.0}, c.precision, 1e-12)
}

func TestBuildCurveAllFalsePositives(t *testing.T) {
	c := buildCurve([]bool{false, false}, 3)

	assert.Equal(t, []float64{0, 0}, c.recall)
	assert.Equal(t, []float64{0, 0}, c.precision)
}

func TestBuildCurveNoDetections(t *testing.T) {
	c := buildCurve(nil, 5)
	assert.Empty(t, c.recall)
	assert.Empty(t, c.precision)
}

// Zero ground truth routes through the epsilon guard instead of dividing by
// zero. The recall values are meaningless but finite.
func TestBuildCurveZeroGroundTruth(t *testing.T) {
	c := buildCurve([]bool{false}, 0)
	assert.False(t, c.recall[0] != c.recall[0], "recall must not be NaN")
	assert.Equal(t, 0.0, c.precision[0])
}
