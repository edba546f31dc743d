package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagged(imageIndex int, score float32, box Box) taggedDetection {
	return taggedDetection{imageIndex: imageIndex, det: Detection{Box: box, Score: score}}
}

func TestMatchSingleExactDetection(t *testing.T) {
	gt := [][]Box{{{X1: 0, Y1: 0, X2: 10, Y2: 10}}}
	dets := []taggedDetection{tagged(0, 0.9, Box{X1: 0, Y1: 0, X2: 10, Y2: 10})}

	tp := matchDetections(dets, gt, 0.5)
	assert.Equal(t, []bool{true}, tp)
}

// Two detections both overlap the single ground-truth box above threshold.
// Only the higher-scored one may claim it; the other is a false positive
// even though its own overlap would qualify.
func TestMatchSecondClaimRejected(t *testing.T) {
	gt := [][]Box{{{X1: 0, Y1: 0, X2: 10, Y2: 10}}}
	dets := []taggedDetection{
		tagged(0, 0.6, Box{X1: 1, Y1: 1, X2: 10, Y2: 10}),
		tagged(0, 0.9, Box{X1: 0, Y1: 0, X2: 10, Y2: 10}),
	}

	tp := matchDetections(dets, gt, 0.5)
	// Flags are in descending-score order: the 0.9 detection first.
	assert.Equal(t, []bool{true, false}, tp)
}

// A detection whose best-overlap box was already claimed is not reassigned
// to its next-best candidate, even when that candidate would pass the
// threshold.
func TestMatchNoFallbackToNextBest(t *testing.T) {
	gt := [][]Box{{
		{X1: 0, Y1: 0, X2: 10, Y2: 10},
		{X1: 0, Y1: 0, X2: 10, Y2: 12},
	}}
	first := tagged(0, 0.9, Box{X1: 0, Y1: 0, X2: 10, Y2: 10})
	second := tagged(0, 0.8, Box{X1: 0, Y1: 0, X2: 10, Y2: 10.5})

	// Sanity: the second detection overlaps both boxes above threshold,
	// but its best overlap is with the first (already claimed) box.
	require.Greater(t, IoU(second.det.Box, gt[0][0]), IoU(second.det.Box, gt[0][1]))
	require.Greater(t, IoU(second.det.Box, gt[0][1]), float32(0.5))

	tp := matchDetections([]taggedDetection{first, second}, gt, 0.5)
	assert.Equal(t, []bool{true, false}, tp)
}

// Equal scores keep their input order (stable sort), so the first enumerated
// detection wins a contested box.
func TestMatchEqualScoresStableOrder(t *testing.T) {
	gt := [][]Box{{{X1: 0, Y1: 0, X2: 10, Y2: 10}}}
	exact := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	near := Box{X1: 1, Y1: 1, X2: 10, Y2: 10}

	tp := matchDetections([]taggedDetection{
		tagged(0, 0.5, near),
		tagged(0, 0.5, exact),
	}, gt, 0.5)
	assert.Equal(t, []bool{true, false}, tp, "first enumerated detection claims the box")

	tp = matchDetections([]taggedDetection{
		tagged(0, 0.5, exact),
		tagged(0, 0.5, near),
	}, gt, 0.5)
	assert.Equal(t, []bool{true, false}, tp)
}

// Detections land in the image they were tagged with; they cannot claim
// ground truth from another image.
func TestMatchPerImage(t *testing.T) {
	gt := [][]Box{
		{{X1: 0, Y1: 0, X2: 10, Y2: 10}},
		{},
	}
	dets := []taggedDetection{
		tagged(1, 0.9, Box{X1: 0, Y1: 0, X2: 10, Y2: 10}),
		tagged(0, 0.8, Box{X1: 0, Y1: 0, X2: 10, Y2: 10}),
	}

	tp := matchDetections(dets, gt, 0.5)
	assert.Equal(t, []bool{false, true}, tp, "image without ground truth forces a false positive")
}

func TestMatchBelowThreshold(t *testing.T) {
	gt := [][]Box{{{X1: 0, Y1: 0, X2: 10, Y2: 10}}}
	dets := []taggedDetection{tagged(0, 0.9, Box{X1: 8, Y1: 8, X2: 18, Y2: 18})}

	tp := matchDetections(dets, gt, 0.5)
	assert.Equal(t, []bool{false}, tp)
}

func TestMatchNoDetections(t *testing.T) {
	gt := [][]Box{{{X1: 0, Y1: 0, X2: 10, Y2: 10}}}
	tp := matchDetections(nil, gt, 0.5)
	assert.Empty(t, tp)
}
