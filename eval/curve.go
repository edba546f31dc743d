package eval

import "math"

// curveEps is the float32 machine epsilon. It guards the recall and
// precision divisions for classes with zero ground truth or zero
// detections.
const curveEps = 1.1920929e-07

// prCurve holds the precision-recall curve of one class: one point per
// detection, in descending-score order.
type prCurve struct {
	precision []float64
	recall    []float64
}

// buildCurve turns the ordered true/false-positive flags of one class into
// cumulative precision and recall sequences.
//
// Arguments:
//   - tp: True/false-positive flag per detection, in descending-score order.
//   - numGT: Total ground-truth count for the class, across all images.
//
// Returns:
//   - The precision-recall curve, with one point per detection.
func buildCurve(tp []bool, numGT int) prCurve {
	c := prCurve{
		precision: make([]float64, len(tp)),
		recall:    make([]float64, len(tp)),
	}
	tpCum, fpCum := 0, 0
	for i, hit := range tp {
		if hit {
			tpCum++
		} else {
			fpCum++
		}
		c.recall[i] = float64(tpCum) / math.Max(float64(numGT), curveEps)
		c.precision[i] = float64(tpCum) / math.Max(float64(tpCum+fpCum), curveEps)
	}
	return c
}
