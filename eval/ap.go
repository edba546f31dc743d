package eval

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Method selects the policy for reducing a precision-recall curve to a
// single average-precision value.
type Method int

const (
	// MethodArea integrates the full area under the precision envelope
	// (PASCAL VOC 2010+ style).
	MethodArea Method = iota
	// MethodInterp averages the maximum precision at the eleven recall
	// thresholds 0.0, 0.1, ..., 1.0 (PASCAL VOC 2007 style).
	MethodInterp
)

// ParseMethod maps a configuration name to a Method. Anything other than
// "area" or "interp" is a configuration error.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "area":
		return MethodArea, nil
	case "interp":
		return MethodInterp, nil
	default:
		return 0, errors.Errorf("unknown AP method %q (want area or interp)", name)
	}
}

func (m Method) String() string {
	switch m {
	case MethodArea:
		return "area"
	case MethodInterp:
		return "interp"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func (m Method) valid() bool {
	return m == MethodArea || m == MethodInterp
}

// averagePrecision reduces a precision-recall curve to a scalar AP using the
// given method. The method must already be validated.
func averagePrecision(c prCurve, method Method) float64 {
	if method == MethodInterp {
		return interpAP(c)
	}
	return areaAP(c)
}

// areaAP computes the area under the precision envelope as a function of
// recall.
func areaAP(c prCurve) float64 {
	n := len(c.recall)
	recalls := make([]float64, 0, n+2)
	precisions := make([]float64, 0, n+2)

	// Sentinel points: the curve starts at recall 0 and is closed off with
	// zero precision at recall 1.
	recalls = append(recalls, 0)
	recalls = append(recalls, c.recall...)
	recalls = append(recalls, 1)
	precisions = append(precisions, 0)
	precisions = append(precisions, c.precision...)
	precisions = append(precisions, 0)

	// Precision envelope: replace each precision with the maximum precision
	// at any equal-or-higher recall, making the curve a non-increasing
	// staircase.
	for i := len(precisions) - 1; i > 0; i-- {
		precisions[i-1] = math.Max(precisions[i-1], precisions[i])
	}

	// Sum rectangle areas at the points where recall changes value.
	ap := 0.0
	for i := 0; i+1 < len(recalls); i++ {
		if recalls[i+1] != recalls[i] {
			ap += (recalls[i+1] - recalls[i]) * precisions[i+1]
		}
	}
	return ap
}

// interpAP computes the legacy 11-point interpolated AP.
func interpAP(c prCurve) float64 {
	ap := 0.0
	for t := 0; t <= 10; t++ {
		threshold := float64(t) / 10

		// Maximum precision among points at recall >= threshold, 0 if none
		// qualify.
		best := 0.0
		for i, r := range c.recall {
			if r >= threshold && c.precision[i] > best {
				best = c.precision[i]
			}
		}
		ap += best
	}
	return ap / 11
}
