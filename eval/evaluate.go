package eval

import (
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// DefaultIoUThreshold is the overlap threshold used when Options leaves it
// at zero.
const DefaultIoUThreshold = 0.5

// ErrNoGroundTruth is returned when no class in the ground-truth set has at
// least one box, so a mean AP cannot be formed.
var ErrNoGroundTruth = errors.New("no class has any ground-truth box")

// Options configures an evaluation run.
type Options struct {
	// IoUThreshold is the minimum overlap for a detection to claim a
	// ground-truth box. Zero selects DefaultIoUThreshold.
	IoUThreshold float32
	// Method selects the AP integration policy. There is no single
	// universally correct choice, so the caller must pick one.
	Method Method
	// Workers is the number of classes evaluated concurrently. Values
	// below 2 evaluate sequentially. The result does not depend on it.
	Workers int
}

// ClassAP is the average precision of one class. A class that has no
// ground-truth box has no defined AP; it still appears in the result so the
// caller can report it, but it is excluded from the mean.
type ClassAP struct {
	// AP is the average precision in [0, 1]. NaN when Defined is false.
	AP float64
	// GroundTruths is the number of ground-truth boxes of this class
	// across all images.
	GroundTruths int
}

// Defined reports whether the class has a defined AP.
func (c ClassAP) Defined() bool {
	return c.GroundTruths > 0
}

// Result holds the outcome of one evaluation run.
type Result struct {
	// MeanAP is the arithmetic mean of the defined per-class APs.
	MeanAP float64
	// PerClass maps each class of the ground-truth universe to its AP.
	PerClass map[string]ClassAP
	// Classes lists the class universe in sorted order, for deterministic
	// reporting.
	Classes []string
}

// Evaluate computes per-class average precision and their mean for a batch
// of images.
//
// Arguments:
//   - predictions: Per-image detections grouped by class label,
//     index-aligned with groundTruth.
//   - groundTruth: Per-image ground-truth boxes grouped by class label.
//   - opts: Threshold, AP method, and optional parallelism.
//
// Returns:
//   - The per-class APs and their mean, or an error if the inputs are
//     misaligned, the method is unknown, or no class has ground truth.
func Evaluate(predictions []map[string][]Detection, groundTruth []map[string][]Box, opts Options) (*Result, error) {
	if len(predictions) != len(groundTruth) {
		return nil, errors.Errorf("image count mismatch: %d prediction images, %d ground-truth images",
			len(predictions), len(groundTruth))
	}
	if !opts.Method.valid() {
		return nil, errors.Errorf("invalid AP method %s", opts.Method)
	}
	if opts.IoUThreshold == 0 {
		opts.IoUThreshold = DefaultIoUThreshold
	}
	if opts.IoUThreshold < 0 || opts.IoUThreshold > 1 {
		return nil, errors.Errorf("IoU threshold %v outside (0, 1]", opts.IoUThreshold)
	}

	// The class universe is every class seen in ground truth, sorted so
	// iteration order is reproducible.
	classes := classUniverse(groundTruth)
	if len(classes) == 0 {
		return nil, ErrNoGroundTruth
	}

	// Classes share no mutable state, so they can be fanned out over a
	// worker pool. Each worker writes only its own result slots.
	aps := make([]ClassAP, len(classes))
	if workers := min(opts.Workers, len(classes)); workers > 1 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for ci := range jobs {
					aps[ci] = evaluateClass(classes[ci], predictions, groundTruth, opts)
				}
			}()
		}
		for ci := range classes {
			jobs <- ci
		}
		close(jobs)
		wg.Wait()
	} else {
		for ci := range classes {
			aps[ci] = evaluateClass(classes[ci], predictions, groundTruth, opts)
		}
	}

	result := &Result{
		PerClass: make(map[string]ClassAP, len(classes)),
		Classes:  classes,
	}
	sum := 0.0
	defined := 0
	for ci, label := range classes {
		result.PerClass[label] = aps[ci]
		if aps[ci].Defined() {
			sum += aps[ci].AP
			defined++
		}
	}
	if defined == 0 {
		return nil, ErrNoGroundTruth
	}
	result.MeanAP = sum / float64(defined)
	return result, nil
}

// evaluateClass computes the AP of a single class: gather its detections
// across images, match them against the ground truth, and integrate the
// resulting precision-recall curve.
func evaluateClass(label string, predictions []map[string][]Detection, groundTruth []map[string][]Box, opts Options) ClassAP {
	gt := make([][]Box, len(groundTruth))
	numGT := 0
	for i, perImage := range groundTruth {
		gt[i] = perImage[label]
		numGT += len(gt[i])
	}
	// Without ground truth there is no recall axis; the AP is undefined no
	// matter what was detected.
	if numGT == 0 {
		return ClassAP{AP: math.NaN()}
	}

	var dets []taggedDetection
	for imageIndex, perImage := range predictions {
		for _, d := range perImage[label] {
			dets = append(dets, taggedDetection{imageIndex: imageIndex, det: d})
		}
	}

	tp := matchDetections(dets, gt, opts.IoUThreshold)
	ap := averagePrecision(buildCurve(tp, numGT), opts.Method)
	return ClassAP{AP: ap, GroundTruths: numGT}
}

// classUniverse returns the sorted union of all class labels present in the
// ground truth.
func classUniverse(groundTruth []map[string][]Box) []string {
	seen := map[string]bool{}
	for _, perImage := range groundTruth {
		for label := range perImage {
			seen[label] = true
		}
	}
	classes := make([]string, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	return classes
}
