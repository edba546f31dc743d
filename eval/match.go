package eval

import "sort"

// taggedDetection pairs a detection with the index of the image it came
// from, so detections of one class can be ranked globally across images.
type taggedDetection struct {
	imageIndex int
	det        Detection
}

// matchDetections classifies every detection of one class as true positive
// or false positive against the per-image ground truth for that class.
//
// Detections are sorted by descending score first; equal scores keep their
// input enumeration order (stable sort), which fixes who wins a contested
// ground-truth box. Each detection then searches every ground-truth box of
// its image, already matched or not, and takes the one with the highest IoU.
// The detection is a true positive only if that best IoU reaches the
// threshold and the box is still unclaimed. A detection whose best candidate
// was claimed by an earlier detection is a false positive; it is never
// reassigned to the next-best box.
//
// Arguments:
//   - dets: All detections of the class, tagged with their image index.
//     The slice is reordered in place.
//   - groundTruth: Ground-truth boxes of the class, grouped by image and
//     indexed like the images the detections were tagged with.
//   - iouThreshold: Minimum overlap for a detection to claim a box.
//
// Returns:
//   - One true/false-positive flag per detection, in sorted (processing)
//     order.
func matchDetections(dets []taggedDetection, groundTruth [][]Box, iouThreshold float32) []bool {
	sort.SliceStable(dets, func(i, j int) bool {
		return dets[i].det.Score > dets[j].det.Score
	})

	// One claim flag per ground-truth box, scoped to this call.
	claimed := make([][]bool, len(groundTruth))
	for i, boxes := range groundTruth {
		claimed[i] = make([]bool, len(boxes))
	}

	tp := make([]bool, len(dets))
	for di, d := range dets {
		bestIoU := float32(-1)
		bestIdx := -1
		for gi, g := range groundTruth[d.imageIndex] {
			if overlap := IoU(d.det.Box, g); overlap > bestIoU {
				bestIoU = overlap
				bestIdx = gi
			}
		}
		// An image without ground truth of this class leaves bestIdx at -1,
		// so every detection in it is a false positive.
		if bestIdx < 0 || bestIoU < iouThreshold || claimed[d.imageIndex][bestIdx] {
			continue
		}
		tp[di] = true
		claimed[d.imageIndex][bestIdx] = true
	}
	return tp
}
