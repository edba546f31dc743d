// Package dataset - Loads per-image annotation and detection files into the
// shape the eval package consumes.
package dataset

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-ml-eval/eval"
)

// annotationExt is the extension of per-image annotation files.
const annotationExt = ".txt"

// Labels maps the numeric class ids used in annotation files to class
// names.
type Labels map[int]string

// Batch holds the index-aligned per-image collections of one evaluation
// run: image i's predictions correspond to image i's ground truth.
type Batch struct {
	// Stems lists the image file stems in the order the images were
	// indexed.
	Stems []string
	// Predictions groups each image's detections by class name.
	Predictions []map[string][]eval.Detection
	// GroundTruth groups each image's ground-truth boxes by class name.
	GroundTruth []map[string][]eval.Box
}

// LoadDirectories reads a ground-truth directory and a detection directory
// into an index-aligned batch.
//
// Ground-truth files are per-image ".txt" files with one box per line, five
// whitespace-separated numbers: x1 y1 x2 y2 class_id. Detection files use
// the same layout plus a score column: x1 y1 x2 y2 score class_id. Files
// are paired by stem; the image order is the sorted ground-truth file
// order, so indices are deterministic.
//
// An image with no detection file simply has zero detections. A detection
// file without a ground-truth counterpart is an error, because it means the
// two directories describe different image sets.
//
// Arguments:
//   - gtDir: Directory of ground-truth annotation files.
//   - detDir: Directory of detection files.
//   - labels: Class id to class name table.
//
// Returns:
//   - The loaded batch, or an error if a file cannot be read or parsed.
func LoadDirectories(gtDir, detDir string, labels Labels) (*Batch, error) {
	stems, err := listStems(gtDir)
	if err != nil {
		return nil, errors.Wrap(err, "listing ground-truth files")
	}
	if len(stems) == 0 {
		return nil, errors.Errorf("no %s annotation files in %s", annotationExt, gtDir)
	}
	if err := checkOrphans(detDir, stems); err != nil {
		return nil, err
	}

	batch := &Batch{
		Stems:       stems,
		Predictions: make([]map[string][]eval.Detection, len(stems)),
		GroundTruth: make([]map[string][]eval.Box, len(stems)),
	}
	for i, stem := range stems {
		gt, err := parseGroundTruth(filepath.Join(gtDir, stem+annotationExt), labels)
		if err != nil {
			return nil, err
		}
		batch.GroundTruth[i] = gt

		detPath := filepath.Join(detDir, stem+annotationExt)
		if _, statErr := os.Stat(detPath); statErr != nil {
			if os.IsNotExist(statErr) {
				batch.Predictions[i] = map[string][]eval.Detection{}
				continue
			}
			return nil, errors.Wrapf(statErr, "detection file for %s", stem)
		}
		dets, err := parseDetections(detPath, labels)
		if err != nil {
			return nil, err
		}
		batch.Predictions[i] = dets
	}
	return batch, nil
}

// listStems returns the sorted stems of all annotation files in a
// directory.
func listStems(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var stems []string
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != annotationExt {
			continue
		}
		stems = append(stems, strings.TrimSuffix(file.Name(), annotationExt))
	}
	sort.Strings(stems)
	return stems, nil
}

// checkOrphans fails if the detection directory contains a file with no
// ground-truth counterpart: such a file would silently shift the image
// alignment.
func checkOrphans(detDir string, stems []string) error {
	known := make(map[string]bool, len(stems))
	for _, stem := range stems {
		known[stem] = true
	}

	files, err := os.ReadDir(detDir)
	if err != nil {
		return errors.Wrap(err, "listing detection files")
	}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != annotationExt {
			continue
		}
		stem := strings.TrimSuffix(file.Name(), annotationExt)
		if !known[stem] {
			return errors.Errorf("detection file %s has no ground-truth counterpart", file.Name())
		}
	}
	return nil
}

// parseGroundTruth reads one per-image annotation file. Lines that do not
// have exactly five fields are skipped, tolerating trailing junk from
// labeling tools.
func parseGroundTruth(path string, labels Labels) (map[string][]eval.Box, error) {
	boxes := map[string][]eval.Box{}
	err := scanLines(path, func(fields []string) error {
		if len(fields) != 5 {
			return nil
		}
		values, err := parseFloats(fields)
		if err != nil {
			return err
		}
		label, err := lookupLabel(labels, values[4])
		if err != nil {
			return err
		}
		boxes[label] = append(boxes[label], eval.Box{
			X1: values[0], Y1: values[1], X2: values[2], Y2: values[3],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

// parseDetections reads one per-image detection file.
func parseDetections(path string, labels Labels) (map[string][]eval.Detection, error) {
	dets := map[string][]eval.Detection{}
	err := scanLines(path, func(fields []string) error {
		if len(fields) != 6 {
			return nil
		}
		values, err := parseFloats(fields)
		if err != nil {
			return err
		}
		label, err := lookupLabel(labels, values[5])
		if err != nil {
			return err
		}
		dets[label] = append(dets[label], eval.Detection{
			Box:   eval.Box{X1: values[0], Y1: values[1], X2: values[2], Y2: values[3]},
			Score: values[4],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dets, nil
}

func scanLines(path string, handle func(fields []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening annotation file")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := handle(fields); err != nil {
			return errors.Wrapf(err, "%s:%d", path, line)
		}
	}
	return errors.Wrapf(scanner.Err(), "reading %s", path)
}

func parseFloats(fields []string) ([]float32, error) {
	values := make([]float32, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i+1)
		}
		values[i] = float32(v)
	}
	return values, nil
}

func lookupLabel(labels Labels, classID float32) (string, error) {
	label, ok := labels[int(classID)]
	if !ok {
		return "", errors.Errorf("class id %d not in label table", int(classID))
	}
	return label, nil
}
