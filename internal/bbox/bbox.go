// Package bbox provides pure functions over axis-aligned bounding boxes.
// Boxes are 4-element slices [x0, y0, x1, y1] in page coordinate space.
package bbox

import (
	"fmt"

	"pdf-translator/internal/types"
)

// validate checks that b has exactly 4 components.
func validate(b []float64) error {
	if len(b) != 4 {
		return types.NewAppErrorWithDetails(types.ErrInvalidGeometry,
			"invalid bbox format", fmt.Sprintf("expected [x0 y0 x1 y1], got %v", b), nil)
	}
	return nil
}

// Expand grows the box by padding on all four sides. Negative padding
// shrinks it; the caller is responsible for keeping x0<x1 in that case.
func Expand(b []float64, padding float64) ([]float64, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	return []float64{b[0] - padding, b[1] - padding, b[2] + padding, b[3] + padding}, nil
}

// Area returns the box area, clamping degenerate extents to zero.
func Area(b []float64) (float64, error) {
	if err := validate(b); err != nil {
		return 0, err
	}
	w := b[2] - b[0]
	h := b[3] - b[1]
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w * h, nil
}

// IntersectionArea returns the overlap area of a and b.
// Touching boxes count as non-overlapping.
func IntersectionArea(a, b []float64) (float64, error) {
	if err := validate(a); err != nil {
		return 0, err
	}
	if err := validate(b); err != nil {
		return 0, err
	}

	x0 := max(a[0], b[0])
	y0 := max(a[1], b[1])
	x1 := min(a[2], b[2])
	y1 := min(a[3], b[3])

	if x1 <= x0 || y1 <= y0 {
		return 0, nil
	}
	return (x1 - x0) * (y1 - y0), nil
}

// IoU returns intersection over union, 0 when the union or the
// intersection is empty.
func IoU(a, b []float64) (float64, error) {
	overlap, err := IntersectionArea(a, b)
	if err != nil {
		return 0, err
	}
	if overlap == 0 {
		return 0, nil
	}

	areaA, err := Area(a)
	if err != nil {
		return 0, err
	}
	areaB, err := Area(b)
	if err != nil {
		return 0, err
	}

	union := areaA + areaB - overlap
	if union <= 0 {
		return 0, nil
	}
	return overlap / union, nil
}

// ContainsPoint reports whether (x, y) lies inside b, bounds inclusive.
func ContainsPoint(b []float64, x, y float64) (bool, error) {
	if err := validate(b); err != nil {
		return false, err
	}
	return b[0] <= x && x <= b[2] && b[1] <= y && y <= b[3], nil
}

// Normalize scales b into the [0,1] range using the page dimensions.
func Normalize(b []float64, pageWidth, pageHeight float64) ([]float64, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	return []float64{b[0] / pageWidth, b[1] / pageHeight, b[2] / pageWidth, b[3] / pageHeight}, nil
}

// Denormalize scales a normalized box back to absolute page coordinates.
func Denormalize(b []float64, pageWidth, pageHeight float64) ([]float64, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	return []float64{b[0] * pageWidth, b[1] * pageHeight, b[2] * pageWidth, b[3] * pageHeight}, nil
}

// Merge returns the componentwise min/max box enclosing all inputs.
func Merge(boxes [][]float64) ([]float64, error) {
	if len(boxes) == 0 {
		return nil, types.NewAppError(types.ErrEmptyInput, "cannot merge empty list of bboxes", nil)
	}

	for _, b := range boxes {
		if err := validate(b); err != nil {
			return nil, err
		}
	}

	merged := []float64{boxes[0][0], boxes[0][1], boxes[0][2], boxes[0][3]}
	for _, b := range boxes[1:] {
		merged[0] = min(merged[0], b[0])
		merged[1] = min(merged[1], b[1])
		merged[2] = max(merged[2], b[2])
		merged[3] = max(merged[3], b[3])
	}
	return merged, nil
}

// Center returns the midpoint of b.
func Center(b []float64) (x, y float64, err error) {
	if err := validate(b); err != nil {
		return 0, 0, err
	}
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2, nil
}
