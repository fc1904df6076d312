package providers

import (
	"context"
	"image"
)

// Box is one labeled region proposed by a detector.
// Coordinates are pixel offsets in the source image (x1,y1 top-left,
// x2,y2 bottom-right).
type Box struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

// DetectOptions are the thresholds passed through to the detector.
type DetectOptions struct {
	// ConfThreshold is the minimum box confidence, in [0,1].
	ConfThreshold float64
	// IoUThreshold is the non-max-suppression overlap threshold, in [0,1].
	IoUThreshold float64
}

// DetectResult is the raw output of one detector pass.
type DetectResult struct {
	Boxes []Box `json:"boxes"`
	// Model is the model identifier reported by the detector service.
	Model string `json:"model,omitempty"`
}

// MaxConfidence returns the highest box confidence, or 0 with no boxes.
func (r *DetectResult) MaxConfidence() float64 {
	var max float64
	for _, b := range r.Boxes {
		if b.Confidence > max {
			max = b.Confidence
		}
	}
	return max
}

// Detector proposes labeled field regions in a document image.
// Implementations must be safe for concurrent use; one Detector instance
// is shared across requests.
type Detector interface {
	// Name returns the detector identifier (e.g. "passport", "license").
	Name() string

	// Detect runs inference over the full image.
	// A failed call is reported as an error; callers treat it as an
	// absent signal, never as a fatal condition.
	Detect(ctx context.Context, img image.Image, opts DetectOptions) (*DetectResult, error)
}

// OCREngine converts image pixels to text.
// Implementations must be safe for concurrent use.
type OCREngine interface {
	// Name returns the engine identifier (e.g. "easyocr", "tesseract").
	Name() string

	// ReadRegion extracts text from a cropped field region.
	// The region typically holds a single line or short phrase.
	ReadRegion(ctx context.Context, region image.Image) (string, error)

	// ReadLines extracts text from a full document image, one entry per
	// detected text line, in top-to-bottom reading order.
	ReadLines(ctx context.Context, img image.Image) ([]string, error)
}
