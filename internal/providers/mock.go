package providers

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
)

// MockDetector is a Detector for testing.
type MockDetector struct {
	// Configurable behavior
	DetectorName string
	Boxes        []Box
	Err          error

	// DetectFunc overrides the canned response when set.
	DetectFunc func(ctx context.Context, img image.Image, opts DetectOptions) (*DetectResult, error)

	// State
	calls atomic.Int64
}

var _ Detector = (*MockDetector)(nil)

// NewMockDetector creates a mock detector with no boxes.
func NewMockDetector(name string) *MockDetector {
	return &MockDetector{DetectorName: name}
}

// Name returns the detector identifier.
func (d *MockDetector) Name() string { return d.DetectorName }

// Detect returns the configured boxes or error.
func (d *MockDetector) Detect(ctx context.Context, img image.Image, opts DetectOptions) (*DetectResult, error) {
	d.calls.Add(1)
	if d.DetectFunc != nil {
		return d.DetectFunc(ctx, img, opts)
	}
	if d.Err != nil {
		return nil, d.Err
	}
	boxes := make([]Box, len(d.Boxes))
	copy(boxes, d.Boxes)
	return &DetectResult{Boxes: boxes, Model: d.DetectorName}, nil
}

// Calls returns how many times Detect was invoked.
func (d *MockDetector) Calls() int64 { return d.calls.Load() }

// ErrMockOCR is the default error for a failing mock engine.
var ErrMockOCR = errors.New("mock OCR failure")

// MockOCR is an OCREngine for testing.
//
// Region responses are keyed by the region's bounds (via RegionFunc) or
// served from a FIFO of canned strings, whichever is configured.
type MockOCR struct {
	EngineName string
	Lines      []string
	Err        error

	// RegionFunc maps a region to its text when set.
	RegionFunc func(region image.Image) (string, error)

	// RegionTexts is consumed one entry per ReadRegion call when
	// RegionFunc is nil.
	RegionTexts []string

	regionCalls atomic.Int64
	lineCalls   atomic.Int64
}

var _ OCREngine = (*MockOCR)(nil)

// NewMockOCR creates a mock OCR engine.
func NewMockOCR(name string) *MockOCR {
	return &MockOCR{EngineName: name}
}

// Name returns the engine identifier.
func (e *MockOCR) Name() string { return e.EngineName }

// ReadRegion returns the next configured region text.
func (e *MockOCR) ReadRegion(ctx context.Context, region image.Image) (string, error) {
	n := e.regionCalls.Add(1)
	if e.Err != nil {
		return "", e.Err
	}
	if e.RegionFunc != nil {
		return e.RegionFunc(region)
	}
	idx := int(n) - 1
	if idx < len(e.RegionTexts) {
		return e.RegionTexts[idx], nil
	}
	return "", nil
}

// ReadLines returns the configured whole-image lines.
func (e *MockOCR) ReadLines(ctx context.Context, img image.Image) ([]string, error) {
	e.lineCalls.Add(1)
	if e.Err != nil {
		return nil, e.Err
	}
	lines := make([]string, len(e.Lines))
	copy(lines, e.Lines)
	return lines, nil
}

// RegionCalls returns how many times ReadRegion was invoked.
func (e *MockOCR) RegionCalls() int64 { return e.regionCalls.Load() }

// LineCalls returns how many times ReadLines was invoked.
func (e *MockOCR) LineCalls() int64 { return e.lineCalls.Load() }
