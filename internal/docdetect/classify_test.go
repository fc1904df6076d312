package docdetect

import (
	"strings"
	"testing"

	"docscan/internal/providers"
)

func detResult(confs []float64) *providers.DetectResult {
	boxes := make([]providers.Box, len(confs))
	for i, c := range confs {
		boxes[i] = providers.Box{Label: "field", Confidence: c}
	}
	return &providers.DetectResult{Boxes: boxes}
}

func TestClassify(t *testing.T) {
	t.Run("confidence vote reports both values", func(t *testing.T) {
		c := Classify(detResult([]float64{0.6}), detResult([]float64{0.4}), "")
		if c.DocumentType != DocTypePassport {
			t.Fatalf("got %s, want passport", c.DocumentType)
		}
		if !strings.Contains(c.Reason, "0.60") || !strings.Contains(c.Reason, "0.40") {
			t.Errorf("reason should carry both confidences: %q", c.Reason)
		}
	})

	t.Run("majority across signals", func(t *testing.T) {
		license := detResult([]float64{0.9, 0.8, 0.8, 0.7})
		passport := detResult([]float64{0.2})
		text := "ohio driver license dmv"
		c := Classify(passport, license, text)
		if c.DocumentType != DocTypeDrivingLicense {
			t.Fatalf("got %s, want driving_license", c.DocumentType)
		}
		if len(c.Votes) < 3 {
			t.Errorf("expected confidence, box count and keyword votes, got %d", len(c.Votes))
		}
		if !strings.Contains(c.Reason, "driving license wins") {
			t.Errorf("reason = %q", c.Reason)
		}
	})

	t.Run("tie broken by raw confidence", func(t *testing.T) {
		// 0.05 apart: inside the margin, so the confidence signal
		// abstains and the raw comparison decides.
		c := Classify(detResult([]float64{0.45}), detResult([]float64{0.40}), "")
		if c.DocumentType != DocTypePassport {
			t.Fatalf("got %s, want passport", c.DocumentType)
		}
		if !strings.Contains(c.Reason, "tie broken by confidence") {
			t.Errorf("reason = %q", c.Reason)
		}
	})

	t.Run("exact tie resolves to driving license", func(t *testing.T) {
		c := Classify(detResult([]float64{0.5}), detResult([]float64{0.5}), "")
		if c.DocumentType != DocTypeDrivingLicense {
			t.Fatalf("got %s, want driving_license", c.DocumentType)
		}
	})

	t.Run("keywords alone can decide", func(t *testing.T) {
		c := Classify(nil, nil, "passport given names nationality")
		if c.DocumentType != DocTypePassport {
			t.Fatalf("got %s, want passport", c.DocumentType)
		}
	})

	t.Run("document number pattern vote", func(t *testing.T) {
		c := Classify(nil, nil, "id 123456789012")
		if c.DocumentType != DocTypeDrivingLicense {
			t.Fatalf("got %s, want driving_license", c.DocumentType)
		}
	})

	t.Run("low confidence warning", func(t *testing.T) {
		c := Classify(detResult([]float64{0.2}), detResult([]float64{0.1}), "")
		if c.Warning != WarningLowConfidence {
			t.Errorf("warning = %q", c.Warning)
		}
		c = Classify(detResult([]float64{0.8}), detResult([]float64{0.1}), "")
		if c.Warning != "" {
			t.Errorf("unexpected warning with confident detector: %q", c.Warning)
		}
	})

	t.Run("nil results do not panic", func(t *testing.T) {
		c := Classify(nil, nil, "")
		if c.DocumentType != DocTypeDrivingLicense {
			t.Fatalf("got %s, want driving_license on empty signals", c.DocumentType)
		}
	})
}
