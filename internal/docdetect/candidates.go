package docdetect

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"strings"

	"docscan/internal/providers"
)

// boxPadding expands each detector box before cropping, so tight boxes
// do not clip letter ascenders/descenders. Clamped to image bounds.
const boxPadding = 5

// Candidate is one labeled, partially-cleaned text value derived from a
// single detector box. Several candidates may exist per field.
type Candidate struct {
	Field string
	Text  string
	// CenterY is the box's vertical center, used for positional
	// tie-breaks during name resolution.
	CenterY int
	// BoxIndex is the originating box's position in detector output.
	BoxIndex int
}

// ocrPair bundles the primary engine with its optional fallback.
type ocrPair struct {
	primary  providers.OCREngine
	fallback providers.OCREngine
	logger   *slog.Logger
}

// readRegion reads one field crop: primary engine first, fallback engine
// on failure or empty output. All failures degrade to "".
func (o *ocrPair) readRegion(ctx context.Context, region image.Image) string {
	if o.primary != nil {
		text, err := o.primary.ReadRegion(ctx, region)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil && o.logger != nil {
			o.logger.Debug("primary OCR failed on region", "engine", o.primary.Name(), "error", err)
		}
	}
	if o.fallback != nil {
		text, err := o.fallback.ReadRegion(ctx, region)
		if err != nil {
			if o.logger != nil {
				o.logger.Debug("fallback OCR failed on region", "engine", o.fallback.Name(), "error", err)
			}
			return ""
		}
		return strings.TrimSpace(text)
	}
	return ""
}

// readLines reads the whole image, primary engine first. An empty slice
// means both engines failed; callers treat that as an absent signal.
func (o *ocrPair) readLines(ctx context.Context, img image.Image) []string {
	if o.primary != nil {
		lines, err := o.primary.ReadLines(ctx, img)
		if err == nil && len(lines) > 0 {
			return lines
		}
		if err != nil && o.logger != nil {
			o.logger.Debug("primary OCR failed on full image", "engine", o.primary.Name(), "error", err)
		}
	}
	if o.fallback != nil {
		lines, err := o.fallback.ReadLines(ctx, img)
		if err != nil {
			if o.logger != nil {
				o.logger.Debug("fallback OCR failed on full image", "engine", o.fallback.Name(), "error", err)
			}
			return nil
		}
		return lines
	}
	return nil
}

// extractCandidates turns detector boxes into field candidates: crop,
// OCR, character filtering, then the field's normalizer when one exists.
// Boxes with labels outside the family's set are skipped. Inputs are
// never mutated.
func extractCandidates(ctx context.Context, img image.Image, boxes []providers.Box, family *Family, ocr *ocrPair) []Candidate {
	var out []Candidate
	for i, box := range boxes {
		field := family.FieldFor(box.Label)
		if field == "" {
			continue
		}

		crop := cropPadded(img, box, boxPadding)
		if crop == nil {
			continue
		}

		text := ocr.readRegion(ctx, crop)
		text = family.Allow.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
		if norm, ok := family.Normalizers[field]; ok {
			text = norm(text)
		}

		out = append(out, Candidate{
			Field:    field,
			Text:     text,
			CenterY:  (box.Y1 + box.Y2) / 2,
			BoxIndex: i,
		})
		if ocr.logger != nil {
			ocr.logger.Debug("extracted field candidate", "field", field, "text", text, "box", i)
		}
	}
	return out
}

// cropPadded copies the padded box region into a fresh image, clamped to
// the source bounds. Returns nil for degenerate boxes.
func cropPadded(img image.Image, box providers.Box, pad int) image.Image {
	bounds := img.Bounds()
	r := image.Rect(box.X1-pad, box.Y1-pad, box.X2+pad, box.Y2+pad).Intersect(bounds)
	if r.Empty() {
		return nil
	}
	crop := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(crop, crop.Bounds(), img, r.Min, draw.Src)
	return crop
}

// candidatesFor filters candidates by field, preserving order.
func candidatesFor(cands []Candidate, field string) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// longestText returns the longest non-empty candidate text, first-seen
// winning ties. Empty string when nothing qualifies.
func longestText(cands []Candidate) string {
	best := ""
	for _, c := range cands {
		if len(c.Text) > len(best) {
			best = c.Text
		}
	}
	return best
}
