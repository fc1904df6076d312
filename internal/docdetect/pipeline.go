package docdetect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"docscan/internal/providers"
)

// ErrInvalidImage is returned when the uploaded bytes do not decode as a
// supported image format.
var ErrInvalidImage = errors.New("invalid or unsupported image")

// Detection thresholds. Classification runs loose so weak documents
// still produce a signal; extraction re-detects tighter so crops come
// from boxes the model is actually sure about.
const (
	ClassifyConfThreshold = 0.25
	ClassifyIoUThreshold  = 0.35
	ExtractConfThreshold  = 0.35
	ExtractIoUThreshold   = 0.45
)

// Result is the full outcome of one scan.
type Result struct {
	DocumentType DocumentType      `json:"detected_type"`
	Reason       string            `json:"decision_reason"`
	Warning      string            `json:"warning,omitempty"`
	Fields       map[string]string `json:"parsed"`
}

// Pipeline runs classification and field extraction over one image using
// two single-family detectors and an OCR engine pair.
type Pipeline struct {
	Passport providers.Detector
	License  providers.Detector

	OCR         providers.OCREngine
	OCRFallback providers.OCREngine

	Logger *slog.Logger
}

// ClassifyAndExtract decodes the image, classifies it as a passport or a
// driving license, and extracts that family's fields.
//
// Detector failures during classification degrade to an absent signal
// rather than failing the scan; the other detector and the OCR text can
// still decide. A detector failure during extraction is fatal, since
// there is nothing to crop without boxes.
func (p *Pipeline) ClassifyAndExtract(ctx context.Context, data []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	log := p.logger()
	log.Debug("decoded scan image", "format", format, "bounds", img.Bounds())

	ocr := &ocrPair{primary: p.OCR, fallback: p.OCRFallback, logger: log}
	ocrLines := ocr.readLines(ctx, img)

	classifyOpts := providers.DetectOptions{
		ConfThreshold: ClassifyConfThreshold,
		IoUThreshold:  ClassifyIoUThreshold,
	}
	passportRes := p.detectSoft(ctx, p.Passport, img, classifyOpts)
	licenseRes := p.detectSoft(ctx, p.License, img, classifyOpts)

	cls := Classify(passportRes, licenseRes, joinLower(ocrLines))
	log.Info("classified document",
		"type", cls.DocumentType,
		"votes", len(cls.Votes),
		"warning", cls.Warning != "")

	var family *Family
	var detector providers.Detector
	if cls.DocumentType == DocTypePassport {
		family, detector = PassportFamily(), p.Passport
	} else {
		family, detector = DrivingLicenseFamily(), p.License
	}

	extractOpts := providers.DetectOptions{
		ConfThreshold: ExtractConfThreshold,
		IoUThreshold:  ExtractIoUThreshold,
	}
	detRes, err := detector.Detect(ctx, img, extractOpts)
	if err != nil {
		return nil, fmt.Errorf("extraction detect (%s): %w", family.Type, err)
	}

	cands := extractCandidates(ctx, img, detRes.Boxes, family, ocr)

	var values *FieldValues
	if family.Type == DocTypePassport {
		values = resolvePassport(family, cands, ocrLines)
	} else {
		values = resolveDrivingLicense(family, cands, ocrLines)
	}

	return &Result{
		DocumentType: cls.DocumentType,
		Reason:       cls.Reason,
		Warning:      cls.Warning,
		Fields:       values.Map(),
	}, nil
}

// detectSoft runs one detector for classification, treating failure as
// an absent signal.
func (p *Pipeline) detectSoft(ctx context.Context, d providers.Detector, img image.Image, opts providers.DetectOptions) *providers.DetectResult {
	if d == nil {
		return nil
	}
	res, err := d.Detect(ctx, img, opts)
	if err != nil {
		p.logger().Warn("detector failed during classification", "detector", d.Name(), "error", err)
		return nil
	}
	return res
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
