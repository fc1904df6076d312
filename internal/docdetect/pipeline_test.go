package docdetect

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"docscan/internal/providers"
)

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPipelineClassifyAndExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("driving license end to end", func(t *testing.T) {
		license := providers.NewMockDetector("dl")
		license.Boxes = []providers.Box{
			{Label: "lastName", Confidence: 0.9, X1: 10, Y1: 20, X2: 120, Y2: 40},
			{Label: "firstName", Confidence: 0.9, X1: 10, Y1: 60, X2: 120, Y2: 80},
			{Label: "licenseNumber", Confidence: 0.85, X1: 10, Y1: 100, X2: 150, Y2: 120},
		}
		passport := providers.NewMockDetector("passport")

		ocr := providers.NewMockOCR("easyocr")
		ocr.Lines = []string{"OHIO DRIVER LICENSE", "DOB 12-05-1990", "SEX F"}
		ocr.RegionTexts = []string{"SMITH", "JOHN", "a123456789012"}

		p := &Pipeline{Passport: passport, License: license, OCR: ocr}
		res, err := p.ClassifyAndExtract(ctx, testImage(t))
		if err != nil {
			t.Fatal(err)
		}

		if res.DocumentType != DocTypeDrivingLicense {
			t.Fatalf("detected %s, want driving_license", res.DocumentType)
		}
		want := map[string]string{
			FieldLastName:      "SMITH",
			FieldFirstName:     "JOHN",
			FieldLicenseNumber: "A-123-456-789-012",
			FieldDateOfBirth:   "12/05/1990",
			FieldSex:           "Female",
			FieldStateName:     "Ohio",
			FieldAddress:       "",
			FieldZipCode:       "",
		}
		for field, w := range want {
			if got := res.Fields[field]; got != w {
				t.Errorf("%s = %q, want %q", field, got, w)
			}
		}
		if license.Calls() != 2 {
			t.Errorf("license detector called %d times, want 2 (classify + extract)", license.Calls())
		}
	})

	t.Run("passport end to end", func(t *testing.T) {
		passport := providers.NewMockDetector("passport")
		passport.Boxes = []providers.Box{
			{Label: "Surname", Confidence: 0.95, X1: 10, Y1: 20, X2: 120, Y2: 40},
			{Label: "Given Names", Confidence: 0.92, X1: 10, Y1: 60, X2: 120, Y2: 80},
			{Label: "Passport No-", Confidence: 0.9, X1: 10, Y1: 100, X2: 150, Y2: 120},
		}
		license := providers.NewMockDetector("dl")

		ocr := providers.NewMockOCR("easyocr")
		ocr.Lines = []string{"PASSPORT", "Date of birth", "12 May 1990", "Sex F"}
		ocr.RegionTexts = []string{"DOE", "JOHN ROBERT", "x1234567"}

		p := &Pipeline{Passport: passport, License: license, OCR: ocr}
		res, err := p.ClassifyAndExtract(ctx, testImage(t))
		if err != nil {
			t.Fatal(err)
		}

		if res.DocumentType != DocTypePassport {
			t.Fatalf("detected %s, want passport", res.DocumentType)
		}
		want := map[string]string{
			FieldSurname:        "DOE",
			FieldGivenNames:     "JOHN ROBERT",
			FieldPassportNumber: "X1234567",
			FieldDateOfBirth:    "12/05/1990",
			FieldGender:         "Female",
		}
		for field, w := range want {
			if got := res.Fields[field]; got != w {
				t.Errorf("%s = %q, want %q", field, got, w)
			}
		}
	})

	t.Run("primary OCR failure falls back per region", func(t *testing.T) {
		license := providers.NewMockDetector("dl")
		license.Boxes = []providers.Box{
			{Label: "firstName", Confidence: 0.9, X1: 10, Y1: 20, X2: 120, Y2: 40},
		}
		passport := providers.NewMockDetector("passport")

		primary := providers.NewMockOCR("easyocr")
		primary.Err = providers.ErrMockOCR
		fallback := providers.NewMockOCR("tesseract")
		fallback.Lines = []string{"DRIVER LICENSE"}
		fallback.RegionTexts = []string{"JANE"}

		p := &Pipeline{Passport: passport, License: license, OCR: primary, OCRFallback: fallback}
		res, err := p.ClassifyAndExtract(ctx, testImage(t))
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Fields[FieldFirstName]; got != "JANE" {
			t.Errorf("firstName = %q, want JANE via fallback", got)
		}
		if fallback.RegionCalls() == 0 {
			t.Error("fallback engine was never consulted")
		}
	})

	t.Run("detector failure during classification is soft", func(t *testing.T) {
		passport := providers.NewMockDetector("passport")
		passport.Err = errors.New("inference down")
		license := providers.NewMockDetector("dl")
		license.Boxes = []providers.Box{
			{Label: "firstName", Confidence: 0.8, X1: 10, Y1: 20, X2: 120, Y2: 40},
		}

		ocr := providers.NewMockOCR("easyocr")
		ocr.Lines = []string{"DRIVER LICENSE DMV"}
		ocr.RegionTexts = []string{"JANE"}

		p := &Pipeline{Passport: passport, License: license, OCR: ocr}
		res, err := p.ClassifyAndExtract(ctx, testImage(t))
		if err != nil {
			t.Fatal(err)
		}
		if res.DocumentType != DocTypeDrivingLicense {
			t.Errorf("detected %s, want driving_license", res.DocumentType)
		}
	})

	t.Run("extraction detector failure is fatal", func(t *testing.T) {
		failing := providers.NewMockDetector("dl")
		calls := 0
		failing.DetectFunc = func(ctx context.Context, img image.Image, opts providers.DetectOptions) (*providers.DetectResult, error) {
			calls++
			if calls == 1 {
				return &providers.DetectResult{Boxes: []providers.Box{
					{Label: "firstName", Confidence: 0.9, X1: 10, Y1: 20, X2: 120, Y2: 40},
				}}, nil
			}
			return nil, errors.New("inference down")
		}
		passport := providers.NewMockDetector("passport")
		ocr := providers.NewMockOCR("easyocr")

		p := &Pipeline{Passport: passport, License: failing, OCR: ocr}
		if _, err := p.ClassifyAndExtract(ctx, testImage(t)); err == nil {
			t.Fatal("expected error when extraction detect fails")
		}
	})

	t.Run("invalid image", func(t *testing.T) {
		p := &Pipeline{
			Passport: providers.NewMockDetector("passport"),
			License:  providers.NewMockDetector("dl"),
			OCR:      providers.NewMockOCR("easyocr"),
		}
		_, err := p.ClassifyAndExtract(ctx, []byte("not an image"))
		if !errors.Is(err, ErrInvalidImage) {
			t.Fatalf("err = %v, want ErrInvalidImage", err)
		}
	})

	t.Run("low confidence warning surfaces", func(t *testing.T) {
		license := providers.NewMockDetector("dl")
		license.Boxes = []providers.Box{
			{Label: "firstName", Confidence: 0.2, X1: 10, Y1: 20, X2: 120, Y2: 40},
		}
		passport := providers.NewMockDetector("passport")
		ocr := providers.NewMockOCR("easyocr")

		p := &Pipeline{Passport: passport, License: license, OCR: ocr}
		res, err := p.ClassifyAndExtract(ctx, testImage(t))
		if err != nil {
			t.Fatal(err)
		}
		if res.Warning != WarningLowConfidence {
			t.Errorf("warning = %q", res.Warning)
		}
	})
}
