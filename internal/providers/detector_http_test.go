package providers

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestHTTPDetectorDetect(t *testing.T) {
	t.Run("decodes boxes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/detect" {
				t.Errorf("path = %s, want /detect", r.URL.Path)
			}
			var req detectRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Model != "dl_model" {
				t.Errorf("model = %q, want dl_model", req.Model)
			}
			if req.ImageBase64 == "" {
				t.Error("request has no image payload")
			}
			if req.ConfThreshold != 0.25 {
				t.Errorf("conf threshold = %v, want 0.25", req.ConfThreshold)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"model": "dl_model",
				"boxes": []map[string]any{
					{"label": "licenseNumber", "confidence": 0.88, "x1": 10, "y1": 20, "x2": 110, "y2": 45},
				},
			})
		}))
		defer srv.Close()

		d := NewHTTPDetector(HTTPDetectorConfig{Name: "license", BaseURL: srv.URL, Model: "dl_model"})
		result, err := d.Detect(context.Background(), testImage(200, 100), DetectOptions{ConfThreshold: 0.25, IoUThreshold: 0.35})
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(result.Boxes) != 1 {
			t.Fatalf("got %d boxes, want 1", len(result.Boxes))
		}
		box := result.Boxes[0]
		if box.Label != "licenseNumber" || box.Confidence != 0.88 {
			t.Errorf("box = %+v", box)
		}
		if got := result.MaxConfidence(); got != 0.88 {
			t.Errorf("MaxConfidence() = %v, want 0.88", got)
		}
	})

	t.Run("rejects malformed response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"model":"dl_model"}`))
		}))
		defer srv.Close()

		d := NewHTTPDetector(HTTPDetectorConfig{Name: "license", BaseURL: srv.URL, Model: "dl_model"})
		if _, err := d.Detect(context.Background(), testImage(10, 10), DetectOptions{}); err == nil {
			t.Error("expected error for schema-invalid response")
		}
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"boxes":[]}`))
		}))
		defer srv.Close()

		d := NewHTTPDetector(HTTPDetectorConfig{Name: "license", BaseURL: srv.URL, Model: "dl_model"})
		result, err := d.Detect(context.Background(), testImage(10, 10), DetectOptions{})
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if calls != 3 {
			t.Errorf("server saw %d calls, want 3", calls)
		}
		if len(result.Boxes) != 0 {
			t.Errorf("got %d boxes, want 0", len(result.Boxes))
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		d := NewHTTPDetector(HTTPDetectorConfig{Name: "license", BaseURL: srv.URL, Model: "dl_model"})
		if _, err := d.Detect(context.Background(), testImage(10, 10), DetectOptions{}); err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("server saw %d calls, want 1", calls)
		}
	})
}

func TestEasyOCRClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/readtext" {
			t.Errorf("path = %s, want /readtext", r.URL.Path)
		}
		var req easyOCRRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Paragraph {
			t.Error("paragraph mode should be off")
		}
		json.NewEncoder(w).Encode(easyOCRResponse{Lines: []string{"WEST VIRGINIA", "DOB 01/02/1990"}})
	}))
	defer srv.Close()

	c := NewEasyOCRClient(EasyOCRConfig{Name: "easyocr", BaseURL: srv.URL})

	t.Run("read region joins fragments", func(t *testing.T) {
		got, err := c.ReadRegion(context.Background(), testImage(50, 10))
		if err != nil {
			t.Fatalf("ReadRegion() error = %v", err)
		}
		if got != "WEST VIRGINIA DOB 01/02/1990" {
			t.Errorf("ReadRegion() = %q", got)
		}
	})

	t.Run("read lines", func(t *testing.T) {
		lines, err := c.ReadLines(context.Background(), testImage(100, 100))
		if err != nil {
			t.Fatalf("ReadLines() error = %v", err)
		}
		if len(lines) != 2 || lines[0] != "WEST VIRGINIA" {
			t.Errorf("ReadLines() = %v", lines)
		}
	})
}

// stubRunner records tesseract invocations and returns canned output.
type stubRunner struct {
	lastArgs []string
	stdout   string
	err      error
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.lastArgs = args
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	return []byte(s.stdout), nil, nil
}

func TestTesseractEngine(t *testing.T) {
	t.Run("read region uses single line mode", func(t *testing.T) {
		runner := &stubRunner{stdout: " L-123-456-789-012 \n"}
		e := NewTesseractEngine(TesseractConfig{Name: "tesseract", Runner: runner})

		got, err := e.ReadRegion(context.Background(), testImage(80, 20))
		if err != nil {
			t.Fatalf("ReadRegion() error = %v", err)
		}
		if got != "L-123-456-789-012" {
			t.Errorf("ReadRegion() = %q", got)
		}

		joined := ""
		for _, a := range runner.lastArgs {
			joined += a + " "
		}
		for _, want := range []string{"--psm 7", "--oem 1", "-l eng"} {
			if !strings.Contains(joined, want) {
				t.Errorf("args %q missing %q", joined, want)
			}
		}
	})

	t.Run("read lines splits and drops blanks", func(t *testing.T) {
		runner := &stubRunner{stdout: "WEST VIRGINIA\n\n  DOB 01/02/1990  \n"}
		e := NewTesseractEngine(TesseractConfig{Name: "tesseract", Runner: runner})

		lines, err := e.ReadLines(context.Background(), testImage(100, 100))
		if err != nil {
			t.Fatalf("ReadLines() error = %v", err)
		}
		if len(lines) != 2 || lines[1] != "DOB 01/02/1990" {
			t.Errorf("ReadLines() = %v", lines)
		}
	})

	t.Run("propagates exec failure", func(t *testing.T) {
		runner := &stubRunner{err: context.DeadlineExceeded}
		e := NewTesseractEngine(TesseractConfig{Name: "tesseract", Runner: runner})

		if _, err := e.ReadRegion(context.Background(), testImage(10, 10)); err == nil {
			t.Error("expected error from failing runner")
		}
	})
}
