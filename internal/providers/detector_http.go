package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DefaultDetectorTimeout = 30 * time.Second
	detectorMaxAttempts    = 3
	detectorRetryDelay     = 500 * time.Millisecond
)

// detectResponseSchema validates the inference service response before it
// is trusted. The sidecar is a separate deployment; a version skew that
// changes the response shape should surface as a clear error, not as a
// silent zero-box result.
const detectResponseSchema = `{
  "type": "object",
  "required": ["boxes"],
  "properties": {
    "model": {"type": "string"},
    "boxes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "confidence", "x1", "y1", "x2", "y2"],
        "properties": {
          "label": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "x1": {"type": "integer"},
          "y1": {"type": "integer"},
          "x2": {"type": "integer"},
          "y2": {"type": "integer"}
        }
      }
    }
  }
}`

var detectSchema = jsonschema.MustCompileString("detect_response.json", detectResponseSchema)

// HTTPDetectorConfig holds configuration for an HTTP detector adapter.
type HTTPDetectorConfig struct {
	Name    string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// HTTPDetector runs object detection through the inference sidecar's
// /detect endpoint. One adapter instance is bound to one model.
type HTTPDetector struct {
	name    string
	baseURL string
	model   string
	client  *http.Client
}

var _ Detector = (*HTTPDetector)(nil)

// NewHTTPDetector creates a detector adapter for one model.
func NewHTTPDetector(cfg HTTPDetectorConfig) *HTTPDetector {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultDetectorTimeout
	}
	return &HTTPDetector{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the detector identifier.
func (d *HTTPDetector) Name() string { return d.name }

type detectRequest struct {
	Model         string  `json:"model"`
	ImageBase64   string  `json:"image_base64"`
	ConfThreshold float64 `json:"conf_threshold"`
	IoUThreshold  float64 `json:"iou_threshold"`
}

// Detect sends the image to the inference service and decodes the boxes.
func (d *HTTPDetector) Detect(ctx context.Context, img image.Image, opts DetectOptions) (*DetectResult, error) {
	encoded, err := encodePNGBase64(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	body, err := json.Marshal(detectRequest{
		Model:         d.model,
		ImageBase64:   encoded,
		ConfThreshold: opts.ConfThreshold,
		IoUThreshold:  opts.IoUThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal detect request: %w", err)
	}

	var raw []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect", bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := d.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				if resp.StatusCode >= 400 && resp.StatusCode < 500 {
					return retry.Unrecoverable(fmt.Errorf("detect request rejected: status %d: %s", resp.StatusCode, truncate(string(data), 256)))
				}
				return fmt.Errorf("detect request failed: status %d", resp.StatusCode)
			}
			raw = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(detectorMaxAttempts),
		retry.Delay(detectorRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("detector %s: %w", d.name, err)
	}

	if err := validateDetectResponse(raw); err != nil {
		return nil, fmt.Errorf("detector %s returned malformed response: %w", d.name, err)
	}

	var result DetectResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}
	return &result, nil
}

// validateDetectResponse checks the raw JSON against the response schema.
func validateDetectResponse(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := detectSchema.Validate(doc); err != nil {
		return err
	}
	return nil
}

// encodePNGBase64 renders an image to base64-encoded PNG for transport.
func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
