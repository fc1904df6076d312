package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultOCRTimeout = 30 * time.Second

// EasyOCRConfig holds configuration for the EasyOCR sidecar adapter.
type EasyOCRConfig struct {
	Name    string
	BaseURL string
	Lang    string
	Timeout time.Duration
}

// EasyOCRClient is the primary OCR engine. It talks to the EasyOCR
// service exposed by the inference sidecar.
type EasyOCRClient struct {
	name    string
	baseURL string
	lang    string
	client  *http.Client
}

var _ OCREngine = (*EasyOCRClient)(nil)

// NewEasyOCRClient creates a new EasyOCR adapter.
func NewEasyOCRClient(cfg EasyOCRConfig) *EasyOCRClient {
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultOCRTimeout
	}
	return &EasyOCRClient{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		lang:    cfg.Lang,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the engine identifier.
func (c *EasyOCRClient) Name() string { return c.name }

type easyOCRRequest struct {
	ImageBase64 string `json:"image_base64"`
	Lang        string `json:"lang"`
	Paragraph   bool   `json:"paragraph"`
}

type easyOCRResponse struct {
	Lines []string `json:"lines"`
}

// ReadRegion extracts text from a cropped field region.
// EasyOCR may split one region into several fragments; they are joined
// with single spaces, matching how the service is used for field crops.
func (c *EasyOCRClient) ReadRegion(ctx context.Context, region image.Image) (string, error) {
	lines, err := c.readText(ctx, region)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(lines, " ")), nil
}

// ReadLines extracts text lines from a full document image.
func (c *EasyOCRClient) ReadLines(ctx context.Context, img image.Image) ([]string, error) {
	return c.readText(ctx, img)
}

func (c *EasyOCRClient) readText(ctx context.Context, img image.Image) ([]string, error) {
	encoded, err := encodePNGBase64(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	body, err := json.Marshal(easyOCRRequest{
		ImageBase64: encoded,
		Lang:        c.lang,
		Paragraph:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/readtext", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR request failed: status %d: %s", resp.StatusCode, truncate(string(data), 256))
	}

	var parsed easyOCRResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}
	return parsed.Lines, nil
}
