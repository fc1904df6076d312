package providers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry holds references to detectors and OCR engines.
// It supports config-driven instantiation, hot-reload, and provides
// thread-safe access.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
	ocr       map[string]OCREngine
	logger    *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
		ocr:       make(map[string]OCREngine),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterDetector registers a detector by name.
func (r *Registry) RegisterDetector(name string, d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors[name] = d
	if r.logger != nil {
		r.logger.Info("registered detector", "name", name)
	}
}

// RegisterOCR registers an OCR engine by name.
func (r *Registry) RegisterOCR(name string, e OCREngine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ocr[name] = e
	if r.logger != nil {
		r.logger.Info("registered OCR engine", "name", name)
	}
}

// GetDetector returns a detector by name.
func (r *Registry) GetDetector(name string) (Detector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[name]
	if !ok {
		return nil, fmt.Errorf("detector not found: %s", name)
	}
	return d, nil
}

// GetOCR returns an OCR engine by name.
func (r *Registry) GetOCR(name string) (OCREngine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.ocr[name]
	if !ok {
		return nil, fmt.Errorf("OCR engine not found: %s", name)
	}
	return e, nil
}

// ListDetectors returns all registered detector names.
func (r *Registry) ListDetectors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.detectors))
	for name := range r.detectors {
		names = append(names, name)
	}
	return names
}

// ListOCR returns all registered OCR engine names.
func (r *Registry) ListOCR() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ocr))
	for name := range r.ocr {
		names = append(names, name)
	}
	return names
}

// HasDetector checks if a detector is registered.
func (r *Registry) HasDetector(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.detectors[name]
	return ok
}

// HasOCR checks if an OCR engine is registered.
func (r *Registry) HasOCR(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ocr[name]
	return ok
}

// DetectorSpec configures one detector adapter.
type DetectorSpec struct {
	Name    string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OCRSpec configures one OCR engine adapter.
type OCRSpec struct {
	Name    string
	Type    string // "easyocr" or "tesseract"
	BaseURL string // easyocr only
	Binary  string // tesseract only
	Lang    string
	Timeout time.Duration
}

// RegistryConfig describes the full provider set built from configuration.
type RegistryConfig struct {
	Detectors []DetectorSpec
	OCR       []OCRSpec
}

// Reload replaces the registered providers with the given configuration.
// Unknown OCR engine types are skipped with a warning so a bad config
// entry cannot take down the whole registry.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detectors = make(map[string]Detector)
	r.ocr = make(map[string]OCREngine)

	for _, spec := range cfg.Detectors {
		r.detectors[spec.Name] = NewHTTPDetector(HTTPDetectorConfig{
			Name:    spec.Name,
			BaseURL: spec.BaseURL,
			Model:   spec.Model,
			Timeout: spec.Timeout,
		})
		if r.logger != nil {
			r.logger.Info("registered detector", "name", spec.Name, "model", spec.Model)
		}
	}

	for _, spec := range cfg.OCR {
		var engine OCREngine
		switch spec.Type {
		case "easyocr":
			engine = NewEasyOCRClient(EasyOCRConfig{
				Name:    spec.Name,
				BaseURL: spec.BaseURL,
				Lang:    spec.Lang,
				Timeout: spec.Timeout,
			})
		case "tesseract":
			engine = NewTesseractEngine(TesseractConfig{
				Name:   spec.Name,
				Binary: spec.Binary,
				Lang:   spec.Lang,
			})
		default:
			if r.logger != nil {
				r.logger.Warn("unknown OCR engine type", "name", spec.Name, "type", spec.Type)
			}
			continue
		}
		r.ocr[spec.Name] = engine
		if r.logger != nil {
			r.logger.Info("registered OCR engine", "name", spec.Name, "type", spec.Type)
		}
	}
}
