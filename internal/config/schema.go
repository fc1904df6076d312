package config

import (
	"time"

	"docscan/internal/providers"
)

// Config holds docscan configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Detectors    map[string]DetectorCfg `mapstructure:"detectors" yaml:"detectors"`
	OCRProviders map[string]OCRCfg      `mapstructure:"ocr_providers" yaml:"ocr_providers"`
	Defaults     DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
	Infer        InferCfg               `mapstructure:"infer" yaml:"infer"`
}

// DetectorCfg configures one HTTP object-detection provider.
type DetectorCfg struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"` // supports ${ENV_VAR} syntax
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// OCRCfg configures an OCR engine.
type OCRCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`         // "easyocr", "tesseract"
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"` // easyocr only
	Binary         string `mapstructure:"binary" yaml:"binary"`     // tesseract only
	Lang           string `mapstructure:"lang" yaml:"lang"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg names which providers the scan pipeline uses.
type DefaultsCfg struct {
	PassportDetector string `mapstructure:"passport_detector" yaml:"passport_detector"`
	LicenseDetector  string `mapstructure:"license_detector" yaml:"license_detector"`
	OCRProvider      string `mapstructure:"ocr_provider" yaml:"ocr_provider"`
	OCRFallback      string `mapstructure:"ocr_fallback" yaml:"ocr_fallback"`
}

// InferCfg holds the inference sidecar container configuration.
type InferCfg struct {
	// ContainerName is the Docker container name (default: docscan-inference)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 8090)
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Detectors: map[string]DetectorCfg{
			"passport": {
				BaseURL:        "http://localhost:8090",
				Model:          "passport",
				TimeoutSeconds: 30,
				Enabled:        true,
			},
			"license": {
				BaseURL:        "http://localhost:8090",
				Model:          "license",
				TimeoutSeconds: 30,
				Enabled:        true,
			},
		},
		OCRProviders: map[string]OCRCfg{
			"easyocr": {
				Type:           "easyocr",
				BaseURL:        "http://localhost:8090",
				Lang:           "en",
				TimeoutSeconds: 30,
				Enabled:        true,
			},
			"tesseract": {
				Type:    "tesseract",
				Binary:  "tesseract",
				Lang:    "eng",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			PassportDetector: "passport",
			LicenseDetector:  "license",
			OCRProvider:      "easyocr",
			OCRFallback:      "tesseract",
		},
		Infer: InferCfg{
			ContainerName: "docscan-inference",
			Image:         "docscan/inference:latest",
			Port:          "8090",
		},
	}
}

// GetDetector returns a detector config by name.
func (c *Config) GetDetector(name string) (DetectorCfg, bool) {
	cfg, ok := c.Detectors[name]
	return cfg, ok
}

// GetOCRProvider returns an OCR provider config by name.
func (c *Config) GetOCRProvider(name string) (OCRCfg, bool) {
	cfg, ok := c.OCRProviders[name]
	return cfg, ok
}

// ToRegistryConfig converts the config to a format suitable for
// providers.Registry. It resolves all ${ENV_VAR} references in URLs and
// skips disabled entries.
func (c *Config) ToRegistryConfig() providers.RegistryConfig {
	var cfg providers.RegistryConfig

	for name, det := range c.Detectors {
		if !det.Enabled {
			continue
		}
		cfg.Detectors = append(cfg.Detectors, providers.DetectorSpec{
			Name:    name,
			BaseURL: ResolveEnvVars(det.BaseURL),
			Model:   det.Model,
			Timeout: time.Duration(det.TimeoutSeconds) * time.Second,
		})
	}

	for name, ocr := range c.OCRProviders {
		if !ocr.Enabled {
			continue
		}
		cfg.OCR = append(cfg.OCR, providers.OCRSpec{
			Name:    name,
			Type:    ocr.Type,
			BaseURL: ResolveEnvVars(ocr.BaseURL),
			Binary:  ocr.Binary,
			Lang:    ocr.Lang,
			Timeout: time.Duration(ocr.TimeoutSeconds) * time.Second,
		})
	}

	return cfg
}
