package providers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// TesseractConfig holds configuration for the tesseract fallback engine.
type TesseractConfig struct {
	Name   string
	Binary string // binary name or absolute path; if empty -> "tesseract"
	Lang   string // default "eng"

	// Runner overrides command execution; tests use this.
	Runner Runner
}

// TesseractEngine is the fallback OCR engine. It shells out to the
// tesseract binary, writing the image to a temp file first.
//
// Region reads use --psm 7 (single text line) since field crops hold one
// line; full-image reads use the default page segmentation.
type TesseractEngine struct {
	name   string
	binary string
	lang   string
	runner Runner
}

var _ OCREngine = (*TesseractEngine)(nil)

// NewTesseractEngine creates a tesseract adapter.
func NewTesseractEngine(cfg TesseractConfig) *TesseractEngine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner{}
	}
	return &TesseractEngine{
		name:   cfg.Name,
		binary: cfg.Binary,
		lang:   cfg.Lang,
		runner: cfg.Runner,
	}
}

// Name returns the engine identifier.
func (e *TesseractEngine) Name() string { return e.name }

// ReadRegion extracts text from a field crop in single-line mode.
func (e *TesseractEngine) ReadRegion(ctx context.Context, region image.Image) (string, error) {
	out, err := e.run(ctx, region, "--oem", "1", "--psm", "7")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ReadLines extracts text lines from a full document image.
func (e *TesseractEngine) ReadLines(ctx context.Context, img image.Image) ([]string, error) {
	out, err := e.run(ctx, img)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (e *TesseractEngine) run(ctx context.Context, img image.Image, extraArgs ...string) (string, error) {
	tmp, err := writeTempPNG(img)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	args := []string{tmp, "stdout", "-l", e.lang}
	args = append(args, extraArgs...)

	out, errb, err := e.runner.Run(ctx, e.binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// writeTempPNG renders the image to a temp PNG file for the tesseract CLI.
func writeTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "docscan-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to encode temp PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return filepath.Clean(f.Name()), nil
}
