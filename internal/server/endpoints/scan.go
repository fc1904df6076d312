package endpoints

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"docscan/internal/api"
	"docscan/internal/docdetect"
	"docscan/internal/scanstore"
	"docscan/internal/svcctx"
)

// ScanResponse is returned by POST /api/scan.
type ScanResponse struct {
	Success      bool              `json:"success"`
	ScanID       string            `json:"scan_id,omitempty"`
	DetectedType string            `json:"detected_type"`
	Reason       string            `json:"decision_reason"`
	Warning      string            `json:"warning,omitempty"`
	Parsed       map[string]string `json:"parsed"`
}

// ScanEndpoint handles POST /api/scan with a multipart image upload.
type ScanEndpoint struct{}

var _ api.Endpoint = (*ScanEndpoint)(nil)

func (e *ScanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/scan", e.handler
}

func (e *ScanEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Scan an identity document image
//	@Description	Classify the image as passport or driving license and extract its fields
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"Document image (JPEG or PNG)"
//	@Success		200	{object}	ScanResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/scan [post]
func (e *ScanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form with 32MB max memory
	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	pipeline := pipelineFor(r.Context())
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "scan pipeline not initialized")
		return
	}

	result, err := pipeline.ClassifyAndExtract(r.Context(), data)
	if err != nil {
		if errors.Is(err, docdetect.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, "invalid or unsupported image")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("scan failed: %v", err))
		return
	}

	resp := ScanResponse{
		Success:      true,
		DetectedType: string(result.DocumentType),
		Reason:       result.Reason,
		Warning:      result.Warning,
		Parsed:       result.Fields,
	}

	// History is best-effort: a broken store must not fail the scan.
	if store := svcctx.ScanStoreFrom(r.Context()); store != nil {
		saved, err := store.Save(r.Context(), scanRecord(header.Filename, result))
		if err != nil {
			if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Error("failed to persist scan", "error", err)
			}
		} else {
			resp.ScanID = saved.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ScanEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "Classify an identity document image and extract its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ScanResponse
			if err := client.PostFile(cmd.Context(), "/api/scan", "file", args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

func scanRecord(filename string, result *docdetect.Result) *scanstore.Scan {
	return &scanstore.Scan{
		Filename:     filename,
		DetectedType: string(result.DocumentType),
		Reason:       result.Reason,
		Warning:      result.Warning,
		Fields:       result.Fields,
	}
}

// pipelineFor returns the request's scan pipeline: an injected one when
// present, otherwise one assembled from the current registry and config
// so provider hot-reload takes effect on the next request.
func pipelineFor(ctx context.Context) *docdetect.Pipeline {
	if p := svcctx.PipelineFrom(ctx); p != nil {
		return p
	}

	registry := svcctx.RegistryFrom(ctx)
	cfgMgr := svcctx.ConfigFrom(ctx)
	if registry == nil || cfgMgr == nil {
		return nil
	}
	cfg := cfgMgr.Get()
	logger := svcctx.LoggerFrom(ctx)

	passport, err := registry.GetDetector(cfg.Defaults.PassportDetector)
	if err != nil {
		return nil
	}
	license, err := registry.GetDetector(cfg.Defaults.LicenseDetector)
	if err != nil {
		return nil
	}
	ocr, err := registry.GetOCR(cfg.Defaults.OCRProvider)
	if err != nil {
		return nil
	}
	// The fallback engine is optional.
	fallback, _ := registry.GetOCR(cfg.Defaults.OCRFallback)

	return &docdetect.Pipeline{
		Passport:    passport,
		License:     license,
		OCR:         ocr,
		OCRFallback: fallback,
		Logger:      logger,
	}
}
