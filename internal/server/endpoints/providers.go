package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"docscan/internal/api"
	"docscan/internal/svcctx"
)

// ProvidersResponse lists the registered providers by kind.
type ProvidersResponse struct {
	Detectors []string `json:"detectors"`
	OCR       []string `json:"ocr"`
}

// ProvidersEndpoint handles GET /api/providers.
type ProvidersEndpoint struct{}

var _ api.Endpoint = (*ProvidersEndpoint)(nil)

func (e *ProvidersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/providers", e.handler
}

func (e *ProvidersEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List registered providers
//	@Produce		json
//	@Success		200	{object}	ProvidersResponse
//	@Router			/api/providers [get]
func (e *ProvidersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := ProvidersResponse{Detectors: []string{}, OCR: []string{}}

	if registry := svcctx.RegistryFrom(r.Context()); registry != nil {
		resp.Detectors = registry.ListDetectors()
		resp.OCR = registry.ListOCR()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ProvidersEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered detectors and OCR engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ProvidersResponse
			if err := client.Get(cmd.Context(), "/api/providers", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
