package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"docscan/internal/api"
	"docscan/internal/scanstore"
	"docscan/internal/svcctx"
)

// ListScansResponse is returned by GET /api/scans.
type ListScansResponse struct {
	Scans []*scanstore.Scan `json:"scans"`
	Count int               `json:"count"`
}

// ListScansEndpoint handles GET /api/scans.
type ListScansEndpoint struct{}

var _ api.Endpoint = (*ListScansEndpoint)(nil)

func (e *ListScansEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/scans", e.handler
}

func (e *ListScansEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List past scans
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of scans to return"
//	@Success		200	{object}	ListScansResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/scans [get]
func (e *ListScansEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.ScanStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not initialized")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	scans, err := store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list scans: %v", err))
		return
	}
	if scans == nil {
		scans = []*scanstore.Scan{}
	}

	writeJSON(w, http.StatusOK, ListScansResponse{Scans: scans, Count: len(scans)})
}

func (e *ListScansEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List past scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/scans"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}
			var resp ListScansResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of scans to return")
	return cmd
}

// GetScanEndpoint handles GET /api/scans/{id}.
type GetScanEndpoint struct{}

var _ api.Endpoint = (*GetScanEndpoint)(nil)

func (e *GetScanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/scans/{id}", e.handler
}

func (e *GetScanEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a past scan
//	@Produce		json
//	@Param			id	path		string	true	"Scan ID"
//	@Success		200	{object}	scanstore.Scan
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/scans/{id} [get]
func (e *GetScanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.ScanStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not initialized")
		return
	}

	scan, err := store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, scanstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get scan: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, scan)
}

func (e *GetScanEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "scans-get <id>",
		Short: "Get a past scan by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var scan scanstore.Scan
			if err := client.Get(cmd.Context(), "/api/scans/"+args[0], &scan); err != nil {
				return err
			}
			return api.Output(scan)
		},
	}
}

// DeleteScanEndpoint handles DELETE /api/scans/{id}.
type DeleteScanEndpoint struct{}

var _ api.Endpoint = (*DeleteScanEndpoint)(nil)

func (e *DeleteScanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/scans/{id}", e.handler
}

func (e *DeleteScanEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a past scan
//	@Param			id	path	string	true	"Scan ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/scans/{id} [delete]
func (e *DeleteScanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.ScanStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not initialized")
		return
	}

	err := store.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, scanstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete scan: %v", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteScanEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "scans-delete <id>",
		Short: "Delete a past scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/scans/"+args[0]); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
}
