package main

import (
	"github.com/spf13/cobra"

	"docscan/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running docscan server via HTTP.

These commands require a running server (docscan serve).
Use --server to specify a custom server URL.

Examples:
  docscan api health              # Check server health
  docscan api scan photo.jpg      # Scan a document image
  docscan api scans               # List past scans`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Scan endpoints
	apiCmd.AddCommand((&endpoints.ScanEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ListScansEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.GetScanEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.DeleteScanEndpoint{}).Command(getServerURL))

	// Provider listing
	apiCmd.AddCommand((&endpoints.ProvidersEndpoint{}).Command(getServerURL))

	rootCmd.AddCommand(apiCmd)
}
