package main

import (
	"github.com/spf13/cobra"

	"docscan/internal/api"
	"docscan/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docscan",
	Short: "Identity document scanner with detector-guided OCR extraction",
	Long: `Docscan classifies scanned identity documents as passports or driving
licenses and extracts their labeled fields.

The pipeline includes:
  - Multi-signal document type classification with abstaining votes
  - YOLO detector regions cropped and read by OCR with per-region fallback
  - Field normalizers for dates, sex, document numbers, and addresses
  - Region exception handling for state-specific quirks`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docscan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "docscan home directory (default: ~/.docscan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
