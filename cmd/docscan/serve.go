package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"docscan/internal/config"
	"docscan/internal/home"
	"docscan/internal/infer"
	"docscan/internal/server"
)

var (
	serveHost        string
	servePort        string
	serveManageInfer bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docscan server",
	Long: `Start the docscan HTTP server.

With --manage-infer the server also starts the inference container
(detectors + easyocr) and stops it again on shutdown. Without it, the
server expects the detector and OCR services from the config file to
already be reachable.

The server provides:
  - /health       - Basic server health check
  - /ready        - Readiness check (includes scan store status)
  - /api/scan     - Classify a document image and extract its fields
  - /api/scans    - Scan history

Examples:
  docscan serve                    # Start on default port 8080
  docscan serve --port 3000        # Start on custom port
  docscan serve --manage-infer     # Also manage the inference container`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load config and watch for changes so provider settings
		// take effect without a restart
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		inferCfg := cfgMgr.Get().Infer

		// Create server
		srv, err := server.New(server.Config{
			Host:        serveHost,
			Port:        servePort,
			Home:        h,
			ManageInfer: serveManageInfer,
			InferConfig: infer.DockerConfig{
				ContainerName: inferCfg.ContainerName,
				Image:         inferCfg.Image,
				HostPort:      inferCfg.Port,
			},
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
	serveCmd.Flags().BoolVar(&serveManageInfer, "manage-infer", false, "Start and stop the inference container with the server")

	rootCmd.AddCommand(serveCmd)
}
