package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"docscan/internal/config"
	"docscan/internal/infer"
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Manage the inference container",
	Long: `Manage the inference container lifecycle.

The container serves the passport and license detectors plus the easyocr
engine over HTTP. The server can manage it automatically (serve
--manage-infer); these commands control it by hand.

Examples:
  docscan infer start   # Start the inference container
  docscan infer stop    # Stop the container
  docscan infer status  # Check container status
  docscan infer logs    # View container logs`,
}

var inferStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inference container",
	Long: `Start the inference container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getInferManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting inference container...")
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start inference container: %w", err)
		}

		fmt.Printf("Inference is running at %s\n", mgr.URL())
		return nil
	},
}

var inferStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the inference container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getInferManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping inference container...")
		if err := mgr.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop inference container: %w", err)
		}

		fmt.Println("Inference container stopped")
		return nil
	},
}

var inferStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show inference container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getInferManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case infer.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("URL: %s\n", mgr.URL())

			if err := probeHealth(mgr.URL()); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case infer.StatusStopped:
			fmt.Printf("Status: %s (use 'docscan infer start' to start)\n", status)
		case infer.StatusNotFound:
			fmt.Printf("Status: %s (use 'docscan infer start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var inferLogsTail string

var inferLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show inference container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getInferManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(ctx, inferLogsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var inferRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the inference container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getInferManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing inference container...")
		if err := mgr.Remove(ctx); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Inference container removed")
		return nil
	},
}

var inferWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for inference to be ready",
	Long: `Wait for the inference container to be ready to accept requests.

Model loading can take a while after the container starts. This is
useful in scripts to ensure inference is up before scanning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getInferManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		fmt.Printf("Waiting for inference (timeout: %s)...\n", timeout)

		if err := mgr.WaitReady(ctx, timeout); err != nil {
			return fmt.Errorf("inference not ready: %w", err)
		}

		fmt.Println("Inference is ready")
		return nil
	},
}

func init() {
	inferCmd.AddCommand(inferStartCmd)
	inferCmd.AddCommand(inferStopCmd)
	inferCmd.AddCommand(inferStatusCmd)
	inferCmd.AddCommand(inferLogsCmd)
	inferCmd.AddCommand(inferRemoveCmd)
	inferCmd.AddCommand(inferWaitCmd)

	inferLogsCmd.Flags().StringVar(&inferLogsTail, "tail", "100", "Number of lines to show from the end")
	inferWaitCmd.Flags().Duration("timeout", 60*time.Second, "Timeout waiting for inference")

	rootCmd.AddCommand(inferCmd)
}

// getInferManager creates a DockerManager from the config file settings.
func getInferManager() (*infer.DockerManager, error) {
	cfgMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	inferCfg := cfgMgr.Get().Infer

	return infer.NewDockerManager(infer.DockerConfig{
		ContainerName: inferCfg.ContainerName,
		Image:         inferCfg.Image,
		HostPort:      inferCfg.Port,
	})
}

func probeHealth(baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
