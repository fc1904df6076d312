package endpoints

import (
	"docscan/internal/api"
	"docscan/internal/infer"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	InferManager *infer.DockerManager
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{InferManager: cfg.InferManager},
		&StatusEndpoint{InferManager: cfg.InferManager},

		// Scan endpoints
		&ScanEndpoint{},
		&ListScansEndpoint{},
		&GetScanEndpoint{},
		&DeleteScanEndpoint{},

		// Provider endpoints
		&ProvidersEndpoint{},
	}
}
