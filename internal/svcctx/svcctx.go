// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"docscan/internal/config"
	"docscan/internal/docdetect"
	"docscan/internal/home"
	"docscan/internal/infer"
	"docscan/internal/providers"
	"docscan/internal/scanstore"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config    *config.Manager
	Registry  *providers.Registry
	Pipeline  *docdetect.Pipeline
	ScanStore *scanstore.Store
	Infer     *infer.DockerManager
	Logger    *slog.Logger
	Home      *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// PipelineFrom extracts the scan pipeline from context.
func PipelineFrom(ctx context.Context) *docdetect.Pipeline {
	if s := ServicesFrom(ctx); s != nil {
		return s.Pipeline
	}
	return nil
}

// ScanStoreFrom extracts the scan store from context.
func ScanStoreFrom(ctx context.Context) *scanstore.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.ScanStore
	}
	return nil
}

// InferFrom extracts the inference container manager from context.
func InferFrom(ctx context.Context) *infer.DockerManager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Infer
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
