package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"docscan/internal/home"
	"docscan/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	port, err := testutil.FindFreePort()
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	srv, err := New(Config{
		Host:   "127.0.0.1",
		Port:   port,
		Home:   h,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return srv, "http://127.0.0.1:" + port
}

func TestServerLifecycle(t *testing.T) {
	srv, url := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()
	t.Cleanup(func() {
		starter := testutil.StartServer{Cancel: cancel, Done: done}
		starter.Stop()
	})

	if err := testutil.WaitForServer(url, 10*time.Second); err != nil {
		t.Fatalf("server never became ready: %v", err)
	}

	client := testutil.HTTPClient()

	t.Run("health", func(t *testing.T) {
		resp, err := client.Get(url + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("ready", func(t *testing.T) {
		resp, err := client.Get(url + "/ready")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}

		var body struct {
			Status string `json:"status"`
			Store  string `json:"store"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Status != "ok" || body.Store != "ok" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("status reports unmanaged inference", func(t *testing.T) {
		status, err := testutil.GetStatus(url)
		if err != nil {
			t.Fatal(err)
		}
		if status.Server != "running" {
			t.Errorf("server = %s", status.Server)
		}
		if status.Infer.Container != "unmanaged" {
			t.Errorf("infer container = %s", status.Infer.Container)
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, url+"/api/scans", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want 204", resp.StatusCode)
		}
		if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing CORS header")
		}
	})

	t.Run("empty scan history", func(t *testing.T) {
		resp, err := client.Get(url + "/api/scans")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}

		var body struct {
			Count int `json:"count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Count != 0 {
			t.Errorf("count = %d, want 0", body.Count)
		}
	})
}

func TestServerShutdown(t *testing.T) {
	srv, url := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()

	if err := testutil.WaitForServer(url, 10*time.Second); err != nil {
		cancel()
		t.Fatalf("server never became ready: %v", err)
	}
	if !srv.IsRunning() {
		t.Error("expected server to report running")
	}

	cancel()
	if err := testutil.WaitForShutdown(done, 10*time.Second); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	if srv.IsRunning() {
		t.Error("expected server to report stopped")
	}
}

func TestServerDoubleStart(t *testing.T) {
	srv, url := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()
	t.Cleanup(func() {
		starter := testutil.StartServer{Cancel: cancel, Done: done}
		starter.Stop()
	})

	if err := testutil.WaitForServer(url, 10*time.Second); err != nil {
		t.Fatalf("server never became ready: %v", err)
	}

	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error starting an already running server")
	}
}
