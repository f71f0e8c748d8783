package main

import (
	"net/http"
	"testing"
	"time"

	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
)

func TestNewServerWriteTimeoutCoversPacing(t *testing.T) {
	cfg := &appconfig.Config{Port: "9000", ProviderTimeout: 12 * time.Second, ClassifierTimeout: 8 * time.Second}
	srv := newServer(cfg, http.NotFoundHandler())
	if srv.Addr != ":9000" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.WriteTimeout != 47*time.Second {
		t.Fatalf("expected 47s write timeout, got %s", srv.WriteTimeout)
	}

	cfg.ProviderTimeout, cfg.ClassifierTimeout = time.Second, time.Second
	if got := newServer(cfg, http.NotFoundHandler()).WriteTimeout; got != 30*time.Second {
		t.Fatalf("expected 30s floor, got %s", got)
	}
}
