package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "server:\n  port: \"9090\"\nredis:\n  addr: localhost:6379\nbranding:\n  type: minio\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.Data.Dir != "data" || cfg.Session.Cookie != "forklift_session" || cfg.Branding.Type != "minio" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for a missing file, got %v", err)
	}
	if cfg.Server.Mode != "release" || cfg.RateLimit.MaxRequests != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"30s", 30 * time.Second},
		{"bogus", time.Minute},
	}
	for _, c := range cases {
		if got := TTLDuration(c.raw, time.Minute); got != c.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
