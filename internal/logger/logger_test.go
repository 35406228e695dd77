package logger

import (
	"testing"

	"forklift-training-service/internal/config"
	"go.uber.org/zap"
)

func TestLevelFor(t *testing.T) {
	var cfg config.Config
	if got := levelFor(cfg); got != zap.InfoLevel {
		t.Fatalf("expected info by default, got %v", got)
	}
	cfg.Server.Mode = "debug"
	if got := levelFor(cfg); got != zap.DebugLevel {
		t.Fatalf("expected debug in debug mode, got %v", got)
	}
	cfg.Log.Level = "warn"
	if got := levelFor(cfg); got != zap.WarnLevel {
		t.Fatalf("expected explicit level to win, got %v", got)
	}
}
