package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.ListenAddr() != "127.0.0.1:37780" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
	if cfg.Engine.GeneratePeriod != time.Second || cfg.Engine.DecayPeriod != 2*time.Second {
		t.Errorf("periods = %v/%v, want 1s/2s", cfg.Engine.GeneratePeriod, cfg.Engine.DecayPeriod)
	}
	if cfg.Engine.DecayRate != 0.01 {
		t.Errorf("DecayRate = %v, want 0.01", cfg.Engine.DecayRate)
	}
	if cfg.Engine.Node != "emotion_generator" {
		t.Errorf("Node = %q", cfg.Engine.Node)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AFFECT_SERVER_PORT", "9999")
	t.Setenv("AFFECT_ENGINE_DECAY_RATE", "0.1")
	t.Setenv("AFFECT_ENGINE_GENERATE_PERIOD", "500ms")
	t.Setenv("AFFECT_ENGINE_DEBUG", "true")
	t.Setenv("AFFECT_ENGINE_DEBUG_EMOTIONS", "Fear,Joy")
	t.Setenv("AFFECT_PARAMS_ATTEMPTS", "5")
	t.Setenv("AFFECT_DATABASE_PATH", "/tmp/affect-test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q, want default kept", cfg.Server.Bind)
	}
	if cfg.Engine.DecayRate != 0.1 {
		t.Errorf("DecayRate = %v, want 0.1", cfg.Engine.DecayRate)
	}
	if cfg.Engine.GeneratePeriod != 500*time.Millisecond {
		t.Errorf("GeneratePeriod = %v, want 500ms", cfg.Engine.GeneratePeriod)
	}
	if cfg.Engine.DecayPeriod != 2*time.Second {
		t.Errorf("DecayPeriod = %v, want default kept", cfg.Engine.DecayPeriod)
	}
	if !cfg.Engine.Debug {
		t.Error("Debug = false, want true")
	}
	if strings.Join(cfg.Engine.DebugEmotions, ",") != "Fear,Joy" {
		t.Errorf("DebugEmotions = %v", cfg.Engine.DebugEmotions)
	}
	if cfg.Params.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", cfg.Params.Attempts)
	}

	path, err := cfg.DBPath()
	if err != nil || path != "/tmp/affect-test.db" {
		t.Errorf("DBPath = (%q, %v)", path, err)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("AFFECT_SERVER_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed port")
	}
}
