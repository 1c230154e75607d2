package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lazypower/affect/internal/config"
	"github.com/rs/zerolog"
)

func TestSetupLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	if err := Setup(config.LogConfig{Level: "WARN"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", zerolog.GlobalLevel())
	}

	if err := Setup(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestWriterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affect.log")
	var console bytes.Buffer

	logger := zerolog.New(Writer(config.LogConfig{File: path}, &console))
	logger.Info().Str("emotion", "Joy").Msg("hello")

	if !strings.Contains(console.String(), "hello") {
		t.Errorf("console output = %q", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"emotion":"Joy"`) {
		t.Errorf("file output = %q", data)
	}
}
