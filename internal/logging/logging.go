// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lazypower/affect/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the global logger: human-readable lines on stderr and,
// when cfg.File is set, JSON lines in a size-rotated file.
func Setup(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(Writer(cfg, os.Stderr)).With().Timestamp().Logger()
	return nil
}

// Writer builds the log output for cfg on top of console.
func Writer(cfg config.LogConfig, console io.Writer) io.Writer {
	cw := zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	if cfg.File == "" {
		return cw
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 20
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize, // megabytes
		MaxBackups: 3,
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(cw, file)
}
