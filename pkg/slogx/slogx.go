package slogx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "prod"
	Level   string // e.g. "debug", "info", "warn", "error"
	Format  string // e.g. "json", "text"

	// File, when set, receives a copy of every record. The file is rotated
	// daily and old segments are pruned after a week.
	File string

	// Writer overrides stdout as the primary destination.
	Writer io.Writer
}

const (
	rotationTime = 24 * time.Hour
	retention    = 7 * 24 * time.Hour
)

// New returns a configured slog.Logger and installs it as the default.
func New(cfg Config) (*slog.Logger, error) {
	out, err := output(cfg)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger, nil
}

func output(cfg Config) (io.Writer, error) {
	var out io.Writer = os.Stdout
	if cfg.Writer != nil {
		out = cfg.Writer
	}
	if cfg.File == "" {
		return out, nil
	}

	rl, err := rotatelogs.New(
		cfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(retention),
	)
	if err != nil {
		return nil, fmt.Errorf("slogx: open log file: %w", err)
	}
	return io.MultiWriter(out, rl), nil
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
