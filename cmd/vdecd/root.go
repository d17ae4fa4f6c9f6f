package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamzrod/vdec-manager/internal/config"
)

var (
	envFile   string
	logFormat string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "vdecd",
	Short: "Video decode manager daemon.",
	Long: `vdecd serializes decode commands from many logical decoder ` +
		`instances onto one hardware decode core, and publishes its ` +
		`health as a register block.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with VDEC_* overrides (skipped when missing)")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text | json")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug | info | warn | error")
}

// newLogger builds the process logger from the global flags.
func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("bad --log-format %q", format)
}

func setupLogger() (*slog.Logger, error) {
	log, err := newLogger(os.Stderr, logFormat, logLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

// loadConfig runs the full config path: load, env overrides, validate, normalize.
func loadConfig(path, env string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.ApplyEnv(cfg, env); err != nil {
		return nil, fmt.Errorf("config env failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}
