// Command spibus-sim simulates shared SPI buses with the example peripherals.
//
// A YAML bus file names the buses and the devices bound to each. The
// simulator then either replays a script of select, deselect and transfer
// steps or opens an interactive shell.
//
// Usage:
//
//	spibus-sim [flags]
//
// Flags:
//
//	-config string      Bus configuration file (required)
//	-script string      Script file (default: the script section of -config)
//	-interactive        Open the interactive shell instead of running a script
//	-trace string       Write a CBOR trace to this file
//	-session string     Trace session ID (random UUID if empty)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-keep-going         Run every script step even after a failure
//
// Examples:
//
//	# Replay the script embedded in a bus file
//	spibus-sim -config buses.yaml
//
//	# Trace a run for later analysis with spibus-log
//	spibus-sim -config buses.yaml -script smoke.yaml -trace run.sblog
//
//	# Drive the buses by hand
//	spibus-sim -config buses.yaml -interactive
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spibus-sim/spibus-go/cmd/spibus-sim/interactive"
	"github.com/spibus-sim/spibus-go/pkg/config"
	tracelog "github.com/spibus-sim/spibus-go/pkg/log"
	"github.com/spibus-sim/spibus-go/pkg/sim"
)

// Config holds the command-line configuration.
type Config struct {
	ConfigFile  string
	ScriptFile  string
	Interactive bool
	TraceFile   string
	SessionID   string
	LogLevel    string
	KeepGoing   bool
}

var cfg Config

func init() {
	flag.StringVar(&cfg.ConfigFile, "config", "", "Bus configuration file (required)")
	flag.StringVar(&cfg.ScriptFile, "script", "", "Script file (default: the script section of -config)")
	flag.BoolVar(&cfg.Interactive, "interactive", false, "Open the interactive shell instead of running a script")
	flag.StringVar(&cfg.TraceFile, "trace", "", "Write a CBOR trace to this file")
	flag.StringVar(&cfg.SessionID, "session", "", "Trace session ID (random UUID if empty)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.KeepGoing, "keep-going", false, "Run every script step even after a failure")
}

func main() {
	flag.Parse()

	if err := validateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	applyDefaults()

	logger := setupLogging(cfg.LogLevel, os.Stderr)

	file, err := config.Load(cfg.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load bus configuration: %v", err)
	}

	steps := file.Script
	if cfg.ScriptFile != "" {
		steps, err = config.LoadScript(cfg.ScriptFile, file)
		if err != nil {
			log.Fatalf("Failed to load script: %v", err)
		}
	}

	trace, closeTrace, err := openTrace(cfg.TraceFile, logger)
	if err != nil {
		log.Fatalf("Failed to open trace file: %v", err)
	}
	defer closeTrace()

	h, err := sim.New(file, sim.Options{
		Slog:      logger,
		Trace:     trace,
		SessionID: cfg.SessionID,
	})
	if err != nil {
		closeTrace()
		log.Fatalf("Failed to build buses: %v", err)
	}
	logger.Info("simulation ready", "session", h.SessionID(), "buses", strings.Join(h.Buses(), ","))

	if cfg.Interactive {
		runInteractive(h)
		return
	}

	if err := runScript(h, steps, cfg.KeepGoing, os.Stdout); err != nil {
		closeTrace()
		log.Fatalf("Script failed: %v", err)
	}
}

func validateConfig() error {
	if cfg.ConfigFile == "" {
		return fmt.Errorf("-config is required")
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.Interactive && cfg.ScriptFile != "" {
		return fmt.Errorf("-script and -interactive are mutually exclusive")
	}
	return nil
}

func applyDefaults() {
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}

// setupLogging configures the standard logger and returns the slog logger
// used by the simulation.
func setupLogging(level string, w *os.File) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	if lvl == slog.LevelDebug {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// openTrace returns the trace sink for the run. Events go to the trace file
// when one is named and to the operational log at debug level.
func openTrace(path string, logger *slog.Logger) (tracelog.Logger, func(), error) {
	adapter := tracelog.NewSlogAdapter(logger)
	if path == "" {
		return adapter, func() {}, nil
	}

	file, err := tracelog.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := file.Close(); err != nil {
			logger.Warn("closing trace file", "error", err)
		}
	}
	return tracelog.NewMultiLogger(file, adapter), closeFn, nil
}

func runInteractive(h *sim.Harness) {
	shell, err := interactive.New(h)
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	log.SetOutput(shell.Stdout())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shell.Run(ctx, cancel)
}
