// Command frameprep is the CLI entrypoint for the photo-frame batch image
// processor.
//
// It loads the config file, applies flag overrides, and either runs
// environment diagnostics (--check), the input report (--analyze), or the
// processing pipeline — once, or repeatedly in --watch mode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/backmassage/frameprep/internal/check"
	"github.com/backmassage/frameprep/internal/config"
	"github.com/backmassage/frameprep/internal/display"
	"github.com/backmassage/frameprep/internal/logging"
	"github.com/backmassage/frameprep/internal/pipeline"
	"github.com/backmassage/frameprep/internal/watcher"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// watchDebounce is the quiet period after the last raw-directory change
// before a new batch starts in --watch mode.
const watchDebounce = 3 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	_ = godotenv.Load() // Optional .env (e.g. FRAMEPREP_CONFIG); absence is fine.

	cfg := config.DefaultConfig()
	ov, err := config.ParseFlags(&cfg, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frameprep: %v\n", err)
		return 1
	}

	cfgPath, err := config.Locate(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frameprep: %v\n", err)
		return 1
	}
	if err := config.LoadFile(&cfg, cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "frameprep: %v\n", err)
		return 1
	}
	ov.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "frameprep: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(cfg.ColorMode, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frameprep: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	display.PrintBanner()

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	// Resolve and validate paths: raw must exist, processed is created if
	// needed, and the two directories must be disjoint (the processed
	// directory is pipeline-owned and subject to orphan deletion).
	rawAbs, err := absPath(cfg.RawDir)
	if err != nil {
		log.Error("Raw directory not found: %s", cfg.RawDir)
		return 1
	}
	if err := os.MkdirAll(cfg.ProcessedDir, 0o755); err != nil {
		log.Error("Cannot create processed directory: %s", cfg.ProcessedDir)
		return 1
	}
	processedAbs, err := absPath(cfg.ProcessedDir)
	if err != nil {
		log.Error("Cannot resolve processed path: %s", cfg.ProcessedDir)
		return 1
	}
	if err := cfg.ValidatePaths(rawAbs, processedAbs); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== frameprep v%s (%s) ===", version, commit)
	log.Info("Config: %s", cfg.ConfigPath)
	log.Info("Raw:       %s", cfg.RawDir)
	log.Info("Processed: %s", cfg.ProcessedDir)
	if cfg.DryRun {
		log.Warn("DRY RUN — no files will be written or deleted")
	}
	log.Info("")

	// Fail fast if either directory is unusable before touching any file.
	if err := check.VerifyDirs(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Signal handling — cancel context on SIGINT/SIGTERM so the
	// pipeline can stop between files without leaving partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current file…")
		cancel()
	}()

	if cfg.AnalyzeOnly {
		pipeline.Analyze(ctx, &cfg, log)
		return 0
	}

	// Phase 4: Run the batch — once, or per raw-directory change in watch mode.
	stats := pipeline.Run(ctx, &cfg, log)

	if cfg.Watch {
		return watchLoop(ctx, &cfg, log, stats)
	}
	if stats.Failed > 0 {
		return 1
	}
	return 0
}

// watchLoop re-runs the batch whenever the raw directory changes, until the
// context is cancelled. The exit code reflects the last completed batch.
func watchLoop(ctx context.Context, cfg *config.Config, log *logging.Logger, last pipeline.RunStats) int {
	w, err := watcher.New(cfg.RawDir, watchDebounce, cfg.Verbose, log)
	if err != nil {
		log.Error("Cannot watch raw directory: %v", err)
		return 1
	}
	defer w.Close()

	log.Info("Watching %s for changes (Ctrl-C to stop)", cfg.RawDir)
	for w.Wait(ctx) {
		log.Info("")
		log.Info("Raw directory changed, re-running batch")
		last = pipeline.Run(ctx, cfg, log)
		log.Info("Watching %s for changes (Ctrl-C to stop)", cfg.RawDir)
	}

	if last.Failed > 0 {
		return 1
	}
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of raw vs processed directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
