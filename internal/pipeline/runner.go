// Package pipeline orchestrates the batch: input discovery, per-file
// validation and processing, orphan cleanup, and summary reporting.
//
// Processing is strictly sequential. The target deployment is
// memory-constrained hardware where peak per-image memory (several
// full-resolution buffers alive at once for the portrait composite) is the
// binding constraint, not throughput.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/disintegration/imaging"

	"github.com/backmassage/frameprep/internal/config"
	"github.com/backmassage/frameprep/internal/display"
	"github.com/backmassage/frameprep/internal/layout"
	"github.com/backmassage/frameprep/internal/logging"
	"github.com/backmassage/frameprep/internal/naming"
	"github.com/backmassage/frameprep/internal/probe"
	"github.com/backmassage/frameprep/internal/sysmem"
)

// Decode footprint estimate: 4 bytes per pixel, and the portrait composite
// keeps a second full-size buffer (blurred backdrop) alive alongside the
// source.
const (
	bytesPerPixel  = 4
	workingBuffers = 2
)

// Run is the batch entry point: discover inputs and the processed set,
// process each remaining file sequentially, reconcile orphans, and report.
// Per-file failures never abort the batch.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, err := DiscoverInputs(cfg.RawDir)
	if err != nil {
		log.Error("Input discovery failed: %v", err)
		return stats
	}
	processed, err := DiscoverProcessed(cfg.ProcessedDir)
	if err != nil {
		log.Error("Processed-set discovery failed: %v", err)
		return stats
	}

	stats.Total = len(files)
	for _, stem := range duplicateStems(files) {
		log.Warn("Duplicate stem %q in raw directory; outputs will collide (last write wins)", stem)
	}

	engine := layout.NewEngine(cfg)
	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		if processed[naming.Stem(path)] {
			log.Debug(cfg.Verbose, "Skipping already processed: %s", filepath.Base(path))
			stats.Skipped++
			continue
		}

		warnLowMemory(log, "before")

		if ferr := processFile(cfg, log, engine, path, &stats); ferr != nil {
			logFailure(log, filepath.Base(path), ferr)
			stats.Failed++
		} else {
			stats.Succeeded++
		}

		warnLowMemory(log, "after")

		// All buffers for the file just processed are out of scope here.
		// Forcing a reclamation pass after every file is deliberate policy on
		// memory-constrained hosts, keeping peak RSS bounded across a batch of
		// hundreds of large images in one long-lived process.
		debug.FreeOSMemory()
	}

	CleanupOrphans(cfg, log, stemSet(files), &stats)
	logSummary(cfg, log, &stats)
	return stats
}

// processFile handles one raw image: validate → budget check → decode →
// normalize → compose → persist. All failures come back as a tagged
// *FileError; a recovered panic maps to KindUnexpected.
func processFile(
	cfg *config.Config,
	log *logging.Logger,
	engine *layout.Engine,
	path string,
	stats *RunStats,
) (ferr *FileError) {
	defer func() {
		if r := recover(); r != nil {
			ferr = failf(KindUnexpected, "panic while processing: %v", r)
		}
	}()

	basename := filepath.Base(path)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	// --- Validate (pre-decode) ---
	info, err := probe.ValidateFile(path)
	if err != nil {
		return &FileError{Kind: KindValidation, Err: err}
	}

	// --- Memory budget ---
	if ferr := checkMemoryBudget(info); ferr != nil {
		return ferr
	}

	// --- Decode with EXIF auto-rotation ---
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return &FileError{Kind: KindDecode, Err: err}
	}

	// --- Normalize and compose ---
	img = normalize(img, cfg.MaxInputDim)
	b := img.Bounds()
	if b.Dx() < info.Width || b.Dy() < info.Height {
		log.Debug(cfg.Verbose, "  Capped to %dx%d (max input dimension %d)", b.Dx(), b.Dy(), cfg.MaxInputDim)
	}

	orientation := "portrait"
	if layout.IsLandscape(img) {
		orientation = "landscape"
	}
	log.Debug(cfg.Verbose, "  Composing as %s: %dx%d", orientation, b.Dx(), b.Dy())

	composite := engine.Compose(img)

	// --- Persist ---
	outPath := naming.OutputPath(cfg.ProcessedDir, basename)
	if cfg.DryRun {
		log.Success("[DRY] Would write %s (%dx%d)", filepath.Base(outPath), cfg.ScreenWidth, cfg.ScreenHeight)
		return nil
	}

	if err := imaging.Save(composite, outPath, imaging.JPEGQuality(cfg.JPEGQuality)); err != nil {
		os.Remove(outPath) // Do not leave a partial output behind.
		return &FileError{Kind: KindIO, Err: err}
	}

	stats.TotalInputBytes += info.Size
	if fi, err := os.Stat(outPath); err == nil {
		stats.TotalOutputBytes += fi.Size()
	}

	log.Success("Saved: %s (%dx%d)", filepath.Base(outPath), cfg.ScreenWidth, cfg.ScreenHeight)
	return nil
}

// normalize converts exotic color modes (indexed, alpha-bearing, CMYK, …)
// to plain NRGBA and applies the hard input-dimension cap. EXIF rotation
// already happened at decode time.
func normalize(img image.Image, maxDim int) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.Gray:
		// Already a plain color mode.
	default:
		img = imaging.Clone(img)
	}

	if maxDim > 0 {
		b := img.Bounds()
		if b.Dx() > maxDim || b.Dy() > maxDim {
			// The cap bounds peak decode memory, so it always uses the
			// highest-quality filter independent of the user-selected one.
			img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		}
	}
	return img
}

// checkMemoryBudget estimates the decode-and-compose footprint from the
// header probe and refuses the file when it cannot fit in available memory.
// Sampling failures are ignored: the guard protects the host, it must not
// invent failures of its own.
func checkMemoryBudget(info *probe.Info) *FileError {
	avail, err := sysmem.Available()
	if err != nil || avail == 0 {
		return nil
	}
	need := uint64(info.Pixels()) * bytesPerPixel * workingBuffers
	if need > avail {
		return failf(KindMemory, "image %dx%d needs ~%s to process, only %s available",
			info.Width, info.Height,
			display.FormatBytes(int64(need)), display.FormatBytes(int64(avail)))
	}
	return nil
}

// warnLowMemory samples available memory and warns below the advisory
// threshold. It never aborts anything.
func warnLowMemory(log *logging.Logger, when string) {
	avail, err := sysmem.Available()
	if err != nil {
		return
	}
	if avail < sysmem.LowMemoryThreshold {
		log.Warn("Low memory %s processing: %s available", when, display.FormatBytes(int64(avail)))
	}
}

// logFailure maps a failure kind to its log line. The category shows up in
// the message so failures in a long batch log remain greppable.
func logFailure(log *logging.Logger, name string, ferr *FileError) {
	switch ferr.Kind {
	case KindValidation:
		log.Error("Validation failed for %s: %v", name, ferr.Err)
	case KindDecode:
		log.Error("Cannot decode %s (possibly corrupt): %v", name, ferr.Err)
	case KindMemory:
		log.Error("Memory guard refused %s: %v", name, ferr.Err)
	case KindIO:
		log.Error("Write failed for %s: %v", name, ferr.Err)
	default:
		log.Error("Unexpected failure for %s: %v", name, ferr.Err)
	}
	fmt.Println()
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d images in %s", stats.Total, cfg.RawDir)
	log.Info("Canvas: %dx%d, quality %d, resampling %s, blur %d",
		cfg.ScreenWidth, cfg.ScreenHeight, cfg.JPEGQuality, cfg.Resampling, cfg.BlurRadius)
	if cfg.MaxInputDim > 0 {
		log.Info("Input size cap: %d px", cfg.MaxInputDim)
	}
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed", stats.Succeeded, stats.Skipped, stats.Failed)
	if stats.Orphans > 0 {
		log.Info("  Orphaned outputs removed: %d", stats.Orphans)
	}
	if !cfg.DryRun && stats.TotalOutputBytes > 0 {
		log.Info("  Bytes: read %s, wrote %s",
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	}
	if stats.Discrepancy() {
		log.Warn("Accounted for %d of %d expected files; the batch may have been terminated early",
			stats.Succeeded+stats.Failed, stats.Total-stats.Skipped)
	}
}
