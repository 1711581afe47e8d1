// Package check provides environment diagnostics (--check mode) and
// pre-pipeline validation: directory access, codec round-trip, and memory
// headroom.
package check

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/backmassage/frameprep/internal/config"
	"github.com/backmassage/frameprep/internal/display"
	"github.com/backmassage/frameprep/internal/sysmem"
)

// Sentinel errors returned by VerifyDirs when a directory precondition fails.
var (
	ErrRawDirUnreadable     = errors.New("raw directory is not readable")
	ErrProcessedNotWritable = errors.New("processed directory is not writable")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: echo the effective config,
// probe both directories, run a JPEG encode round-trip, and report memory
// headroom. Informational only; it reports problems without stopping at the
// first one. Returns false if any hard check failed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== Environment Check ===")

	ok := true
	checkConfig(cfg, log)
	if !checkRawDir(cfg, log) {
		ok = false
	}
	if !checkProcessedDir(cfg, log) {
		ok = false
	}
	if !checkEncoder(cfg, log) {
		ok = false
	}
	checkMemory(log)
	return ok
}

// checkConfig echoes the geometry and processing knobs the run would use.
func checkConfig(cfg *config.Config, log Logger) {
	log.Info("Config: %s", cfg.ConfigPath)
	log.Info("  Canvas: %dx%d", cfg.ScreenWidth, cfg.ScreenHeight)
	log.Info("  Quality: %d, resampling: %s, blur radius: %d", cfg.JPEGQuality, cfg.Resampling, cfg.BlurRadius)
	if cfg.MaxInputDim > 0 {
		log.Info("  Input size cap: %d px", cfg.MaxInputDim)
	} else {
		log.Info("  Input size cap: disabled")
	}
}

// checkRawDir verifies the raw directory exists and can be listed.
func checkRawDir(cfg *config.Config, log Logger) bool {
	entries, err := os.ReadDir(cfg.RawDir)
	if err != nil {
		log.Error("Raw directory: %v", err)
		return false
	}
	log.Success("Raw directory readable: %s (%d entries)", cfg.RawDir, len(entries))
	return true
}

// checkProcessedDir verifies the processed directory can be created and
// written to, using a throwaway probe file.
func checkProcessedDir(cfg *config.Config, log Logger) bool {
	if err := os.MkdirAll(cfg.ProcessedDir, 0o755); err != nil {
		log.Error("Processed directory: %v", err)
		return false
	}
	probePath := filepath.Join(cfg.ProcessedDir, ".frameprep-write-check")
	if err := os.WriteFile(probePath, []byte("ok"), 0o644); err != nil {
		log.Error("Processed directory not writable: %v", err)
		return false
	}
	os.Remove(probePath)
	log.Success("Processed directory writable: %s", cfg.ProcessedDir)
	return true
}

// checkEncoder runs an in-memory JPEG encode/decode round-trip at the
// configured quality and reports the registered decoder formats.
func checkEncoder(cfg *config.Config, log Logger) bool {
	img := imaging.New(8, 8, image.White.C)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(cfg.JPEGQuality)); err != nil {
		log.Error("JPEG encode test failed: %v", err)
		return false
	}
	if _, _, err := image.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		log.Error("JPEG decode test failed: %v", err)
		return false
	}
	log.Success("JPEG round-trip works (quality %d)", cfg.JPEGQuality)
	log.Info("Decoders: %s", strings.Join(decodeFormats(), ", "))
	return true
}

// decodeFormats probes the stdlib image registry with magic-byte prefixes
// for each format the pipeline recognizes. There is no enumeration API, so
// headers of known formats are sniffed instead.
func decodeFormats() []string {
	magic := map[string][]byte{
		"jpeg": {0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
		"png":  {0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'},
		"gif":  []byte("GIF89a"),
		"bmp":  []byte("BM"),
		"tiff": {'I', 'I', 0x2A, 0x00},
		"webp": []byte("RIFF\x00\x00\x00\x00WEBPVP8 "),
	}
	var formats []string
	for name, m := range magic {
		_, format, _ := image.DecodeConfig(bytes.NewReader(m))
		// DecodeConfig fails on these stubs, but format sniffing succeeds
		// only when a decoder for the magic is registered.
		if format == name {
			formats = append(formats, name)
		}
	}
	sort.Strings(formats)
	return formats
}

// checkMemory reports available memory against the advisory threshold.
func checkMemory(log Logger) {
	avail, err := sysmem.Available()
	if err != nil {
		log.Warn("Cannot sample system memory: %v", err)
		return
	}
	if avail < sysmem.LowMemoryThreshold {
		log.Warn("Available memory: %s (below the %s advisory threshold)",
			display.FormatBytes(int64(avail)), display.FormatBytes(sysmem.LowMemoryThreshold))
		return
	}
	log.Success("Available memory: %s", display.FormatBytes(int64(avail)))
}

// VerifyDirs is the pre-pipeline fail-fast gate: the raw directory must be
// listable and the processed directory writable. Returns a wrapped sentinel
// error on failure.
func VerifyDirs(cfg *config.Config) error {
	if _, err := os.ReadDir(cfg.RawDir); err != nil {
		return fmt.Errorf("%w: %v", ErrRawDirUnreadable, err)
	}
	probePath := filepath.Join(cfg.ProcessedDir, ".frameprep-write-check")
	if err := os.WriteFile(probePath, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrProcessedNotWritable, err)
	}
	os.Remove(probePath)
	return nil
}
