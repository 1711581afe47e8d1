package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/frameprep/internal/config"

	// The real binary registers webp through the probe package; mirror that
	// here so decoder reporting sees the same registry.
	_ "github.com/backmassage/frameprep/internal/probe"
)

// recordingLogger captures log lines for assertions.
type recordingLogger struct {
	lines  []string
	errors int
}

func (r *recordingLogger) record(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Info(f string, a ...interface{})    { r.record(f, a...) }
func (r *recordingLogger) Success(f string, a ...interface{}) { r.record(f, a...) }
func (r *recordingLogger) Warn(f string, a ...interface{})    { r.record(f, a...) }
func (r *recordingLogger) Error(f string, a ...interface{})   { r.errors++; r.record(f, a...) }
func (r *recordingLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		r.record(f, a...)
	}
}

func checkConfigFor(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ScreenWidth = 800
	cfg.ScreenHeight = 480
	cfg.RawDir = t.TempDir()
	cfg.ProcessedDir = t.TempDir()
	return &cfg
}

func TestRunCheck_HealthyEnvironment(t *testing.T) {
	cfg := checkConfigFor(t)
	log := &recordingLogger{}

	if !RunCheck(cfg, log) {
		t.Errorf("RunCheck should pass; errors logged: %d, lines: %v", log.errors, log.lines)
	}
}

func TestRunCheck_MissingRawDir(t *testing.T) {
	cfg := checkConfigFor(t)
	cfg.RawDir = filepath.Join(cfg.RawDir, "does-not-exist")
	log := &recordingLogger{}

	if RunCheck(cfg, log) {
		t.Error("RunCheck should fail with a missing raw directory")
	}
	if log.errors == 0 {
		t.Error("expected at least one error line")
	}
}

func TestDecodeFormats_AllRegistered(t *testing.T) {
	got := decodeFormats()
	want := []string{"bmp", "gif", "jpeg", "png", "tiff", "webp"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestVerifyDirs(t *testing.T) {
	cfg := checkConfigFor(t)
	if err := VerifyDirs(cfg); err != nil {
		t.Errorf("VerifyDirs on healthy dirs: %v", err)
	}
}

func TestVerifyDirs_UnreadableRaw(t *testing.T) {
	cfg := checkConfigFor(t)
	cfg.RawDir = filepath.Join(cfg.RawDir, "missing")
	err := VerifyDirs(cfg)
	if !errors.Is(err, ErrRawDirUnreadable) {
		t.Errorf("got %v, want ErrRawDirUnreadable", err)
	}
}

func TestVerifyDirs_UnwritableProcessed(t *testing.T) {
	cfg := checkConfigFor(t)
	// Make the processed path impossible: its parent is a regular file, so
	// the write probe fails regardless of process privileges.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.ProcessedDir = filepath.Join(blocker, "processed")

	err := VerifyDirs(cfg)
	if !errors.Is(err, ErrProcessedNotWritable) {
		t.Errorf("got %v, want ErrProcessedNotWritable", err)
	}
}
