package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Debug(bool, string, ...interface{}) {}

func TestWait_TriggersOnNewImage(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond, false, nopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan bool, 1)
	go func() { done <- w.Wait(ctx) }()

	// Let the watch goroutine start before generating the event.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "new.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := <-done; !got {
		t.Error("Wait should return true after an image file appears")
	}
}

func TestWait_IgnoresNonImageFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 10*time.Millisecond, false, nopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan bool, 1)
	go func() { done <- w.Wait(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := <-done; got {
		t.Error("Wait should not trigger on a non-image file")
	}
}

func TestWait_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 10*time.Millisecond, false, nopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if w.Wait(ctx) {
		t.Error("Wait should return false on a cancelled context")
	}
}

func TestWait_ClosedWatcher(t *testing.T) {
	w, err := New(t.TempDir(), 10*time.Millisecond, false, nopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if w.Wait(ctx) {
		t.Error("Wait should return false once the watcher is closed")
	}
}

func TestNew_MissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), time.Second, false, nopLogger{}); err == nil {
		t.Error("New should fail on a missing directory")
	}
}
