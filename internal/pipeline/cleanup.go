package pipeline

import (
	"os"
	"path/filepath"

	"github.com/backmassage/frameprep/internal/config"
	"github.com/backmassage/frameprep/internal/logging"
	"github.com/backmassage/frameprep/internal/naming"
)

// CleanupOrphans deletes every file in the processed directory whose stem
// has no counterpart in rawStems. This reconciles outputs with a raw
// directory that may have had files removed since the last run. Deletion
// failures are logged per file and never stop the rest of the cleanup; raw
// inputs are never touched.
func CleanupOrphans(cfg *config.Config, log *logging.Logger, rawStems map[string]bool, stats *RunStats) {
	entries, err := os.ReadDir(cfg.ProcessedDir)
	if err != nil {
		log.Error("Orphan cleanup: cannot list processed directory: %v", err)
		return
	}

	for _, e := range entries {
		if e.IsDir() || !e.Type().IsRegular() {
			continue
		}
		if rawStems[naming.Stem(e.Name())] {
			continue
		}

		path := filepath.Join(cfg.ProcessedDir, e.Name())
		if cfg.DryRun {
			log.Warn("[DRY] Would remove orphan: %s", e.Name())
			stats.Orphans++
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Error("Cannot remove orphan %s: %v", e.Name(), err)
			continue
		}
		log.Info("Removed orphan: %s", e.Name())
		stats.Orphans++
	}
}
