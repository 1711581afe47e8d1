package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
// They are owned exclusively by the runner, never shared across files, and
// discarded after the summary is reported.
type RunStats struct {
	Total            int // Recognized inputs discovered.
	Current          int // 1-based index of the file being processed.
	Succeeded        int
	Skipped          int
	Failed           int
	Orphans          int // Processed files removed by orphan cleanup.
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Discrepancy reports whether fewer files were accounted for than
// discovered. A true value is diagnostic evidence that the process was
// terminated mid-batch, not an actionable failure.
func (s *RunStats) Discrepancy() bool {
	return s.Succeeded+s.Failed < s.Total-s.Skipped
}
