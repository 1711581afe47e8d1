package pipeline

import "fmt"

// FailureKind classifies a per-file failure so the runner can choose
// logging detail and counters without matching error strings.
type FailureKind int

const (
	KindValidation FailureKind = iota // Pre-decode checks: missing, empty, bad header.
	KindDecode                        // Full decode failed (truncated or corrupt data).
	KindMemory                        // Estimated footprint exceeds available memory.
	KindIO                            // Encoding or filesystem write failed.
	KindUnexpected                    // Recovered panic or anything unclassified.
)

func (k FailureKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	case KindMemory:
		return "memory"
	case KindIO:
		return "io"
	default:
		return "unexpected"
	}
}

// FileError is the tagged per-file failure returned by processFile. The
// batch never aborts on one; it is logged, counted, and the runner moves on.
type FileError struct {
	Kind FailureKind
	Err  error
}

func (e *FileError) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// failf builds a FileError from a format string.
func failf(kind FailureKind, format string, args ...interface{}) *FileError {
	return &FileError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
