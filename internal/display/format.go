// Package display provides output formatting helpers shared by the batch
// summary and the analyze report.
package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatMegapixels returns a short label for an image's pixel count
// (e.g. "12.2 MP", "0.3 MP").
func FormatMegapixels(width, height int) string {
	mp := float64(width) * float64(height) / 1e6
	return fmt.Sprintf("%.1f MP", mp)
}

// FormatDimensions returns the conventional WxH label (e.g. "1920x1080").
func FormatDimensions(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
