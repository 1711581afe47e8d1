package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/frameprep/internal/config"
	"github.com/backmassage/frameprep/internal/display"
	"github.com/backmassage/frameprep/internal/layout"
	"github.com/backmassage/frameprep/internal/logging"
	"github.com/backmassage/frameprep/internal/probe"
	"github.com/backmassage/frameprep/internal/term"
)

// fileRow holds the probed per-file data for the analysis table.
type fileRow struct {
	Name        string
	Width       int
	Height      int
	Format      string
	Orientation string
	Bytes       int64
}

// Analyze probes every raw input header and prints a tabular
// dimensions/size report with statistical outlier highlighting. Nothing is
// decoded or written; this is a planning aid before a long batch.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger) {
	files, err := DiscoverInputs(cfg.RawDir)
	if err != nil {
		log.Error("Input discovery failed: %v", err)
		return
	}
	if len(files) == 0 {
		log.Warn("No images found in %s", cfg.RawDir)
		return
	}

	total := len(files)
	log.Info("Scanning %d images in %s …", total, cfg.RawDir)
	fmt.Println()

	isTTY := term.IsTerminal(os.Stdout)
	var rows []fileRow
	var skipped int
	var mpVals, sizeVals []float64

	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress()
			}
			log.Warn("Interrupted")
			return
		}

		printProgress(isTTY, i+1, total, skipped, filepath.Base(path))

		info, err := probe.ValidateFile(path)
		if err != nil {
			skipped++
			if isTTY {
				clearProgress()
			}
			log.Warn("Skip (probe failed): %s", filepath.Base(path))
			continue
		}

		orientation := "portrait"
		if layout.IsLandscapeSize(info.Width, info.Height) {
			if info.Width == info.Height {
				orientation = "square"
			} else {
				orientation = "landscape"
			}
		}

		rows = append(rows, fileRow{
			Name:        filepath.Base(path),
			Width:       info.Width,
			Height:      info.Height,
			Format:      info.Format,
			Orientation: orientation,
			Bytes:       info.Size,
		})
		mpVals = append(mpVals, float64(info.Pixels())/1e6)
		sizeVals = append(sizeVals, float64(info.Size))
	}

	if isTTY {
		clearProgress()
	}

	if len(rows) == 0 {
		log.Warn("No images could be probed")
		return
	}

	mpStats := computeStats(mpVals)
	sizeStats := computeStats(sizeVals)

	printAnalysisTable(rows, mpStats, sizeStats)
	printAnalysisSummary(log, rows, mpStats, sizeStats)
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(rows []fileRow, mpStats, sizeStats iqrBounds) {
	nameW := len("File")
	dimW := len("Dimensions")
	mpW := len("Pixels")
	orW := len("Orientation")
	fmtW := len("Format")
	szW := len("Size")

	for _, r := range rows {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
		if s := display.FormatDimensions(r.Width, r.Height); len(s) > dimW {
			dimW = len(s)
		}
		if s := display.FormatMegapixels(r.Width, r.Height); len(s) > mpW {
			mpW = len(s)
		}
		if len(r.Orientation) > orW {
			orW = len(r.Orientation)
		}
		if len(r.Format) > fmtW {
			fmtW = len(r.Format)
		}
		if s := display.FormatBytes(r.Bytes); len(s) > szW {
			szW = len(s)
		}
	}

	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %-*s  %-*s",
		nameW, "File",
		dimW, "Dimensions",
		mpW, "Pixels",
		orW, "Orientation",
		fmtW, "Format",
		szW, "Size",
	)
	separator := "  " + strings.Repeat("─", len(header)-2)

	fmt.Println(header)
	fmt.Println(separator)

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}

		mp := float64(r.Width) * float64(r.Height) / 1e6
		mpClass := mpStats.classify(mp)
		szClass := sizeStats.classify(float64(r.Bytes))

		flag := worstFlag(mpClass, szClass)
		flagStr := formatFlag(flag)

		// Pad the plain text first, then wrap in ANSI color. This avoids
		// the alignment bug where %-*s counts escape bytes as visible width.
		mpCell := colorPad(display.FormatMegapixels(r.Width, r.Height), mpW, mpClass)
		szCell := colorPad(display.FormatBytes(r.Bytes), szW, szClass)

		fmt.Printf("  %-*s  %-*s  %s  %-*s  %-*s  %s  %s\n",
			nameW, name,
			dimW, display.FormatDimensions(r.Width, r.Height),
			mpCell,
			orW, r.Orientation,
			fmtW, r.Format,
			szCell,
			flagStr,
		)
	}
	fmt.Println()
}

func printAnalysisSummary(log *logging.Logger, rows []fileRow, mpStats, sizeStats iqrBounds) {
	var landscape, portrait, square int
	var outliers, extremes int
	for _, r := range rows {
		switch r.Orientation {
		case "landscape":
			landscape++
		case "square":
			square++
		default:
			portrait++
		}

		mp := float64(r.Width) * float64(r.Height) / 1e6
		worst := worstFlag(mpStats.classify(mp), sizeStats.classify(float64(r.Bytes)))
		switch worst {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	log.Info("Scanned %d images: %d landscape, %d portrait, %d square", len(rows), landscape, portrait, square)
	log.Info("  Fill-crop: %d, blurred-backdrop: %d", landscape+square, portrait)
	if mpStats.valid {
		log.Info("  Pixel IQR: %.1f – %.1f MP (outlier < %.1f or > %.1f)",
			mpStats.q1, mpStats.q3, mpStats.outlierLo, mpStats.outlierHi)
	}
	if outliers > 0 {
		log.Warn("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func worstFlag(classes ...string) string {
	worst := ""
	for _, c := range classes {
		if c == "extreme" {
			return "extreme"
		}
		if c == "outlier" {
			worst = "outlier"
		}
	}
	return worst
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return term.Red + "[!]" + term.NC
	case "outlier":
		return term.Orange + "[*]" + term.NC
	default:
		return ""
	}
}

// colorPad pads a plain string to width, then wraps in ANSI color. This
// ensures %-*s-style alignment works correctly regardless of escape sequences.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "extreme":
		return term.Red + padded + term.NC
	case "outlier":
		return term.Orange + padded + term.NC
	default:
		return padded
	}
}

// printProgress shows a live scan counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op (the skip warnings
// already provide enough breadcrumbs in piped/logged output).
func printProgress(isTTY bool, current, total, skipped int, name string) {
	if !isTTY {
		return
	}
	pct := current * 100 / total
	status := fmt.Sprintf("  Scanning [%d/%d] %d%% ", current, total, pct)
	if skipped > 0 {
		status += fmt.Sprintf("(%d skipped) ", skipped)
	}

	maxName := 40
	if len(name) > maxName {
		name = name[:maxName-1] + "…"
	}
	status += name

	// Pad to 80 chars to overwrite previous longer lines, then \r.
	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(os.Stdout, "\r%s", status)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress() {
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
