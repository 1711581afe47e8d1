package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/frameprep/internal/naming"
)

// Recognized raw image extensions (lowercase, with leading dot). The raw
// directory is flat; discovery is deliberately non-recursive.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// HasImageExtension reports whether name carries a recognized raw image
// extension (case-insensitive).
func HasImageExtension(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// DiscoverInputs lists the raw directory (non-recursive), keeps regular
// files with recognized image extensions, and returns their full paths
// sorted lexicographically for deterministic processing order.
func DiscoverInputs(rawDir string) ([]string, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("list raw directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !e.Type().IsRegular() {
			continue
		}
		if HasImageExtension(e.Name()) {
			files = append(files, filepath.Join(rawDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// DiscoverProcessed returns the set of stems present in the processed
// directory. The match key is the stem because the output format may differ
// from the input format (PNG in, JPEG out).
func DiscoverProcessed(processedDir string) (map[string]bool, error) {
	entries, err := os.ReadDir(processedDir)
	if err != nil {
		return nil, fmt.Errorf("list processed directory: %w", err)
	}

	stems := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() || !e.Type().IsRegular() {
			continue
		}
		stems[naming.Stem(e.Name())] = true
	}
	return stems, nil
}

// duplicateStems returns the stems that appear on more than one input file.
// Two raw files sharing a stem (a.jpg and a.png) map onto one output slot;
// the runner warns because last-write-wins there and orphan cleanup cannot
// tell them apart.
func duplicateStems(files []string) []string {
	seen := make(map[string]int, len(files))
	for _, f := range files {
		seen[naming.Stem(f)]++
	}
	var dups []string
	for stem, n := range seen {
		if n > 1 {
			dups = append(dups, stem)
		}
	}
	sort.Strings(dups)
	return dups
}

// stemSet maps the discovered input paths to their stem set, the reference
// for orphan cleanup.
func stemSet(files []string) map[string]bool {
	stems := make(map[string]bool, len(files))
	for _, f := range files {
		stems[naming.Stem(f)] = true
	}
	return stems
}
