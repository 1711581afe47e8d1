// Package naming implements the filename rules that tie raw inputs to
// processed outputs. The identity key between the two directories is the
// stem (filename without extension): outputs are always JPEG, so a PNG
// input and its processed counterpart share a stem but not an extension.
package naming

import (
	"path/filepath"
	"strings"
)

// OutputExtension is the canonical extension of every processed file.
const OutputExtension = ".jpg"

// jpegExtensions are the source extensions kept as-is on output; anything
// else is rewritten to [OutputExtension] because the content becomes JPEG.
var jpegExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// Stem returns name without its directory or extension. A name with no
// extension is returned unchanged.
func Stem(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// OutputName returns the processed filename for a raw input name: the stem
// is preserved and the extension is normalized to ".jpg" unless the source
// was already a JPEG container (then the original name is kept, including
// its original extension casing).
func OutputName(rawName string) string {
	base := filepath.Base(rawName)
	if jpegExtensions[strings.ToLower(filepath.Ext(base))] {
		return base
	}
	return Stem(base) + OutputExtension
}

// OutputPath joins the processed directory with [OutputName] of rawName.
func OutputPath(processedDir, rawName string) string {
	return filepath.Join(processedDir, OutputName(rawName))
}
