// Package config holds runtime configuration: defaults, the YAML config
// file, CLI flag overrides, and validation. Geometry-defining values have no
// safe defaults and must come from the config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- Enum types for validated string fields ---

// Resampling selects the scaling filter used by the layout engine.
type Resampling string

const (
	ResampleLanczos  Resampling = "lanczos"  // High quality (default).
	ResampleBilinear Resampling = "bilinear" // Cheapest.
	ResampleBicubic  Resampling = "bicubic"  // Middle ground (Catmull-Rom).
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by [LoadFile], then mutated by CLI overrides before being passed
// (by pointer) to packages that need it. It is not modified after startup.
type Config struct {
	// Display geometry (required, from config file).
	ScreenWidth  int
	ScreenHeight int

	// Image processing.
	BlurRadius  int        // Backdrop blur sigma. Default: 12.
	JPEGQuality int        // Output quality, 1-100. Default: 90.
	Resampling  Resampling // Default: "lanczos".
	MaxInputDim int        // Decode size cap; <=0 disables. Default: 0.

	// Paths (required, from config file).
	RawDir       string
	ProcessedDir string

	// Behavior flags (CLI only).
	DryRun      bool
	Watch       bool
	AnalyzeOnly bool
	CheckOnly   bool

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path; config file or --log.

	// Config file path; resolved by [Locate].
	ConfigPath string
}

// DefaultConfig returns a Config with processing defaults. Geometry and
// paths are deliberately zero: they are required config-file keys.
func DefaultConfig() Config {
	return Config{
		BlurRadius:  12,
		JPEGQuality: 90,
		Resampling:  ResampleLanczos,
		MaxInputDim: 0,
		ColorMode:   ColorAuto,
	}
}

// --- YAML config file ---

// fileConfig mirrors the on-disk YAML layout. Sections match the classic
// photo-frame config: display geometry, processing knobs, and paths.
type fileConfig struct {
	Display struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"display"`
	Processing struct {
		BlurRadius  *int   `yaml:"blur_radius"`
		JPEGQuality *int   `yaml:"jpeg_quality"`
		Resampling  string `yaml:"resampling"`
		MaxInputDim *int   `yaml:"max_input_dim"`
	} `yaml:"processing"`
	Paths struct {
		RawDir       string `yaml:"raw_dir"`
		ProcessedDir string `yaml:"processed_dir"`
		LogFile      string `yaml:"log_file"`
	} `yaml:"paths"`
}

// searchPaths are the config file locations tried in order when neither
// --config nor FRAMEPREP_CONFIG names one.
var searchPaths = []string{
	"frameprep.yaml",
	"/etc/frameprep/frameprep.yaml",
}

// Locate resolves the config file path. Precedence: explicit (--config) >
// FRAMEPREP_CONFIG > the default search paths. A path that is named
// explicitly but does not exist is an error; search paths are skipped
// silently until one exists.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	if env := os.Getenv("FRAMEPREP_CONFIG"); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("config file not found (FRAMEPREP_CONFIG): %s", env)
		}
		return env, nil
	}
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no config file found (tried " + strings.Join(searchPaths, ", ") + "); use --config")
}

// LoadFile reads and merges the YAML config file at path into cfg.
// Missing optional keys keep their defaults; required keys are checked later
// by [Config.Validate].
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.ScreenWidth = fc.Display.Width
	cfg.ScreenHeight = fc.Display.Height
	if fc.Processing.BlurRadius != nil {
		cfg.BlurRadius = *fc.Processing.BlurRadius
	}
	if fc.Processing.JPEGQuality != nil {
		cfg.JPEGQuality = *fc.Processing.JPEGQuality
	}
	if fc.Processing.Resampling != "" {
		cfg.Resampling = Resampling(strings.ToLower(fc.Processing.Resampling))
	}
	if fc.Processing.MaxInputDim != nil {
		cfg.MaxInputDim = *fc.Processing.MaxInputDim
	}
	cfg.RawDir = NormalizeDirArg(fc.Paths.RawDir)
	cfg.ProcessedDir = NormalizeDirArg(fc.Paths.ProcessedDir)
	if fc.Paths.LogFile != "" {
		cfg.LogFile = fc.Paths.LogFile
	}
	cfg.ConfigPath = path
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks that required keys are present and that numeric and enum
// fields hold valid values. Called after LoadFile and flag overrides; any
// error here is fatal before a single file is touched.
func (c *Config) Validate() error {
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return errors.New("display.width and display.height are required and must be positive")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be 1-100 (got %d)", c.JPEGQuality)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("blur_radius must not be negative (got %d)", c.BlurRadius)
	}
	if c.MaxInputDim < 0 {
		c.MaxInputDim = 0 // <=0 means "no cap"; normalize for comparisons.
	}

	switch c.Resampling {
	case ResampleLanczos, ResampleBilinear, ResampleBicubic:
		// valid
	default:
		return fmt.Errorf("invalid resampling %q (use 'lanczos', 'bilinear' or 'bicubic')", c.Resampling)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.RawDir == "" {
		return errors.New("paths.raw_dir is required")
	}
	if c.ProcessedDir == "" {
		return errors.New("paths.processed_dir is required")
	}
	return nil
}

// ValidatePaths ensures the resolved raw and processed directories are
// disjoint. The processed directory is pipeline-owned (every file in it is
// subject to orphan deletion), so neither directory may contain the other.
// Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(rawAbs, processedAbs string) error {
	sep := string(filepath.Separator)
	if processedAbs == rawAbs {
		return errors.New("processed directory must not equal raw directory")
	}
	if strings.HasPrefix(processedAbs+sep, rawAbs+sep) {
		return errors.New("processed directory must not be inside raw directory")
	}
	if strings.HasPrefix(rawAbs+sep, processedAbs+sep) {
		return errors.New("raw directory must not be inside processed directory (it is subject to orphan cleanup)")
	}
	return nil
}
