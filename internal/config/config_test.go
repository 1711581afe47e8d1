package config

import (
	"os"
	"path/filepath"
	"testing"
)

// validConfig returns a Config that passes Validate, for tests that break
// one field at a time.
func validConfig() Config {
	cfg := DefaultConfig()
	cfg.ScreenWidth = 800
	cfg.ScreenHeight = 480
	cfg.RawDir = "/photos/raw"
	cfg.ProcessedDir = "/photos/processed"
	return cfg
}

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/photos/raw", "/photos/raw"},
		{"single trailing slash", "/photos/raw/", "/photos/raw"},
		{"multiple trailing slashes", "/photos/raw///", "/photos/raw"},
		{"root path", "/", "/"},
		{"relative path", "raw", "raw"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate_RequiresGeometry(t *testing.T) {
	cfg := validConfig()
	cfg.ScreenWidth = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without display width")
	}

	cfg = validConfig()
	cfg.ScreenHeight = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail on negative display height")
	}
}

func TestValidate_RequiresPaths(t *testing.T) {
	cfg := validConfig()
	cfg.RawDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without raw_dir")
	}

	cfg = validConfig()
	cfg.ProcessedDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without processed_dir")
	}

	cfg = validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_Quality(t *testing.T) {
	tests := []struct {
		name    string
		quality int
		wantErr bool
	}{
		{"minimum", 1, false},
		{"maximum", 100, false},
		{"default", 90, false},
		{"zero", 0, true},
		{"over", 101, true},
		{"negative", -5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.JPEGQuality = tt.quality
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Resampling(t *testing.T) {
	tests := []struct {
		name    string
		r       Resampling
		wantErr bool
	}{
		{"lanczos is valid", ResampleLanczos, false},
		{"bilinear is valid", ResampleBilinear, false},
		{"bicubic is valid", ResampleBicubic, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "nearest", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Resampling = tt.r
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ColorMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		wantErr bool
	}{
		{"auto is valid", ColorAuto, false},
		{"always is valid", ColorAlways, false},
		{"never is valid", ColorNever, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "sometimes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ColorMode = tt.mode
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesMaxInputDim(t *testing.T) {
	cfg := validConfig()
	cfg.MaxInputDim = -100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if cfg.MaxInputDim != 0 {
		t.Errorf("MaxInputDim = %d, want 0 (negative means no cap)", cfg.MaxInputDim)
	}
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		processed string
		wantErr   bool
	}{
		{"separate directories", "/photos/raw", "/photos/processed", false},
		{"processed equals raw", "/photos/lib", "/photos/lib", true},
		{"processed inside raw", "/photos/raw", "/photos/raw/out", true},
		{"raw inside processed", "/photos/out/raw", "/photos/out", true},
		{"similar prefix not nested", "/photos/raw", "/photos/raw2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			err := cfg.ValidatePaths(tt.raw, tt.processed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaths(%q, %q) error = %v, wantErr %v",
					tt.raw, tt.processed, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BlurRadius != 12 {
		t.Errorf("default BlurRadius = %d, want 12", cfg.BlurRadius)
	}
	if cfg.JPEGQuality != 90 {
		t.Errorf("default JPEGQuality = %d, want 90", cfg.JPEGQuality)
	}
	if cfg.Resampling != ResampleLanczos {
		t.Errorf("default Resampling = %q, want %q", cfg.Resampling, ResampleLanczos)
	}
	if cfg.MaxInputDim != 0 {
		t.Errorf("default MaxInputDim = %d, want 0", cfg.MaxInputDim)
	}
	if cfg.ColorMode != ColorAuto {
		t.Errorf("default ColorMode = %q, want %q", cfg.ColorMode, ColorAuto)
	}
	if cfg.DryRun || cfg.Watch || cfg.AnalyzeOnly || cfg.CheckOnly {
		t.Error("mode flags should all default to false")
	}
	if cfg.ScreenWidth != 0 || cfg.ScreenHeight != 0 {
		t.Error("geometry must have no default; it is a required config key")
	}
}

// --- Config file tests ---

func TestLoadFile_FullConfig(t *testing.T) {
	path := writeConfig(t, `
display:
  width: 1920
  height: 1080
processing:
  blur_radius: 20
  jpeg_quality: 85
  resampling: Bicubic
  max_input_dim: 6000
paths:
  raw_dir: /photos/raw/
  processed_dir: /photos/processed
  log_file: /var/log/frameprep.log
`)

	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.ScreenWidth != 1920 || cfg.ScreenHeight != 1080 {
		t.Errorf("geometry: got %dx%d, want 1920x1080", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.BlurRadius != 20 {
		t.Errorf("BlurRadius = %d, want 20", cfg.BlurRadius)
	}
	if cfg.JPEGQuality != 85 {
		t.Errorf("JPEGQuality = %d, want 85", cfg.JPEGQuality)
	}
	if cfg.Resampling != ResampleBicubic {
		t.Errorf("Resampling = %q, want bicubic (case-folded)", cfg.Resampling)
	}
	if cfg.MaxInputDim != 6000 {
		t.Errorf("MaxInputDim = %d, want 6000", cfg.MaxInputDim)
	}
	if cfg.RawDir != "/photos/raw" {
		t.Errorf("RawDir = %q, want /photos/raw (trailing slash stripped)", cfg.RawDir)
	}
	if cfg.ProcessedDir != "/photos/processed" {
		t.Errorf("ProcessedDir = %q", cfg.ProcessedDir)
	}
	if cfg.LogFile != "/var/log/frameprep.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", cfg.ConfigPath, path)
	}
}

func TestLoadFile_MinimalConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
display:
  width: 800
  height: 480
paths:
  raw_dir: raw
  processed_dir: processed
`)

	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BlurRadius != 12 || cfg.JPEGQuality != 90 || cfg.Resampling != ResampleLanczos {
		t.Errorf("missing optional keys must keep defaults, got blur=%d quality=%d resampling=%q",
			cfg.BlurRadius, cfg.JPEGQuality, cfg.Resampling)
	}
}

func TestLoadFile_ZeroValuesAreExplicit(t *testing.T) {
	// blur_radius: 0 is a real setting (no blur), distinct from a missing key.
	path := writeConfig(t, `
display:
  width: 800
  height: 480
processing:
  blur_radius: 0
paths:
  raw_dir: raw
  processed_dir: processed
`)

	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BlurRadius != 0 {
		t.Errorf("BlurRadius = %d, want 0 (explicit zero must not fall back to default)", cfg.BlurRadius)
	}
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "display: [not: a: mapping")
	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err == nil {
		t.Error("LoadFile should fail on malformed YAML")
	}
}

func TestLocate_ExplicitMissingIsError(t *testing.T) {
	if _, err := Locate(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Locate should fail when an explicit path does not exist")
	}
}

func TestLocate_ExplicitWins(t *testing.T) {
	path := writeConfig(t, "display: {width: 1, height: 1}")
	t.Setenv("FRAMEPREP_CONFIG", "/does/not/exist.yaml")
	got, err := Locate(path)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q (explicit path beats environment)", got, path)
	}
}

func TestLocate_Environment(t *testing.T) {
	path := writeConfig(t, "display: {width: 1, height: 1}")
	t.Setenv("FRAMEPREP_CONFIG", path)
	got, err := Locate("")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}
}

// --- Override tests ---

func TestOverrides_Apply(t *testing.T) {
	cfg := validConfig()
	ov := &Overrides{
		Quality:    70,
		Blur:       0,
		MaxDim:     4096,
		Resampling: "Bilinear",
		RawDir:     "/other/raw/",
		OutDir:     "/other/out",
		LogFile:    "run.log",
	}
	ov.Apply(&cfg)

	if cfg.JPEGQuality != 70 {
		t.Errorf("JPEGQuality = %d, want 70", cfg.JPEGQuality)
	}
	if cfg.BlurRadius != 0 {
		t.Errorf("BlurRadius = %d, want 0 (zero is an explicit override)", cfg.BlurRadius)
	}
	if cfg.MaxInputDim != 4096 {
		t.Errorf("MaxInputDim = %d, want 4096", cfg.MaxInputDim)
	}
	if cfg.Resampling != ResampleBilinear {
		t.Errorf("Resampling = %q, want bilinear", cfg.Resampling)
	}
	if cfg.RawDir != "/other/raw" {
		t.Errorf("RawDir = %q, want /other/raw", cfg.RawDir)
	}
	if cfg.ProcessedDir != "/other/out" {
		t.Errorf("ProcessedDir = %q, want /other/out", cfg.ProcessedDir)
	}
	if cfg.LogFile != "run.log" {
		t.Errorf("LogFile = %q, want run.log", cfg.LogFile)
	}
}

func TestOverrides_SentinelsLeaveConfigAlone(t *testing.T) {
	cfg := validConfig()
	ov := &Overrides{Quality: -1, Blur: -1, MaxDim: -1}
	ov.Apply(&cfg)

	ref := validConfig()
	if cfg != ref {
		t.Errorf("unset overrides must not touch the config: got %+v, want %+v", cfg, ref)
	}
}

// --- Helpers ---

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frameprep.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
