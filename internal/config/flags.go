package config

// This file implements CLI flag parsing and help text.
// The config file is authoritative for geometry and paths; flags select the
// run mode and may override individual processing knobs. Overrides are
// collected separately and applied after the file is loaded, so file values
// hold unless the user actually passed the flag.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Overrides holds flag values that take precedence over the config file.
// Numeric fields use -1 as the "not passed" sentinel (0 is meaningful for
// --max-dim, it disables the cap).
type Overrides struct {
	Quality    int
	Blur       int
	MaxDim     int
	Resampling string
	RawDir     string
	OutDir     string
	LogFile    string
}

// ParseFlags parses os.Args into cfg and returns the collected overrides.
// On --help or --version it prints and exits. On error it returns non-nil
// (e.g. unknown flag, invalid enum value).
func ParseFlags(cfg *Config, version string) (*Overrides, error) {
	fs := flag.NewFlagSet("frameprep", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	ov := &Overrides{Quality: -1, Blur: -1, MaxDim: -1}
	var showHelp, showVersion, forceColor, noColor bool

	// Mode selection.
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not write or delete")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&cfg.Watch, "watch", false, "Keep running; re-process when the raw directory changes")
	fs.BoolVar(&cfg.Watch, "w", false, "Same as --watch")
	fs.BoolVar(&cfg.AnalyzeOnly, "analyze", false, "Probe inputs and print a report, then exit")
	fs.BoolVar(&cfg.AnalyzeOnly, "a", false, "Same as --analyze")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run environment diagnostics and exit")

	// Processing overrides.
	fs.IntVar(&ov.Quality, "quality", -1, "JPEG output quality (1-100)")
	fs.IntVar(&ov.Quality, "q", -1, "Same as --quality")
	fs.IntVar(&ov.Blur, "blur", -1, "Backdrop blur radius")
	fs.IntVar(&ov.MaxDim, "max-dim", -1, "Max input dimension before decode-time downsample (0 disables)")
	fs.StringVar(&ov.Resampling, "resampling", "", "Scaling filter: lanczos | bilinear | bicubic")
	fs.StringVar(&ov.RawDir, "raw", "", "Raw photos directory (overrides config file)")
	fs.StringVar(&ov.OutDir, "out", "", "Processed photos directory (overrides config file)")

	// Display and logging.
	fs.BoolVar(&forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.StringVar(&ov.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&ov.LogFile, "l", "", "Same as --log")

	// Utility.
	fs.StringVar(&cfg.ConfigPath, "config", "", "Config file path")
	fs.StringVar(&cfg.ConfigPath, "c", "", "Same as --config")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showVersion, "V", false, "Same as --version")
	fs.BoolVar(&showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&showHelp, "h", false, "Same as --help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}

	if showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "frameprep v"+version)
		os.Exit(0)
	}

	if noColor {
		cfg.ColorMode = ColorNever
	} else if forceColor {
		cfg.ColorMode = ColorAlways
	}

	if args := fs.Args(); len(args) != 0 {
		return nil, fmt.Errorf("unexpected argument %q (directories come from the config file or --raw/--out)", args[0])
	}
	return ov, nil
}

// Apply copies passed overrides into cfg. Call after [LoadFile] so flag
// values win over file values.
func (o *Overrides) Apply(cfg *Config) {
	if o.Quality >= 0 {
		cfg.JPEGQuality = o.Quality
	}
	if o.Blur >= 0 {
		cfg.BlurRadius = o.Blur
	}
	if o.MaxDim >= 0 {
		cfg.MaxInputDim = o.MaxDim
	}
	if o.Resampling != "" {
		cfg.Resampling = Resampling(strings.ToLower(o.Resampling))
	}
	if o.RawDir != "" {
		cfg.RawDir = NormalizeDirArg(o.RawDir)
	}
	if o.OutDir != "" {
		cfg.ProcessedDir = NormalizeDirArg(o.OutDir)
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "frameprep v" + version + " — photo-frame batch image processor"},
		{"", ""},
		{"  frameprep [OPTIONS]", ""},
		{"", ""},
		{"Modes", ""},
		{"  -d, --dry-run", "Preview only; no files written or deleted"},
		{"  -w, --watch", "Re-process when the raw directory changes"},
		{"  -a, --analyze", "Probe inputs and print a dimension report"},
		{"  --check", "Environment diagnostics (dirs, decoders, memory)"},
		{"", ""},
		{"Processing overrides", ""},
		{"  -q, --quality <1-100>", "JPEG output quality"},
		{"  --blur <radius>", "Backdrop blur radius"},
		{"  --max-dim <px>", "Decode-time input size cap (0 disables)"},
		{"  --resampling <name>", "lanczos | bilinear | bicubic"},
		{"  --raw <dir>", "Raw photos directory"},
		{"  --out <dir>", "Processed photos directory"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --config <path>", "Config file (default: frameprep.yaml, /etc/frameprep/)"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
