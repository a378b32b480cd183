// Command trackexo converts a motion tracking CSV into an AviUtl object
// file with one keyframe segment per simplified point pair.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/banshee-data/trackexo/internal/config"
	"github.com/banshee-data/trackexo/internal/db"
	"github.com/banshee-data/trackexo/internal/exo"
	"github.com/banshee-data/trackexo/internal/fsutil"
	"github.com/banshee-data/trackexo/internal/monitoring"
	"github.com/banshee-data/trackexo/internal/pipeline"
	"github.com/banshee-data/trackexo/internal/preview"
	"github.com/banshee-data/trackexo/internal/simplify"
	"github.com/banshee-data/trackexo/internal/trace"
	"github.com/banshee-data/trackexo/internal/version"
)

const binaryName = "trackexo"

// options is the parsed command line. export holds only the settings whose
// flags were given explicitly so they layer over the file and environment.
type options struct {
	input      string
	export     *config.Export
	output     string
	cleanOnly  bool
	preview    bool
	previewDir string
	configPath string
	dbPath     string
	logLevel   slog.Level
	version    bool
}

func main() {
	if err := run(os.Args[1:], fsutil.OSFileSystem{}, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("trackexo failed", "err", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] <csvfile>\n\nFlags:\n", binaryName)
		fs.PrintDefaults()
	}

	var (
		width     = fs.Float64("width", 0, "Source video width in pixels")
		height    = fs.Float64("height", 0, "Source video height in pixels")
		fps       = fs.Float64("fps", 0, "Source video frame rate")
		newWidth  = fs.Float64("new_width", 0, "Output width in pixels (default: source width)")
		newHeight = fs.Float64("new_height", 0, "Output height in pixels (default: source height)")
		newFPS    = fs.Float64("new_fps", 0, "Output frame rate (default: source rate)")
		audioRate = fs.Int("audio_rate", exo.DefaultAudioRate, "Audio sample rate written to the exo header")
		audioCh   = fs.Int("audio_ch", exo.DefaultAudioChannels, "Audio channel count written to the exo header")
		smooth    = fs.Int("smooth", trace.DefaultSmoothWindow, "Moving average window; 0 or 1 disables smoothing")
		threshold = fs.Float64("simplify", simplify.DefaultThreshold, "Simplification threshold (triangle area)")
		english   = fs.Bool("eng", false, "Write English exo field names")
		scaleMode = fs.String("scale-mode", "independent", "Scaling mode: independent or uniform")
		logLevel  = fs.String("log-level", "info", "Log level: debug, info, warn or error")
	)

	opts := &options{export: config.EmptyExport()}
	fs.StringVar(&opts.output, "o", "", "Output path (default: <csv stem>.exo, or <csv stem>_cleaned.csv with -clean-only)")
	fs.BoolVar(&opts.cleanOnly, "clean-only", false, "Write the cleaned CSV and exit")
	fs.BoolVar(&opts.preview, "preview", false, "Write preview HTML and PNG and exit")
	fs.StringVar(&opts.previewDir, "preview-dir", "", "Directory for preview files (default: next to the CSV)")
	fs.StringVar(&opts.configPath, "config", "", "Path to an export config JSON file")
	fs.StringVar(&opts.dbPath, "db", "", "Record the run in this SQLite history database")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version {
		return opts, nil
	}

	if err := opts.logLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}
	if opts.cleanOnly && opts.preview {
		return nil, errors.New("-clean-only and -preview are mutually exclusive")
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected exactly one CSV file, got %d arguments", fs.NArg())
	}
	opts.input = fs.Arg(0)

	e := opts.export
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			e.Width = width
		case "height":
			e.Height = height
		case "fps":
			e.FPS = fps
		case "new_width":
			e.TargetWidth = newWidth
		case "new_height":
			e.TargetHeight = newHeight
		case "new_fps":
			e.TargetFPS = newFPS
		case "audio_rate":
			e.AudioRate = audioRate
		case "audio_ch":
			e.AudioChannels = audioCh
		case "smooth":
			e.SmoothingWindow = smooth
		case "simplify":
			e.SimplifyThreshold = threshold
		case "eng":
			lang := string(exo.Japanese)
			if *english {
				lang = string(exo.English)
			}
			e.Language = &lang
		case "scale-mode":
			e.ScaleMode = scaleMode
		}
	})
	return opts, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}

// loadExport layers the config file, the environment and the flags, in
// that order, and validates the result. A window none of them set falls
// back to the -smooth default.
func loadExport(opts *options) (*config.Export, error) {
	cfg := config.EmptyExport()
	if opts.configPath != "" {
		fileCfg, err := config.LoadExport(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	envCfg, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.Merge(envCfg)
	cfg.Merge(opts.export)
	if cfg.SmoothingWindow == nil {
		window := trace.DefaultSmoothWindow
		cfg.SmoothingWindow = &window
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string, fsys fsutil.FileSystem, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, version.String(binaryName))
		return nil
	}

	logger := newLogger(stderr, opts.logLevel)
	slog.SetDefault(logger)
	monitoring.UseSlog(logger)

	cfg, err := loadExport(opts)
	if err != nil {
		return err
	}

	samples, err := readSamples(fsys, opts.input)
	if err != nil {
		return err
	}
	logger.Info("loaded trace", "path", opts.input, "samples", len(samples))

	var (
		rec    db.Run
		frames []trace.TrackPoint
	)
	switch {
	case opts.cleanOnly:
		rec, err = cleanOnly(fsys, opts, cfg, samples, logger)
	case opts.preview:
		rec, frames, err = writePreview(fsys, opts, cfg, samples, logger)
	default:
		rec, frames, err = convert(fsys, opts, cfg, samples, logger)
	}
	if err != nil {
		return err
	}

	if opts.dbPath == "" {
		return nil
	}
	rec.Source = opts.input
	rec.RawPoints = len(samples)
	return recordRun(opts.dbPath, cfg, rec, frames, logger)
}

func readSamples(fsys fsutil.FileSystem, path string) ([]trace.Sample, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	samples, err := trace.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return samples, nil
}

func cleanOnly(fsys fsutil.FileSystem, opts *options, cfg *config.Export, samples []trace.Sample, logger *slog.Logger) (db.Run, error) {
	cleaned, err := pipeline.Clean(samples, cfg)
	if err != nil {
		return db.Run{}, err
	}

	out := opts.output
	if out == "" {
		out = trace.CleanedPath(opts.input)
	}
	var buf bytes.Buffer
	if err := trace.WriteCSV(&buf, cleaned); err != nil {
		return db.Run{}, err
	}
	if err := fsys.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return db.Run{}, fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("wrote cleaned trace", "path", out, "points", len(cleaned))

	return db.Run{Output: out, CleanedPoints: len(cleaned)}, nil
}

func writePreview(fsys fsutil.FileSystem, opts *options, cfg *config.Export, samples []trace.Sample, logger *slog.Logger) (db.Run, []trace.TrackPoint, error) {
	res, err := pipeline.Reduce(samples, cfg)
	if err != nil {
		return db.Run{}, nil, err
	}

	dir := opts.previewDir
	if dir == "" {
		dir = filepath.Dir(opts.input)
	}
	stem := strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
	title := preview.NewTitle(stem, cfg.GetSmoothingWindow(), cfg.GetSimplifyThreshold(), res.Cleaned, res.Simplified)

	files, err := preview.Write(fsys, dir, stem, res.Cleaned, res.Simplified, title)
	if err != nil {
		return db.Run{}, nil, err
	}
	logger.Info("wrote preview", "html", files.HTML, "png", files.PNG)

	return db.Run{
		CleanedPoints:    len(res.Cleaned),
		SimplifiedPoints: len(res.Simplified),
		Passes:           res.Stats.Passes,
	}, res.Simplified, nil
}

func convert(fsys fsutil.FileSystem, opts *options, cfg *config.Export, samples []trace.Sample, logger *slog.Logger) (db.Run, []trace.TrackPoint, error) {
	res, err := pipeline.Run(samples, cfg)
	if err != nil {
		return db.Run{}, nil, err
	}

	out := opts.output
	if out == "" {
		out = exo.OutputPath(opts.input)
	}
	// Encode fully before touching the output file.
	var buf bytes.Buffer
	if err := exo.Encode(&buf, res.Header, res.Corrected); err != nil {
		return db.Run{}, nil, err
	}
	if err := fsys.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return db.Run{}, nil, fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("wrote exo",
		"path", out,
		"segments", len(res.Corrected),
		"length", res.Header.Length,
		"removed", res.Stats.Removed(),
	)

	return db.Run{
		Output:           out,
		CleanedPoints:    len(res.Cleaned),
		SimplifiedPoints: len(res.Simplified),
		Segments:         len(res.Corrected),
		Passes:           res.Stats.Passes,
	}, res.Simplified, nil
}

func recordRun(path string, cfg *config.Export, rec db.Run, frames []trace.TrackPoint, logger *slog.Logger) error {
	database, err := db.NewDB(path)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer database.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal export config: %w", err)
	}
	rec.ConfigJSON = string(cfgJSON)

	stored, err := db.NewRunStore(database).Record(rec, frames)
	if err != nil {
		return err
	}
	logger.Info("recorded run", "id", stored.ID, "db", path)
	return nil
}
