// Package pipeline runs the trace conversion stages in order:
// clean, simplify, build segments, correct, and derive the document header.
//
// Each stage consumes the previous stage's output and never mutates it.
// The first failing stage aborts the run and no partial Result is returned.
package pipeline

import (
	"fmt"
	"math"

	"github.com/banshee-data/trackexo/internal/config"
	"github.com/banshee-data/trackexo/internal/exo"
	"github.com/banshee-data/trackexo/internal/monitoring"
	"github.com/banshee-data/trackexo/internal/segment"
	"github.com/banshee-data/trackexo/internal/simplify"
	"github.com/banshee-data/trackexo/internal/trace"
)

// Result holds the output of every stage that ran.
type Result struct {
	Cleaned    []trace.TrackPoint
	Simplified []trace.TrackPoint
	Stats      simplify.Stats

	// Set by Run only.
	Segments  []segment.Segment // as built, in source units
	Corrected []segment.Segment // ready for serialisation
	Header    exo.Header
}

// Clean runs the cleaner alone.
func Clean(samples []trace.Sample, cfg *config.Export) ([]trace.TrackPoint, error) {
	cleaned, err := trace.Clean(samples, cfg.CleanConfig())
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	monitoring.Logf("points in smoothed data: %d (from %d samples)", len(cleaned), len(samples))
	return cleaned, nil
}

// Reduce cleans and simplifies samples. It needs no source dimensions, so
// it serves previews as well as full runs.
func Reduce(samples []trace.Sample, cfg *config.Export) (*Result, error) {
	cleaned, err := Clean(samples, cfg)
	if err != nil {
		return nil, err
	}

	simplified, stats, err := simplify.Simplify(cleaned, cfg.SimplifyConfig())
	if err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}
	monitoring.Logf("points in simplified data: %d (%d passes)", len(simplified), stats.Passes)

	return &Result{Cleaned: cleaned, Simplified: simplified, Stats: stats}, nil
}

// Run executes every stage and returns a Result ready for exo.Encode.
func Run(samples []trace.Sample, cfg *config.Export) (*Result, error) {
	// Reject bad correction settings before doing any work.
	cc, err := cfg.CorrectConfig()
	if err != nil {
		return nil, err
	}
	if err := cc.Validate(); err != nil {
		return nil, fmt.Errorf("correct: %w", err)
	}
	lang, err := cfg.LanguageValue()
	if err != nil {
		return nil, err
	}

	res, err := Reduce(samples, cfg)
	if err != nil {
		return nil, err
	}

	res.Segments, err = segment.Build(res.Simplified)
	if err != nil {
		return nil, fmt.Errorf("build segments: %w", err)
	}

	res.Corrected, err = segment.Correct(res.Segments, cc)
	if err != nil {
		return nil, fmt.Errorf("correct: %w", err)
	}

	length, err := segment.TotalLength(res.Simplified[len(res.Simplified)-1].Frame, cc)
	if err != nil {
		return nil, fmt.Errorf("total length: %w", err)
	}

	res.Header = exo.Header{
		Width:         int(math.Round(cc.OutputWidth())),
		Height:        int(math.Round(cc.OutputHeight())),
		FPS:           cc.OutputFPS(),
		Length:        length,
		AudioRate:     cfg.GetAudioRate(),
		AudioChannels: cfg.GetAudioChannels(),
		Language:      lang,
	}
	if err := res.Header.Validate(); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	return res, nil
}
