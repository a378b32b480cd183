// Package preview renders a cleaned trace against its simplified keyframes
// so thresholds can be tuned before exporting.
//
// Two artefacts are produced: an interactive 3D line chart in (x, y, frame)
// space as HTML, and a static PNG with x and y plotted against frame.
package preview

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/trackexo/internal/fsutil"
	"github.com/banshee-data/trackexo/internal/trace"
)

// Series names shared by both renderers.
const (
	seriesCleaned    = "smoothed"
	seriesSimplified = "simplified"
)

// Title describes the run a preview belongs to.
type Title struct {
	Name         string // trace name, usually the CSV stem
	SmoothWindow int
	Threshold    float64
	Source       int // cleaned point count
	Simplified   int // simplified point count
}

// NewTitle builds a Title from a run's inputs and outputs.
func NewTitle(name string, window int, threshold float64, cleaned, simplified []trace.TrackPoint) Title {
	return Title{
		Name:         name,
		SmoothWindow: window,
		Threshold:    threshold,
		Source:       len(cleaned),
		Simplified:   len(simplified),
	}
}

// Heading returns the main title line.
func (t Title) Heading() string {
	return fmt.Sprintf("Smooth= %d  Simplify=%g", t.SmoothWindow, t.Threshold)
}

// Subtitle returns the point count line.
func (t Title) Subtitle() string {
	return fmt.Sprintf("Src pt: %d Simplified pt: %d", t.Source, t.Simplified)
}

// Files lists the artefacts written by Write.
type Files struct {
	HTML string
	PNG  string
}

// Write renders both previews into dir as <stem>_preview.html and
// <stem>_preview.png.
func Write(fsys fsutil.FileSystem, dir, stem string, cleaned, simplified []trace.TrackPoint, title Title) (Files, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create preview dir: %w", err)
	}
	files := Files{
		HTML: filepath.Join(dir, stem+"_preview.html"),
		PNG:  filepath.Join(dir, stem+"_preview.png"),
	}

	var html bytes.Buffer
	if err := Render3D(&html, cleaned, simplified, title); err != nil {
		return Files{}, err
	}
	if err := fsys.WriteFile(files.HTML, html.Bytes(), 0o644); err != nil {
		return Files{}, fmt.Errorf("write %s: %w", files.HTML, err)
	}

	var png bytes.Buffer
	if err := RenderAxes(&png, cleaned, simplified, title); err != nil {
		return Files{}, err
	}
	if err := fsys.WriteFile(files.PNG, png.Bytes(), 0o644); err != nil {
		return Files{}, fmt.Errorf("write %s: %w", files.PNG, err)
	}
	return files, nil
}
