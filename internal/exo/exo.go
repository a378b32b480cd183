// Package exo serialises corrected segments as an AviUtl object file (.exo).
//
// The document is a header section followed by one figure object per
// segment, each chained to the previous one. Files are always written in
// Shift_JIS, the encoding AviUtl expects.
package exo

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/banshee-data/trackexo/internal/segment"
	"github.com/banshee-data/trackexo/internal/trace"
)

// Defaults for the audio fields of the header.
const (
	DefaultAudioRate     = 44100
	DefaultAudioChannels = 2
)

// fpsDenominator is the rate scale used for non-integral frame rates.
const fpsDenominator = 1000

// Header is the document-level [exedit] section.
type Header struct {
	Width         int
	Height        int
	FPS           float64
	Length        int // total frames
	AudioRate     int
	AudioChannels int
	Language      Language
}

// RateScale expresses fps as the rate/scale pair of the header. Integral
// rates are written over 1, anything else over 1000.
func RateScale(fps float64) (rate, scale int) {
	if fps == math.Trunc(fps) {
		return int(fps), 1
	}
	return int(math.Round(fps * fpsDenominator)), fpsDenominator
}

// Validate checks the header fields.
func (h Header) Validate() error {
	switch {
	case h.Width <= 0:
		return trace.NewFieldError(trace.ErrMissingDimension, "width", "must be positive, got %d", h.Width)
	case h.Height <= 0:
		return trace.NewFieldError(trace.ErrMissingDimension, "height", "must be positive, got %d", h.Height)
	case math.IsNaN(h.FPS) || math.IsInf(h.FPS, 0) || h.FPS <= 0:
		return trace.NewFieldError(trace.ErrMissingDimension, "fps", "must be positive, got %v", h.FPS)
	case h.Length < 0:
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "length", "must be non-negative, got %d", h.Length)
	case h.AudioRate <= 0:
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "audio_rate", "must be positive, got %d", h.AudioRate)
	case h.AudioChannels <= 0:
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "audio_channels", "must be positive, got %d", h.AudioChannels)
	}
	if _, ok := localised[h.Language]; !ok {
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "language", "unknown language %q", h.Language)
	}
	return nil
}

type headerData struct {
	Header
	Rate  int
	Scale int
}

type objectData struct {
	segment.Segment
	Chain bool
	L     labels
}

// Render writes the document as UTF-8 text.
func Render(w io.Writer, h Header, segs []segment.Segment) error {
	if err := h.Validate(); err != nil {
		return err
	}

	rate, scale := RateScale(h.FPS)
	if err := headerTemplate.Execute(w, headerData{Header: h, Rate: rate, Scale: scale}); err != nil {
		return fmt.Errorf("render exo header: %w", err)
	}

	l := localised[h.Language]
	for i, s := range segs {
		if err := objectTemplate.Execute(w, objectData{Segment: s, Chain: i > 0, L: l}); err != nil {
			return fmt.Errorf("render exo object %d: %w", s.ID, err)
		}
	}
	return nil
}

// Encode renders the document and writes it to w in Shift_JIS. Nothing is
// written to w if rendering or encoding fails.
func Encode(w io.Writer, h Header, segs []segment.Segment) error {
	var text bytes.Buffer
	if err := Render(&text, h, segs); err != nil {
		return err
	}

	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), text.Bytes())
	if err != nil {
		return fmt.Errorf("encode exo as shift_jis: %w", err)
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write exo: %w", err)
	}
	return nil
}

// Decode converts a Shift_JIS document back to UTF-8 text.
func Decode(r io.Reader) (string, error) {
	data, err := io.ReadAll(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode exo: %w", err)
	}
	return string(data), nil
}

// OutputPath returns the default exo path for a trace CSV: the same
// directory and stem with a .exo extension.
func OutputPath(src string) string {
	return trace.SiblingPath(src, ".exo")
}
