package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// columns is the fixed column order of a tracking CSV.
var columns = []string{"frame", "x", "y", "w", "h", "r"}

// ReadCSV parses a headerless six-column trace (frame,x,y,w,h,r) in input
// order. A leading header row is skipped when its first cell is not a
// number. Frames must be non-negative integers; integral float text such
// as 12.0 is accepted.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var samples []Sample
	for first := true; ; first = false {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewFieldError(ErrInvalidInput, "csv", "%v", err)
		}
		line, _ := cr.FieldPos(0)
		if first && isHeader(record) {
			continue
		}
		if len(record) != len(columns) {
			return nil, NewFieldError(ErrInvalidInput, "csv",
				"line %d: expected %d columns, got %d", line, len(columns), len(record))
		}

		var vals [6]float64
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, NewFieldError(ErrInvalidInput, columns[i], "line %d: %q is not a number", line, cell)
			}
			vals[i] = v
		}
		if math.IsNaN(vals[0]) || math.IsInf(vals[0], 0) {
			return nil, NewFieldError(ErrInvalidInput, "frame", "line %d: frame is not finite", line)
		}
		if vals[0] < 0 || vals[0] != math.Trunc(vals[0]) {
			return nil, NewFieldError(ErrInvalidInput, "frame", "line %d: frame %v is not a non-negative integer", line, vals[0])
		}
		samples = append(samples, Sample{
			Frame: int(vals[0]),
			X:     vals[1],
			Y:     vals[2],
			W:     vals[3],
			H:     vals[4],
			R:     vals[5],
		})
	}
	return samples, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
	return err != nil
}

// WriteCSV writes cleaned points with a frame,x,y,w,h,r header.
func WriteCSV(w io.Writer, points []TrackPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(columns))
	for _, p := range points {
		row[0] = strconv.Itoa(p.Frame)
		row[1] = formatFloat(p.X)
		row[2] = formatFloat(p.Y)
		row[3] = formatFloat(p.W)
		row[4] = formatFloat(p.H)
		row[5] = formatFloat(p.R)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for frame %d: %w", p.Frame, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CleanedPath returns the default clean-only output path for src:
// the same directory with a _cleaned.csv suffix.
func CleanedPath(src string) string {
	return SiblingPath(src, "_cleaned.csv")
}

// SiblingPath returns src with its extension replaced by suffix.
func SiblingPath(src, suffix string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(src), stem+suffix)
}
