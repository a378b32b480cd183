package preview

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/trackexo/internal/trace"
)

var (
	cleanedColor    = color.RGBA{R: 255, A: 255}
	simplifiedColor = color.RGBA{G: 255, A: 255}
)

// RenderAxes writes a PNG with two stacked plots: x against frame on top and
// y against frame below, each showing both sequences.
func RenderAxes(w io.Writer, cleaned, simplified []trace.TrackPoint, title Title) error {
	px, err := axisPlot("X", cleaned, simplified, func(p trace.TrackPoint) float64 { return p.X })
	if err != nil {
		return err
	}
	px.Title.Text = title.Heading() + "\n" + title.Subtitle()

	py, err := axisPlot("Y", cleaned, simplified, func(p trace.TrackPoint) float64 { return p.Y })
	if err != nil {
		return err
	}

	img := vgimg.New(14*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(12),
		PadY:      vg.Points(12),
	}
	canvases := plot.Align([][]*plot.Plot{{px}, {py}}, tiles, dc)
	px.Draw(canvases[0][0])
	py.Draw(canvases[1][0])

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("write axes preview png: %w", err)
	}
	return nil
}

func axisPlot(axis string, cleaned, simplified []trace.TrackPoint, value func(trace.TrackPoint) float64) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = axis
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		points []trace.TrackPoint
		color  color.Color
		width  vg.Length
	}{
		{seriesCleaned, cleaned, cleanedColor, vg.Points(1.5)},
		{seriesSimplified, simplified, simplifiedColor, vg.Points(1)},
	}
	for _, s := range series {
		if len(s.points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.points))
		for i, pt := range s.points {
			xys[i] = plotter.XY{X: float64(pt.Frame), Y: value(pt)}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("create %s %s line: %w", s.name, axis, err)
		}
		line.Color = s.color
		line.Width = s.width
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}
