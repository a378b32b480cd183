package preview

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trackexo/internal/trace"
)

// Render3D writes an HTML page with both sequences drawn as 3D lines in
// (x, y, frame) space.
func Render3D(w io.Writer, cleaned, simplified []trace.TrackPoint, title Title) error {
	chart := charts.NewLine3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Trace preview " + title.Name,
			Theme:     "dark",
			Width:     "1200px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title.Heading(),
			Subtitle: title.Subtitle(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Frame"}),
	)

	chart.AddSeries(seriesCleaned, chart3DData(cleaned),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "red", Width: 3}))
	chart.AddSeries(seriesSimplified, chart3DData(simplified),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "lime", Width: 2}))

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("render 3d preview: %w", err)
	}
	return nil
}

func chart3DData(points []trace.TrackPoint) []opts.Chart3DData {
	data := make([]opts.Chart3DData, len(points))
	for i, p := range points {
		data[i] = opts.Chart3DData{
			Name:  fmt.Sprintf("frame %d", p.Frame),
			Value: []interface{}{p.X, p.Y, p.Frame},
		}
	}
	return data
}
