package exo

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/banshee-data/trackexo/internal/trace"
)

// Language selects the filter field names written for each object.
type Language string

const (
	// Japanese writes the field names of a stock AviUtl install.
	Japanese Language = "jp"
	// English writes the field names of the English-modded Advanced Editing plugin.
	English Language = "en"
)

// ParseLanguage accepts "jp" or "en" (case-insensitive). The empty string
// selects Japanese.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "", Japanese:
		return Japanese, nil
	case English:
		return English, nil
	default:
		return "", trace.NewFieldError(trace.ErrInvalidConfiguration, "language",
			"unknown language %q (want jp or en)", s)
	}
}

// labels holds the localised field names of one object block.
type labels struct {
	Figure          string
	Size            string
	Aspect          string
	LineWidth       string
	Resize          string
	Zoom            string
	NoInterpolation string
	SizeByDots      string
	Standard        string
	Clearness       string
	Rotation        string
}

var localised = map[Language]labels{
	English: {
		Figure: "Graphic", Size: "Size", Aspect: "rAspect", LineWidth: "Line width",
		Resize: "Resize", Zoom: "Zoom%", NoInterpolation: "No interpolation",
		SizeByDots: "Specified size by the number of dots",
		Standard:   "Standard drawing", Clearness: "Clearness", Rotation: "Rotation",
	},
	Japanese: {
		Figure: "図形", Size: "サイズ", Aspect: "縦横比", LineWidth: "ライン幅",
		Resize: "リサイズ", Zoom: "拡大率", NoInterpolation: "補間なし",
		SizeByDots: "ドット数でサイズ指定",
		Standard:   "標準描画", Clearness: "透明度", Rotation: "回転",
	},
}

const headerTmpl = `[exedit]
width={{.Width}}
height={{.Height}}
rate={{.Rate}}
scale={{.Scale}}
length={{.Length}}
audio_rate={{.AudioRate}}
audio_ch={{.AudioChannels}}

`

// objectTmpl renders one segment as a figure object with a resize filter and
// standard drawing. The chain line is left blank on the first object.
const objectTmpl = `[{{.ID}}]
start={{.FrameStart}}
end={{.FrameEnd}}
layer=1
overlay=1
camera=0
{{if .Chain}}chain=1{{end}}
[{{.ID}}.0]
_name={{.L.Figure}}
{{.L.Size}}=100
{{.L.Aspect}}=0.0
{{.L.LineWidth}}=4000
type=2
color=ffffff
name=
[{{.ID}}.1]
_name={{.L.Resize}}
{{.L.Zoom}}=100.00
X={{f2 .W.Start}},{{f2 .W.End}},1
Y={{f2 .H.Start}},{{f2 .H.End}},1
{{.L.NoInterpolation}}=0
{{.L.SizeByDots}}=1
[{{.ID}}.2]
_name={{.L.Standard}}
X={{f2 .X.Start}},{{f2 .X.End}},1
Y={{f2 .Y.Start}},{{f2 .Y.End}},1
Z=0.0
{{.L.Zoom}}=100.00
{{.L.Clearness}}=70.0
{{.L.Rotation}}={{f2 .R.Start}},{{f2 .R.End}},1
blend=0
`

var (
	headerTemplate = template.Must(template.New("header").Parse(headerTmpl))
	objectTemplate = template.Must(template.New("object").
			Funcs(template.FuncMap{"f2": formatValue}).
			Parse(objectTmpl))
)

// formatValue writes v with exactly two decimals and never as negative zero.
func formatValue(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
