package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG size in pixels.
const (
	DefaultPNGWidth  = 800
	DefaultPNGHeight = 450
)

var pngPalette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
}

// RenderPNG draws spec as a PNG image. Empty figures produce a blank image.
// Nothing is written to w when rendering fails.
func RenderPNG(w io.Writer, spec Spec, width, height int) error {
	if width <= 0 {
		width = DefaultPNGWidth
	}
	if height <= 0 {
		height = DefaultPNGHeight
	}
	if spec.Empty() {
		return BlankPNG(w, width, height)
	}
	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case KindPie:
		err = renderPiePNG(&buf, spec, width, height)
	case KindScatter:
		err = renderScatterPNG(&buf, spec, width, height)
	default:
		err = fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", spec.Kind, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// BlankPNG writes a plain white image.
func BlankPNG(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return png.Encode(w, img)
}

func renderPiePNG(w io.Writer, spec Spec, width, height int) error {
	values := make([]gochart.Value, 0, len(spec.Slices))
	for i, sl := range spec.Slices {
		// go-chart normalizes by the total; zero slices draw nothing.
		if sl.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: sl.Value,
			Label: fmt.Sprintf("%s (%s)", sl.Label, formatValue(sl.Value)),
			Style: gochart.Style{FillColor: pngPalette[i%len(pngPalette)]},
		})
	}
	pie := gochart.PieChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pie.Render(gochart.PNG, w)
}

func renderScatterPNG(w io.Writer, spec Spec, width, height int) error {
	xMin, xMax := xDomain(spec)
	yMin, yMax := yDomain(spec)
	pad := (yMax - yMin) * 0.2

	byGroup := make(map[string]*gochart.ContinuousSeries, len(spec.Groups))
	series := make([]gochart.Series, 0, len(spec.Groups))
	for i, g := range spec.Groups {
		s := &gochart.ContinuousSeries{
			Name: g,
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    5,
				DotColor:    pngPalette[i%len(pngPalette)],
			},
		}
		byGroup[g] = s
	}
	for _, p := range spec.Points {
		s, ok := byGroup[p.Group]
		if !ok {
			continue
		}
		s.XValues = append(s.XValues, p.X)
		s.YValues = append(s.YValues, p.Y)
	}
	for _, g := range spec.Groups {
		series = append(series, *byGroup[g])
	}

	var yTicks []gochart.Tick
	for _, t := range spec.YTicks {
		yTicks = append(yTicks, gochart.Tick{Value: t.Value, Label: t.Label})
	}
	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  spec.XLabel,
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: gochart.YAxis{
			Name:  spec.YLabel,
			Range: &gochart.ContinuousRange{Min: yMin - pad, Max: yMax + pad},
			Ticks: yTicks,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}
