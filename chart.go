package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBlack   = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	chartWhite   = drawing.Color{R: 255, G: 255, B: 255, A: 255}
	chartGreen   = drawing.Color{R: 0, G: 200, B: 0, A: 255}
	chartYellow  = drawing.Color{R: 255, G: 220, B: 0, A: 255}
	chartRed     = drawing.Color{R: 230, G: 30, B: 30, A: 255}
	chartMagenta = drawing.Color{R: 255, G: 0, B: 255, A: 255}
	chartGrid    = drawing.Color{R: 255, G: 255, B: 255, A: 180}
)

// chartLine is one plotted sequence.
type chartLine struct {
	name   string
	values []float64
	color  drawing.Color
}

// RenderEnergyChart draws voltage, current, temperature and battery level.
func RenderEnergyChart(s Series, width, height int) (image.Image, error) {
	return renderPanel("Energy", s.Times, []chartLine{
		{name: "Voltage (V)", values: s.VoltageV, color: chartGreen},
		{name: "Current (mA)", values: s.CurrentMA, color: chartYellow},
		{name: "Temperature (°C)", values: s.TemperatureC, color: chartRed},
		{name: "Battery (%)", values: s.BatteryPct, color: chartWhite},
	}, width, height)
}

// RenderNetworkChart draws ping latency and packet loss.
func RenderNetworkChart(s Series, width, height int) (image.Image, error) {
	return renderPanel("Network", s.Times, []chartLine{
		{name: "Ping (ms)", values: s.PingMS, color: chartMagenta},
		{name: "Packet Loss (%)", values: s.LossPct, color: chartRed},
	}, width, height)
}

func renderPanel(title string, xs []float64, lines []chartLine, width, height int) (image.Image, error) {
	// go-chart rejects a zero-width x range.
	if len(xs) < 2 {
		return blank(width, height), nil
	}

	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	series := make([]chart.Series, 0, len(lines))
	for _, l := range lines {
		for _, v := range l.values {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    l.name,
			XValues: xs,
			YValues: l.values,
			Style: chart.Style{
				StrokeColor: l.color,
				StrokeWidth: 2,
			},
		})
	}
	minY, maxY = axisBounds(minY, maxY)

	axisStyle := chart.Style{
		StrokeColor: chartWhite,
		FontColor:   chartWhite,
	}
	gridStyle := chart.Style{
		StrokeColor:     chartGrid,
		StrokeWidth:     0.7,
		StrokeDashArray: []float64{4, 4},
	}

	ch := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: chartWhite},
		Width:      width,
		Height:     height,
		Background: chart.Style{
			FillColor: chartBlack,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: chartBlack},
		XAxis: chart.XAxis{
			Name:           "Time (s)",
			NameStyle:      axisStyle,
			Style:          axisStyle,
			GridMajorStyle: gridStyle,
			Range:          &chart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]},
		},
		YAxis: chart.YAxis{
			Name:           "Values",
			NameStyle:      axisStyle,
			Style:          axisStyle,
			GridMajorStyle: gridStyle,
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{
		FillColor:   chartBlack,
		FontColor:   chartWhite,
		StrokeColor: chartWhite,
	})}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return blank(width, height), err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return blank(width, height), err
	}
	return img, nil
}

// axisBounds pads [min, max] so the range is never empty.
func axisBounds(min, max float64) (float64, float64) {
	if min > max {
		return 0, 1
	}
	span := max - min
	if span == 0 {
		span = math.Max(math.Abs(max), 1)
	}
	pad := span * 0.05
	lo, hi := min-pad, max+pad
	if min >= 0 && lo < 0 {
		lo = 0
	}
	return lo, hi
}

// blank is a dark placeholder panel shown before there is anything to plot.
func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	return img
}
