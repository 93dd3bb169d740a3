package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"BioSentinel/internal/model"
)

// Value axis limits.
const (
	YMin = -1.1
	YMax = 1.1
)

// Config holds configuration for chart rendering.
type Config struct {
	Width         int
	Height        int
	PaddingLeft   int
	PaddingRight  int
	PaddingTop    int
	PaddingBottom int
	LineWidth     float64
	MaxDateLabels int
	Background    color.RGBA
	GridColor     color.RGBA
	TextColor     color.RGBA
	TodayColor    color.RGBA
	CycleColors   map[model.Cycle]color.RGBA
	AverageColor  color.RGBA
}

// DefaultConfig returns a default chart configuration.
func DefaultConfig() *Config {
	return &Config{
		Width:         1200,
		Height:        600,
		PaddingLeft:   80,
		PaddingRight:  30,
		PaddingTop:    90,
		PaddingBottom: 70,
		LineWidth:     2.0,
		MaxDateLabels: 8,
		Background:    color.RGBA{255, 255, 255, 255},
		GridColor:     color.RGBA{225, 228, 232, 255},
		TextColor:     color.RGBA{33, 37, 41, 255},
		TodayColor:    color.RGBA{220, 20, 20, 255},
		CycleColors: map[model.Cycle]color.RGBA{
			model.CyclePhysical:     {99, 110, 250, 255}, // Blue
			model.CycleEmotional:    {239, 85, 59, 255},  // Red-orange
			model.CycleIntellectual: {0, 204, 150, 255},  // Green
		},
		AverageColor: color.RGBA{0, 0, 0, 255},
	}
}

// Renderer draws forecasts as PNG line charts.
type Renderer struct {
	config *Config
	face   func(points float64) font.Face
}

// NewRenderer creates a new renderer. A nil config uses DefaultConfig.
func NewRenderer(config *Config) (*Renderer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Width <= config.PaddingLeft+config.PaddingRight || config.Height <= config.PaddingTop+config.PaddingBottom {
		return nil, fmt.Errorf("chart %dx%d is smaller than its padding", config.Width, config.Height)
	}
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Renderer{
		config: config,
		face: func(points float64) font.Face {
			return truetype.NewFace(ttf, &truetype.Options{Size: points})
		},
	}, nil
}

// plot is the drawing area in pixels.
type plot struct {
	x, y, width, height float64
	days                int
}

func (p plot) xFor(index int) float64 {
	if p.days <= 1 {
		return p.x + p.width/2
	}
	return p.x + float64(index)/float64(p.days-1)*p.width
}

func (p plot) yFor(value float64) float64 {
	return p.y + (YMax-value)/(YMax-YMin)*p.height
}

// Render draws the four lines of a forecast with a marker on today.
func (r *Renderer) Render(f *model.Forecast) ([]byte, error) {
	if f == nil || len(f.Series) == 0 {
		return nil, errors.New("no readings provided")
	}

	c := r.config
	dc := gg.NewContext(c.Width, c.Height)
	dc.SetColor(c.Background)
	dc.Clear()

	area := plot{
		x:      float64(c.PaddingLeft),
		y:      float64(c.PaddingTop),
		width:  float64(c.Width - c.PaddingLeft - c.PaddingRight),
		height: float64(c.Height - c.PaddingTop - c.PaddingBottom),
		days:   len(f.Series),
	}

	r.drawGrid(dc, area, f.Series)
	for _, cycle := range model.Cycles {
		r.drawLine(dc, area, f.Series, c.CycleColors[cycle], nil, func(rd model.DailyReading) float64 {
			return rd.Triple().Value(cycle)
		})
	}
	r.drawLine(dc, area, f.Series, c.AverageColor, []float64{2, 4}, func(rd model.DailyReading) float64 {
		return rd.Average
	})
	r.drawToday(dc, area, f)
	r.drawLabels(dc, area, f)
	r.drawLegend(dc, area)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawGrid draws value grid lines and date ticks.
func (r *Renderer) drawGrid(dc *gg.Context, p plot, series model.Series) {
	dc.SetFontFace(r.face(11))
	dc.SetLineWidth(1)
	for _, level := range []float64{-1, -0.5, 0, 0.5, 1} {
		y := p.yFor(level)
		dc.SetColor(r.config.GridColor)
		dc.DrawLine(p.x, y, p.x+p.width, y)
		dc.Stroke()
		dc.SetColor(r.config.TextColor)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", level), p.x-8, y, 1, 0.5)
	}

	for _, i := range DateTicks(len(series), r.config.MaxDateLabels) {
		x := p.xFor(i)
		dc.SetColor(r.config.GridColor)
		dc.DrawLine(x, p.y, x, p.y+p.height)
		dc.Stroke()
		dc.SetColor(r.config.TextColor)
		dc.DrawStringAnchored(series[i].Date.Time().Format("Jan 2"), x, p.y+p.height+16, 0.5, 0.5)
	}
}

func (r *Renderer) drawLine(dc *gg.Context, p plot, series model.Series, col color.RGBA, dash []float64, value func(model.DailyReading) float64) {
	dc.SetColor(col)
	dc.SetLineWidth(r.config.LineWidth)
	dc.SetDash(dash...)
	if len(series) == 1 {
		dc.DrawCircle(p.xFor(0), p.yFor(value(series[0])), r.config.LineWidth*2)
		dc.Fill()
		dc.SetDash()
		return
	}
	for i, rd := range series {
		if i == 0 {
			dc.MoveTo(p.xFor(i), p.yFor(value(rd)))
			continue
		}
		dc.LineTo(p.xFor(i), p.yFor(value(rd)))
	}
	dc.Stroke()
	dc.SetDash()
}

// drawToday marks the current date when it falls inside the window.
func (r *Renderer) drawToday(dc *gg.Context, p plot, f *model.Forecast) {
	if !f.Input.Range.Contains(f.Input.Today) {
		return
	}
	x := p.xFor(f.Input.Today.DaysSince(f.Input.Range.Start))
	dc.SetColor(r.config.TodayColor)
	dc.SetLineWidth(1.5)
	dc.SetDash(8, 6)
	dc.DrawLine(x, p.y, x, p.y+p.height)
	dc.Stroke()
	dc.SetDash()

	dc.SetFontFace(r.face(12))
	dc.DrawStringAnchored("Today", x, p.yFor(1.05)-4, 0.5, 1)
}

// drawLabels draws the title and axis titles.
func (r *Renderer) drawLabels(dc *gg.Context, p plot, f *model.Forecast) {
	dc.SetColor(r.config.TextColor)

	dc.SetFontFace(r.face(13))
	dc.DrawStringAnchored("Date", p.x+p.width/2, p.y+p.height+45, 0.5, 0.5)

	dc.Push()
	dc.RotateAbout(-math.Pi/2, 22, p.y+p.height/2)
	dc.DrawStringAnchored("Cycle Value", 22, p.y+p.height/2, 0.5, 0.5)
	dc.Pop()

	dc.SetFontFace(r.face(18))
	dc.DrawStringAnchored(Title(f.Input.Person.DisplayName), p.x, 30, 0, 0.5)
}

// drawLegend draws a horizontal legend right-aligned above the plot.
func (r *Renderer) drawLegend(dc *gg.Context, p plot) {
	type entry struct {
		label string
		col   color.RGBA
		dash  []float64
	}
	entries := make([]entry, 0, len(model.Cycles)+1)
	for _, c := range model.Cycles {
		entries = append(entries, entry{string(c), r.config.CycleColors[c], nil})
	}
	entries = append(entries, entry{"Average", r.config.AverageColor, []float64{2, 4}})

	dc.SetFontFace(r.face(12))
	const swatch, gap = 24.0, 18.0
	y := p.y - 30
	x := p.x + p.width
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		w, _ := dc.MeasureString(e.label)
		x -= w
		dc.SetColor(r.config.TextColor)
		dc.DrawStringAnchored(e.label, x, y, 0, 0.5)
		x -= 6 + swatch
		dc.SetColor(e.col)
		dc.SetLineWidth(r.config.LineWidth)
		dc.SetDash(e.dash...)
		dc.DrawLine(x, y, x+swatch, y)
		dc.Stroke()
		dc.SetDash()
		x -= gap
	}
}

// Title is the chart heading for a person.
func Title(name string) string {
	return fmt.Sprintf("Biorhythm Chart for %s", name)
}

// DateTicks picks at most max evenly spaced indexes out of n days, always including the first.
func DateTicks(n, max int) []int {
	if n <= 0 || max <= 0 {
		return nil
	}
	step := int(math.Ceil(float64(n) / float64(max)))
	if step < 1 {
		step = 1
	}
	ticks := make([]int, 0, max)
	for i := 0; i < n; i += step {
		ticks = append(ticks, i)
	}
	return ticks
}
