// Package render draws chart geometry onto an SVG or PNG surface using
// go-chart's low-level renderer. It maps geometry as given and computes no
// layout of its own.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rewired-gh/xpgraph/internal/scale"
)

// Supported output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Style holds the colors and sizes used for every chart element.
type Style struct {
	Background drawing.Color
	Line       drawing.Color
	Axis       drawing.Color
	Bar        drawing.Color
	Label      drawing.Color
	LineWidth  float64
	AxisWidth  float64
	FontSize   float64
}

// DefaultStyle returns the built-in palette.
func DefaultStyle() Style {
	return Style{
		Background: chart.ColorWhite,
		Line:       chart.ColorBlue,
		Axis:       chart.ColorBlack,
		Bar:        chart.ColorGreen,
		Label:      chart.ColorAlternateGray,
		LineWidth:  2,
		AxisWidth:  1,
		FontSize:   10,
	}
}

// Renderer writes chart geometry in one output format.
type Renderer struct {
	format   string
	provider chart.RendererProvider
	canvas   scale.Canvas
	style    Style
}

// New creates a Renderer for format ("svg" or "png") on canvas.
func New(format string, canvas scale.Canvas, style Style) (*Renderer, error) {
	if err := canvas.Validate(); err != nil {
		return nil, fmt.Errorf("invalid canvas: %w", err)
	}

	var provider chart.RendererProvider
	switch strings.ToLower(format) {
	case FormatSVG:
		provider = chart.SVG
	case FormatPNG:
		provider = chart.PNG
	default:
		return nil, fmt.Errorf("unsupported format %q (use: svg, png)", format)
	}

	return &Renderer{
		format:   strings.ToLower(format),
		provider: provider,
		canvas:   canvas,
		style:    style,
	}, nil
}

// Extension returns the file extension for the output format.
func (r *Renderer) Extension() string {
	return r.format
}

// RenderTimeSeries draws the cumulative line and both axes. Empty geometry
// produces a blank surface.
func (r *Renderer) RenderTimeSeries(w io.Writer, g scale.TimeSeries) error {
	cr, err := r.surface()
	if err != nil {
		return err
	}

	if !g.IsEmpty() {
		cr.ResetStyle()
		cr.SetStrokeColor(r.style.Line)
		cr.SetStrokeWidth(r.style.LineWidth)
		for i, p := range g.Line {
			if i == 0 {
				cr.MoveTo(px(p.X), px(p.Y))
				continue
			}
			cr.LineTo(px(p.X), px(p.Y))
		}
		if len(g.Line) == 1 {
			// A lone move-to strokes nothing; mark the point instead.
			cr.SetFillColor(r.style.Line)
			cr.Circle(r.style.LineWidth*2, px(g.Line[0].X), px(g.Line[0].Y))
			cr.FillStroke()
		} else {
			cr.Stroke()
		}

		r.drawSegment(cr, g.XAxis)
		r.drawSegment(cr, g.YAxis)
	}

	return cr.Save(w)
}

// RenderBars draws one filled rect and label per category plus the y axis.
// Empty geometry produces a blank surface.
func (r *Renderer) RenderBars(w io.Writer, g scale.Bars) error {
	cr, err := r.surface()
	if err != nil {
		return err
	}

	if !g.IsEmpty() {
		for _, rect := range g.Rects {
			if rect.Width <= 0 || rect.Height <= 0 {
				continue
			}
			cr.ResetStyle()
			cr.SetFillColor(r.style.Bar)
			cr.SetStrokeColor(r.style.Bar)
			cr.SetStrokeWidth(0)
			cr.MoveTo(px(rect.X), px(rect.Y))
			cr.LineTo(px(rect.X+rect.Width), px(rect.Y))
			cr.LineTo(px(rect.X+rect.Width), px(rect.Y+rect.Height))
			cr.LineTo(px(rect.X), px(rect.Y+rect.Height))
			cr.Close()
			cr.Fill()
		}

		font, err := chart.GetDefaultFont()
		if err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		for _, label := range g.Labels {
			cr.ResetStyle()
			cr.SetFont(font)
			cr.SetFontColor(r.style.Label)
			cr.SetFontSize(r.style.FontSize)
			x := px(label.X) - anchorShift(label.Anchor, cr.MeasureText(label.Text).Width())
			cr.Text(label.Text, x, px(label.Y))
		}

		r.drawSegment(cr, g.YAxis)
	}

	return cr.Save(w)
}

// surface creates a fresh drawing surface. PNG output is painted with the
// background color; SVG output stays transparent.
func (r *Renderer) surface() (chart.Renderer, error) {
	cr, err := r.provider(int(r.canvas.Width), int(r.canvas.Height))
	if err != nil {
		return nil, fmt.Errorf("create %s renderer: %w", r.format, err)
	}

	if r.format == FormatPNG {
		w, h := int(r.canvas.Width), int(r.canvas.Height)
		cr.SetFillColor(r.style.Background)
		cr.SetStrokeWidth(0)
		cr.MoveTo(0, 0)
		cr.LineTo(w, 0)
		cr.LineTo(w, h)
		cr.LineTo(0, h)
		cr.Close()
		cr.Fill()
	}
	return cr, nil
}

func (r *Renderer) drawSegment(cr chart.Renderer, seg scale.LineSegment) {
	cr.ResetStyle()
	cr.SetStrokeColor(r.style.Axis)
	cr.SetStrokeWidth(r.style.AxisWidth)
	cr.MoveTo(px(seg.From.X), px(seg.From.Y))
	cr.LineTo(px(seg.To.X), px(seg.To.Y))
	cr.Stroke()
}

// anchorShift is how far left of the anchor point text of width w starts.
func anchorShift(anchor string, w int) int {
	switch anchor {
	case scale.AnchorMiddle:
		return w / 2
	case scale.AnchorEnd:
		return w
	default:
		return 0
	}
}

func px(v float64) int {
	return int(math.Round(v))
}
