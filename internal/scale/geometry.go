// Package scale maps aggregated XP series onto pixel coordinates.
//
// Two independent algorithms live here:
//
//   - ScaleTimeSeries maps a cumulative series onto a linear time axis and a
//     linear value axis, producing a polyline plus both axes.
//   - ScaleCategoryTotals lays per-category totals out on a categorical axis,
//     producing one bar and one label per category plus the value axis.
//
// Both are pure functions of their input and the canvas. Degenerate input
// (no data, a zero-width time range, a zero-height value range) resolves to a
// fixed fallback geometry instead of NaN or Inf coordinates:
//
//   - empty input yields an empty result with no axes
//   - a single timestamp places every point at the horizontal midpoint
//   - a non-positive maximum places every point, and every bar top, on the
//     baseline
package scale

import (
	"errors"
	"math"
)

// Label anchors, matching the SVG text-anchor values.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// Point is a position in canvas space, y growing downwards.
type Point struct {
	X float64
	Y float64
}

// LineSegment is a straight line between two points.
type LineSegment struct {
	From Point
	To   Point
}

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Label is a text anchored at a point.
type Label struct {
	X      float64
	Y      float64
	Anchor string
	Text   string
}

// Canvas is the fixed drawing surface both charts are laid out on.
type Canvas struct {
	Width   float64 `mapstructure:"width"`
	Height  float64 `mapstructure:"height"`
	Padding float64 `mapstructure:"padding"`
}

// DefaultCanvas returns the 500x300 surface with 40 units of padding.
func DefaultCanvas() Canvas {
	return Canvas{Width: 500, Height: 300, Padding: 40}
}

// Validate checks that the canvas leaves a non-empty plot area.
func (c Canvas) Validate() error {
	for _, v := range []float64{c.Width, c.Height, c.Padding} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("canvas dimensions must be finite")
		}
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("canvas width and height must be positive")
	}
	if c.Padding < 0 {
		return errors.New("canvas padding must not be negative")
	}
	if 2*c.Padding >= c.Width || 2*c.Padding >= c.Height {
		return errors.New("canvas padding leaves no plot area")
	}
	return nil
}

// Baseline is the y coordinate of the horizontal axis.
func (c Canvas) Baseline() float64 {
	return c.Height - c.Padding
}

func (c Canvas) plotWidth() float64 {
	return c.Width - 2*c.Padding
}

func (c Canvas) plotHeight() float64 {
	return c.Height - 2*c.Padding
}

// yAxis runs up the left edge of the plot area.
func (c Canvas) yAxis() LineSegment {
	return LineSegment{
		From: Point{X: c.Padding, Y: c.Padding},
		To:   Point{X: c.Padding, Y: c.Baseline()},
	}
}

// xAxis runs along the baseline.
func (c Canvas) xAxis() LineSegment {
	return LineSegment{
		From: Point{X: c.Padding, Y: c.Baseline()},
		To:   Point{X: c.Width - c.Padding, Y: c.Baseline()},
	}
}

// valueY maps v from [0, max] onto [baseline, padding]. Values below zero sit
// on the baseline; a non-positive max puts everything on the baseline.
func (c Canvas) valueY(v, max float64) float64 {
	if max <= 0 || v <= 0 {
		return c.Baseline()
	}
	return c.Baseline() - (v/max)*c.plotHeight()
}
