package scale

import (
	"math"
	"testing"
	"time"

	"github.com/rewired-gh/xpgraph/internal/aggregate"
	"github.com/rewired-gh/xpgraph/internal/models"
)

var t0 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkFinitePoints(t *testing.T, pts ...Point) {
	t.Helper()
	for i, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			t.Errorf("Point %d is not finite: %+v", i, p)
		}
	}
}

func point(offset time.Duration, total int64) aggregate.CumulativePoint {
	return aggregate.CumulativePoint{Timestamp: t0.Add(offset), RunningTotal: total}
}

func TestCanvasValidate(t *testing.T) {
	tests := []struct {
		name    string
		canvas  Canvas
		wantErr bool
	}{
		{name: "default", canvas: DefaultCanvas(), wantErr: false},
		{name: "no padding", canvas: Canvas{Width: 10, Height: 10}, wantErr: false},
		{name: "zero width", canvas: Canvas{Width: 0, Height: 300, Padding: 40}, wantErr: true},
		{name: "negative padding", canvas: Canvas{Width: 500, Height: 300, Padding: -1}, wantErr: true},
		{name: "padding eats plot", canvas: Canvas{Width: 80, Height: 300, Padding: 40}, wantErr: true},
		{name: "NaN height", canvas: Canvas{Width: 500, Height: math.NaN(), Padding: 40}, wantErr: true},
		{name: "Inf width", canvas: Canvas{Width: math.Inf(1), Height: 300, Padding: 40}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.canvas.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Canvas.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScaleTimeSeries_Empty(t *testing.T) {
	ts := ScaleTimeSeries(nil, DefaultCanvas())
	if !ts.IsEmpty() {
		t.Fatalf("Expected empty geometry, got %d points", len(ts.Line))
	}
	if ts.XAxis != (LineSegment{}) || ts.YAxis != (LineSegment{}) {
		t.Errorf("Expected no axes for empty input, got %+v %+v", ts.XAxis, ts.YAxis)
	}
}

func TestScaleTimeSeries_Linear(t *testing.T) {
	c := DefaultCanvas()
	points := []aggregate.CumulativePoint{
		point(0, 10),
		point(time.Hour, 5),
		point(2*time.Hour, 25),
	}

	ts := ScaleTimeSeries(points, c)

	if len(ts.Line) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(ts.Line))
	}
	want := []Point{
		{X: 40, Y: 260 - (10.0/25)*220},
		{X: 250, Y: 260 - (5.0/25)*220},
		{X: 460, Y: 40},
	}
	for i := range want {
		if !approx(ts.Line[i].X, want[i].X) || !approx(ts.Line[i].Y, want[i].Y) {
			t.Errorf("Point %d: expected %+v, got %+v", i, want[i], ts.Line[i])
		}
	}
}

func TestScaleTimeSeries_Axes(t *testing.T) {
	c := DefaultCanvas()
	ts := ScaleTimeSeries([]aggregate.CumulativePoint{point(0, 1), point(time.Minute, 2)}, c)

	wantX := LineSegment{From: Point{X: 40, Y: 260}, To: Point{X: 460, Y: 260}}
	wantY := LineSegment{From: Point{X: 40, Y: 40}, To: Point{X: 40, Y: 260}}
	if ts.XAxis != wantX {
		t.Errorf("Expected x axis %+v, got %+v", wantX, ts.XAxis)
	}
	if ts.YAxis != wantY {
		t.Errorf("Expected y axis %+v, got %+v", wantY, ts.YAxis)
	}
}

func TestScaleTimeSeries_KeepsInputOrder(t *testing.T) {
	c := DefaultCanvas()
	points := []aggregate.CumulativePoint{
		point(2*time.Hour, 1),
		point(0, 2),
	}

	ts := ScaleTimeSeries(points, c)

	if !approx(ts.Line[0].X, c.Width-c.Padding) {
		t.Errorf("Expected first point at right edge, got x=%f", ts.Line[0].X)
	}
	if !approx(ts.Line[1].X, c.Padding) {
		t.Errorf("Expected second point at left edge, got x=%f", ts.Line[1].X)
	}
}

func TestScaleTimeSeries_SinglePoint(t *testing.T) {
	c := DefaultCanvas()
	ts := ScaleTimeSeries([]aggregate.CumulativePoint{point(0, 100)}, c)

	if len(ts.Line) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(ts.Line))
	}
	checkFinitePoints(t, ts.Line...)
	checkFinitePoints(t, ts.XAxis.From, ts.XAxis.To, ts.YAxis.From, ts.YAxis.To)
	if !approx(ts.Line[0].X, c.Width/2) {
		t.Errorf("Expected sole point centered at x=%f, got %f", c.Width/2, ts.Line[0].X)
	}
	if !approx(ts.Line[0].Y, c.Padding) {
		t.Errorf("Expected sole point at top of plot, got y=%f", ts.Line[0].Y)
	}
}

func TestScaleTimeSeries_IdenticalTimestamps(t *testing.T) {
	c := DefaultCanvas()
	points := []aggregate.CumulativePoint{point(0, 1), point(0, 4), point(0, 9)}

	ts := ScaleTimeSeries(points, c)

	for i, p := range ts.Line {
		if !finite(p.X) {
			t.Fatalf("Point %d x is not finite: %f", i, p.X)
		}
		if p.X < c.Padding || p.X > c.Width-c.Padding {
			t.Errorf("Point %d x=%f outside [%f, %f]", i, p.X, c.Padding, c.Width-c.Padding)
		}
	}
}

func TestScaleTimeSeries_ZeroMaximum(t *testing.T) {
	c := DefaultCanvas()
	tests := []struct {
		name   string
		points []aggregate.CumulativePoint
	}{
		{"single zero", []aggregate.CumulativePoint{point(0, 0)}},
		{"all zero", []aggregate.CumulativePoint{point(0, 0), point(time.Hour, 0)}},
		{"all negative", []aggregate.CumulativePoint{point(0, -5), point(time.Hour, -8)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ScaleTimeSeries(tt.points, c)
			checkFinitePoints(t, ts.Line...)
			for i, p := range ts.Line {
				if !approx(p.Y, c.Baseline()) {
					t.Errorf("Point %d: expected baseline y=%f, got %f", i, c.Baseline(), p.Y)
				}
			}
		})
	}
}

func TestScaleTimeSeries_NegativeDipStaysInPlot(t *testing.T) {
	c := DefaultCanvas()
	points := []aggregate.CumulativePoint{point(0, -10), point(time.Hour, 50)}

	ts := ScaleTimeSeries(points, c)

	if !approx(ts.Line[0].Y, c.Baseline()) {
		t.Errorf("Expected negative total on baseline, got y=%f", ts.Line[0].Y)
	}
	if !approx(ts.Line[1].Y, c.Padding) {
		t.Errorf("Expected maximum at top, got y=%f", ts.Line[1].Y)
	}
}

func TestScaleTimeSeries_DoesNotMutateInput(t *testing.T) {
	points := []aggregate.CumulativePoint{point(time.Hour, 3), point(0, 1)}
	before := append([]aggregate.CumulativePoint(nil), points...)

	ScaleTimeSeries(points, DefaultCanvas())

	for i := range points {
		if points[i] != before[i] {
			t.Errorf("Input point %d changed from %+v to %+v", i, before[i], points[i])
		}
	}
}

func TestScaleCategoryTotals_Empty(t *testing.T) {
	bars := ScaleCategoryTotals(nil, DefaultCanvas())
	if !bars.IsEmpty() {
		t.Fatalf("Expected empty geometry, got %d bars", len(bars.Rects))
	}
	if len(bars.Labels) != 0 {
		t.Errorf("Expected no labels, got %d", len(bars.Labels))
	}
	if bars.YAxis != (LineSegment{}) {
		t.Errorf("Expected no axis for empty input, got %+v", bars.YAxis)
	}
}

func TestScaleCategoryTotals_PositiveAndNegative(t *testing.T) {
	c := DefaultCanvas()
	totals := []aggregate.CategoryTotal{{Name: "A", Total: 30}, {Name: "B", Total: -5}}

	bars := ScaleCategoryTotals(totals, c)

	if len(bars.Rects) != 2 || len(bars.Labels) != 2 {
		t.Fatalf("Expected 2 bars and 2 labels, got %d and %d", len(bars.Rects), len(bars.Labels))
	}

	plotHeight := c.Height - 2*c.Padding
	maxXP := 30.0
	for i, ct := range totals {
		r := bars.Rects[i]
		if r.Height < 0 {
			t.Errorf("Bar %d has negative height %f", i, r.Height)
		}
		want := math.Max(float64(ct.Total), 0) / maxXP * plotHeight
		if !approx(r.Height, want) {
			t.Errorf("Bar %d: expected height %f, got %f", i, want, r.Height)
		}
		if !approx(r.Y+r.Height, c.Baseline()) {
			t.Errorf("Bar %d does not stand on the baseline: y=%f height=%f", i, r.Y, r.Height)
		}
	}
}

func TestScaleCategoryTotals_Layout(t *testing.T) {
	c := DefaultCanvas()
	totals := []aggregate.CategoryTotal{
		{Name: "go-reloaded", Total: 100},
		{Name: "ascii-art", Total: 50},
		{Name: "a-project-name-that-is-much-longer-than-its-bar", Total: 25},
	}

	bars := ScaleCategoryTotals(totals, c)

	slot := (c.Width - 2*c.Padding) / 3
	for i, ct := range totals {
		r := bars.Rects[i]
		if !approx(r.X, c.Padding+float64(i)*slot) {
			t.Errorf("Bar %d: expected x=%f, got %f", i, c.Padding+float64(i)*slot, r.X)
		}
		if !approx(r.Width, slot-BarGap) {
			t.Errorf("Bar %d: expected width %f, got %f", i, slot-BarGap, r.Width)
		}

		l := bars.Labels[i]
		if l.Text != ct.Name {
			t.Errorf("Label %d: expected %q, got %q", i, ct.Name, l.Text)
		}
		if l.Anchor != AnchorMiddle {
			t.Errorf("Label %d: expected anchor %q, got %q", i, AnchorMiddle, l.Anchor)
		}
		if !approx(l.X, r.X+r.Width/2) {
			t.Errorf("Label %d not centered under bar: x=%f", i, l.X)
		}
		if !approx(l.Y, c.Baseline()+LabelOffset) {
			t.Errorf("Label %d: expected y=%f, got %f", i, c.Baseline()+LabelOffset, l.Y)
		}
	}

	wantAxis := LineSegment{From: Point{X: 40, Y: 40}, To: Point{X: 40, Y: 260}}
	if bars.YAxis != wantAxis {
		t.Errorf("Expected y axis %+v, got %+v", wantAxis, bars.YAxis)
	}
}

func TestScaleCategoryTotals_SingleCategory(t *testing.T) {
	c := DefaultCanvas()
	bars := ScaleCategoryTotals([]aggregate.CategoryTotal{{Name: "solo", Total: 42}}, c)

	if len(bars.Rects) != 1 {
		t.Fatalf("Expected 1 bar, got %d", len(bars.Rects))
	}
	r := bars.Rects[0]
	if !approx(r.Width, c.Width-2*c.Padding-BarGap) {
		t.Errorf("Expected full-width bar, got width %f", r.Width)
	}
	if !approx(r.Height, c.Height-2*c.Padding) {
		t.Errorf("Expected full-height bar, got height %f", r.Height)
	}
}

func TestScaleCategoryTotals_ZeroMaximum(t *testing.T) {
	c := DefaultCanvas()
	totals := []aggregate.CategoryTotal{{Name: "A", Total: 0}, {Name: "B", Total: -3}}

	bars := ScaleCategoryTotals(totals, c)

	for i, r := range bars.Rects {
		checkFinitePoints(t, Point{X: r.X, Y: r.Y}, Point{X: r.Width, Y: r.Height})
		if r.Height != 0 {
			t.Errorf("Bar %d: expected zero height, got %f", i, r.Height)
		}
		if !approx(r.Y, c.Baseline()) {
			t.Errorf("Bar %d: expected y on baseline, got %f", i, r.Y)
		}
	}
}

func TestScaleCategoryTotals_ManyCategoriesNeverNegativeWidth(t *testing.T) {
	c := DefaultCanvas()
	totals := make([]aggregate.CategoryTotal, 100)
	for i := range totals {
		totals[i] = aggregate.CategoryTotal{Name: "p", Total: int64(i + 1)}
	}

	bars := ScaleCategoryTotals(totals, c)

	for i, r := range bars.Rects {
		if r.Width < 0 {
			t.Fatalf("Bar %d has negative width %f", i, r.Width)
		}
	}
}

func TestPipeline_EmptyTransactions(t *testing.T) {
	var txs []models.Transaction
	c := DefaultCanvas()

	if ts := ScaleTimeSeries(aggregate.Accumulate(txs), c); !ts.IsEmpty() {
		t.Error("Expected no line geometry for empty transactions")
	}
	if bars := ScaleCategoryTotals(aggregate.TotalByCategory(txs), c); !bars.IsEmpty() {
		t.Error("Expected no bar geometry for empty transactions")
	}
}
