package scale

import (
	"time"

	"github.com/rewired-gh/xpgraph/internal/aggregate"
)

// TimeSeries is the geometry of the cumulative XP line chart.
// Line[0] is the move-to point; every later point is a line-to.
type TimeSeries struct {
	Line  []Point
	XAxis LineSegment
	YAxis LineSegment
}

// IsEmpty reports whether there is nothing to draw.
func (ts TimeSeries) IsEmpty() bool {
	return len(ts.Line) == 0
}

// ScaleTimeSeries lays points out on a linear time axis and a value axis
// starting at zero. Points keep their input order.
func ScaleTimeSeries(points []aggregate.CumulativePoint, c Canvas) TimeSeries {
	if len(points) == 0 {
		return TimeSeries{}
	}

	minDate, maxDate := points[0].Timestamp, points[0].Timestamp
	maxXP := points[0].RunningTotal
	for _, p := range points[1:] {
		if p.Timestamp.Before(minDate) {
			minDate = p.Timestamp
		}
		if p.Timestamp.After(maxDate) {
			maxDate = p.Timestamp
		}
		if p.RunningTotal > maxXP {
			maxXP = p.RunningTotal
		}
	}

	xOf := timeScale(minDate, maxDate, c)
	line := make([]Point, len(points))
	for i, p := range points {
		line[i] = Point{
			X: xOf(p.Timestamp),
			Y: c.valueY(float64(p.RunningTotal), float64(maxXP)),
		}
	}

	return TimeSeries{
		Line:  line,
		XAxis: c.xAxis(),
		YAxis: c.yAxis(),
	}
}

// timeScale returns the mapping from [min, max] onto the plot width.
// A zero-length range maps every instant to the canvas midpoint.
func timeScale(min, max time.Time, c Canvas) func(time.Time) float64 {
	span := max.Sub(min)
	if span <= 0 {
		mid := c.Width / 2
		return func(time.Time) float64 { return mid }
	}
	return func(t time.Time) float64 {
		ratio := float64(t.Sub(min)) / float64(span)
		return c.Padding + ratio*c.plotWidth()
	}
}
