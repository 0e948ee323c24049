package scale

import (
	"math"

	"github.com/rewired-gh/xpgraph/internal/aggregate"
)

const (
	// BarGap is subtracted from each bar's slot to separate neighbours.
	BarGap = 10.0
	// LabelOffset is the distance of category labels below the baseline.
	LabelOffset = 20.0
)

// Bars is the geometry of the per-category bar chart.
// Rects[i] and Labels[i] belong to the same category.
type Bars struct {
	Rects  []Rect
	Labels []Label
	YAxis  LineSegment
}

// IsEmpty reports whether there is nothing to draw.
func (b Bars) IsEmpty() bool {
	return len(b.Rects) == 0
}

// ScaleCategoryTotals lays totals out left to right in the order given.
// Negative totals are drawn as zero-height bars on the baseline.
func ScaleCategoryTotals(totals []aggregate.CategoryTotal, c Canvas) Bars {
	if len(totals) == 0 {
		return Bars{}
	}

	maxXP := totals[0].Total
	for _, t := range totals[1:] {
		if t.Total > maxXP {
			maxXP = t.Total
		}
	}

	slot := c.plotWidth() / float64(len(totals))
	drawn := math.Max(slot-BarGap, 0)
	baseline := c.Baseline()

	bars := Bars{
		Rects:  make([]Rect, len(totals)),
		Labels: make([]Label, len(totals)),
		YAxis:  c.yAxis(),
	}
	for i, t := range totals {
		x := c.Padding + float64(i)*slot
		y := c.valueY(float64(t.Total), float64(maxXP))
		bars.Rects[i] = Rect{X: x, Y: y, Width: drawn, Height: baseline - y}
		bars.Labels[i] = Label{
			X:      x + drawn/2,
			Y:      baseline + LabelOffset,
			Anchor: AnchorMiddle,
			Text:   t.Name,
		}
	}
	return bars
}
