// Package aggregate turns raw XP transactions into the two series the charts
// are drawn from: a cumulative running total and per-category totals.
//
// All functions are pure. They never modify their input and keep no state
// between calls, so they can be re-run on every render.
package aggregate

import (
	"sort"
	"time"

	"github.com/rewired-gh/xpgraph/internal/models"
)

// CumulativePoint is the running XP total right after one transaction.
type CumulativePoint struct {
	Timestamp    time.Time
	RunningTotal int64
}

// CategoryTotal is the summed XP for one category name.
type CategoryTotal struct {
	Name  string
	Total int64
}

// Accumulate returns one point per transaction, in the order given.
// Transactions are not re-sorted by time; callers that want a chronological
// series should pass the result of SortChronological.
func Accumulate(txs []models.Transaction) []CumulativePoint {
	if len(txs) == 0 {
		return []CumulativePoint{}
	}

	points := make([]CumulativePoint, len(txs))
	var running int64
	for i, tx := range txs {
		running += tx.Amount
		points[i] = CumulativePoint{Timestamp: tx.CreatedAt, RunningTotal: running}
	}
	return points
}

// TotalByCategory sums amounts per object name. A category keeps the position
// of its first appearance in txs.
func TotalByCategory(txs []models.Transaction) []CategoryTotal {
	var totals orderedTotals
	for _, tx := range txs {
		totals.add(tx.Category(), tx.Amount)
	}
	return totals.slice()
}

// Sum returns the total XP across all transactions.
func Sum(txs []models.Transaction) int64 {
	var total int64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total
}

// SortChronological returns a copy of txs ordered by CreatedAt.
// Transactions sharing a timestamp keep their relative order.
func SortChronological(txs []models.Transaction) []models.Transaction {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// orderedTotals is an insertion-ordered map from category name to total.
type orderedTotals struct {
	index  map[string]int // name -> position in totals
	totals []CategoryTotal
}

func (o *orderedTotals) add(name string, amount int64) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[name]; ok {
		o.totals[i].Total += amount
		return
	}
	o.index[name] = len(o.totals)
	o.totals = append(o.totals, CategoryTotal{Name: name, Total: amount})
}

func (o *orderedTotals) slice() []CategoryTotal {
	if o.totals == nil {
		return []CategoryTotal{}
	}
	return o.totals
}
