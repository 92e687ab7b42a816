// Package observability provides filter usage statistics, metrics, and
// logging for recipestore.
package observability

import (
	"sort"
	"sync"
	"time"
)

// Filter operators recorded by QueryStats.
const (
	OperatorContains = "contains"
	OperatorEquals   = "="
)

// QueryStats tracks how often each recipe column is used as a filter.
// Category listings are tracked separately from filtered finds.
type QueryStats struct {
	mu             sync.RWMutex
	filterFreq     map[string]*ColumnStats
	categoryLookup int64
	window         time.Duration
	now            func() time.Time
}

// ColumnStats holds statistics for a filtered column.
type ColumnStats struct {
	Column    string         `json:"column"`
	Frequency int64          `json:"frequency"`
	LastSeen  time.Time      `json:"last_seen"`
	Operators map[string]int `json:"operators"` // operator → count (e.g., "=" → 5)
}

// NewQueryStats creates a new filter statistics tracker.
// window: time duration for pruning old entries (e.g., 1 hour)
func NewQueryStats(window time.Duration) *QueryStats {
	return &QueryStats{
		filterFreq: make(map[string]*ColumnStats),
		window:     window,
		now:        time.Now,
	}
}

// RecordFilter records a filter applied to a column.
// This method is O(1) and thread-safe. Nil receivers are ignored.
func (q *QueryStats) RecordFilter(column, operator string) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	stats, exists := q.filterFreq[column]
	if !exists {
		stats = &ColumnStats{
			Column:    column,
			Operators: make(map[string]int),
		}
		q.filterFreq[column] = stats
	}

	stats.Frequency++
	stats.LastSeen = q.now()
	stats.Operators[operator]++
}

// RecordCategoryLookup records one category-listing request.
func (q *QueryStats) RecordCategoryLookup() {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.categoryLookup++
	q.mu.Unlock()
}

// CategoryLookups returns the number of category-listing requests recorded.
func (q *QueryStats) CategoryLookups() int64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.categoryLookup
}

// GetTopFilters returns the top N filtered columns by frequency.
// Returns a copy of the stats sorted by frequency (descending), ties by column name.
func (q *QueryStats) GetTopFilters(n int) []ColumnStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if n <= 0 || len(q.filterFreq) == 0 {
		return []ColumnStats{}
	}

	stats := make([]ColumnStats, 0, len(q.filterFreq))
	for _, s := range q.filterFreq {
		// Deep copy to prevent external modification
		statsCopy := ColumnStats{
			Column:    s.Column,
			Frequency: s.Frequency,
			LastSeen:  s.LastSeen,
			Operators: make(map[string]int, len(s.Operators)),
		}
		for op, count := range s.Operators {
			statsCopy.Operators[op] = count
		}
		stats = append(stats, statsCopy)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Column < stats[j].Column
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Prune removes entries where time.Since(LastSeen) > window.
// This should be called periodically (e.g., every 5 minutes).
func (q *QueryStats) Prune() {
	q.mu.Lock()
	defer q.mu.Unlock()

	threshold := q.now().Add(-q.window)

	for col, stats := range q.filterFreq {
		if stats.LastSeen.Before(threshold) {
			delete(q.filterFreq, col)
		}
	}
}
