package orders

import (
	"fmt"
	"sort"
	"time"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// DisambiguateTimestamps shifts repeated timestamps so that the k-th repeat of a value
// (k = 1, 2, ...) is moved forward by k milliseconds. Positions are preserved; the first
// occurrence of every value is left untouched.
func DisambiguateTimestamps(ts []time.Time) []time.Time {
	seen := make(map[int64]int, len(ts))
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		key := t.UnixNano()
		n, ok := seen[key]
		if !ok {
			seen[key] = 0
			out[i] = t
			continue
		}
		n++
		seen[key] = n
		out[i] = t.Add(time.Duration(n) * time.Millisecond)
	}
	return out
}

// Disambiguate rewrites the order timestamps with DisambiguateTimestamps and stable-sorts the
// orders by the adjusted time.
func Disambiguate(orders []domain.Order) {
	ts := make([]time.Time, len(orders))
	for i := range orders {
		ts[i] = orders[i].Time
	}
	adjusted := DisambiguateTimestamps(ts)
	for i := range orders {
		orders[i].Time = adjusted[i]
	}
	SortByTime(orders)
}

// SortByTime stable-sorts orders by timestamp.
func SortByTime(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Time.Before(orders[j].Time) })
}

// FirstDuplicate returns the first timestamp that occurs more than once.
func FirstDuplicate(orders []domain.Order) (time.Time, bool) {
	seen := make(map[int64]struct{}, len(orders))
	for _, o := range orders {
		key := o.Time.UnixNano()
		if _, ok := seen[key]; ok {
			return o.Time, true
		}
		seen[key] = struct{}{}
	}
	return time.Time{}, false
}

// CheckUnique returns ports.ErrDuplicateTimestamp if any timestamp repeats.
func CheckUnique(orders []domain.Order) error {
	if t, dup := FirstDuplicate(orders); dup {
		return fmt.Errorf("timestamp %s: %w", t.Format(time.RFC3339Nano), ports.ErrDuplicateTimestamp)
	}
	return nil
}
