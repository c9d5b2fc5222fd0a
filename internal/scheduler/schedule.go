// Package scheduler holds the day-bucketing algorithm shared by every
// plan mutation path. It is pure: no storage, no clock, no error paths
// given well-formed input.
package scheduler

import (
	"sort"
	"time"
)

// DayOffsets maps each distinct order value to its zero-based rank
// among all distinct order values. Equal orders collapse onto one
// offset; gaps between order values carry no meaning.
func DayOffsets(orders []int) map[int]int {
	offsets := make(map[int]int, len(orders))
	if len(orders) == 0 {
		return offsets
	}
	sorted := make([]int, len(orders))
	copy(sorted, orders)
	sort.Ints(sorted)

	lastOrder := sorted[0] - 1 // strictly below any real value
	currentDay := -1
	for _, o := range sorted {
		if o != lastOrder {
			currentDay++
			lastOrder = o
		}
		offsets[o] = currentDay
	}
	return offsets
}

// DueDates assigns a calendar due-date to every distinct order value:
// startDate's day plus the order's rank. The first distinct order lands
// on day 0 (startDate itself). Time-of-day is normalized to local
// midnight of startDate's location so that equal offsets always compare
// equal regardless of when within the day the plan was created.
func DueDates(startDate time.Time, orders []int) map[int]time.Time {
	offsets := DayOffsets(orders)
	dates := make(map[int]time.Time, len(offsets))
	base := DayStart(startDate)
	for order, day := range offsets {
		dates[order] = base.AddDate(0, 0, day)
	}
	return dates
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayCount reports how many distinct calendar days a set of orders
// spans after bucketing.
func DayCount(orders []int) int {
	offsets := DayOffsets(orders)
	max := 0
	for _, day := range offsets {
		if day+1 > max {
			max = day + 1
		}
	}
	return max
}
