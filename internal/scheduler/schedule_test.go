package scheduler

import (
	"math/rand"
	"testing"
	"time"
)

func TestDayOffsetsGrouping(t *testing.T) {
	offsets := DayOffsets([]int{1, 1, 3})
	if len(offsets) != 2 {
		t.Fatalf("want 2 distinct offsets, got %d", len(offsets))
	}
	if offsets[1] != 0 {
		t.Fatalf("order 1: want day 0, got %d", offsets[1])
	}
	// order 3 maps to day 1 by rank, not by numeric value
	if offsets[3] != 1 {
		t.Fatalf("order 3: want day 1, got %d", offsets[3])
	}
}

func TestDayOffsetsEmptyAndSingle(t *testing.T) {
	if got := DayOffsets(nil); len(got) != 0 {
		t.Fatalf("empty input: want empty map, got %v", got)
	}
	got := DayOffsets([]int{7})
	if got[7] != 0 {
		t.Fatalf("single step: want day 0, got %d", got[7])
	}
}

func TestDayOffsetsAllSameOrder(t *testing.T) {
	got := DayOffsets([]int{4, 4, 4, 4})
	if len(got) != 1 || got[4] != 0 {
		t.Fatalf("same-order steps must share day 0, got %v", got)
	}
}

func TestDayOffsetsNegativeSentinelSafe(t *testing.T) {
	// Orders at or below zero must still bucket by rank.
	got := DayOffsets([]int{0, 0, 5})
	if got[0] != 0 || got[5] != 1 {
		t.Fatalf("want {0:0 5:1}, got %v", got)
	}
}

func TestDueDatesExampleScenario(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	dates := DueDates(start, []int{1, 1, 3})

	day0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !dates[1].Equal(day0) {
		t.Fatalf("order 1: want %v, got %v", day0, dates[1])
	}
	if !dates[3].Equal(day1) {
		t.Fatalf("order 3: want %v, got %v", day1, dates[3])
	}
}

func TestDueDatesMonotonic(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	orders := []int{9, 2, 2, 40, 7, 9, 1}
	dates := DueDates(start, orders)
	for _, a := range orders {
		for _, b := range orders {
			switch {
			case a < b && !dates[a].Before(dates[b]):
				t.Fatalf("order %d should be due before order %d", a, b)
			case a == b && !dates[a].Equal(dates[b]):
				t.Fatalf("equal orders %d must share a due-date", a)
			}
		}
	}
}

func TestDueDatesSuccessiveDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dates := DueDates(start, []int{1, 1, 2, 2, 3})
	if len(dates) != 3 {
		t.Fatalf("want 3 distinct due-dates, got %d", len(dates))
	}
	if d := dates[2].Sub(dates[1]); d != 24*time.Hour {
		t.Fatalf("day 0 -> day 1 gap: want 24h, got %v", d)
	}
	if d := dates[3].Sub(dates[2]); d != 24*time.Hour {
		t.Fatalf("day 1 -> day 2 gap: want 24h, got %v", d)
	}
}

func TestDayOffsetsDeterministicUnderShuffle(t *testing.T) {
	orders := []int{5, 1, 1, 9, 5, 5, 12, 3}
	want := DayOffsets(orders)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]int, len(orders))
		copy(shuffled, orders)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := DayOffsets(shuffled)
		if len(got) != len(want) {
			t.Fatalf("shuffle %d: offset count changed", i)
		}
		for order, day := range want {
			if got[order] != day {
				t.Fatalf("shuffle %d: order %d: want day %d, got %d", i, order, day, got[order])
			}
		}
	}
}

func TestDayOffsetsDoesNotMutateInput(t *testing.T) {
	orders := []int{3, 1, 2}
	DayOffsets(orders)
	if orders[0] != 3 || orders[1] != 1 || orders[2] != 2 {
		t.Fatalf("input slice mutated: %v", orders)
	}
}

func TestDayCount(t *testing.T) {
	if got := DayCount(nil); got != 0 {
		t.Fatalf("empty: want 0, got %d", got)
	}
	if got := DayCount([]int{1, 1, 2, 2, 3}); got != 3 {
		t.Fatalf("want 3 days, got %d", got)
	}
	if got := DayCount([]int{0, 5}); got != 2 {
		t.Fatalf("want 2 days, got %d", got)
	}
}

func TestDayStartPreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ts := time.Date(2024, 8, 15, 23, 45, 0, 0, loc)
	got := DayStart(ts)
	if got.Hour() != 0 || got.Day() != 15 || got.Location() != loc {
		t.Fatalf("unexpected day start: %v", got)
	}
}
