package agendapro

import (
	"testing"
	"time"
)

func TestExpandRangeInclusive(t *testing.T) {
	start := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	days := ExpandRange(start, 1)

	if len(days) == 0 {
		t.Fatal("Expected non-empty range")
	}
	if days[0] != "2025-06-10" {
		t.Errorf("Expected first day 2025-06-10, got %s", days[0])
	}
	if days[len(days)-1] != "2025-07-10" {
		t.Errorf("Expected last day 2025-07-10, got %s", days[len(days)-1])
	}
	// 10 jun a 10 jul inclusive = 31 días
	if len(days) != 31 {
		t.Errorf("Expected 31 days, got %d", len(days))
	}
}

func TestExpandRangeAscendingAndUnique(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	days := ExpandRange(start, 3)

	for i := 1; i < len(days); i++ {
		if days[i] <= days[i-1] {
			t.Fatalf("Days not strictly ascending at %d: %s <= %s", i, days[i], days[i-1])
		}
	}
}

func TestExpandRangeMonthEndOverflow(t *testing.T) {
	// 31 de enero + 1 mes normaliza a 3 de marzo (no hay 31 de febrero).
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	days := ExpandRange(start, 1)

	if last := days[len(days)-1]; last != "2025-03-03" {
		t.Errorf("Expected range to end at 2025-03-03, got %s", last)
	}
}

func TestExpandRangeDeterministic(t *testing.T) {
	start := time.Date(2025, 8, 15, 23, 59, 59, 0, time.UTC)

	a := ExpandRange(start, 2)
	b := ExpandRange(start, 2)

	if len(a) != len(b) {
		t.Fatalf("Ranges differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Ranges differ at %d: %s vs %s", i, a[i], b[i])
		}
	}
}
