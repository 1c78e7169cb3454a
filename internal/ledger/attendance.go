package ledger

import (
	"fmt"
	"time"
)

// CycleLength is the number of sessions in one billing cycle.
const CycleLength = 8

// CheckIn adds date to the history. Checking in twice on the same date is a
// no-op. The input slice is never modified.
func CheckIn(history []string, date string) []string {
	for _, d := range history {
		if d == date {
			return copyHistory(history)
		}
	}
	out := make([]string, 0, len(history)+1)
	out = append(out, history...)
	return append(out, date)
}

// RemoveDate drops date from the history if present.
func RemoveDate(history []string, date string) []string {
	out := make([]string, 0, len(history))
	for _, d := range history {
		if d != date {
			out = append(out, d)
		}
	}
	return out
}

// HasDate reports whether the history already contains date.
func HasDate(history []string, date string) bool {
	for _, d := range history {
		if d == date {
			return true
		}
	}
	return false
}

// Dedupe removes repeated dates while keeping first occurrence order.
func Dedupe(history []string) []string {
	seen := make(map[string]struct{}, len(history))
	out := make([]string, 0, len(history))
	for _, d := range history {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// CycleProgress is the position (1..8) inside the current 8-session cycle,
// or 0 when nothing has been attended. The 9th session restarts at 1.
func CycleProgress(history []string) int {
	return CyclePosition(len(history))
}

// CyclePosition maps a session count onto its cycle position.
func CyclePosition(sessions int) int {
	if sessions <= 0 {
		return 0
	}
	return ((sessions - 1) % CycleLength) + 1
}

// SessionCount is the number of attended sessions. Records written before
// dates were tracked carry only the legacy count, which is used while the
// history is empty.
func SessionCount(history []string, legacyCount int) int {
	if len(history) > 0 {
		return len(history)
	}
	if legacyCount < 0 {
		return 0
	}
	return legacyCount
}

// IsCycleFull reports whether the current cycle has reached its last session.
func IsCycleFull(history []string) bool {
	return CycleProgress(history) == CycleLength
}

// SeedDates builds n synthetic session dates (day 1..n) for a back-dated
// month. With clamp set, n is capped at the month's real length; without it
// the dates are produced unguarded, e.g. 2025-02-30.
func SeedDates(month string, n int, clamp bool) ([]string, error) {
	m, y, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}
	if days := DaysInMonth(m, y); clamp && n > days {
		n = days
	}
	out := make([]string, 0, n)
	for day := 1; day <= n; day++ {
		out = append(out, fmt.Sprintf("%04d-%02d-%02d", y, int(m), day))
	}
	return out, nil
}

// InitialHistory returns the seeded history for a record created for month,
// or an empty history when the month is current or in the future.
func InitialHistory(month string, now time.Time, n int, clamp bool) []string {
	if !IsPastMonth(month, now) {
		return []string{}
	}
	dates, err := SeedDates(month, n, clamp)
	if err != nil {
		return []string{}
	}
	return dates
}

func copyHistory(history []string) []string {
	out := make([]string, len(history))
	copy(out, history)
	return out
}
