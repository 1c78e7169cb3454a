package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/smart-tuition/internal/models"
)

// DateLayout is the calendar-date format used for attendance and payments.
const DateLayout = "2006-01-02"

// FormatMonth renders the "M/YYYY" tag for t (month not zero-padded).
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// FormatDate renders t as YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseMonth splits an "M/YYYY" tag. Zero-padded months are accepted.
func ParseMonth(tag string) (time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(tag), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("month %q must look like M/YYYY", tag)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("month %q has an invalid month number", tag)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || y < 1 {
		return 0, 0, fmt.Errorf("month %q has an invalid year", tag)
	}
	return time.Month(m), y, nil
}

// ValidDate reports whether d is a YYYY-MM-DD calendar date.
func ValidDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// IsPastMonth reports whether the tag is chronologically before now's month.
// Unparseable tags are never in the past.
func IsPastMonth(tag string, now time.Time) bool {
	m, y, err := ParseMonth(tag)
	if err != nil {
		return false
	}
	if y != now.Year() {
		return y < now.Year()
	}
	return m < now.Month()
}

// DaysInMonth returns the number of calendar days of the month.
func DaysInMonth(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SortMonthsDesc orders month tags newest first; unknown tags go last.
func SortMonthsDesc(tags []string) {
	sort.SliceStable(tags, func(i, j int) bool {
		mi, yi, erri := ParseMonth(tags[i])
		mj, yj, errj := ParseMonth(tags[j])
		switch {
		case erri != nil && errj != nil:
			return tags[i] < tags[j]
		case erri != nil:
			return false
		case errj != nil:
			return true
		case yi != yj:
			return yi > yj
		default:
			return mi > mj
		}
	})
}

// UniqueClasses lists distinct class names in lexical order.
func UniqueClasses(students []models.Student) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range students {
		c := s.ClassOrFallback()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// UniqueMonths lists distinct month tags, newest first.
func UniqueMonths(students []models.Student) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range students {
		m := s.MonthOrUnknown()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	SortMonthsDesc(out)
	return out
}
