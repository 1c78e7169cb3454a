package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInIsIdempotent(t *testing.T) {
	h := CheckIn(nil, "2025-03-01")
	h = CheckIn(h, "2025-03-01")
	assert.Equal(t, []string{"2025-03-01"}, h)
	assert.Len(t, CheckIn(h, "2025-03-02"), 2)
}

func TestCheckInDoesNotAliasInput(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "2025-03-01"
	a := CheckIn(base, "2025-03-02")
	b := CheckIn(base, "2025-03-03")
	assert.Equal(t, "2025-03-02", a[1])
	assert.Equal(t, "2025-03-03", b[1])
}

func TestRemoveDate(t *testing.T) {
	h := []string{"2025-03-01", "2025-03-02"}
	assert.Equal(t, []string{"2025-03-02"}, RemoveDate(h, "2025-03-01"))
	assert.Equal(t, h, RemoveDate(h, "2025-04-01"))
}

func TestCycleProgress(t *testing.T) {
	history := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = time.Date(2025, 3, i+1, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		}
		return out
	}
	cases := []struct {
		n    int
		want int
		full bool
	}{
		{0, 0, false},
		{1, 1, false},
		{7, 7, false},
		{8, 8, true},
		{9, 1, false},
		{16, 8, true},
	}
	for _, tc := range cases {
		h := history(tc.n)
		assert.Equal(t, tc.want, CycleProgress(h), "n=%d", tc.n)
		assert.Equal(t, tc.full, IsCycleFull(h), "n=%d", tc.n)
	}
}

func TestSeedDates(t *testing.T) {
	dates, err := SeedDates("3/2025", 8, true)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", dates[0])
	assert.Equal(t, "2025-03-08", dates[7])
	assert.Len(t, dates, 8)

	clamped, err := SeedDates("2/2025", 31, true)
	require.NoError(t, err)
	assert.Len(t, clamped, 28)

	unguarded, err := SeedDates("2/2025", 30, false)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-30", unguarded[29])

	_, err = SeedDates("march", 8, true)
	assert.Error(t, err)
}

func TestInitialHistory(t *testing.T) {
	now := time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)
	assert.Len(t, InitialHistory("3/2025", now, 8, true), 8)
	assert.Empty(t, InitialHistory("4/2025", now, 8, true))
	assert.Empty(t, InitialHistory("5/2025", now, 8, true))
	assert.Len(t, InitialHistory("12/2024", now, 8, true), 8)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", "b", "a"}))
}

func TestSessionCountFallsBackToLegacyCount(t *testing.T) {
	assert.Equal(t, 5, SessionCount(nil, 5))
	assert.Equal(t, 5, SessionCount([]string{}, 5))
	assert.Equal(t, 2, SessionCount([]string{"2025-04-01", "2025-04-02"}, 5))
	assert.Equal(t, 0, SessionCount(nil, -1))

	assert.Equal(t, 0, CyclePosition(0))
	assert.Equal(t, 8, CyclePosition(16))
	assert.Equal(t, 1, CyclePosition(9))
}
