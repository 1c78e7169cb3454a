package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsEmptyHistoryAsList(t *testing.T) {
	for _, history := range [][]string{nil, {}} {
		out := Student{ID: "a", AttendanceHistory: history}.Clone()
		require.NotNil(t, out.AttendanceHistory)

		body, err := json.Marshal(out)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"attendanceHistory":[]`)
	}
}

func TestCloneDoesNotShareHistory(t *testing.T) {
	src := Student{AttendanceHistory: []string{"2025-04-01"}}
	out := src.Clone()
	out.AttendanceHistory[0] = "2025-04-02"
	assert.Equal(t, "2025-04-01", src.AttendanceHistory[0])
}

func TestStudentDecodesLooseNumbers(t *testing.T) {
	var st Student
	err := json.Unmarshal([]byte(`{"id":"x","baseFee":"500000","adjustmentAmount":-49999.6,"balance":" -450000 ","paidAmount":"","attendanceCount":"3","attendanceHistory":null}`), &st)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), st.BaseFee)
	require.NotNil(t, st.AdjustmentAmount)
	assert.Equal(t, int64(-50000), *st.AdjustmentAmount)
	assert.Equal(t, int64(-450000), st.Balance)
	assert.Nil(t, st.PaidAmount)
	assert.Equal(t, 3, st.AttendanceCount)
}

func TestStudentRejectsNonNumericAmount(t *testing.T) {
	var st Student
	err := json.Unmarshal([]byte(`{"id":"x","baseFee":"năm trăm"}`), &st)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`1`), &st)
	assert.Error(t, err)
}
