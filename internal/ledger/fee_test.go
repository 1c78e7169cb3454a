package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/smart-tuition/internal/models"
)

func TestComputeTotalUsesAdjustment(t *testing.T) {
	s := models.Student{BaseFee: 500000, AdjustmentAmount: models.Int64(-50000)}
	assert.Equal(t, int64(450000), ComputeTotal(s))
}

func TestComputeTotalLegacyFallback(t *testing.T) {
	s := models.Student{
		BaseFee:         500000,
		AbsentDays:      models.Int64(2),
		DeductionPerDay: models.Int64(30000),
		PreviousDebt:    models.Int64(100000),
		OtherFee:        models.Int64(20000),
	}
	assert.Equal(t, int64(560000), ComputeTotal(s))

	s.AdjustmentAmount = models.Int64(0)
	assert.Equal(t, int64(500000), ComputeTotal(s), "explicit adjustment wins over legacy inputs")
}

func TestApplyPaymentFullAndPartial(t *testing.T) {
	s := models.Student{BaseFee: 500000, AdjustmentAmount: models.Int64(-50000), Balance: -450000}

	full := ApplyPayment(s, 450000, "2025-03-10", models.PaymentTransfer)
	assert.True(t, full.IsPaid)
	assert.Equal(t, int64(0), full.Balance)
	assert.Equal(t, "2025-03-10", *full.PaidDate)
	assert.Equal(t, models.PaymentTransfer, *full.PaymentMethod)

	partial := ApplyPayment(s, 300000, "2025-03-10", models.PaymentCash)
	assert.Equal(t, int64(-150000), partial.Balance)
	assert.False(t, s.IsPaid, "input must not be mutated")
}

func TestRevertPaymentRestoresDebt(t *testing.T) {
	s := ApplyPayment(models.Student{BaseFee: 400000}, 400000, "2025-03-01", models.PaymentCash)
	reverted := RevertPayment(s)
	assert.False(t, reverted.IsPaid)
	assert.Nil(t, reverted.PaidAmount)
	assert.Nil(t, reverted.PaidDate)
	assert.Nil(t, reverted.PaymentMethod)
	assert.Equal(t, int64(-400000), reverted.Balance)
}

func TestRecomputeBalance(t *testing.T) {
	unpaid := RecomputeBalance(models.Student{BaseFee: 300000, AdjustmentAmount: models.Int64(50000)})
	assert.Equal(t, int64(-350000), unpaid.Balance)

	paid := models.Student{BaseFee: 300000, IsPaid: true, PaidAmount: models.Int64(300000)}
	paid.BaseFee = 350000
	assert.Equal(t, int64(-50000), RecomputeBalance(paid).Balance)

	legacyPaid := models.Student{BaseFee: 300000, IsPaid: true}
	assert.Equal(t, int64(0), RecomputeBalance(legacyPaid).Balance)
}

func TestSummarize(t *testing.T) {
	students := []models.Student{
		ApplyPayment(models.Student{BaseFee: 500000}, 500000, "2025-03-01", models.PaymentCash),
		ApplyPayment(models.Student{BaseFee: 400000}, 300000, "2025-03-01", models.PaymentCash),
		RecomputeBalance(models.Student{BaseFee: 200000}),
	}
	sum := Summarize(students)
	assert.Equal(t, 3, sum.Students)
	assert.Equal(t, int64(1100000), sum.TotalDue)
	assert.Equal(t, int64(800000), sum.Collected)
	assert.Equal(t, int64(300000), sum.Remaining)
	assert.Equal(t, 2, sum.PaidCount)
	assert.Equal(t, 2, sum.StudentsInDebt)
	assert.Equal(t, int64(300000), sum.TotalDebt)
}

func TestOutstanding(t *testing.T) {
	s := ApplyPayment(models.Student{BaseFee: 400000}, 250000, "2025-03-01", models.PaymentCash)
	assert.Equal(t, int64(150000), Outstanding(s))
	assert.Equal(t, int64(400000), Outstanding(models.Student{BaseFee: 400000}))
}
