package ledger

import "github.com/noah-isme/smart-tuition/internal/models"

// EffectiveAdjustment returns the net adjustment line. Records created before
// the single adjustment field existed fall back to the legacy inputs.
func EffectiveAdjustment(s models.Student) int64 {
	if s.AdjustmentAmount != nil {
		return *s.AdjustmentAmount
	}
	return -(deref(s.AbsentDays) * deref(s.DeductionPerDay)) + deref(s.PreviousDebt) + deref(s.OtherFee)
}

// ComputeTotal is the amount due for the billing period. Every total shown or
// stored anywhere must come from here.
func ComputeTotal(s models.Student) int64 {
	return s.BaseFee + EffectiveAdjustment(s)
}

// ApplyPayment marks the record settled with the given amount.
func ApplyPayment(s models.Student, amountPaid int64, date string, method models.PaymentMethod) models.Student {
	out := s.Clone()
	out.IsPaid = true
	out.PaidAmount = models.Int64(amountPaid)
	out.PaidDate = models.String(date)
	m := method
	out.PaymentMethod = &m
	out.Balance = amountPaid - ComputeTotal(out)
	return out
}

// RevertPayment clears the settlement and restores the full debt.
func RevertPayment(s models.Student) models.Student {
	out := s.Clone()
	out.IsPaid = false
	out.PaidAmount = nil
	out.PaidDate = nil
	out.PaymentMethod = nil
	out.Balance = -ComputeTotal(out)
	return out
}

// RecomputeBalance refreshes the persisted balance after the fee, the
// adjustment or the payment status changed.
func RecomputeBalance(s models.Student) models.Student {
	out := s.Clone()
	if out.IsPaid {
		out.Balance = Collected(out) - ComputeTotal(out)
	} else {
		out.Balance = -ComputeTotal(out)
	}
	return out
}

// Collected is what has been received for the record. A record marked paid
// without an amount counts as paid in full.
func Collected(s models.Student) int64 {
	if !s.IsPaid {
		return 0
	}
	if s.PaidAmount != nil && *s.PaidAmount != 0 {
		return *s.PaidAmount
	}
	return ComputeTotal(s)
}

// Outstanding is the part of the total not yet received.
func Outstanding(s models.Student) int64 {
	return ComputeTotal(s) - Collected(s)
}

// Summarize aggregates the list statistics.
func Summarize(students []models.Student) models.LedgerSummary {
	var sum models.LedgerSummary
	sum.Students = len(students)
	for _, s := range students {
		sum.TotalDue += ComputeTotal(s)
		if s.IsPaid {
			sum.PaidCount++
			sum.Collected += Collected(s)
		}
		if s.Balance < 0 {
			sum.StudentsInDebt++
			sum.TotalDebt += -s.Balance
		}
	}
	sum.Remaining = sum.TotalDue - sum.Collected
	return sum
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
