package models

// PaymentStatusCompleted marks a settlement event in the audit log.
const PaymentStatusCompleted = "COMPLETED"

// Payment is one entry in the append-only settlement audit log.
type Payment struct {
	ID        string        `json:"id"`
	StudentID string        `json:"studentId"`
	Amount    int64         `json:"amount"`
	Date      string        `json:"date"`
	Method    PaymentMethod `json:"method"`
	Note      string        `json:"note,omitempty"`
	Status    string        `json:"status,omitempty"`
}

// LedgerSummary aggregates totals over a filtered student list.
type LedgerSummary struct {
	Students       int   `json:"students"`
	TotalDue       int64 `json:"totalDue"`
	Collected      int64 `json:"collected"`
	Remaining      int64 `json:"remaining"`
	PaidCount      int   `json:"paidCount"`
	StudentsInDebt int   `json:"studentsInDebt"`
	TotalDebt      int64 `json:"totalDebt"`
}
