package models

// PaymentMethod is how a billing period was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// Valid returns true when the method is a supported value.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// Sentinels used when a record lacks a class or month.
const (
	DefaultClassName  = "Chung"
	ImportClassName   = "Excel Import"
	FallbackClassName = "Khác"
	UnknownMonth      = "Không xác định"
	FilterAll         = "ALL"
)

// Student is one billing-period record for a learner. A learner enrolled in
// several months has one record per month.
type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
	Month     string `json:"month,omitempty"`
	BaseFee   int64  `json:"baseFee"`

	AdjustmentContent string `json:"adjustmentContent,omitempty"`
	AdjustmentAmount  *int64 `json:"adjustmentAmount,omitempty"`

	IsPaid          bool           `json:"isPaid"`
	PaidDate        *string        `json:"paidDate,omitempty"`
	PaymentMethod   *PaymentMethod `json:"paymentMethod,omitempty"`
	PaidAmount      *int64         `json:"paidAmount,omitempty"`
	PaymentDeadline string         `json:"paymentDeadline,omitempty"`
	Balance         int64          `json:"balance"`

	AttendanceCount   int      `json:"attendanceCount"`
	AttendanceHistory []string `json:"attendanceHistory"`

	IsSent bool   `json:"isSent"`
	Note   string `json:"note"`

	ParentName string `json:"parentName,omitempty"`
	Phone      string `json:"phone,omitempty"`

	// Legacy inputs, only consulted when AdjustmentAmount is nil.
	AbsentDays      *int64 `json:"absentDays,omitempty"`
	DeductionPerDay *int64 `json:"deductionPerDay,omitempty"`
	PreviousDebt    *int64 `json:"previousDebt,omitempty"`
	OtherFee        *int64 `json:"otherFee,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (s Student) Clone() Student {
	out := s
	out.AttendanceHistory = append(make([]string, 0, len(s.AttendanceHistory)), s.AttendanceHistory...)
	out.AdjustmentAmount = cloneInt(s.AdjustmentAmount)
	out.PaidAmount = cloneInt(s.PaidAmount)
	out.AbsentDays = cloneInt(s.AbsentDays)
	out.DeductionPerDay = cloneInt(s.DeductionPerDay)
	out.PreviousDebt = cloneInt(s.PreviousDebt)
	out.OtherFee = cloneInt(s.OtherFee)
	if s.PaidDate != nil {
		v := *s.PaidDate
		out.PaidDate = &v
	}
	if s.PaymentMethod != nil {
		v := *s.PaymentMethod
		out.PaymentMethod = &v
	}
	return out
}

// ClassOrFallback returns the class used for grouping and filtering.
func (s Student) ClassOrFallback() string {
	if s.ClassName == "" {
		return FallbackClassName
	}
	return s.ClassName
}

// MonthOrUnknown returns the month tag used for grouping and filtering.
func (s Student) MonthOrUnknown() string {
	if s.Month == "" {
		return UnknownMonth
	}
	return s.Month
}

// StudentFilter is a conjunction of class, month and name search.
type StudentFilter struct {
	ClassName string
	Month     string
	Search    string
}

// StudentPatch carries the editable fields of a record. Nil fields are left
// untouched.
type StudentPatch struct {
	Name              *string `json:"name"`
	ClassName         *string `json:"className"`
	Month             *string `json:"month"`
	BaseFee           *int64  `json:"baseFee" validate:"omitempty,min=0"`
	AdjustmentContent *string `json:"adjustmentContent"`
	AdjustmentAmount  *int64  `json:"adjustmentAmount"`
	Note              *string `json:"note"`
	ParentName        *string `json:"parentName"`
	Phone             *string `json:"phone"`
	PaymentDeadline   *string `json:"paymentDeadline"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
