package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/smart-tuition/internal/ledger"
	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/export"
	"github.com/noah-isme/smart-tuition/pkg/vietqr"
)

// QRUnavailableMessage replaces the QR image when no account is configured.
const QRUnavailableMessage = "Chưa có QR"

type studentReader interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}

type bankConfigReader interface {
	BankConfig(ctx context.Context) (models.BankConfig, error)
}

type receiptRenderer interface {
	RenderPairs(title string, pairs []export.Pair, footer string) ([]byte, error)
}

// Receipt is everything needed to present a payment slip.
type Receipt struct {
	StudentID         string                `json:"studentId"`
	StudentName       string                `json:"studentName"`
	ClassName         string                `json:"className"`
	Month             string                `json:"month"`
	BaseFee           int64                 `json:"baseFee"`
	AdjustmentContent string                `json:"adjustmentContent,omitempty"`
	AdjustmentAmount  int64                 `json:"adjustmentAmount"`
	Total             int64                 `json:"total"`
	Collected         int64                 `json:"collected"`
	Outstanding       int64                 `json:"outstanding"`
	IsPaid            bool                  `json:"isPaid"`
	PaidDate          string                `json:"paidDate,omitempty"`
	PaymentMethod     *models.PaymentMethod `json:"paymentMethod,omitempty"`
	Sessions          int                   `json:"sessions"`
	CycleLength       int                   `json:"cycleLength"`
	AttendanceDates   []string              `json:"attendanceDates"`
	TeacherName       string                `json:"teacherName,omitempty"`
	BankName          string                `json:"bankName"`
	AccountNo         string                `json:"accountNo,omitempty"`
	AccountName       string                `json:"accountName,omitempty"`
	TransferMemo      string                `json:"transferMemo"`
	QRURL             string                `json:"qrUrl,omitempty"`
	QRAvailable       bool                  `json:"qrAvailable"`
	QRMessage         string                `json:"qrMessage,omitempty"`
}

// ReceiptService assembles receipts and payment reminders.
type ReceiptService struct {
	students  studentReader
	settings  bankConfigReader
	renderer  receiptRenderer
	qrBaseURL string
	logger    *zap.Logger
	now       func() time.Time
	printer   *message.Printer
}

// NewReceiptService constructs a ReceiptService.
func NewReceiptService(students studentReader, settings bankConfigReader, renderer receiptRenderer, qrBaseURL string, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewPDFExporter(vietqr.RemoveAccents)
	}
	return &ReceiptService{
		students:  students,
		settings:  settings,
		renderer:  renderer,
		qrBaseURL: qrBaseURL,
		logger:    logger,
		now:       time.Now,
		printer:   message.NewPrinter(language.Vietnamese),
	}
}

// Build returns the receipt for a student record.
func (s *ReceiptService) Build(ctx context.Context, id string) (*Receipt, error) {
	st, err := s.students.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.BankConfig(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank config")
	}

	total := ledger.ComputeTotal(*st)
	memo := vietqr.TransferMemo(st.Name)
	rc := &Receipt{
		StudentID:         st.ID,
		StudentName:       st.Name,
		ClassName:         DisplayClassName(st.ClassName),
		Month:             st.MonthOrUnknown(),
		BaseFee:           st.BaseFee,
		AdjustmentContent: st.AdjustmentContent,
		AdjustmentAmount:  ledger.EffectiveAdjustment(*st),
		Total:             total,
		Collected:         ledger.Collected(*st),
		Outstanding:       ledger.Outstanding(*st),
		IsPaid:            st.IsPaid,
		PaymentMethod:     st.PaymentMethod,
		Sessions:          ledger.CyclePosition(ledger.SessionCount(st.AttendanceHistory, st.AttendanceCount)),
		CycleLength:       ledger.CycleLength,
		AttendanceDates:   append([]string{}, st.AttendanceHistory...),
		TeacherName:       cfg.TeacherName,
		BankName:          BankDisplayName(cfg),
		AccountNo:         cfg.AccountNo,
		AccountName:       cfg.AccountName,
		TransferMemo:      memo,
	}
	if st.PaidDate != nil {
		rc.PaidDate = *st.PaidDate
	}

	rc.QRURL, rc.QRAvailable = vietqr.ImageURL(s.qrBaseURL, vietqr.Request{
		BankID:      cfg.BankID,
		AccountNo:   cfg.AccountNo,
		Template:    string(cfg.Template),
		Amount:      total,
		Memo:        memo,
		AccountName: cfg.AccountName,
	})
	if !rc.QRAvailable {
		rc.QRMessage = QRUnavailableMessage
	}
	return rc, nil
}

// PDF renders a printable receipt.
func (s *ReceiptService) PDF(ctx context.Context, id string) (string, []byte, error) {
	rc, err := s.Build(ctx, id)
	if err != nil {
		return "", nil, err
	}
	pairs := []export.Pair{
		{Label: "Học sinh", Value: rc.StudentName},
		{Label: "Lớp", Value: rc.ClassName},
		{Label: "Tháng", Value: rc.Month},
		{Label: "Số buổi", Value: fmt.Sprintf("%d/%d", rc.Sessions, rc.CycleLength)},
		{Label: "Học phí", Value: s.money(rc.BaseFee)},
	}
	if rc.AdjustmentAmount != 0 || rc.AdjustmentContent != "" {
		pairs = append(pairs, export.Pair{Label: orDefault(rc.AdjustmentContent, "Điều chỉnh"), Value: s.money(rc.AdjustmentAmount)})
	}
	pairs = append(pairs, export.Pair{Label: "Tổng cộng", Value: s.money(rc.Total)})
	if rc.IsPaid {
		pairs = append(pairs,
			export.Pair{Label: "Đã thu", Value: s.money(rc.Collected)},
			export.Pair{Label: "Ngày nộp", Value: rc.PaidDate},
		)
	}
	pairs = append(pairs,
		export.Pair{Label: "Ngân hàng", Value: rc.BankName},
		export.Pair{Label: "Số tài khoản", Value: orDefault(rc.AccountNo, QRUnavailableMessage)},
		export.Pair{Label: "Chủ tài khoản", Value: rc.AccountName},
		export.Pair{Label: "Nội dung CK", Value: rc.TransferMemo},
	)

	body, err := s.renderer.RenderPairs("Phiếu báo học phí", pairs, rc.TeacherName)
	if err != nil {
		s.logger.Error("render receipt", zap.String("student_id", id), zap.Error(err))
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	name := fmt.Sprintf("PhieuHocPhi_%s_%s.pdf",
		strings.ReplaceAll(vietqr.RemoveAccents(rc.StudentName), " ", "_"),
		strings.ReplaceAll(rc.Month, "/", "-"))
	return name, body, nil
}

// Reminder writes a plain payment reminder for the parent. Days late are
// counted from the payment deadline when one is set.
func (s *ReceiptService) Reminder(ctx context.Context, id string) (string, error) {
	st, err := s.students.Get(ctx, id)
	if err != nil {
		return "", err
	}
	due := ledger.Outstanding(*st)
	if due <= 0 {
		return fmt.Sprintf("Cảm ơn phụ huynh em %s đã hoàn thành học phí tháng %s.", st.Name, st.MonthOrUnknown()), nil
	}

	greeting := "Kính gửi phụ huynh"
	if p := strings.TrimSpace(st.ParentName); p != "" {
		greeting += " " + p
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s,\nHọc phí tháng %s của em %s hiện còn %s.", greeting, st.MonthOrUnknown(), st.Name, s.money(due))
	if late := daysLate(st.PaymentDeadline, s.now()); late > 0 {
		fmt.Fprintf(&b, " Đã quá hạn %d ngày.", late)
	}
	b.WriteString(" Phụ huynh vui lòng kiểm tra phiếu báo đính kèm và thanh toán giúp. Xin cảm ơn.")
	return b.String(), nil
}

// DisplayClassName prefixes "Lớp " unless the name already starts with it.
func DisplayClassName(className string) string {
	trimmed := strings.TrimSpace(className)
	if strings.HasPrefix(strings.ToLower(trimmed), "lớp") {
		return className
	}
	return "Lớp " + className
}

func (s *ReceiptService) money(v int64) string {
	return s.printer.Sprintf("%d đ", v)
}

func daysLate(deadline string, now time.Time) int {
	if deadline == "" {
		return 0
	}
	d, err := time.ParseInLocation(ledger.DateLayout, deadline, now.Location())
	if err != nil {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(today.Sub(d).Hours() / 24)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
