package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-tuition/internal/ledger"
	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/export"
	"github.com/noah-isme/smart-tuition/pkg/vietqr"
)

// ExportFormat selects the report encoding.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
)

const reportSheet = "BaoCaoThuPhi"

// Report columns, in output order.
const (
	colIndex      = "STT"
	colName       = "Họ và Tên"
	colClass      = "Lớp"
	colMonth      = "Tháng"
	colSessions   = "Số buổi học"
	colBaseFee    = "Học phí gốc"
	colAdjContent = "Nội dung điều chỉnh"
	colAdjAmount  = "Số tiền điều chỉnh"
	colTotal      = "Tổng phải thu"
	colCollected  = "Đã thu"
	colOutstand   = "Còn thiếu"
	colStatus     = "Trạng thái nộp"
	colPaidDate   = "Ngày nộp"
	colMethod     = "Hình thức đóng"
	colSent       = "Đã gửi phiếu"
	colNote       = "Ghi chú"
)

var reportHeaders = []string{
	colIndex, colName, colClass, colMonth, colSessions, colBaseFee, colAdjContent, colAdjAmount,
	colTotal, colCollected, colOutstand, colStatus, colPaidDate, colMethod, colSent, colNote,
}

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportFile is a rendered report ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the filtered student list as a report.
type ExportService struct {
	students studentLister
	csv      csvRenderer
	pdf      pdfRenderer
	xlsx     xlsxRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the defaults.
func NewExportService(students studentLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(vietqr.RemoveAccents)
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{students: students, csv: csv, pdf: pdf, xlsx: xlsx, logger: logger}
}

// ParseExportFormat validates a format query value; empty means xlsx.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Export renders the students matching filter.
func (s *ExportService) Export(ctx context.Context, filter models.StudentFilter, format ExportFormat) (*ExportFile, error) {
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no data to export")
	}
	data := ReportDataset(students)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		body, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	case FormatPDF:
		body, err = s.pdf.Render(data, reportTitle(filter.Month))
		contentType = "application/pdf"
	default:
		format = FormatXLSX
		body, err = s.xlsx.Render(data, reportSheet)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		s.logger.Error("render report", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ExportFile{
		Filename:    ReportFilename(filter.Month, string(format)),
		ContentType: contentType,
		Data:        body,
	}, nil
}

// ReportDataset builds the report rows. Amounts come from the fee engine.
func ReportDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for i, st := range students {
		total := ledger.ComputeTotal(st)
		row := map[string]string{
			colIndex:      strconv.Itoa(i + 1),
			colName:       st.Name,
			colClass:      st.ClassName,
			colMonth:      st.Month,
			colSessions:   fmt.Sprintf("%d/%d", ledger.SessionCount(st.AttendanceHistory, st.AttendanceCount), ledger.CycleLength),
			colBaseFee:    strconv.FormatInt(st.BaseFee, 10),
			colAdjContent: st.AdjustmentContent,
			colAdjAmount:  strconv.FormatInt(ledger.EffectiveAdjustment(st), 10),
			colTotal:      strconv.FormatInt(total, 10),
			colCollected:  strconv.FormatInt(ledger.Collected(st), 10),
			colOutstand:   strconv.FormatInt(ledger.Outstanding(st), 10),
			colStatus:     "Chưa nộp",
			colSent:       "Chưa",
			colNote:       st.Note,
		}
		if st.IsPaid {
			row[colStatus] = "Đã nộp"
			row[colMethod] = methodLabel(st.PaymentMethod)
			if st.PaidDate != nil {
				row[colPaidDate] = *st.PaidDate
			}
		}
		if st.IsSent {
			row[colSent] = "Rồi"
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: reportHeaders, Rows: rows}
}

// ReportFilename names the report after the month filter.
func ReportFilename(month, ext string) string {
	label := "TongHop"
	if m := strings.TrimSpace(month); m != "" && m != models.FilterAll {
		label = strings.ReplaceAll(m, "/", "-")
	}
	return fmt.Sprintf("BaoCao_HocPhi_%s.%s", label, ext)
}

func reportTitle(month string) string {
	if month == "" || month == models.FilterAll {
		return "Báo cáo học phí tổng hợp"
	}
	return "Báo cáo học phí tháng " + month
}

func methodLabel(m *models.PaymentMethod) string {
	if m != nil && *m == models.PaymentCash {
		return "Tiền mặt"
	}
	return "Chuyển khoản"
}
