package service

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-tuition/internal/ledger"
	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/export"
	"github.com/noah-isme/smart-tuition/pkg/spreadsheet"
)

// UnnamedStudent labels rows without a name.
const UnnamedStudent = "Không tên"

const (
	templateSheet    = "DanhSachHocSinh"
	templateFilename = "Mau_Danh_Sach_Hoc_Phi_Moi.xlsx"
)

// Import columns.
const (
	fieldName       spreadsheet.Field = "name"
	fieldClass      spreadsheet.Field = "class"
	fieldBaseFee    spreadsheet.Field = "baseFee"
	fieldAdjContent spreadsheet.Field = "adjustmentContent"
	fieldAdjAmount  spreadsheet.Field = "adjustmentAmount"
	fieldSessions   spreadsheet.Field = "sessions"
)

// ImportAliases maps accepted header spellings to import columns.
var ImportAliases = spreadsheet.AliasTable{
	fieldName:       {"Họ và Tên", "Tên Học Sinh", "Họ tên", "Name"},
	fieldClass:      {"Lớp", "Lớp Học", "Class"},
	fieldBaseFee:    {"Học phí", "HP"},
	fieldAdjContent: {"Nội dung điều chỉnh"},
	fieldAdjAmount:  {"Số tiền điều chỉnh"},
	fieldSessions:   {"Số buổi", "Số buổi học", "Sessions"},
}

type studentImporter interface {
	BuildStudent(req CreateStudentRequest, defaultClass string) models.Student
	FindDuplicates(ctx context.Context, candidates []ledger.Candidate, month string) ([]ledger.Candidate, error)
	Add(ctx context.Context, students []models.Student) error
}

type templateRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ImportResult reports what a spreadsheet import added.
type ImportResult struct {
	Month    string           `json:"month"`
	Imported int              `json:"imported"`
	Seeded   bool             `json:"seeded"`
	Students []models.Student `json:"students"`
}

// ImportService turns spreadsheet rows into student records through the same
// construction path as manual entry.
type ImportService struct {
	ledger   studentImporter
	template templateRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewImportService constructs an ImportService.
func NewImportService(ledger studentImporter, template templateRenderer, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if template == nil {
		template = export.NewXLSXExporter()
	}
	return &ImportService{ledger: ledger, template: template, logger: logger, now: time.Now}
}

// Import reads the first sheet of an xlsx workbook into month. Every row is
// checked against the month; duplicates are all reported together and the
// batch is only added once confirmed.
func (s *ImportService) Import(ctx context.Context, r io.Reader, month string, confirmDuplicate bool) (*ImportResult, error) {
	month = strings.TrimSpace(month)
	if month == "" || month == models.FilterAll {
		month = ledger.FormatMonth(s.now())
	}
	if _, _, err := ledger.ParseMonth(month); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	sheet, err := spreadsheet.ReadFirstSheet(r)
	if err != nil {
		s.logger.Warn("read import workbook", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cannot read the spreadsheet; check the file format")
	}
	columns := ImportAliases.Resolve(sheet.Header)
	records := sheet.Records(columns)
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no valid rows found in the spreadsheet")
	}

	students := make([]models.Student, 0, len(records))
	candidates := make([]ledger.Candidate, 0, len(records))
	for _, rec := range records {
		req := importRequest(rec, month)
		st := s.ledger.BuildStudent(req, models.ImportClassName)
		students = append(students, st)
		candidates = append(candidates, ledger.Candidate{Name: st.Name, ClassName: st.ClassName})
	}

	if !confirmDuplicate {
		dups, err := s.ledger.FindDuplicates(ctx, candidates, month)
		if err != nil {
			return nil, err
		}
		if len(dups) > 0 {
			return nil, &DuplicateError{Month: month, Duplicates: dups}
		}
	}
	if err := s.ledger.Add(ctx, students); err != nil {
		return nil, err
	}

	seeded := false
	for _, st := range students {
		if len(st.AttendanceHistory) > 0 {
			seeded = true
			break
		}
	}
	s.logger.Info("spreadsheet imported", zap.String("month", month), zap.Int("count", len(students)))
	return &ImportResult{Month: month, Imported: len(students), Seeded: seeded, Students: students}, nil
}

// Template renders the sample workbook offered for download.
func (s *ImportService) Template() (string, []byte, error) {
	data := export.Dataset{
		Headers: []string{"Họ và Tên", "Lớp", "Học phí", "Nội dung điều chỉnh", "Số tiền điều chỉnh"},
		Rows: []map[string]string{
			{"Họ và Tên": "Nguyễn Văn A", "Lớp": "Piano 01", "Học phí": "500000", "Nội dung điều chỉnh": "Nghỉ 1 buổi", "Số tiền điều chỉnh": "-50000"},
			{"Họ và Tên": "Trần Thị B", "Lớp": "Vẽ T7", "Học phí": "800000", "Nội dung điều chỉnh": "Nợ tháng trước", "Số tiền điều chỉnh": "200000"},
		},
	}
	body, err := s.template.Render(data, templateSheet)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render template")
	}
	return templateFilename, body, nil
}

func importRequest(rec map[spreadsheet.Field]string, month string) CreateStudentRequest {
	name := rec[fieldName]
	if name == "" {
		name = UnnamedStudent
	}
	req := CreateStudentRequest{
		Name:              name,
		ClassName:         rec[fieldClass],
		Month:             month,
		BaseFee:           parseAmount(rec[fieldBaseFee]),
		AdjustmentContent: rec[fieldAdjContent],
		AdjustmentAmount:  parseAmount(rec[fieldAdjAmount]),
	}
	if n, ok := parseSessions(rec[fieldSessions]); ok {
		req.Sessions = &n
	}
	return req
}

// parseAmount reads a money cell. Formatted cells may carry thousands
// separators; anything unreadable counts as zero.
func parseAmount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(math.Round(f))
	}
	cleaned := strings.NewReplacer(",", "", ".", "", " ", "", " ", "", "đ", "", "₫", "").Replace(raw)
	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return n
	}
	return 0
}

// parseSessions accepts "5" and the exported "5/8" form.
func parseSessions(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	if n > 31 {
		n = 31
	}
	return n, true
}
