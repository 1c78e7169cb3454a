package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-tuition/internal/ledger"
	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

type studentStore interface {
	Load(ctx context.Context) ([]models.Student, error)
	Save(ctx context.Context, students []models.Student) error
}

type paymentLog interface {
	List(ctx context.Context) ([]models.Payment, error)
	Append(ctx context.Context, payment models.Payment) error
}

type studentGauge interface {
	SetStudentCount(n int)
}

// LedgerConfig tunes record construction.
type LedgerConfig struct {
	SeedSessions int
	ClampSeed    bool
}

// CreateStudentRequest is the manual entry form.
type CreateStudentRequest struct {
	Name              string `json:"name" validate:"required"`
	ClassName         string `json:"className"`
	Month             string `json:"month"`
	BaseFee           int64  `json:"baseFee" validate:"min=0"`
	AdjustmentContent string `json:"adjustmentContent"`
	AdjustmentAmount  int64  `json:"adjustmentAmount"`
	Note              string `json:"note"`
	ParentName        string `json:"parentName"`
	Phone             string `json:"phone"`
	PaymentDeadline   string `json:"paymentDeadline"`
	// Sessions overrides the back-dated seed count for past months.
	Sessions *int `json:"sessions" validate:"omitempty,min=0,max=31"`
}

// PaymentRequest settles a record. Zero values fall back to the total due,
// today and bank transfer.
type PaymentRequest struct {
	Amount *int64               `json:"amount" validate:"omitempty,min=0"`
	Date   string               `json:"date"`
	Method models.PaymentMethod `json:"method" validate:"omitempty,oneof=CASH TRANSFER"`
	Note   string               `json:"note"`
}

// DuplicateError reports candidates that already exist for the month. It
// unwraps to appErrors.ErrDuplicateStudent.
type DuplicateError struct {
	Month      string             `json:"month"`
	Duplicates []ledger.Candidate `json:"duplicates"`
}

func (e *DuplicateError) Error() string {
	names := make([]string, 0, len(e.Duplicates))
	for _, d := range e.Duplicates {
		names = append(names, fmt.Sprintf("%s (%s)", d.Name, d.ClassName))
	}
	return fmt.Sprintf("%d student(s) already exist in %s: %s", len(e.Duplicates), e.Month, strings.Join(names, ", "))
}

func (e *DuplicateError) Unwrap() error {
	return appErrors.Clone(appErrors.ErrDuplicateStudent, e.Error())
}

// LedgerService owns the canonical student list. Every mutation persists the
// whole list before the in-memory copy is replaced.
type LedgerService struct {
	students  studentStore
	payments  paymentLog
	validator *validator.Validate
	logger    *zap.Logger
	cfg       LedgerConfig
	gauge     studentGauge

	now   func() time.Time
	newID func() string

	mu       sync.RWMutex
	list     []models.Student
	selected string
	loaded   bool
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(students studentStore, payments paymentLog, cfg LedgerConfig, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SeedSessions <= 0 {
		cfg.SeedSessions = ledger.CycleLength
	}
	return &LedgerService{
		students:  students,
		payments:  payments,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// UseGauge publishes the record count after every load and mutation.
func (s *LedgerService) UseGauge(g studentGauge) {
	s.gauge = g
}

// Init loads the persisted list once.
func (s *LedgerService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Reload discards in-memory state and reads storage again. Called after a
// restore overwrote the persisted keys.
func (s *LedgerService) Reload(ctx context.Context) error {
	return s.WithWriteLock(ctx, func(context.Context) error { return nil })
}

// WithWriteLock runs fn while holding the mutation lock and reloads the list
// from storage before releasing it, so writes made by fn behind the ledger's
// back cannot be overwritten by a concurrent mutation.
func (s *LedgerService) WithWriteLock(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fnErr := fn(ctx)
	if err := s.loadLocked(ctx); err != nil {
		if fnErr != nil {
			return fnErr
		}
		return err
	}
	if s.selected != "" && s.indexLocked(s.selected) < 0 {
		s.selected = ""
	}
	return fnErr
}

func (s *LedgerService) loadLocked(ctx context.Context) error {
	list, err := s.students.Load(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	for i := range list {
		list[i] = normalizeAttendance(list[i])
	}
	s.list = list
	s.loaded = true
	s.publishLocked()
	s.logger.Info("ledger loaded", zap.Int("students", len(list)))
	return nil
}

func (s *LedgerService) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// Add appends records whose IDs were assigned by the caller.
func (s *LedgerService) Add(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(s.list)+len(students))
	for _, st := range s.list {
		seen[st.ID] = struct{}{}
	}
	next := s.cloneListLocked(len(students))
	for _, st := range students {
		if strings.TrimSpace(st.ID) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "every student needs an id before it is added")
		}
		if _, dup := seen[st.ID]; dup {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student id %s already exists", st.ID))
		}
		seen[st.ID] = struct{}{}
		next = append(next, normalizeAttendance(st.Clone()))
	}
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	s.logger.Info("students added", zap.Int("count", len(students)))
	return nil
}

// BuildStudent runs the shared construction path: class sentinel, initial
// balance and back-dated attendance seeding. The record gets a fresh id.
func (s *LedgerService) BuildStudent(req CreateStudentRequest, defaultClass string) models.Student {
	month := strings.TrimSpace(req.Month)
	if month == "" {
		month = ledger.FormatMonth(s.now())
	}
	className := strings.TrimSpace(req.ClassName)
	if className == "" {
		className = defaultClass
	}
	sessions := s.cfg.SeedSessions
	if req.Sessions != nil {
		sessions = *req.Sessions
	}
	history := ledger.InitialHistory(month, s.now(), sessions, s.cfg.ClampSeed)

	st := models.Student{
		ID:                s.newID(),
		Name:              strings.TrimSpace(req.Name),
		ClassName:         className,
		Month:             month,
		BaseFee:           req.BaseFee,
		AdjustmentContent: req.AdjustmentContent,
		AdjustmentAmount:  models.Int64(req.AdjustmentAmount),
		Note:              req.Note,
		ParentName:        req.ParentName,
		Phone:             req.Phone,
		PaymentDeadline:   req.PaymentDeadline,
		AttendanceHistory: history,
		AttendanceCount:   len(history),
	}
	return ledger.RecomputeBalance(st)
}

// Create validates a manual entry and adds it. When the name and class
// already exist for the month a *DuplicateError is returned unless confirmed.
func (s *LedgerService) Create(ctx context.Context, req CreateStudentRequest, confirmDuplicate bool) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if req.Month != "" {
		if _, _, err := ledger.ParseMonth(req.Month); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
	}

	st := s.BuildStudent(req, models.DefaultClassName)
	if !confirmDuplicate {
		dups, err := s.FindDuplicates(ctx, []ledger.Candidate{{Name: req.Name, ClassName: req.ClassName}}, st.Month)
		if err != nil {
			return nil, err
		}
		if len(dups) > 0 {
			return nil, &DuplicateError{Month: st.Month, Duplicates: dups}
		}
	}
	if err := s.Add(ctx, []models.Student{st}); err != nil {
		return nil, err
	}
	return &st, nil
}

// FindDuplicates checks candidates against the current list for month.
func (s *LedgerService) FindDuplicates(ctx context.Context, candidates []ledger.Candidate, month string) ([]ledger.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return ledger.FindDuplicates(candidates, month, s.list), nil
}

// Update applies a patch and recomputes the balance.
func (s *LedgerService) Update(ctx context.Context, id string, patch models.StudentPatch) (*models.Student, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
	}
	if patch.Month != nil && *patch.Month != "" {
		if _, _, err := ledger.ParseMonth(*patch.Month); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
	}
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		applyPatch(&st, patch)
		return ledger.RecomputeBalance(st), nil
	})
}

// Remove deletes a record and clears the selection pointing at it.
func (s *LedgerService) Remove(ctx context.Context, id string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, fmt.Sprintf("deleting %s removes the record permanently; repeat with confirm=true", s.list[idx].Name))
	}
	next := make([]models.Student, 0, len(s.list)-1)
	next = append(next, s.list[:idx]...)
	next = append(next, s.list[idx+1:]...)
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	if s.selected == id {
		s.selected = ""
	}
	s.logger.Info("student removed", zap.String("student_id", id))
	return nil
}

// List returns the records matching the filter in insertion order.
func (s *LedgerService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return filterStudents(s.list, filter), nil
}

// Get returns one record.
func (s *LedgerService) Get(ctx context.Context, id string) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	st := s.list[idx].Clone()
	return &st, nil
}

// Select marks the record shown in the receipt view.
func (s *LedgerService) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	if id != "" && s.indexLocked(id) < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.selected = id
	return nil
}

// Selected returns the selected record id, or "" when nothing is selected.
func (s *LedgerService) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Classes lists distinct class names.
func (s *LedgerService) Classes(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return ledger.UniqueClasses(s.list), nil
}

// Months lists distinct month tags, newest first.
func (s *LedgerService) Months(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return ledger.UniqueMonths(s.list), nil
}

// Summary aggregates totals over the filtered list.
func (s *LedgerService) Summary(ctx context.Context, filter models.StudentFilter) (models.LedgerSummary, error) {
	list, err := s.List(ctx, filter)
	if err != nil {
		return models.LedgerSummary{}, err
	}
	return ledger.Summarize(list), nil
}

// MarkPaid settles a record and appends the event to the payment log.
func (s *LedgerService) MarkPaid(ctx context.Context, id string, req PaymentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = ledger.FormatDate(s.now())
	} else if !ledger.ValidDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	method := req.Method
	if method == "" {
		method = models.PaymentTransfer
	}

	var paidAmount int64
	st, err := s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		if st.IsPaid {
			return st, appErrors.Clone(appErrors.ErrConflict, "student is already marked paid; revert the payment first")
		}
		paidAmount = ledger.ComputeTotal(st)
		if req.Amount != nil {
			paidAmount = *req.Amount
		}
		return ledger.ApplyPayment(st, paidAmount, date, method), nil
	})
	if err != nil {
		return nil, err
	}

	if paidAmount > 0 && s.payments != nil {
		entry := models.Payment{
			ID:        s.newID(),
			StudentID: id,
			Amount:    paidAmount,
			Date:      date,
			Method:    method,
			Note:      req.Note,
			Status:    models.PaymentStatusCompleted,
		}
		if err := s.payments.Append(ctx, entry); err != nil {
			s.logger.Warn("failed to append payment log", zap.String("student_id", id), zap.Error(err))
		}
	}
	s.logger.Info("payment recorded", zap.String("student_id", id), zap.Int64("amount", paidAmount), zap.String("method", string(method)))
	return st, nil
}

// RevertPayment clears the settlement after explicit confirmation.
func (s *LedgerService) RevertPayment(ctx context.Context, id string, confirmed bool) (*models.Student, error) {
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		if !st.IsPaid {
			return st, appErrors.Clone(appErrors.ErrConflict, "student is not marked paid")
		}
		if !confirmed {
			return st, appErrors.Clone(appErrors.ErrConfirmationRequired, fmt.Sprintf("reverting the payment of %s restores the full debt; repeat with confirm=true", st.Name))
		}
		return ledger.RevertPayment(st), nil
	})
}

// Payments returns the settlement audit log.
func (s *LedgerService) Payments(ctx context.Context) ([]models.Payment, error) {
	if s.payments == nil {
		return []models.Payment{}, nil
	}
	list, err := s.payments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	return list, nil
}

// ToggleSent flips the receipt delivered flag.
func (s *LedgerService) ToggleSent(ctx context.Context, id string) (*models.Student, error) {
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		st.IsSent = !st.IsSent
		return st, nil
	})
}

// SetNote replaces the free-text note.
func (s *LedgerService) SetNote(ctx context.Context, id, note string) (*models.Student, error) {
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		st.Note = note
		return st, nil
	})
}

// CheckIn records a session on date, defaulting to today.
func (s *LedgerService) CheckIn(ctx context.Context, id, date string) (*models.Student, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		return withHistory(st, ledger.CheckIn(st.AttendanceHistory, date)), nil
	})
}

// ToggleToday checks in for today, or removes today's check-in if present.
func (s *LedgerService) ToggleToday(ctx context.Context, id string) (*models.Student, error) {
	today := ledger.FormatDate(s.now())
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		if ledger.HasDate(st.AttendanceHistory, today) {
			return withHistory(st, ledger.RemoveDate(st.AttendanceHistory, today)), nil
		}
		return withHistory(st, ledger.CheckIn(st.AttendanceHistory, today)), nil
	})
}

// RemoveAttendance drops one session date.
func (s *LedgerService) RemoveAttendance(ctx context.Context, id, date string) (*models.Student, error) {
	if !ledger.ValidDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		return withHistory(st, ledger.RemoveDate(st.AttendanceHistory, date)), nil
	})
}

// SetAttendance replaces the whole history.
func (s *LedgerService) SetAttendance(ctx context.Context, id string, history []string) (*models.Student, error) {
	for _, d := range history {
		if !ledger.ValidDate(d) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance date %q", d))
		}
	}
	return s.mutate(ctx, id, func(st models.Student) (models.Student, error) {
		return withHistory(st, ledger.Dedupe(history)), nil
	})
}

// BulkCandidates lists filtered records not yet checked in on date.
func (s *LedgerService) BulkCandidates(ctx context.Context, filter models.StudentFilter, date string) ([]models.Student, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	list, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(list))
	for _, st := range list {
		if !ledger.HasDate(st.AttendanceHistory, date) {
			out = append(out, st)
		}
	}
	return out, nil
}

// BulkCheckIn checks in every listed record on date. Records already checked
// in and unknown ids are skipped; the number of changed records is returned.
func (s *LedgerService) BulkCheckIn(ctx context.Context, ids []string, date string) (int, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return 0, err
	}
	next := s.cloneListLocked(0)
	changed := 0
	for i, st := range next {
		if _, ok := wanted[st.ID]; !ok || ledger.HasDate(st.AttendanceHistory, date) {
			continue
		}
		next[i] = withHistory(st, ledger.CheckIn(st.AttendanceHistory, date))
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.persistLocked(ctx, next); err != nil {
		return 0, err
	}
	s.logger.Info("bulk check-in", zap.String("date", date), zap.Int("changed", changed))
	return changed, nil
}

// Snapshot returns a copy of every record.
func (s *LedgerService) Snapshot(ctx context.Context) ([]models.Student, error) {
	return s.List(ctx, models.StudentFilter{})
}

func (s *LedgerService) mutate(ctx context.Context, id string, fn func(models.Student) (models.Student, error)) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	updated, err := fn(s.list[idx].Clone())
	if err != nil {
		return nil, err
	}
	updated.ID = id
	next := s.cloneListLocked(0)
	next[idx] = updated
	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	out := updated.Clone()
	return &out, nil
}

func (s *LedgerService) persistLocked(ctx context.Context, next []models.Student) error {
	if err := s.students.Save(ctx, next); err != nil {
		s.logger.Error("failed to persist students", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save students")
	}
	s.list = next
	s.publishLocked()
	return nil
}

func (s *LedgerService) publishLocked() {
	if s.gauge != nil {
		s.gauge.SetStudentCount(len(s.list))
	}
}

func (s *LedgerService) cloneListLocked(extra int) []models.Student {
	out := make([]models.Student, len(s.list), len(s.list)+extra)
	copy(out, s.list)
	return out
}

func (s *LedgerService) indexLocked(id string) int {
	for i, st := range s.list {
		if st.ID == id {
			return i
		}
	}
	return -1
}

func (s *LedgerService) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return ledger.FormatDate(s.now()), nil
	}
	if !ledger.ValidDate(date) {
		return "", appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return date, nil
}

func filterStudents(list []models.Student, filter models.StudentFilter) []models.Student {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Student, 0, len(list))
	for _, st := range list {
		if filter.ClassName != "" && filter.ClassName != models.FilterAll && st.ClassOrFallback() != filter.ClassName {
			continue
		}
		if filter.Month != "" && filter.Month != models.FilterAll && st.MonthOrUnknown() != filter.Month {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(st.Name), term) {
			continue
		}
		out = append(out, st.Clone())
	}
	return out
}

func applyPatch(st *models.Student, p models.StudentPatch) {
	if p.Name != nil {
		st.Name = strings.TrimSpace(*p.Name)
	}
	if p.ClassName != nil {
		st.ClassName = strings.TrimSpace(*p.ClassName)
	}
	if p.Month != nil {
		st.Month = strings.TrimSpace(*p.Month)
	}
	if p.BaseFee != nil {
		st.BaseFee = *p.BaseFee
	}
	if p.AdjustmentContent != nil {
		st.AdjustmentContent = *p.AdjustmentContent
	}
	if p.AdjustmentAmount != nil {
		st.AdjustmentAmount = models.Int64(*p.AdjustmentAmount)
	}
	if p.Note != nil {
		st.Note = *p.Note
	}
	if p.ParentName != nil {
		st.ParentName = *p.ParentName
	}
	if p.Phone != nil {
		st.Phone = *p.Phone
	}
	if p.PaymentDeadline != nil {
		st.PaymentDeadline = *p.PaymentDeadline
	}
}

func withHistory(st models.Student, history []string) models.Student {
	st.AttendanceHistory = history
	st.AttendanceCount = len(history)
	return st
}

// normalizeAttendance repairs records with repeated dates and keeps the count
// mirror in step. A legacy count without any dates is left as stored until
// the record's attendance is next edited.
func normalizeAttendance(st models.Student) models.Student {
	st.AttendanceHistory = ledger.Dedupe(st.AttendanceHistory)
	st.AttendanceCount = ledger.SessionCount(st.AttendanceHistory, st.AttendanceCount)
	return st
}

// IsDuplicateError reports whether err carries duplicate candidates.
func IsDuplicateError(err error) (*DuplicateError, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
