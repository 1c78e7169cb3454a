package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-tuition/internal/ledger"
	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

type fakeStudentStore struct {
	list    []models.Student
	saves   int
	saveErr error
}

func (f *fakeStudentStore) Load(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, len(f.list))
	for i, s := range f.list {
		out[i] = s.Clone()
	}
	return out, nil
}

func (f *fakeStudentStore) Save(ctx context.Context, students []models.Student) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.list = make([]models.Student, len(students))
	for i, s := range students {
		f.list[i] = s.Clone()
	}
	return nil
}

type fakePaymentLog struct {
	entries []models.Payment
}

func (f *fakePaymentLog) List(ctx context.Context) ([]models.Payment, error) {
	return append([]models.Payment(nil), f.entries...), nil
}

func (f *fakePaymentLog) Append(ctx context.Context, p models.Payment) error {
	f.entries = append(f.entries, p)
	return nil
}

type countingGauge struct{ last int }

func (g *countingGauge) SetStudentCount(n int) { g.last = n }

var fixedNow = time.Date(2025, 4, 15, 10, 0, 0, 0, time.Local)

func newTestLedger(t *testing.T, seed ...models.Student) (*LedgerService, *fakeStudentStore, *fakePaymentLog) {
	t.Helper()
	store := &fakeStudentStore{list: seed}
	payments := &fakePaymentLog{}
	svc := NewLedgerService(store, payments, LedgerConfig{SeedSessions: 8, ClampSeed: true}, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	require.NoError(t, svc.Init(context.Background()))
	return svc, store, payments
}

func student(id, name, class, month string, fee int64) models.Student {
	return ledger.RecomputeBalance(models.Student{
		ID: id, Name: name, ClassName: class, Month: month, BaseFee: fee,
		AdjustmentAmount: models.Int64(0), AttendanceHistory: []string{},
	})
}

func TestLedgerInitNormalizesLegacyRecords(t *testing.T) {
	legacy := models.Student{ID: "old", Name: "Cũ", AttendanceHistory: []string{"2025-01-02", "2025-01-02"}}
	noHistory := models.Student{ID: "older", Name: "Rất cũ"}
	svc, _, _ := newTestLedger(t, legacy, noHistory)

	got, err := svc.Get(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-02"}, got.AttendanceHistory)
	assert.Equal(t, 1, got.AttendanceCount)

	got, err = svc.Get(context.Background(), "older")
	require.NoError(t, err)
	assert.NotNil(t, got.AttendanceHistory)
	assert.Equal(t, 0, got.AttendanceCount)
}

func TestLedgerAddRequiresCallerIDs(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 100))
	ctx := context.Background()

	err := svc.Add(ctx, []models.Student{{Name: "No id"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = svc.Add(ctx, []models.Student{{ID: "a", Name: "Clash"}})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, store.saves)

	require.NoError(t, svc.Add(ctx, []models.Student{{ID: "b", Name: "Bình"}, {ID: "c", Name: "Chi"}}))
	assert.Equal(t, 1, store.saves, "one blob write per mutation")
	assert.Len(t, store.list, 3)
	assert.Equal(t, "c", store.list[2].ID, "insertion order preserved")
}

func TestLedgerCreateDefaultsAndSeeding(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()

	current, err := svc.Create(ctx, CreateStudentRequest{Name: "An", BaseFee: 500000, AdjustmentAmount: -50000}, false)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultClassName, current.ClassName)
	assert.Equal(t, "4/2025", current.Month)
	assert.Equal(t, int64(-450000), current.Balance)
	assert.Empty(t, current.AttendanceHistory)

	past, err := svc.Create(ctx, CreateStudentRequest{Name: "Bình", Month: "3/2025", BaseFee: 300000}, false)
	require.NoError(t, err)
	assert.Len(t, past.AttendanceHistory, 8)
	assert.Equal(t, "2025-03-01", past.AttendanceHistory[0])
	assert.Equal(t, 8, past.AttendanceCount)

	five := 5
	custom, err := svc.Create(ctx, CreateStudentRequest{Name: "Chi", Month: "2/2025", Sessions: &five}, false)
	require.NoError(t, err)
	assert.Len(t, custom.AttendanceHistory, 5)
}

func TestLedgerCreateDuplicateNeedsConfirmation(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "anna", "A", "1/2025", 100))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{Name: " Anna ", ClassName: "a", Month: "1/2025"}, false)
	dup, ok := IsDuplicateError(err)
	require.True(t, ok)
	assert.Equal(t, "1/2025", dup.Month)
	require.Len(t, dup.Duplicates, 1)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateStudent))
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Len(t, store.list, 1)

	_, err = svc.Create(ctx, CreateStudentRequest{Name: " Anna ", ClassName: "a", Month: "1/2025"}, true)
	require.NoError(t, err)
	assert.Len(t, store.list, 2)

	_, err = svc.Create(ctx, CreateStudentRequest{Name: "Anna", ClassName: "A", Month: "2/2025"}, false)
	assert.NoError(t, err)
}

func TestLedgerCreateValidation(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	_, err := svc.Create(context.Background(), CreateStudentRequest{Name: "", BaseFee: 1}, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), CreateStudentRequest{Name: "X", Month: "13/2025"}, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), CreateStudentRequest{Name: "X", BaseFee: -1}, false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLedgerUpdateRecomputesBalance(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 500000))
	fee := int64(600000)
	adj := int64(-100000)

	updated, err := svc.Update(context.Background(), "a", models.StudentPatch{BaseFee: &fee, AdjustmentAmount: &adj})
	require.NoError(t, err)
	assert.Equal(t, int64(-500000), updated.Balance)
	assert.Equal(t, int64(-500000), store.list[0].Balance)

	_, err = svc.Update(context.Background(), "missing", models.StudentPatch{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestLedgerRemoveNeedsConfirmationAndClearsSelection(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 1), student("b", "Bình", "X", "4/2025", 1))
	ctx := context.Background()
	require.NoError(t, svc.Select(ctx, "a"))

	err := svc.Remove(ctx, "a", false)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Len(t, store.list, 2)

	require.NoError(t, svc.Remove(ctx, "a", true))
	assert.Len(t, store.list, 1)
	assert.Equal(t, "", svc.Selected())
}

func TestLedgerListFilter(t *testing.T) {
	svc, _, _ := newTestLedger(t,
		student("a", "Nguyễn An", "Toán 9", "3/2025", 1),
		student("b", "Trần Bình", "Toán 9", "4/2025", 1),
		student("c", "Lê Chi", "", "4/2025", 1),
	)
	ctx := context.Background()

	all, err := svc.List(ctx, models.StudentFilter{ClassName: models.FilterAll, Month: models.FilterAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byMonth, _ := svc.List(ctx, models.StudentFilter{Month: "4/2025"})
	assert.Equal(t, []string{"b", "c"}, ids(byMonth))

	fallback, _ := svc.List(ctx, models.StudentFilter{ClassName: models.FallbackClassName})
	assert.Equal(t, []string{"c"}, ids(fallback))

	search, _ := svc.List(ctx, models.StudentFilter{Search: "BÌNH"})
	assert.Equal(t, []string{"b"}, ids(search))
}

func TestLedgerMarkPaidAndRevert(t *testing.T) {
	st := student("a", "An", "X", "4/2025", 500000)
	st.AdjustmentAmount = models.Int64(-50000)
	svc, store, payments := newTestLedger(t, ledger.RecomputeBalance(st))
	ctx := context.Background()

	partial := int64(300000)
	paid, err := svc.MarkPaid(ctx, "a", PaymentRequest{Amount: &partial, Method: models.PaymentCash})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, int64(-150000), paid.Balance)
	assert.Equal(t, "2025-04-15", *paid.PaidDate)
	require.Len(t, payments.entries, 1)
	assert.Equal(t, int64(300000), payments.entries[0].Amount)
	assert.Equal(t, "a", payments.entries[0].StudentID)

	_, err = svc.MarkPaid(ctx, "a", PaymentRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.RevertPayment(ctx, "a", false)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.True(t, store.list[0].IsPaid)

	reverted, err := svc.RevertPayment(ctx, "a", true)
	require.NoError(t, err)
	assert.False(t, reverted.IsPaid)
	assert.Nil(t, reverted.PaidAmount)
	assert.Equal(t, int64(-450000), reverted.Balance)

	full, err := svc.MarkPaid(ctx, "a", PaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), full.Balance)
	assert.Equal(t, models.PaymentTransfer, *full.PaymentMethod)
}

func TestLedgerMarkPaidRejectsBadDate(t *testing.T) {
	svc, _, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 1))
	_, err := svc.MarkPaid(context.Background(), "a", PaymentRequest{Date: "15/04/2025"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLedgerAttendanceOperations(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 1))
	ctx := context.Background()

	st, err := svc.CheckIn(ctx, "a", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-04-15"}, st.AttendanceHistory)

	st, err = svc.CheckIn(ctx, "a", "2025-04-15")
	require.NoError(t, err)
	assert.Equal(t, 1, st.AttendanceCount)

	st, err = svc.CheckIn(ctx, "a", "2025-04-10")
	require.NoError(t, err)
	assert.Equal(t, 2, store.list[0].AttendanceCount)

	st, err = svc.RemoveAttendance(ctx, "a", "2025-04-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-04-15"}, st.AttendanceHistory)

	st, err = svc.ToggleToday(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, st.AttendanceHistory)

	st, err = svc.SetAttendance(ctx, "a", []string{"2025-04-01", "2025-04-02", "2025-04-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, st.AttendanceCount)

	_, err = svc.SetAttendance(ctx, "a", []string{"yesterday"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLedgerBulkCheckIn(t *testing.T) {
	done := student("b", "Bình", "X", "4/2025", 1)
	done.AttendanceHistory = []string{"2025-04-15"}
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 1), done, student("c", "Chi", "Y", "4/2025", 1))
	ctx := context.Background()

	candidates, err := svc.BulkCandidates(ctx, models.StudentFilter{ClassName: "X"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(candidates))

	changed, err := svc.BulkCheckIn(ctx, []string{"a", "b", "ghost"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	saves := store.saves

	changed, err = svc.BulkCheckIn(ctx, []string{"a", "b"}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	assert.Equal(t, saves, store.saves, "idempotent bulk check-in does not write")
}

func TestLedgerSaveFailureKeepsMemory(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 1))
	store.saveErr = errors.New("disk full")

	_, err := svc.ToggleSent(context.Background(), "a")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	got, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, got.IsSent)
}

func TestLedgerSummaryAndMonths(t *testing.T) {
	svc, _, _ := newTestLedger(t,
		student("a", "An", "X", "3/2025", 500000),
		ledger.ApplyPayment(student("b", "Bình", "X", "4/2025", 400000), 400000, "2025-04-01", models.PaymentCash),
	)
	sum, err := svc.Summary(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(900000), sum.TotalDue)
	assert.Equal(t, int64(400000), sum.Collected)
	assert.Equal(t, 1, sum.StudentsInDebt)

	months, err := svc.Months(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"4/2025", "3/2025"}, months)
}

func TestLedgerReloadPublishesGauge(t *testing.T) {
	svc, store, _ := newTestLedger(t, student("a", "An", "X", "4/2025", 1))
	gauge := &countingGauge{}
	svc.UseGauge(gauge)
	require.NoError(t, svc.Select(context.Background(), "a"))

	store.list = []models.Student{student("z", "Zed", "X", "4/2025", 1), student("y", "Y", "X", "4/2025", 1)}
	require.NoError(t, svc.Reload(context.Background()))
	assert.Equal(t, 2, gauge.last)
	assert.Equal(t, "", svc.Selected(), "selection of a vanished record is cleared")
}

func ids(list []models.Student) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}
