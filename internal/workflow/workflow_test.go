package workflow

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandikan/enroll/internal/models"
	"github.com/tandikan/enroll/internal/service"
	apierrors "github.com/tandikan/enroll/pkg/errors"
)

type mockEnrollmentAPI struct {
	current   *models.Enrollment
	created   *models.Enrollment
	createErr error
	schedules []models.Schedule
	dropped   []int64
	lastReq   models.CreateEnrollmentRequest
}

func (m *mockEnrollmentAPI) Current(ctx context.Context) (*models.Enrollment, error) {
	if m.current == nil {
		return nil, service.ErrNoActiveEnrollment
	}
	return m.current, nil
}

func (m *mockEnrollmentAPI) Create(ctx context.Context, req models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	m.lastReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *mockEnrollmentAPI) DropSubject(ctx context.Context, enrollmentID, subjectID int64) error {
	m.dropped = append(m.dropped, subjectID)
	return nil
}

func (m *mockEnrollmentAPI) AvailableSchedules(ctx context.Context, yearLevel, semester int) ([]models.Schedule, error) {
	return m.schedules, nil
}

type mockAssessmentAPI struct {
	byEnrollment map[int64]*models.Assessment
	created      *models.Assessment
}

func (m *mockAssessmentAPI) ForEnrollment(ctx context.Context, enrollmentID int64) (*models.Assessment, error) {
	if a, ok := m.byEnrollment[enrollmentID]; ok {
		return a, nil
	}
	return nil, &apierrors.HTTPError{Status: http.StatusNotFound}
}

func (m *mockAssessmentAPI) Create(ctx context.Context, enrollmentID int64) (*models.Assessment, error) {
	return m.created, nil
}

type mockPaymentAPI struct {
	listed    []models.Payment
	created   []models.Payment
	nextID    int64
	createErr error
}

func (m *mockPaymentAPI) Create(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	p := models.Payment{
		ID:            m.nextID,
		Assessment:    req.AssessmentID,
		Amount:        req.Amount,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Status:        models.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	m.created = append(m.created, p)
	return &p, nil
}

func (m *mockPaymentAPI) List(ctx context.Context, assessmentID int64) ([]models.Payment, error) {
	return m.listed, nil
}

func catalogOf(n int) []models.Schedule {
	schedules := make([]models.Schedule, 0, n)
	days := [][]string{{"Mon", "Wed"}, {"Tue", "Thu"}, {"Fri"}}
	starts := []string{"08:00", "10:00", "13:00"}
	ends := []string{"09:30", "11:30", "14:30"}
	for i := 0; i < n; i++ {
		schedules = append(schedules, models.Schedule{
			ID:        int64(i + 1),
			Subject:   models.Subject{ID: int64(i + 1), Code: "SUBJ10" + string(rune('0'+i)), Units: 3},
			Days:      days[i%3],
			TimeStart: starts[i%3],
			TimeEnd:   ends[i%3],
		})
	}
	return schedules
}

func newTestWorkflow(t *testing.T, enr *mockEnrollmentAPI, asm *mockAssessmentAPI, pay *mockPaymentAPI) *Workflow {
	t.Helper()
	rates := PreviewRates{CreditPerSubject: 3, RatePerUnit: 500, MiscRate: 0.1}
	return New(enr, asm, pay, rates, nil)
}

func TestSubmitRequiresSelection(t *testing.T) {
	w := newTestWorkflow(t, &mockEnrollmentAPI{}, &mockAssessmentAPI{}, &mockPaymentAPI{})
	_, err := w.Submit(context.Background(), "2025-2026", 1)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestToggleRejectsUnknownSchedule(t *testing.T) {
	w := newTestWorkflow(t, &mockEnrollmentAPI{}, &mockAssessmentAPI{}, &mockPaymentAPI{})
	assert.ErrorIs(t, w.Toggle(99), ErrUnknownSchedule)
}

func TestSubmitRefusesConflictingSelection(t *testing.T) {
	enr := &mockEnrollmentAPI{schedules: []models.Schedule{
		{ID: 1, Subject: models.Subject{Code: "A"}, Days: []string{"Mon"}, TimeStart: "08:00", TimeEnd: "10:00"},
		{ID: 2, Subject: models.Subject{Code: "B"}, Days: []string{"Mon"}, TimeStart: "09:00", TimeEnd: "11:00"},
	}}
	w := newTestWorkflow(t, enr, &mockAssessmentAPI{}, &mockPaymentAPI{})

	_, err := w.LoadSchedules(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.Toggle(1))
	require.NoError(t, w.Toggle(2))

	_, err = w.Submit(context.Background(), "2025-2026", 1)
	assert.ErrorIs(t, err, ErrHasConflicts)
}

func TestSubmitSendsSelectionAndReconciles(t *testing.T) {
	enr := &mockEnrollmentAPI{
		schedules: catalogOf(2),
		created: &models.Enrollment{
			ID:         42,
			Status:     models.EnrollmentStatusPending,
			TotalUnits: 6,
		},
	}
	w := newTestWorkflow(t, enr, &mockAssessmentAPI{}, &mockPaymentAPI{})

	_, err := w.LoadSchedules(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.Toggle(1))
	require.NoError(t, w.Toggle(2))

	enrollment, err := w.Submit(context.Background(), "2025-2026", 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, enr.lastReq.ScheduleIDs)
	assert.Equal(t, "2025-2026", enr.lastReq.AcademicYear)
	assert.Same(t, enrollment, w.Enrollment())
	assert.Equal(t, models.EnrollmentStatusPending, w.Enrollment().Status)
}

func TestPreviewMatchesSelectionCount(t *testing.T) {
	enr := &mockEnrollmentAPI{schedules: catalogOf(3)}
	w := newTestWorkflow(t, enr, &mockAssessmentAPI{}, &mockPaymentAPI{})
	_, err := w.LoadSchedules(context.Background(), 1, 1)
	require.NoError(t, err)

	require.NoError(t, w.Toggle(1))
	require.NoError(t, w.Toggle(2))

	p := w.Preview()
	assert.Equal(t, 6, p.Units)
	assert.Equal(t, 3000.0, p.Tuition)
	assert.Equal(t, 300.0, p.Misc)
	assert.Equal(t, 3300.0, p.Total)
}

func TestLoadCurrentTreatsMissingEnrollmentAsEmpty(t *testing.T) {
	w := newTestWorkflow(t, &mockEnrollmentAPI{}, &mockAssessmentAPI{}, &mockPaymentAPI{})
	require.NoError(t, w.LoadCurrent(context.Background()))
	assert.Nil(t, w.Enrollment())
	assert.Nil(t, w.Assessment())
}

func TestRequestAssessmentRequiresEnrollment(t *testing.T) {
	w := newTestWorkflow(t, &mockEnrollmentAPI{}, &mockAssessmentAPI{}, &mockPaymentAPI{})
	_, err := w.RequestAssessment(context.Background())
	assert.ErrorIs(t, err, ErrNoEnrollment)
}

func TestPaymentSequencingAndBalanceGuard(t *testing.T) {
	enr := &mockEnrollmentAPI{schedules: catalogOf(2), created: &models.Enrollment{ID: 42, Status: models.EnrollmentStatusPending}}
	asm := &mockAssessmentAPI{created: &models.Assessment{ID: 7, Enrollment: 42, TotalAmount: 3300, NetAmount: 3300, Status: models.AssessmentStatusApproved}}
	pay := &mockPaymentAPI{}
	w := newTestWorkflow(t, enr, asm, pay)

	// payments before an assessment exists are refused
	_, err := w.RecordPayment(context.Background(), 100, models.PaymentMethodCash, "")
	assert.ErrorIs(t, err, ErrNoAssessment)

	_, err = w.LoadSchedules(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.Toggle(1))
	_, err = w.Submit(context.Background(), "2025-2026", 1)
	require.NoError(t, err)

	_, err = w.RequestAssessment(context.Background())
	require.NoError(t, err)

	remaining, err := w.RemainingBalance()
	require.NoError(t, err)
	assert.Equal(t, 3300.0, remaining)

	// exceeding the remaining balance is rejected before the wire
	_, err = w.RecordPayment(context.Background(), 4000, models.PaymentMethodCash, "")
	assert.ErrorIs(t, err, ErrExceedsBalance)
	assert.Empty(t, pay.created)

	p, err := w.RecordPayment(context.Background(), 2000, models.PaymentMethodCash, "OR-1001")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Len(t, w.Payments(), 1)
}

func TestRemainingBalanceCountsOnlyConfirmed(t *testing.T) {
	enr := &mockEnrollmentAPI{
		current: &models.Enrollment{ID: 42, Status: models.EnrollmentStatusApproved},
	}
	asm := &mockAssessmentAPI{byEnrollment: map[int64]*models.Assessment{
		42: {ID: 7, Enrollment: 42, NetAmount: 3300, Status: models.AssessmentStatusApproved},
	}}
	pay := &mockPaymentAPI{listed: []models.Payment{
		{ID: 1, Assessment: 7, Amount: 1000, Status: models.PaymentStatusConfirmed},
		{ID: 2, Assessment: 7, Amount: 900, Status: models.PaymentStatusPending},
		{ID: 3, Assessment: 7, Amount: 200, Status: models.PaymentStatusCancelled},
	}}
	w := newTestWorkflow(t, enr, asm, pay)

	require.NoError(t, w.LoadCurrent(context.Background()))
	remaining, err := w.RemainingBalance()
	require.NoError(t, err)
	assert.Equal(t, 2300.0, remaining)
}

func TestDropSubjectRequiresEnrollment(t *testing.T) {
	enr := &mockEnrollmentAPI{}
	w := newTestWorkflow(t, enr, &mockAssessmentAPI{}, &mockPaymentAPI{})
	assert.ErrorIs(t, w.DropSubject(context.Background(), 3), ErrNoEnrollment)
}
