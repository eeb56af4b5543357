package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
	"github.com/tandikan/enroll/internal/service"
	apierrors "github.com/tandikan/enroll/pkg/errors"
)

// Pipeline guards, checked before any wire call is made.
var (
	ErrNothingSelected = errors.New("no schedules selected")
	ErrUnknownSchedule = errors.New("schedule id not in loaded catalog")
	ErrHasConflicts    = errors.New("selected schedules conflict")
	ErrNoEnrollment    = errors.New("no enrollment submitted yet")
	ErrNoAssessment    = errors.New("no assessment requested yet")
	ErrExceedsBalance  = errors.New("payment amount exceeds remaining balance")
)

type enrollmentAPI interface {
	Current(ctx context.Context) (*models.Enrollment, error)
	Create(ctx context.Context, req models.CreateEnrollmentRequest) (*models.Enrollment, error)
	DropSubject(ctx context.Context, enrollmentID, subjectID int64) error
	AvailableSchedules(ctx context.Context, yearLevel, semester int) ([]models.Schedule, error)
}

type assessmentAPI interface {
	ForEnrollment(ctx context.Context, enrollmentID int64) (*models.Assessment, error)
	Create(ctx context.Context, enrollmentID int64) (*models.Assessment, error)
}

type paymentAPI interface {
	Create(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error)
	List(ctx context.Context, assessmentID int64) ([]models.Payment, error)
}

// Workflow drives the enrollment pipeline for one student session: load the
// catalog, build a selection, preview fees, submit, request assessment and
// record payments. Every mutating call reconciles local state by replacing
// it with the server's returned entity; nothing transitions optimistically.
// A Workflow is single-owner and must not be shared across goroutines.
type Workflow struct {
	enrollments enrollmentAPI
	assessments assessmentAPI
	payments    paymentAPI
	rates       PreviewRates
	logger      *zap.Logger

	selection *Selection
	catalog   map[int64]models.Schedule

	enrollment *models.Enrollment
	assessment *models.Assessment
	paid       []models.Payment
}

// New constructs a Workflow over the domain services.
func New(enrollments enrollmentAPI, assessments assessmentAPI, payments paymentAPI, rates PreviewRates, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		enrollments: enrollments,
		assessments: assessments,
		payments:    payments,
		rates:       rates,
		logger:      logger,
		selection:   NewSelection(),
		catalog:     make(map[int64]models.Schedule),
	}
}

// Selection exposes the schedule selection for toggling and listeners.
func (w *Workflow) Selection() *Selection {
	return w.selection
}

// Enrollment returns the latest server copy, nil before submission.
func (w *Workflow) Enrollment() *models.Enrollment {
	return w.enrollment
}

// Assessment returns the latest server copy, nil before assessment.
func (w *Workflow) Assessment() *models.Assessment {
	return w.assessment
}

// Payments returns the latest known payments for the current assessment.
func (w *Workflow) Payments() []models.Payment {
	out := make([]models.Payment, len(w.paid))
	copy(out, w.paid)
	return out
}

// LoadSchedules fetches the offered sections for a term and indexes them for
// selection and conflict checks.
func (w *Workflow) LoadSchedules(ctx context.Context, yearLevel, semester int) ([]models.Schedule, error) {
	schedules, err := w.enrollments.AvailableSchedules(ctx, yearLevel, semester)
	if err != nil {
		return nil, err
	}
	for _, s := range schedules {
		w.catalog[s.ID] = s
	}
	return schedules, nil
}

// Toggle flips a schedule in or out of the selection. The id must belong to
// the loaded catalog.
func (w *Workflow) Toggle(id int64) error {
	if _, ok := w.catalog[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSchedule, id)
	}
	w.selection.Toggle(id)
	return nil
}

// Preview derives the advisory fee estimate for the current selection.
func (w *Workflow) Preview() Preview {
	return ComputePreview(w.selection.Len(), w.rates)
}

// SelectedSchedules resolves the selection against the catalog, preserving
// selection order.
func (w *Workflow) SelectedSchedules() ([]models.Schedule, error) {
	ids := w.selection.IDs()
	out := make([]models.Schedule, 0, len(ids))
	for _, id := range ids {
		s, ok := w.catalog[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSchedule, id)
		}
		out = append(out, s)
	}
	return out, nil
}

// CheckConflicts runs the pairwise overlap check over the selection.
func (w *Workflow) CheckConflicts() (ConflictReport, error) {
	selected, err := w.SelectedSchedules()
	if err != nil {
		return ConflictReport{}, err
	}
	return CheckConflicts(selected)
}

// LoadCurrent pulls the student's active enrollment plus its assessment and
// payments. A missing enrollment is a valid empty state, not an error.
func (w *Workflow) LoadCurrent(ctx context.Context) error {
	enrollment, err := w.enrollments.Current(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveEnrollment) {
			w.enrollment = nil
			w.assessment = nil
			w.paid = nil
			return nil
		}
		return err
	}
	w.enrollment = enrollment

	assessment, err := w.assessments.ForEnrollment(ctx, enrollment.ID)
	if err != nil {
		if apierrors.IsNotFound(err) {
			w.assessment = nil
			w.paid = nil
			return nil
		}
		return err
	}
	w.assessment = assessment
	return w.RefreshPayments(ctx)
}

// Submit creates the enrollment from the current selection. It refuses an
// empty selection and a conflicting one; the returned server entity becomes
// the local copy.
func (w *Workflow) Submit(ctx context.Context, academicYear string, semester int) (*models.Enrollment, error) {
	if w.selection.Len() == 0 {
		return nil, ErrNothingSelected
	}
	report, err := w.CheckConflicts()
	if err != nil {
		return nil, err
	}
	if report.Outcome == OutcomeConflicts {
		return nil, fmt.Errorf("%w: %s", ErrHasConflicts, report.Message())
	}

	enrollment, err := w.enrollments.Create(ctx, models.CreateEnrollmentRequest{
		AcademicYear: academicYear,
		Semester:     semester,
		ScheduleIDs:  w.selection.IDs(),
	})
	if err != nil {
		return nil, err
	}
	w.enrollment = enrollment
	w.logger.Info("enrollment submitted", zap.Int64("id", enrollment.ID), zap.String("status", string(enrollment.Status)))
	return enrollment, nil
}

// DropSubject drops one subject from the submitted enrollment. Callers
// refetch the enrollment afterwards; the server recomputes total units.
func (w *Workflow) DropSubject(ctx context.Context, subjectID int64) error {
	if w.enrollment == nil {
		return ErrNoEnrollment
	}
	return w.enrollments.DropSubject(ctx, w.enrollment.ID, subjectID)
}

// RequestAssessment asks the service to assess the submitted enrollment.
// Sequenced: requires the enrollment create to have completed and returned
// an id.
func (w *Workflow) RequestAssessment(ctx context.Context) (*models.Assessment, error) {
	if w.enrollment == nil {
		return nil, ErrNoEnrollment
	}
	assessment, err := w.assessments.Create(ctx, w.enrollment.ID)
	if err != nil {
		return nil, err
	}
	w.assessment = assessment
	return assessment, nil
}

// RefreshPayments reloads the payment list for the current assessment.
func (w *Workflow) RefreshPayments(ctx context.Context) error {
	if w.assessment == nil {
		return ErrNoAssessment
	}
	payments, err := w.payments.List(ctx, w.assessment.ID)
	if err != nil {
		return err
	}
	w.paid = payments
	return nil
}

// RemainingBalance returns netAmount minus the confirmed payment total.
func (w *Workflow) RemainingBalance() (float64, error) {
	if w.assessment == nil {
		return 0, ErrNoAssessment
	}
	return w.assessment.NetAmount - models.ConfirmedTotal(w.paid), nil
}

// RecordPayment submits a payment against the current assessment. Amounts
// exceeding the remaining balance are rejected before the wire call; the
// service enforces the same rule on confirmation.
func (w *Workflow) RecordPayment(ctx context.Context, amount float64, method models.PaymentMethod, referenceNumber string) (*models.Payment, error) {
	remaining, err := w.RemainingBalance()
	if err != nil {
		return nil, err
	}
	if amount > remaining {
		return nil, fmt.Errorf("%w: %.2f > %.2f", ErrExceedsBalance, amount, remaining)
	}

	payment, err := w.payments.Create(ctx, models.CreatePaymentRequest{
		AssessmentID:    w.assessment.ID,
		Amount:          amount,
		PaymentMethod:   string(method),
		ReferenceNumber: referenceNumber,
	})
	if err != nil {
		return nil, err
	}
	w.paid = append(w.paid, *payment)
	w.logger.Info("payment recorded", zap.Int64("id", payment.ID), zap.Float64("amount", payment.Amount))
	return payment, nil
}
