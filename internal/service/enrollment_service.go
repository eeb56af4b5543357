package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
	apierrors "github.com/tandikan/enroll/pkg/errors"
)

// ScheduleCatalog is an optional read-through cache for available schedules.
type ScheduleCatalog interface {
	Get(ctx context.Context, yearLevel, semester int) ([]models.Schedule, bool)
	Set(ctx context.Context, yearLevel, semester int, schedules []models.Schedule)
}

// EnrollmentService exposes the enrollment operations of the remote API.
type EnrollmentService struct {
	gw        apiGateway
	catalog   ScheduleCatalog
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService. catalog may be nil;
// schedules then always come from the API.
func NewEnrollmentService(gw apiGateway, catalog ScheduleCatalog, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{gw: gw, catalog: catalog, validator: validate, logger: logger}
}

// List returns the enrollments visible to the caller.
func (s *EnrollmentService) List(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.gw.Get(ctx, "/enrollments/", &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Get fetches one enrollment by id.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.gw.Get(ctx, fmt.Sprintf("/enrollments/%d/", id), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Current fetches the caller's active enrollment. A 404 is the valid empty
// state and surfaces as ErrNoActiveEnrollment.
func (s *EnrollmentService) Current(ctx context.Context) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.gw.Get(ctx, "/enrollments/current/", &enrollment); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, ErrNoActiveEnrollment
		}
		return nil, err
	}
	return &enrollment, nil
}

// Create submits a new enrollment for the selected schedules.
func (s *EnrollmentService) Create(ctx context.Context, req models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	var enrollment models.Enrollment
	if err := s.gw.Post(ctx, "/enrollments/", req, &enrollment); err != nil {
		return nil, err
	}
	s.logger.Info("enrollment submitted",
		zap.Int64("id", enrollment.ID),
		zap.Int("subjects", len(enrollment.Subjects)),
		zap.Int("total_units", enrollment.TotalUnits),
	)
	return &enrollment, nil
}

// Update replaces the schedule set of a pending enrollment.
func (s *EnrollmentService) Update(ctx context.Context, id int64, req models.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	var enrollment models.Enrollment
	if err := s.gw.Put(ctx, fmt.Sprintf("/enrollments/%d/", id), req, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Approve transitions a pending enrollment to approved (registrar operation).
func (s *EnrollmentService) Approve(ctx context.Context, id int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.gw.Post(ctx, fmt.Sprintf("/enrollments/%d/approve/", id), struct{}{}, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Reject transitions a pending enrollment to rejected. The reason is
// mandatory and checked before any wire call.
func (s *EnrollmentService) Reject(ctx context.Context, id int64, reason string) (*models.Enrollment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}
	var enrollment models.Enrollment
	body := models.RejectEnrollmentRequest{Reason: reason}
	if err := s.gw.Post(ctx, fmt.Sprintf("/enrollments/%d/reject/", id), body, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// DropSubject drops one enrolled subject from an enrollment.
func (s *EnrollmentService) DropSubject(ctx context.Context, enrollmentID, subjectID int64) error {
	return s.gw.Delete(ctx, fmt.Sprintf("/enrollments/%d/subjects/%d/", enrollmentID, subjectID))
}

// AvailableSchedules lists offered sections for a year level and semester,
// served from the catalog cache when one is wired. Cache errors fail open.
func (s *EnrollmentService) AvailableSchedules(ctx context.Context, yearLevel, semester int) ([]models.Schedule, error) {
	if s.catalog != nil {
		if schedules, ok := s.catalog.Get(ctx, yearLevel, semester); ok {
			return schedules, nil
		}
	}

	var schedules []models.Schedule
	path := fmt.Sprintf("/schedules/?year_level=%d&semester=%d", yearLevel, semester)
	if err := s.gw.Get(ctx, path, &schedules); err != nil {
		return nil, err
	}

	if s.catalog != nil {
		s.catalog.Set(ctx, yearLevel, semester, schedules)
	}
	return schedules, nil
}
