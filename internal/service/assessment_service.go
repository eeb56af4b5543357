package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
)

// AssessmentService exposes the fee assessment operations of the remote API.
// Assessments are always server-computed; this service never derives amounts.
type AssessmentService struct {
	gw        apiGateway
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(gw apiGateway, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{gw: gw, validator: validate, logger: logger}
}

// List returns the assessments visible to the caller.
func (s *AssessmentService) List(ctx context.Context) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := s.gw.Get(ctx, "/assessments/", &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

// Get fetches one assessment by id.
func (s *AssessmentService) Get(ctx context.Context, id int64) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := s.gw.Get(ctx, fmt.Sprintf("/assessments/%d/", id), &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// ForEnrollment fetches the assessment owned by an enrollment. A 404 keeps
// its not-found identity so callers can treat "not yet assessed" as empty.
func (s *AssessmentService) ForEnrollment(ctx context.Context, enrollmentID int64) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := s.gw.Get(ctx, fmt.Sprintf("/assessments/enrollment/%d/", enrollmentID), &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// Create asks the service to assess an enrollment.
func (s *AssessmentService) Create(ctx context.Context, enrollmentID int64) (*models.Assessment, error) {
	req := models.CreateAssessmentRequest{EnrollmentID: enrollmentID}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	var assessment models.Assessment
	if err := s.gw.Post(ctx, "/assessments/", req, &assessment); err != nil {
		return nil, err
	}
	s.logger.Info("assessment created",
		zap.Int64("id", assessment.ID),
		zap.Int64("enrollment", assessment.Enrollment),
		zap.Float64("net_amount", assessment.NetAmount),
	)
	return &assessment, nil
}

// Approve transitions a pending assessment to approved.
func (s *AssessmentService) Approve(ctx context.Context, id int64) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := s.gw.Post(ctx, fmt.Sprintf("/assessments/%d/approve/", id), struct{}{}, &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}
