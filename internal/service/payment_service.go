package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
)

// PaymentService exposes the payment operations of the remote API.
type PaymentService struct {
	gw        apiGateway
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(gw apiGateway, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{gw: gw, validator: validate, logger: logger}
}

// Create records a payment against an assessment. The server decides whether
// the amount fits the remaining balance; workflow callers additionally guard
// before submitting.
func (s *PaymentService) Create(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	var payment models.Payment
	if err := s.gw.Post(ctx, "/payments/", req, &payment); err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.Int64("id", payment.ID),
		zap.Int64("assessment", payment.Assessment),
		zap.Float64("amount", payment.Amount),
	)
	return &payment, nil
}

// List returns payments, optionally filtered to one assessment.
// assessmentID 0 means unfiltered.
func (s *PaymentService) List(ctx context.Context, assessmentID int64) ([]models.Payment, error) {
	path := "/payments/"
	if assessmentID != 0 {
		path = fmt.Sprintf("/payments/?assessment=%d", assessmentID)
	}
	var payments []models.Payment
	if err := s.gw.Get(ctx, path, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// Confirm transitions a pending payment to confirmed (cashier operation).
func (s *PaymentService) Confirm(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	if err := s.gw.Post(ctx, fmt.Sprintf("/payments/%d/confirm/", id), struct{}{}, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
