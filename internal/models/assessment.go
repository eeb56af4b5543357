package models

import "time"

// FeeCategory classifies a fee item.
type FeeCategory string

const (
	FeeCategoryTuition       FeeCategory = "tuition"
	FeeCategoryLaboratory    FeeCategory = "laboratory"
	FeeCategoryMiscellaneous FeeCategory = "miscellaneous"
	FeeCategoryOther         FeeCategory = "other"
)

// FeeItem is a named non-negative charge on an assessment.
type FeeItem struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Amount      float64     `json:"amount"`
	Category    FeeCategory `json:"category"`
}

// AssessmentStatus is the lifecycle of an assessment: pending -> approved -> paid.
type AssessmentStatus string

const (
	AssessmentStatusPending  AssessmentStatus = "pending"
	AssessmentStatusApproved AssessmentStatus = "approved"
	AssessmentStatusPaid     AssessmentStatus = "paid"
)

// Assessment is the authoritative, server-computed fee breakdown for one
// enrollment. Invariants: TotalAmount = sum of item amounts;
// NetAmount = TotalAmount - DiscountAmount >= 0.
type Assessment struct {
	ID             int64            `json:"id"`
	Enrollment     int64            `json:"enrollment"`
	Items          []FeeItem        `json:"items"`
	TotalAmount    float64          `json:"totalAmount"`
	DiscountAmount float64          `json:"discountAmount"`
	NetAmount      float64          `json:"netAmount"`
	Status         AssessmentStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty"`
}

// CreateAssessmentRequest asks the service to assess an enrollment.
type CreateAssessmentRequest struct {
	EnrollmentID int64 `json:"enrollmentId" validate:"required"`
}
