package models

import "time"

// PaymentMethod is the closed set of accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOnline       PaymentMethod = "online"
)

// PaymentStatus is the lifecycle of a payment: pending -> confirmed | cancelled,
// both terminal.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment references (does not own) an Assessment. Partial payments are
// allowed; the sum of confirmed payments never exceeds the assessment's
// net amount.
type Payment struct {
	ID              int64         `json:"id"`
	Assessment      int64         `json:"assessment"`
	Amount          float64       `json:"amount"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	ReferenceNumber string        `json:"referenceNumber,omitempty"`
	ReceivedBy      string        `json:"receivedBy"`
	CreatedAt       time.Time     `json:"createdAt"`
	Status          PaymentStatus `json:"status"`
}

// CreatePaymentRequest records a payment against an assessment.
type CreatePaymentRequest struct {
	AssessmentID    int64   `json:"assessmentId" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod   string  `json:"paymentMethod" validate:"required,oneof=cash card bank_transfer online"`
	ReferenceNumber string  `json:"referenceNumber,omitempty"`
}

// ConfirmedTotal sums confirmed payment amounts.
func ConfirmedTotal(payments []Payment) float64 {
	var total float64
	for _, p := range payments {
		if p.Status == PaymentStatusConfirmed {
			total += p.Amount
		}
	}
	return total
}
