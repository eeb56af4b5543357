package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandikan/enroll/internal/models"
)

func sampleAssessment() models.Assessment {
	return models.Assessment{
		ID:         7,
		Enrollment: 42,
		Items: []models.FeeItem{
			{Name: "Tuition (6 units)", Category: models.FeeCategoryTuition, Amount: 3000},
			{Name: "Miscellaneous", Category: models.FeeCategoryMiscellaneous, Amount: 300},
		},
		TotalAmount:    3300,
		DiscountAmount: 300,
		NetAmount:      3000,
		Status:         models.AssessmentStatusApproved,
	}
}

func TestAssessmentStatementCSV(t *testing.T) {
	data := AssessmentStatement(sampleAssessment())
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	rendered := string(out)
	assert.True(t, strings.HasPrefix(rendered, "Item,Category,Amount\n"))
	assert.Contains(t, rendered, "Tuition (6 units),tuition,3000.00")
	assert.Contains(t, rendered, "Net Amount Due,,3000.00")

	// Summary lines render after every itemized charge.
	assert.Greater(t, strings.Index(rendered, "Net Amount Due"), strings.Index(rendered, "Miscellaneous"))
}

func TestStatementSummaryGoesIntoFooter(t *testing.T) {
	data := AssessmentStatement(sampleAssessment())
	assert.Len(t, data.Rows, 2)
	require.Len(t, data.Footer, 3)
	assert.Equal(t, "Net Amount Due", data.Footer[2]["Item"])
}

func TestAssessmentStatementPDF(t *testing.T) {
	data := AssessmentStatement(sampleAssessment())
	out, err := NewPDFExporter().Render(data, "Statement of Account")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPaymentReceiptIncludesReferenceOnlyWhenPresent(t *testing.T) {
	payment := models.Payment{
		ID:            3,
		Assessment:    7,
		Amount:        1500,
		PaymentMethod: models.PaymentMethodBankTransfer,
		ReceivedBy:    "cashier@uni.edu",
		CreatedAt:     time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Status:        models.PaymentStatusConfirmed,
	}

	data := PaymentReceipt(payment, sampleAssessment())
	var fields []string
	for _, row := range data.Rows {
		fields = append(fields, row["Field"])
	}
	assert.NotContains(t, fields, "Reference No.")

	payment.ReferenceNumber = "BT-555"
	data = PaymentReceipt(payment, sampleAssessment())
	fields = fields[:0]
	for _, row := range data.Rows {
		fields = append(fields, row["Field"])
	}
	assert.Contains(t, fields, "Reference No.")
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	require.Error(t, err)
}
