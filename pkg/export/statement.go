package export

import (
	"fmt"

	"github.com/tandikan/enroll/internal/models"
)

// AssessmentStatement builds the fee breakdown table for one assessment.
// The total, discount and net lines go into the footer so exporters can set
// them apart from the itemized charges.
func AssessmentStatement(assessment models.Assessment) Dataset {
	headers := []string{"Item", "Category", "Amount"}
	rows := make([]map[string]string, 0, len(assessment.Items))
	for _, item := range assessment.Items {
		rows = append(rows, map[string]string{
			"Item":     item.Name,
			"Category": string(item.Category),
			"Amount":   formatAmount(item.Amount),
		})
	}
	footer := []map[string]string{
		{"Item": "Total", "Category": "", "Amount": formatAmount(assessment.TotalAmount)},
		{"Item": "Discount", "Category": "", "Amount": formatAmount(assessment.DiscountAmount)},
		{"Item": "Net Amount Due", "Category": "", "Amount": formatAmount(assessment.NetAmount)},
	}
	return Dataset{Headers: headers, Rows: rows, Footer: footer}
}

// PaymentReceipt builds the receipt table for one payment against its
// assessment.
func PaymentReceipt(payment models.Payment, assessment models.Assessment) Dataset {
	headers := []string{"Field", "Value"}
	rows := []map[string]string{
		{"Field": "Receipt No.", "Value": fmt.Sprintf("PAY-%d", payment.ID)},
		{"Field": "Assessment", "Value": fmt.Sprintf("%d", assessment.ID)},
		{"Field": "Amount", "Value": formatAmount(payment.Amount)},
		{"Field": "Method", "Value": string(payment.PaymentMethod)},
		{"Field": "Status", "Value": string(payment.Status)},
		{"Field": "Received By", "Value": payment.ReceivedBy},
		{"Field": "Date", "Value": payment.CreatedAt.Format("2006-01-02 15:04")},
	}
	if payment.ReferenceNumber != "" {
		rows = append(rows, map[string]string{"Field": "Reference No.", "Value": payment.ReferenceNumber})
	}
	return Dataset{Headers: headers, Rows: rows}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
