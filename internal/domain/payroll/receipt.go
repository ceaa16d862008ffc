package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/faults"
)

// GenerateReceiptPDF renders a payment receipt and returns the file path.
// Employees may fetch their own receipts, admins any.
func (s *Service) GenerateReceiptPDF(ctx context.Context, actor auth.Actor, receiptDir, paymentID string) (string, error) {
	payment, name, email, err := s.Store.ReceiptData(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if !actor.CanActFor(payment.EmployeeID) {
		return "", fmt.Errorf("%w: cannot fetch another employee's receipt", faults.ErrForbidden)
	}
	if payment.Status != PaymentPaid {
		return "", fmt.Errorf("%w: receipt requires a paid payment", faults.ErrInvalidTransition)
	}

	if err := os.MkdirAll(receiptDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(receiptDir, payment.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary Payment Receipt")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", payment.Month))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Amount: %.2f", payment.Amount))
	if payment.PaidAt != nil {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Paid on: %s", payment.PaidAt.Format("2006-01-02")))
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
