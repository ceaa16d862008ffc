package payroll

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/faults"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type StoreAPI interface {
	PendingBasis(ctx context.Context, employeeID, month string) (rate, hours, paidTotal float64, err error)
	InsertPayment(ctx context.Context, employeeID, month string, amount float64, status PaymentStatus, paidAt *time.Time) (SalaryPayment, error)
	MarkPaid(ctx context.Context, paymentID string, paidAt time.Time) (SalaryPayment, bool, error)
	GetPayment(ctx context.Context, paymentID string) (SalaryPayment, error)
	ListPayments(ctx context.Context, employeeID, month string, limit, offset int) ([]SalaryPayment, error)
	PendingRows(ctx context.Context, month string) ([]PendingSalary, error)
	ReceiptData(ctx context.Context, paymentID string) (SalaryPayment, string, string, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// ComputePending derives the owed amount for one employee and month. It is
// a pure read: calling it twice without ledger changes returns the same
// figure, and it never accepts hours as input.
func (s *Service) ComputePending(ctx context.Context, actor auth.Actor, employeeID, month string) (PendingSalary, error) {
	if !actor.CanActFor(employeeID) {
		return PendingSalary{}, fmt.Errorf("%w: cannot read another employee's pending salary", faults.ErrForbidden)
	}
	if err := ValidateMonth(month); err != nil {
		return PendingSalary{}, err
	}

	rate, hours, paidTotal, err := s.Store.PendingBasis(ctx, employeeID, month)
	if err != nil {
		return PendingSalary{}, err
	}
	return PendingSalary{
		EmployeeID: employeeID,
		Month:      month,
		Hours:      hours,
		Rate:       rate,
		PaidTotal:  paidTotal,
		Amount:     ComputeOwed(hours, rate, paidTotal),
	}, nil
}

// RecordPayment writes a paid record for the period. The amount may be an
// admin override of the computed figure; the one-paid-record-per-period
// constraint applies regardless. A duplicate is a rejection, never a retry.
func (s *Service) RecordPayment(ctx context.Context, actor auth.Actor, employeeID, month string, amount float64, paidAt time.Time) (SalaryPayment, error) {
	if !actor.IsAdmin() {
		return SalaryPayment{}, fmt.Errorf("%w: recording payments requires admin", faults.ErrForbidden)
	}
	if err := ValidateMonth(month); err != nil {
		return SalaryPayment{}, err
	}
	if amount < 0 {
		return SalaryPayment{}, fmt.Errorf("%w: amount must not be negative", faults.ErrInvalidInput)
	}
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	return s.Store.InsertPayment(ctx, employeeID, month, amount, PaymentPaid, &paidAt)
}

// SchedulePayment creates a pending record that MarkPaid later promotes.
// Pending records do not count toward the per-period uniqueness key.
func (s *Service) SchedulePayment(ctx context.Context, actor auth.Actor, employeeID, month string, amount float64) (SalaryPayment, error) {
	if !actor.IsAdmin() {
		return SalaryPayment{}, fmt.Errorf("%w: scheduling payments requires admin", faults.ErrForbidden)
	}
	if err := ValidateMonth(month); err != nil {
		return SalaryPayment{}, err
	}
	if amount < 0 {
		return SalaryPayment{}, fmt.Errorf("%w: amount must not be negative", faults.ErrInvalidInput)
	}
	return s.Store.InsertPayment(ctx, employeeID, month, amount, PaymentPending, nil)
}

func (s *Service) MarkPaid(ctx context.Context, actor auth.Actor, paymentID string, paidAt time.Time) (SalaryPayment, error) {
	if !actor.IsAdmin() {
		return SalaryPayment{}, fmt.Errorf("%w: marking payments paid requires admin", faults.ErrForbidden)
	}
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	payment, updated, err := s.Store.MarkPaid(ctx, paymentID, paidAt)
	if err != nil {
		return SalaryPayment{}, err
	}
	if updated {
		return payment, nil
	}

	current, err := s.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return SalaryPayment{}, err
	}
	if !current.Status.CanTransitionTo(PaymentPaid) {
		return SalaryPayment{}, fmt.Errorf("%w: payment status %s -> %s", faults.ErrInvalidTransition, current.Status, PaymentPaid)
	}
	// Still pending on re-read: the CAS lost a race with a concurrent writer.
	return SalaryPayment{}, fmt.Errorf("%w: payment %s changed concurrently", faults.ErrInvalidTransition, paymentID)
}

// ListPending is the admin view: every active employee with a nonzero owed
// amount for the month, out of one store snapshot.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor, month string) ([]PendingSalary, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: listing pending salaries requires admin", faults.ErrForbidden)
	}
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}

	rows, err := s.Store.PendingRows(ctx, month)
	if err != nil {
		return nil, err
	}

	out := make([]PendingSalary, 0, len(rows))
	for _, row := range rows {
		row.Amount = ComputeOwed(row.Hours, row.Rate, row.PaidTotal)
		if row.Amount > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Service) ListPayments(ctx context.Context, actor auth.Actor, employeeID, month string, limit, offset int) ([]SalaryPayment, error) {
	if employeeID == "" && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: listing all payments requires admin", faults.ErrForbidden)
	}
	if employeeID != "" && !actor.CanActFor(employeeID) {
		return nil, fmt.Errorf("%w: cannot list another employee's payments", faults.ErrForbidden)
	}
	if month != "" {
		if err := ValidateMonth(month); err != nil {
			return nil, err
		}
	}
	return s.Store.ListPayments(ctx, employeeID, month, limit, offset)
}

func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return fmt.Errorf("%w: month must be formatted YYYY-MM", faults.ErrInvalidInput)
	}
	return nil
}

// CurrentMonth is the default period key for views that take none.
func CurrentMonth(now time.Time) string {
	return now.UTC().Format("2006-01")
}
