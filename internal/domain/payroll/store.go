package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"opsboard/internal/domain/faults"
	"opsboard/internal/platform/db"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// Store persists salary payments. The pending computations are pure reads
// and go through the retry policy; payment writes are never retried because
// a replayed INSERT or CAS is not idempotent at this layer.
type Store struct {
	DB    db.Queryer
	Retry db.RetryPolicy
}

func NewStore(q db.Queryer, retry db.RetryPolicy) *Store {
	return &Store{DB: q, Retry: retry}
}

const paymentColumns = "id, employee_id, month, amount, status, paid_at, created_at, updated_at"

// PendingBasis reads everything ComputePending needs in one statement, so
// rate, completed hours and paid total come from the same store snapshot.
func (s *Store) PendingBasis(ctx context.Context, employeeID, month string) (rate, hours, paidTotal float64, err error) {
	err = s.Retry.Do(ctx, func(ctx context.Context) error {
		var inner error
		rate, hours, paidTotal, inner = s.pendingBasis(ctx, employeeID, month)
		return inner
	})
	return rate, hours, paidTotal, err
}

func (s *Store) pendingBasis(ctx context.Context, employeeID, month string) (rate, hours, paidTotal float64, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT e.hourly_rate,
           COALESCE((SELECT SUM(w.hours) FROM work_logs w
                     WHERE w.employee_id = e.id AND w.status = 'completed'
                       AND date_trunc('month', w.work_date) = to_date($2 || '-01', 'YYYY-MM-DD')), 0),
           COALESCE((SELECT SUM(p.amount) FROM salary_payments p
                     WHERE p.employee_id = e.id AND p.month = $2 AND p.status = 'paid'), 0)
    FROM employees e
    WHERE e.id = $1
  `, employeeID, month).Scan(&rate, &hours, &paidTotal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, 0, fmt.Errorf("%w: employee %s", faults.ErrNotFound, employeeID)
	}
	return rate, hours, paidTotal, err
}

// InsertPayment creates a payment row. The partial unique index on
// (employee_id, month) WHERE status = 'paid' is the duplicate-payment
// guard; the caller never gets to race it.
func (s *Store) InsertPayment(ctx context.Context, employeeID, month string, amount float64, status PaymentStatus, paidAt *time.Time) (SalaryPayment, error) {
	var p SalaryPayment
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salary_payments (employee_id, month, amount, status, paid_at)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING `+paymentColumns+`
  `, employeeID, month, amount, status, paidAt).Scan(
		&p.ID, &p.EmployeeID, &p.Month, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return SalaryPayment{}, translatePaymentError(err, employeeID, month)
	}
	return p, nil
}

// MarkPaid promotes a pending payment with a compare-and-set; the unique
// index still rejects a second paid record for the period at commit time.
func (s *Store) MarkPaid(ctx context.Context, paymentID string, paidAt time.Time) (SalaryPayment, bool, error) {
	var p SalaryPayment
	err := s.DB.QueryRow(ctx, `
    UPDATE salary_payments
    SET status = 'paid', paid_at = $2, updated_at = now()
    WHERE id = $1 AND status = 'pending'
    RETURNING `+paymentColumns+`
  `, paymentID, paidAt).Scan(
		&p.ID, &p.EmployeeID, &p.Month, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryPayment{}, false, nil
	}
	if err != nil {
		return SalaryPayment{}, false, translatePaymentError(err, p.EmployeeID, p.Month)
	}
	return p, true, nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (SalaryPayment, error) {
	var p SalaryPayment
	err := s.DB.QueryRow(ctx, `
    SELECT `+paymentColumns+`
    FROM salary_payments
    WHERE id = $1
  `, paymentID).Scan(&p.ID, &p.EmployeeID, &p.Month, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryPayment{}, fmt.Errorf("%w: payment %s", faults.ErrNotFound, paymentID)
	}
	return p, err
}

func (s *Store) ListPayments(ctx context.Context, employeeID, month string, limit, offset int) ([]SalaryPayment, error) {
	query := "SELECT " + paymentColumns + " FROM salary_payments WHERE 1=1"
	var args []any
	if employeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, employeeID)
	}
	if month != "" {
		query += fmt.Sprintf(" AND month = $%d", len(args)+1)
		args = append(args, month)
	}
	query += fmt.Sprintf(" ORDER BY month DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []SalaryPayment
	for rows.Next() {
		var p SalaryPayment
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Month, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// PendingRows feeds ListPending: one grouped statement over active
// employees so the whole view reflects a single ledger snapshot.
func (s *Store) PendingRows(ctx context.Context, month string) ([]PendingSalary, error) {
	var out []PendingSalary
	err := s.Retry.Do(ctx, func(ctx context.Context) error {
		var inner error
		out, inner = s.pendingRows(ctx, month)
		return inner
	})
	return out, err
}

func (s *Store) pendingRows(ctx context.Context, month string) ([]PendingSalary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.name, e.hourly_rate, COALESCE(h.hours, 0), COALESCE(paid.total, 0)
    FROM employees e
    LEFT JOIN (
      SELECT employee_id, SUM(hours) AS hours
      FROM work_logs
      WHERE status = 'completed'
        AND date_trunc('month', work_date) = to_date($1 || '-01', 'YYYY-MM-DD')
      GROUP BY employee_id
    ) h ON h.employee_id = e.id
    LEFT JOIN (
      SELECT employee_id, SUM(amount) AS total
      FROM salary_payments
      WHERE month = $1 AND status = 'paid'
      GROUP BY employee_id
    ) paid ON paid.employee_id = e.id
    WHERE e.status = 'active'
    ORDER BY e.name, e.id
  `, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingSalary
	for rows.Next() {
		row := PendingSalary{Month: month}
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.Rate, &row.Hours, &row.PaidTotal); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReceiptData joins the payment with the employee for rendering.
func (s *Store) ReceiptData(ctx context.Context, paymentID string) (SalaryPayment, string, string, error) {
	var p SalaryPayment
	var name, email string
	err := s.DB.QueryRow(ctx, `
    SELECT p.id, p.employee_id, p.month, p.amount, p.status, p.paid_at, p.created_at, p.updated_at,
           e.name, e.email
    FROM salary_payments p
    JOIN employees e ON e.id = p.employee_id
    WHERE p.id = $1
  `, paymentID).Scan(&p.ID, &p.EmployeeID, &p.Month, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt, &name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryPayment{}, "", "", fmt.Errorf("%w: payment %s", faults.ErrNotFound, paymentID)
	}
	return p, name, email, err
}

func translatePaymentError(err error, employeeID, month string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: employee %s month %s", faults.ErrDuplicatePayment, employeeID, month)
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: employee %s", faults.ErrNotFound, employeeID)
	case checkViolationCode:
		return fmt.Errorf("%w: payment violates amount constraint", faults.ErrInvalidInput)
	default:
		return err
	}
}
