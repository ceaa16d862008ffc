package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"opsboard/internal/platform/db"
)

// Store serves the dashboard aggregates. Every operation is a pure read,
// so all of them go through the retry policy for transient failures.
type Store struct {
	DB    db.Queryer
	Retry db.RetryPolicy
}

func NewStore(q db.Queryer, retry db.RetryPolicy) *Store {
	return &Store{DB: q, Retry: retry}
}

// Overview runs its three aggregates inside one repeatable-read read-only
// transaction, so the counts and the paid total reflect a single commit
// point even while writers are active.
func (s *Store) Overview(ctx context.Context, month string) (Overview, error) {
	var out Overview
	err := s.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.overview(ctx, month)
		return err
	})
	return out, err
}

func (s *Store) overview(ctx context.Context, month string) (Overview, error) {
	out := Overview{
		EmployeesByStatus: map[string]int{},
		ProjectsByStatus:  map[string]int{},
		Month:             month,
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return Overview{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT status, COUNT(1) FROM employees GROUP BY status`)
	if err != nil {
		return Overview{}, err
	}
	if err := scanCounts(rows, out.EmployeesByStatus); err != nil {
		return Overview{}, err
	}

	rows, err = tx.Query(ctx, `SELECT status, COUNT(1) FROM projects GROUP BY status`)
	if err != nil {
		return Overview{}, err
	}
	if err := scanCounts(rows, out.ProjectsByStatus); err != nil {
		return Overview{}, err
	}

	err = tx.QueryRow(ctx, `
    SELECT COALESCE(SUM(amount), 0)
    FROM salary_payments
    WHERE status = 'paid' AND month = $1
  `, month).Scan(&out.PaidThisMonth)
	if err != nil {
		return Overview{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func scanCounts(rows pgx.Rows, into map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return err
		}
		into[status] = count
	}
	return rows.Err()
}

// ProductivityByEmployee and ProductivityByProject are deliberately two
// statements instead of one with an interpolated column name.
func (s *Store) ProductivityByEmployee(ctx context.Context, from, to time.Time) ([]ProductivityRow, error) {
	return s.queryProductivity(ctx, `
    SELECT w.employee_id::text, e.name, COALESCE(SUM(w.hours), 0)
    FROM work_logs w
    JOIN employees e ON e.id = w.employee_id
    WHERE w.status = 'completed' AND w.work_date >= $1 AND w.work_date <= $2
    GROUP BY w.employee_id, e.name
    ORDER BY e.name, w.employee_id
  `, from, to)
}

func (s *Store) ProductivityByProject(ctx context.Context, from, to time.Time) ([]ProductivityRow, error) {
	return s.queryProductivity(ctx, `
    SELECT w.project_id::text, p.name, COALESCE(SUM(w.hours), 0)
    FROM work_logs w
    JOIN projects p ON p.id = w.project_id
    WHERE w.status = 'completed' AND w.work_date >= $1 AND w.work_date <= $2
    GROUP BY w.project_id, p.name
    ORDER BY p.name, w.project_id
  `, from, to)
}

func (s *Store) queryProductivity(ctx context.Context, query string, from, to time.Time) ([]ProductivityRow, error) {
	var out []ProductivityRow
	err := s.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.productivityOnce(ctx, query, from, to)
		return err
	})
	return out, err
}

func (s *Store) productivityOnce(ctx context.Context, query string, from, to time.Time) ([]ProductivityRow, error) {
	rows, err := s.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductivityRow
	for rows.Next() {
		var row ProductivityRow
		if err := rows.Scan(&row.Key, &row.Name, &row.Hours); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
