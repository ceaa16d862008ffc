package worklog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"opsboard/internal/domain/core"
	"opsboard/internal/domain/faults"
	"opsboard/internal/platform/db"
)

type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

const workLogColumns = "id, employee_id, project_id, work_date, hours, task, status, created_at, updated_at"

// Submit creates the entry in one guarded statement: the assignment check,
// the active-employee check, and the future-date check all ride on the same
// snapshot as the insert. A nil result with nil error means the guard
// refused; the service classifies why.
func (s *Store) Submit(ctx context.Context, employeeID, projectID string, date time.Time, hours float64, task string) (*WorkLog, error) {
	var w WorkLog
	err := s.DB.QueryRow(ctx, `
    INSERT INTO work_logs (employee_id, project_id, work_date, hours, task, status)
    SELECT e.id, p.id, $3, $4, $5, 'pending'
    FROM employees e, projects p
    WHERE e.id = $1 AND p.id = $2
      AND e.status = 'active'
      AND $3::date <= CURRENT_DATE
      AND EXISTS (
        SELECT 1 FROM project_assignments a
        WHERE a.project_id = $2 AND a.employee_id = $1
      )
    RETURNING `+workLogColumns+`
  `, employeeID, projectID, date, hours, task).Scan(
		&w.ID, &w.EmployeeID, &w.ProjectID, &w.Date, &w.Hours, &w.Task, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) Get(ctx context.Context, workLogID string) (WorkLog, error) {
	var w WorkLog
	err := s.DB.QueryRow(ctx, `
    SELECT `+workLogColumns+`
    FROM work_logs
    WHERE id = $1
  `, workLogID).Scan(&w.ID, &w.EmployeeID, &w.ProjectID, &w.Date, &w.Hours, &w.Task, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorkLog{}, fmt.Errorf("%w: work log %s", faults.ErrNotFound, workLogID)
	}
	if err != nil {
		return WorkLog{}, err
	}
	return w, nil
}

// Transition is a compare-and-set on the expected current status, so two
// concurrent transitions cannot both win.
func (s *Store) Transition(ctx context.Context, workLogID string, from, to Status) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE work_logs
    SET status = $3, updated_at = now()
    WHERE id = $1 AND status = $2
  `, workLogID, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time, limit, offset int) ([]WorkLog, error) {
	query := "SELECT " + workLogColumns + " FROM work_logs WHERE employee_id = $1"
	args := []any{employeeID}
	if !from.IsZero() {
		query += fmt.Sprintf(" AND work_date >= $%d", len(args)+1)
		args = append(args, from)
	}
	if !to.IsZero() {
		query += fmt.Sprintf(" AND work_date <= $%d", len(args)+1)
		args = append(args, to)
	}
	query += fmt.Sprintf(" ORDER BY work_date DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return s.queryLogs(ctx, query, args)
}

func (s *Store) ListAll(ctx context.Context, filter Filter, limit, offset int) ([]WorkLog, error) {
	query := "SELECT " + workLogColumns + " FROM work_logs WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if filter.ProjectID != "" {
		query += fmt.Sprintf(" AND project_id = $%d", len(args)+1)
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND work_date >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND work_date <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	query += fmt.Sprintf(" ORDER BY work_date DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return s.queryLogs(ctx, query, args)
}

func (s *Store) queryLogs(ctx context.Context, query string, args []any) ([]WorkLog, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []WorkLog
	for rows.Next() {
		var w WorkLog
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.ProjectID, &w.Date, &w.Hours, &w.Task, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, w)
	}
	return logs, rows.Err()
}

func (s *Store) EmployeeStatus(ctx context.Context, employeeID string) (core.EmployeeStatus, error) {
	var status core.EmployeeStatus
	err := s.DB.QueryRow(ctx, `SELECT status FROM employees WHERE id = $1`, employeeID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: employee %s", faults.ErrNotFound, employeeID)
	}
	return status, err
}

func (s *Store) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists)
	return exists, err
}

func (s *Store) IsAssigned(ctx context.Context, projectID, employeeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM project_assignments
      WHERE project_id = $1 AND employee_id = $2
    )
  `, projectID, employeeID).Scan(&exists)
	return exists, err
}

// CurrentDate is the ledger's logical clock, read from the store so all
// instances agree on "today".
func (s *Store) CurrentDate(ctx context.Context) (time.Time, error) {
	var today time.Time
	err := s.DB.QueryRow(ctx, `SELECT CURRENT_DATE`).Scan(&today)
	return today, err
}
