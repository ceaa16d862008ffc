package assignment

import (
	"context"
	"errors"
	"fmt"

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

// Assign inserts the pair only while the employee is active and the project
// is not completed. The guard and the insert are one statement, so there is
// no window for the precondition to go stale. Returns false when nothing was
// inserted; the service diagnoses why.
func (s *Store) Assign(ctx context.Context, projectID, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO project_assignments (project_id, employee_id)
    SELECT p.id, e.id
    FROM projects p, employees e
    WHERE p.id = $1 AND e.id = $2
      AND p.status <> 'completed'
      AND e.status = 'active'
    ON CONFLICT (project_id, employee_id) DO NOTHING
  `, projectID, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Unassign removes the pair unless the employee still has in-progress work
// on the project.
func (s *Store) Unassign(ctx context.Context, projectID, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM project_assignments a
    WHERE a.project_id = $1 AND a.employee_id = $2
      AND NOT EXISTS (
        SELECT 1 FROM work_logs w
        WHERE w.project_id = $1 AND w.employee_id = $2 AND w.status = 'in_progress'
      )
  `, projectID, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
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

func (s *Store) EmployeeStatus(ctx context.Context, employeeID string) (core.EmployeeStatus, error) {
	var status core.EmployeeStatus
	err := s.DB.QueryRow(ctx, `SELECT status FROM employees WHERE id = $1`, employeeID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: employee %s", faults.ErrNotFound, employeeID)
	}
	return status, err
}

func (s *Store) ProjectStatus(ctx context.Context, projectID string) (core.ProjectStatus, error) {
	var status core.ProjectStatus
	err := s.DB.QueryRow(ctx, `SELECT status FROM projects WHERE id = $1`, projectID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: project %s", faults.ErrNotFound, projectID)
	}
	return status, err
}

// UpdateProjectStatus applies a compare-and-set against the allowed
// predecessor statuses so a concurrent transition cannot be overwritten.
func (s *Store) UpdateProjectStatus(ctx context.Context, projectID string, next core.ProjectStatus, preds []core.ProjectStatus) (bool, error) {
	allowed := make([]string, len(preds))
	for i, p := range preds {
		allowed[i] = string(p)
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET status = $2, updated_at = now()
    WHERE id = $1 AND status = ANY($3)
  `, projectID, next, allowed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
