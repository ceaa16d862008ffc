package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"opsboard/internal/domain/faults"
	"opsboard/internal/platform/db"
)

const uniqueViolationCode = "23505"

type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

func (s *Store) CreateEmployee(ctx context.Context, name, email string, hourlyRate float64) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (name, email, hourly_rate, status)
    VALUES ($1, $2, $3, 'active')
    RETURNING id, name, email, hourly_rate, status, created_at, updated_at
  `, name, email, hourlyRate).Scan(&e.ID, &e.Name, &e.Email, &e.HourlyRate, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Employee{}, fmt.Errorf("%w: email already registered", faults.ErrInvalidInput)
		}
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, hourly_rate, status, created_at, updated_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&e.ID, &e.Name, &e.Email, &e.HourlyRate, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: employee %s", faults.ErrNotFound, employeeID)
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, email, hourly_rate, status, created_at, updated_at
    FROM employees
    ORDER BY name, id
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.HourlyRate, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) SetEmployeeStatus(ctx context.Context, employeeID string, status EmployeeStatus) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET status = $2, updated_at = now()
    WHERE id = $1
  `, employeeID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %s", faults.ErrNotFound, employeeID)
	}
	return nil
}

func (s *Store) CreateProject(ctx context.Context, name string) (Project, error) {
	var p Project
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (name, status)
    VALUES ($1, 'planned')
    RETURNING id, name, status, created_at, updated_at
  `, name).Scan(&p.ID, &p.Name, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	p.AssignedEmployees = []string{}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, projectID string) (Project, error) {
	var p Project
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, status, created_at, updated_at
    FROM projects
    WHERE id = $1
  `, projectID).Scan(&p.ID, &p.Name, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: project %s", faults.ErrNotFound, projectID)
	}
	if err != nil {
		return Project{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT employee_id
    FROM project_assignments
    WHERE project_id = $1
    ORDER BY employee_id
  `, projectID)
	if err != nil {
		return Project{}, err
	}
	defer rows.Close()

	p.AssignedEmployees = []string{}
	for rows.Next() {
		var employeeID string
		if err := rows.Scan(&employeeID); err != nil {
			return Project{}, err
		}
		p.AssignedEmployees = append(p.AssignedEmployees, employeeID)
	}
	return p, rows.Err()
}

func (s *Store) ListProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.name, p.status, p.created_at, p.updated_at,
           COALESCE(array_agg(a.employee_id::text ORDER BY a.employee_id) FILTER (WHERE a.employee_id IS NOT NULL), '{}')
    FROM projects p
    LEFT JOIN project_assignments a ON a.project_id = p.id
    GROUP BY p.id
    ORDER BY p.name, p.id
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.AssignedEmployees); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
