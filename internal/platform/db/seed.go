package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed loads a small demo dataset for local development. It is gated by
// RUN_SEED and refused in production by config validation.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	employeeID, err := ensureEmployee(ctx, pool, "Ada Example", "ada@example.com", 40)
	if err != nil {
		return err
	}

	projectID, err := ensureProject(ctx, pool, "Internal Tooling")
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO project_assignments (project_id, employee_id)
    VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, projectID, employeeID)
	return err
}

func ensureEmployee(ctx context.Context, pool *pgxpool.Pool, name, email string, rate float64) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO employees (name, email, hourly_rate, status)
    VALUES ($1, $2, $3, 'active')
    RETURNING id
  `, name, email, rate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureProject(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM projects WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO projects (name, status)
    VALUES ($1, 'active')
    RETURNING id
  `, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
