package worklog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"opsboard/internal/domain/faults"
)

var submitQuery = regexp.QuoteMeta(`
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
    RETURNING ` + workLogColumns + `
  `)

func TestStoreSubmitReturnsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	date := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "employee_id", "project_id", "work_date", "hours", "task", "status", "created_at", "updated_at"}).
		AddRow("w1", "e1", "p1", date, 8.0, "build", StatusPending, now, now)
	mock.ExpectQuery(submitQuery).
		WithArgs("e1", "p1", date, 8.0, "build").
		WillReturnRows(rows)

	got, err := store.Submit(context.Background(), "e1", "p1", date, 8, "build")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if got == nil || got.ID != "w1" || got.Status != StatusPending {
		t.Fatalf("unexpected log: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreSubmitGuardRefusal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	date := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(submitQuery).
		WithArgs("e1", "p1", date, 8.0, "build").
		WillReturnError(pgx.ErrNoRows)

	got, err := store.Submit(context.Background(), "e1", "p1", date, 8, "build")
	if err != nil {
		t.Fatalf("expected refusal to be nil error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil log on refusal, got %+v", got)
	}
}

func TestStoreTransitionCAS(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	query := regexp.QuoteMeta(`
    UPDATE work_logs
    SET status = $3, updated_at = now()
    WHERE id = $1 AND status = $2
  `)

	mock.ExpectExec(query).
		WithArgs("w1", StatusPending, StatusInProgress).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	updated, err := store.Transition(context.Background(), "w1", StatusPending, StatusInProgress)
	if err != nil || !updated {
		t.Fatalf("expected CAS to win: %v %v", updated, err)
	}

	mock.ExpectExec(query).
		WithArgs("w1", StatusPending, StatusInProgress).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	updated, err = store.Transition(context.Background(), "w1", StatusPending, StatusInProgress)
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if updated {
		t.Fatal("expected CAS to lose when status moved")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`
    SELECT ` + workLogColumns + `
    FROM work_logs
    WHERE id = $1
  `)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Get(context.Background(), "missing")
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListForEmployeeRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	query := regexp.QuoteMeta("SELECT " + workLogColumns + " FROM work_logs WHERE employee_id = $1 AND work_date >= $2 AND work_date <= $3 ORDER BY work_date DESC, id LIMIT $4 OFFSET $5")
	rows := pgxmock.NewRows([]string{"id", "employee_id", "project_id", "work_date", "hours", "task", "status", "created_at", "updated_at"}).
		AddRow("w2", "e1", "p1", to.AddDate(0, 0, -1), 4.0, "review", StatusCompleted, now, now).
		AddRow("w1", "e1", "p1", from, 8.0, "build", StatusCompleted, now, now)

	mock.ExpectQuery(query).
		WithArgs("e1", from, to, 20, 0).
		WillReturnRows(rows)

	logs, err := store.ListForEmployee(context.Background(), "e1", from, to, 20, 0)
	if err != nil {
		t.Fatalf("ListForEmployee error: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != "w2" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
