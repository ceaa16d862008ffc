package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"opsboard/internal/platform/db"
)

func TestStoreOverviewSingleSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock, db.RetryPolicy{})

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(`SELECT status, COUNT\(1\) FROM employees GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("active", 3).
			AddRow("inactive", 1))
	mock.ExpectQuery(`SELECT status, COUNT\(1\) FROM projects GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("active", 2))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs("2026-08").
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(2500.0))
	mock.ExpectCommit()
	mock.ExpectRollback()

	got, err := store.Overview(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("Overview error: %v", err)
	}
	if got.EmployeesByStatus["active"] != 3 || got.EmployeesByStatus["inactive"] != 1 {
		t.Fatalf("unexpected employee counts: %+v", got.EmployeesByStatus)
	}
	if got.ProjectsByStatus["active"] != 2 {
		t.Fatalf("unexpected project counts: %+v", got.ProjectsByStatus)
	}
	if got.PaidThisMonth != 2500 {
		t.Fatalf("expected 2500 paid, got %v", got.PaidThisMonth)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreProductivityByEmployee(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock, db.RetryPolicy{})
	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT w\.employee_id::text, e\.name`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"key", "name", "hours"}).
			AddRow("e1", "Ada", 40.0).
			AddRow("e2", "Bob", 12.5))

	rows, err := store.ProductivityByEmployee(context.Background(), from, to)
	if err != nil {
		t.Fatalf("ProductivityByEmployee error: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "Ada" || rows[0].Hours != 40 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
