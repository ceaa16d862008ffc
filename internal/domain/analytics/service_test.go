package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/faults"
)

type fakeStore struct {
	overview    Overview
	overviewErr error
	byEmployee  []ProductivityRow
	byProject   []ProductivityRow
	lastMonth   string
}

func (f *fakeStore) Overview(ctx context.Context, month string) (Overview, error) {
	f.lastMonth = month
	return f.overview, f.overviewErr
}

func (f *fakeStore) ProductivityByEmployee(ctx context.Context, from, to time.Time) ([]ProductivityRow, error) {
	return f.byEmployee, nil
}

func (f *fakeStore) ProductivityByProject(ctx context.Context, from, to time.Time) ([]ProductivityRow, error) {
	return f.byProject, nil
}

var (
	admin    = auth.Actor{EmployeeID: "adm", Role: auth.RoleAdmin}
	employee = auth.Actor{EmployeeID: "e1", Role: auth.RoleEmployee}
)

func TestOverviewUsesCurrentMonth(t *testing.T) {
	store := &fakeStore{overview: Overview{Month: "2026-08"}}
	svc := NewService(store)
	svc.Now = func() time.Time { return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC) }

	got, err := svc.Overview(context.Background(), admin)
	if err != nil {
		t.Fatalf("Overview error: %v", err)
	}
	if store.lastMonth != "2026-08" {
		t.Fatalf("expected month 2026-08, got %s", store.lastMonth)
	}
	if got.Month != "2026-08" {
		t.Fatalf("unexpected overview: %+v", got)
	}
}

func TestOverviewRequiresAdmin(t *testing.T) {
	svc := NewService(&fakeStore{})
	_, err := svc.Overview(context.Background(), employee)
	if !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestProductivityGrouping(t *testing.T) {
	store := &fakeStore{
		byEmployee: []ProductivityRow{{Key: "e1", Name: "Ada", Hours: 40}},
		byProject:  []ProductivityRow{{Key: "p1", Name: "Tooling", Hours: 64}},
	}
	svc := NewService(store)
	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	rows, err := svc.Productivity(context.Background(), admin, from, to, GroupByEmployee)
	if err != nil || len(rows) != 1 || rows[0].Key != "e1" {
		t.Fatalf("unexpected employee rows: %v %v", rows, err)
	}
	rows, err = svc.Productivity(context.Background(), admin, from, to, GroupByProject)
	if err != nil || len(rows) != 1 || rows[0].Key != "p1" {
		t.Fatalf("unexpected project rows: %v %v", rows, err)
	}
}

func TestProductivityValidation(t *testing.T) {
	svc := NewService(&fakeStore{})
	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Productivity(context.Background(), employee, from, to, GroupByEmployee); !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Productivity(context.Background(), admin, from, to, GroupBy("team")); !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown grouping, got %v", err)
	}
	if _, err := svc.Productivity(context.Background(), admin, time.Time{}, to, GroupByEmployee); !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing from, got %v", err)
	}
	if _, err := svc.Productivity(context.Background(), admin, to, from, GroupByEmployee); !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
}
