package worklog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/core"
	"opsboard/internal/domain/faults"
)

type StoreAPI interface {
	Submit(ctx context.Context, employeeID, projectID string, date time.Time, hours float64, task string) (*WorkLog, error)
	Get(ctx context.Context, workLogID string) (WorkLog, error)
	Transition(ctx context.Context, workLogID string, from, to Status) (bool, error)
	ListForEmployee(ctx context.Context, employeeID string, from, to time.Time, limit, offset int) ([]WorkLog, error)
	ListAll(ctx context.Context, filter Filter, limit, offset int) ([]WorkLog, error)
	EmployeeStatus(ctx context.Context, employeeID string) (core.EmployeeStatus, error)
	ProjectExists(ctx context.Context, projectID string) (bool, error)
	IsAssigned(ctx context.Context, projectID, employeeID string) (bool, error)
	CurrentDate(ctx context.Context) (time.Time, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// Submit records a new pending entry. The store's guarded insert enforces
// assignment-before-log and the ledger clock; this method only classifies
// refusals into the error taxonomy.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, employeeID, projectID string, date time.Time, hours float64, task string) (WorkLog, error) {
	if !actor.CanActFor(employeeID) {
		return WorkLog{}, fmt.Errorf("%w: cannot log work for another employee", faults.ErrForbidden)
	}
	if hours <= 0 {
		return WorkLog{}, fmt.Errorf("%w: hours must be positive", faults.ErrInvalidInput)
	}
	if date.IsZero() {
		return WorkLog{}, fmt.Errorf("%w: date is required", faults.ErrInvalidInput)
	}
	if strings.TrimSpace(task) == "" {
		return WorkLog{}, fmt.Errorf("%w: task is required", faults.ErrInvalidInput)
	}

	created, err := s.Store.Submit(ctx, employeeID, projectID, date, hours, task)
	if err != nil {
		return WorkLog{}, err
	}
	if created != nil {
		return *created, nil
	}
	return WorkLog{}, s.classifySubmitRefusal(ctx, employeeID, projectID, date)
}

func (s *Service) classifySubmitRefusal(ctx context.Context, employeeID, projectID string, date time.Time) error {
	employeeStatus, err := s.Store.EmployeeStatus(ctx, employeeID)
	if err != nil {
		return err
	}
	if employeeStatus != core.EmployeeActive {
		return fmt.Errorf("%w: employee %s is inactive", faults.ErrInvalidTransition, employeeID)
	}

	exists, err := s.Store.ProjectExists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: project %s", faults.ErrNotFound, projectID)
	}

	today, err := s.Store.CurrentDate(ctx)
	if err != nil {
		return err
	}
	// Compare calendar days; the guard itself casts to date.
	if date.Format("2006-01-02") > today.Format("2006-01-02") {
		return fmt.Errorf("%w: date %s is in the future", faults.ErrInvalidInput, date.Format("2006-01-02"))
	}

	assigned, err := s.Store.IsAssigned(ctx, projectID, employeeID)
	if err != nil {
		return err
	}
	if !assigned {
		return fmt.Errorf("%w: employee %s on project %s", faults.ErrNotAssigned, employeeID, projectID)
	}
	return fmt.Errorf("%w: work log rejected", faults.ErrInvalidInput)
}

// Transition moves a log forward along its lattice. Employee actors may only
// move their own logs; admins may move any.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, workLogID string, next Status) (WorkLog, error) {
	if !next.Valid() {
		return WorkLog{}, fmt.Errorf("%w: unknown work log status %q", faults.ErrInvalidInput, next)
	}

	current, err := s.Store.Get(ctx, workLogID)
	if err != nil {
		return WorkLog{}, err
	}
	if !actor.CanActFor(current.EmployeeID) {
		return WorkLog{}, fmt.Errorf("%w: cannot transition another employee's work log", faults.ErrForbidden)
	}
	if !current.Status.CanTransitionTo(next) {
		return WorkLog{}, fmt.Errorf("%w: work log status %s -> %s", faults.ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.Store.Transition(ctx, workLogID, current.Status, next)
	if err != nil {
		return WorkLog{}, err
	}
	if !updated {
		// Lost a race: the row moved between the read and the CAS.
		return WorkLog{}, fmt.Errorf("%w: work log status changed concurrently", faults.ErrInvalidTransition)
	}
	current.Status = next
	return current, nil
}

func (s *Service) ListForEmployee(ctx context.Context, actor auth.Actor, employeeID string, from, to time.Time, limit, offset int) ([]WorkLog, error) {
	if !actor.CanActFor(employeeID) {
		return nil, fmt.Errorf("%w: cannot list another employee's work logs", faults.ErrForbidden)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: date range is inverted", faults.ErrInvalidInput)
	}
	return s.Store.ListForEmployee(ctx, employeeID, from, to, limit, offset)
}

func (s *Service) ListAll(ctx context.Context, actor auth.Actor, filter Filter, limit, offset int) ([]WorkLog, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: listing all work logs requires admin", faults.ErrForbidden)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown work log status %q", faults.ErrInvalidInput, filter.Status)
	}
	return s.Store.ListAll(ctx, filter, limit, offset)
}
