package analytics

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/faults"
	"opsboard/internal/domain/payroll"
)

type StoreAPI interface {
	Overview(ctx context.Context, month string) (Overview, error)
	ProductivityByEmployee(ctx context.Context, from, to time.Time) ([]ProductivityRow, error)
	ProductivityByProject(ctx context.Context, from, to time.Time) ([]ProductivityRow, error)
}

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) Overview(ctx context.Context, actor auth.Actor) (Overview, error) {
	if !actor.IsAdmin() {
		return Overview{}, fmt.Errorf("%w: overview requires admin", faults.ErrForbidden)
	}
	return s.Store.Overview(ctx, payroll.CurrentMonth(s.Now()))
}

// Productivity sums completed hours per grouping key over the date range.
// The read is cancellable through ctx and touches nothing, so a timeout can
// never leave partial writes.
func (s *Service) Productivity(ctx context.Context, actor auth.Actor, from, to time.Time, groupBy GroupBy) ([]ProductivityRow, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: productivity requires admin", faults.ErrForbidden)
	}
	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: groupBy must be employee or project", faults.ErrInvalidInput)
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from and to are required", faults.ErrInvalidInput)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range is inverted", faults.ErrInvalidInput)
	}

	if groupBy == GroupByProject {
		return s.Store.ProductivityByProject(ctx, from, to)
	}
	return s.Store.ProductivityByEmployee(ctx, from, to)
}
