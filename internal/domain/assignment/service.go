package assignment

import (
	"context"
	"fmt"

	"opsboard/internal/domain/core"
	"opsboard/internal/domain/faults"
)

type StoreAPI interface {
	Assign(ctx context.Context, projectID, employeeID string) (bool, error)
	Unassign(ctx context.Context, projectID, employeeID string) (bool, error)
	IsAssigned(ctx context.Context, projectID, employeeID string) (bool, error)
	EmployeeStatus(ctx context.Context, employeeID string) (core.EmployeeStatus, error)
	ProjectStatus(ctx context.Context, projectID string) (core.ProjectStatus, error)
	UpdateProjectStatus(ctx context.Context, projectID string, next core.ProjectStatus, preds []core.ProjectStatus) (bool, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// Assign adds the employee to the project's assignment set. Re-assigning an
// existing pair is a no-op. The store-level guard is authoritative; the
// follow-up reads here only classify a refusal into the right error.
func (s *Service) Assign(ctx context.Context, projectID, employeeID string) error {
	inserted, err := s.Store.Assign(ctx, projectID, employeeID)
	if err != nil {
		return err
	}
	if inserted {
		return nil
	}

	assigned, err := s.Store.IsAssigned(ctx, projectID, employeeID)
	if err != nil {
		return err
	}
	if assigned {
		return nil
	}

	employeeStatus, err := s.Store.EmployeeStatus(ctx, employeeID)
	if err != nil {
		return err
	}
	if employeeStatus != core.EmployeeActive {
		return fmt.Errorf("%w: employee %s is inactive", faults.ErrInvalidTransition, employeeID)
	}

	projectStatus, err := s.Store.ProjectStatus(ctx, projectID)
	if err != nil {
		return err
	}
	if projectStatus == core.ProjectCompleted {
		return fmt.Errorf("%w: project %s is completed", faults.ErrInvalidTransition, projectID)
	}
	return fmt.Errorf("%w: could not assign employee %s to project %s", faults.ErrInvalidTransition, employeeID, projectID)
}

// Unassign removes the employee from the project. It refuses while the
// employee still has in-progress work logs on the project.
func (s *Service) Unassign(ctx context.Context, projectID, employeeID string) error {
	deleted, err := s.Store.Unassign(ctx, projectID, employeeID)
	if err != nil {
		return err
	}
	if deleted {
		return nil
	}

	assigned, err := s.Store.IsAssigned(ctx, projectID, employeeID)
	if err != nil {
		return err
	}
	if assigned {
		return fmt.Errorf("%w: employee %s has in-progress work on project %s", faults.ErrInvalidTransition, employeeID, projectID)
	}
	return fmt.Errorf("%w: employee %s is not assigned to project %s", faults.ErrNotFound, employeeID, projectID)
}

// SetProjectStatus moves the project along its status lattice. Setting the
// current status again is a no-op.
func (s *Service) SetProjectStatus(ctx context.Context, projectID string, next core.ProjectStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown project status %q", faults.ErrInvalidInput, next)
	}

	updated, err := s.Store.UpdateProjectStatus(ctx, projectID, next, next.Predecessors())
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	current, err := s.Store.ProjectStatus(ctx, projectID)
	if err != nil {
		return err
	}
	if current == next {
		return nil
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: project status %s -> %s", faults.ErrInvalidTransition, current, next)
	}
	// Legal move refused by the guard: the row moved under us between the
	// update and the re-read.
	return fmt.Errorf("%w: project %s changed concurrently", faults.ErrInvalidTransition, projectID)
}
