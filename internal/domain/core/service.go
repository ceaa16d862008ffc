package core

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"opsboard/internal/domain/faults"
)

type StoreAPI interface {
	CreateEmployee(ctx context.Context, name, email string, hourlyRate float64) (Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error)
	SetEmployeeStatus(ctx context.Context, employeeID string, status EmployeeStatus) error
	CreateProject(ctx context.Context, name string) (Project, error)
	GetProject(ctx context.Context, projectID string) (Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]Project, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) CreateEmployee(ctx context.Context, name, email string, hourlyRate float64) (Employee, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Employee{}, fmt.Errorf("%w: name is required", faults.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Employee{}, fmt.Errorf("%w: email is invalid", faults.ErrInvalidInput)
	}
	if hourlyRate < 0 {
		return Employee{}, fmt.Errorf("%w: hourly rate must not be negative", faults.ErrInvalidInput)
	}
	return s.Store.CreateEmployee(ctx, name, email, hourlyRate)
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.Store.GetEmployee(ctx, employeeID)
}

func (s *Service) ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error) {
	return s.Store.ListEmployees(ctx, limit, offset)
}

func (s *Service) SetEmployeeStatus(ctx context.Context, employeeID string, status EmployeeStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown employee status %q", faults.ErrInvalidInput, status)
	}
	return s.Store.SetEmployeeStatus(ctx, employeeID, status)
}

func (s *Service) CreateProject(ctx context.Context, name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, fmt.Errorf("%w: name is required", faults.ErrInvalidInput)
	}
	return s.Store.CreateProject(ctx, name)
}

func (s *Service) GetProject(ctx context.Context, projectID string) (Project, error) {
	return s.Store.GetProject(ctx, projectID)
}

func (s *Service) ListProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	return s.Store.ListProjects(ctx, limit, offset)
}
