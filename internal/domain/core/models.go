package core

import "time"

type Employee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	HourlyRate float64        `json:"hourlyRate"`
	Status     EmployeeStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type Project struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Status            ProjectStatus `json:"status"`
	AssignedEmployees []string      `json:"assignedEmployees"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}
