package worklog

import "time"

type WorkLog struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	ProjectID  string    `json:"projectId"`
	Date       time.Time `json:"date"`
	Hours      float64   `json:"hours"`
	Task       string    `json:"task"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Filter narrows ListAll. Zero values mean "any".
type Filter struct {
	EmployeeID string
	ProjectID  string
	Status     Status
	From       time.Time
	To         time.Time
}
