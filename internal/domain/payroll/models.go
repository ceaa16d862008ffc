package payroll

import "time"

type SalaryPayment struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	Month      string        `json:"month"`
	Amount     float64       `json:"amount"`
	Status     PaymentStatus `json:"status"`
	PaidAt     *time.Time    `json:"paidAt,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// PendingSalary is one row of the admin "pending salary" view: what an
// active employee is still owed for a month, derived from the ledger.
type PendingSalary struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	Month        string  `json:"month"`
	Hours        float64 `json:"hours"`
	Rate         float64 `json:"rate"`
	PaidTotal    float64 `json:"paidTotal"`
	Amount       float64 `json:"amount"`
}
