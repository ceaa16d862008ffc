package analytics

type GroupBy string

const (
	GroupByEmployee GroupBy = "employee"
	GroupByProject  GroupBy = "project"
)

func (g GroupBy) Valid() bool {
	return g == GroupByEmployee || g == GroupByProject
}

// Overview aggregates current entity snapshots for the dashboard landing
// view. All three figures come from the same store commit point.
type Overview struct {
	EmployeesByStatus map[string]int `json:"employeesByStatus"`
	ProjectsByStatus  map[string]int `json:"projectsByStatus"`
	Month             string         `json:"month"`
	PaidThisMonth     float64        `json:"paidThisMonth"`
}

// ProductivityRow is total completed hours for one grouping key. Entries
// still pending or in progress contribute nothing.
type ProductivityRow struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}
