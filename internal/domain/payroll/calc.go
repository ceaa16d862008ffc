package payroll

// ComputeOwed derives the pending figure from ledger facts: completed hours
// times the employee's rate, less what a paid record for the month already
// covers. Never negative; an overpaid month owes nothing.
func ComputeOwed(hours, rate, paidTotal float64) float64 {
	owed := hours*rate - paidTotal
	if owed < 0 {
		return 0
	}
	return owed
}
