package core

import "sort"

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

func (s EmployeeStatus) Valid() bool {
	return s == EmployeeActive || s == EmployeeInactive
}

type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "planned"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// projectTransitions is the forward-only lattice for projects. The single
// reversible pair is active<->on_hold; completed is terminal.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectPlanned:   {ProjectActive, ProjectCompleted},
	ProjectActive:    {ProjectOnHold, ProjectCompleted},
	ProjectOnHold:    {ProjectActive, ProjectCompleted},
	ProjectCompleted: {},
}

func (s ProjectStatus) Valid() bool {
	_, ok := projectTransitions[s]
	return ok
}

func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Predecessors returns every status from which next is reachable in one
// step. Stores use it as the compare-and-set predicate on updates.
func (s ProjectStatus) Predecessors() []ProjectStatus {
	var out []ProjectStatus
	for from, allowed := range projectTransitions {
		for _, to := range allowed {
			if to == s {
				out = append(out, from)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
