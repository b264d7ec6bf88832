// Package mission decides which mission affordances are active for a progress snapshot.
// Every function here is pure.
package mission

import (
	"AXpress/internal/domain"
)

// Completion is the read side of a progress snapshot.
type Completion interface {
	Has(step domain.MissionStep) bool
}

// Next returns the step after step.
func Next(step domain.MissionStep) (domain.MissionStep, bool) {
	steps := domain.Steps()
	idx := step.Index()
	if idx < 0 || idx+1 >= len(steps) {
		return "", false
	}
	return steps[idx+1], true
}

// Previous returns the step before step.
func Previous(step domain.MissionStep) (domain.MissionStep, bool) {
	idx := step.Index()
	if idx <= 0 {
		return "", false
	}
	return domain.Steps()[idx-1], true
}

// CanProceed reports whether the "next step" affordance on page from is active.
// The last step has no next page.
func CanProceed(completed Completion, from domain.MissionStep) bool {
	if _, ok := Next(from); !ok {
		return false
	}
	return completed.Has(from)
}

// Reachable reports whether step's page may be entered: the first step always is,
// any other step once its previous step is completed.
func Reachable(completed Completion, step domain.MissionStep) bool {
	if !step.Valid() {
		return false
	}
	prev, ok := Previous(step)
	if !ok {
		return true
	}
	return completed.Has(prev)
}

// StepStatus is one row of a mission navigation bar.
type StepStatus struct {
	Step      domain.MissionStep
	Done      bool
	Reachable bool
}

// Overview returns the status of every step in mission order.
func Overview(completed Completion) []StepStatus {
	steps := domain.Steps()
	out := make([]StepStatus, 0, len(steps))
	for _, step := range steps {
		out = append(out, StepStatus{
			Step:      step,
			Done:      completed.Has(step),
			Reachable: Reachable(completed, step),
		})
	}
	return out
}
