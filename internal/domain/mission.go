package domain

import "fmt"

// MissionStep is one stage of the post-selection workflow.
type MissionStep string

const (
	StepSummary MissionStep = "summary"
	StepQuiz    MissionStep = "quiz"
	StepTTS     MissionStep = "tts"
	StepHistory MissionStep = "history"
)

var stepOrder = []MissionStep{StepSummary, StepQuiz, StepTTS, StepHistory}

// Steps returns the mission steps in their fixed order.
func Steps() []MissionStep {
	out := make([]MissionStep, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// Index returns the position of s in the mission order, or -1.
func (s MissionStep) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known step.
func (s MissionStep) Valid() bool {
	return s.Index() >= 0
}

// ParseStep validates a step name.
func ParseStep(value string) (MissionStep, error) {
	step := MissionStep(value)
	if !step.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, value)
	}
	return step, nil
}
