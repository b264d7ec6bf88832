package session

import (
	"fmt"
	"sync"

	"AXpress/internal/domain"
)

// Completed is an immutable snapshot of completed mission steps.
type Completed struct {
	epoch uint64
	steps map[domain.MissionStep]struct{}
}

// Has reports whether step was completed.
func (c Completed) Has(step domain.MissionStep) bool {
	_, ok := c.steps[step]
	return ok
}

// Len returns the number of completed steps.
func (c Completed) Len() int {
	return len(c.steps)
}

// Epoch identifies the selection the snapshot belongs to.
func (c Completed) Epoch() uint64 {
	return c.epoch
}

// Steps lists completed steps in mission order.
func (c Completed) Steps() []domain.MissionStep {
	out := make([]domain.MissionStep, 0, len(c.steps))
	for _, step := range domain.Steps() {
		if c.Has(step) {
			out = append(out, step)
		}
	}
	return out
}

// NewCompleted builds a snapshot from explicit steps; unknown steps are ignored.
func NewCompleted(steps ...domain.MissionStep) Completed {
	set := make(map[domain.MissionStep]struct{}, len(steps))
	for _, step := range steps {
		if step.Valid() {
			set[step] = struct{}{}
		}
	}
	return Completed{steps: set}
}

// Progress tracks completed steps for the current selection. The set only grows;
// it is emptied exclusively by Selection when the selection changes or clears.
type Progress struct {
	mu    sync.RWMutex
	epoch uint64
	steps map[domain.MissionStep]struct{}
}

// NewProgress returns an empty progress set.
func NewProgress() *Progress {
	return &Progress{steps: make(map[domain.MissionStep]struct{})}
}

// MarkComplete adds step; repeating a step is a no-op.
func (p *Progress) MarkComplete(step domain.MissionStep) error {
	if !step.Valid() {
		return fmt.Errorf("mark complete: %w: %q", domain.ErrUnknownStep, string(step))
	}

	p.mu.Lock()
	p.steps[step] = struct{}{}
	p.mu.Unlock()
	return nil
}

// MarkCompleteAt adds step only while the progress is still at epoch.
// It reports false, without error, when a reset happened since epoch was read.
func (p *Progress) MarkCompleteAt(epoch uint64, step domain.MissionStep) (bool, error) {
	if !step.Valid() {
		return false, fmt.Errorf("mark complete: %w: %q", domain.ErrUnknownStep, string(step))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		return false, nil
	}
	p.steps[step] = struct{}{}
	return true, nil
}

// Has reports whether step is completed in the current epoch.
func (p *Progress) Has(step domain.MissionStep) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.steps[step]
	return ok
}

// Len returns the number of completed steps.
func (p *Progress) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.steps)
}

// Epoch increases on every reset.
func (p *Progress) Epoch() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.epoch
}

// Snapshot copies the current set.
func (p *Progress) Snapshot() Completed {
	p.mu.RLock()
	defer p.mu.RUnlock()

	steps := make(map[domain.MissionStep]struct{}, len(p.steps))
	for step := range p.steps {
		steps[step] = struct{}{}
	}
	return Completed{epoch: p.epoch, steps: steps}
}

func (p *Progress) reset() {
	p.mu.Lock()
	p.steps = make(map[domain.MissionStep]struct{})
	p.epoch++
	p.mu.Unlock()
}
