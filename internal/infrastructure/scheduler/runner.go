package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"AXpress/internal/logging"
	"AXpress/internal/ports"
)

// Runner executes detached effects in their own goroutines under a shared root context.
type Runner struct {
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

var _ ports.EffectRunner = (*Runner)(nil)

// NewRunner builds a runner whose effects are canceled by Close.
func NewRunner(parent context.Context, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Runner{logger: logger, ctx: ctx, cancel: cancel}
}

// Go starts effect; its error or panic is logged and dropped.
func (r *Runner) Go(name string, effect func(ctx context.Context) error) {
	if effect == nil {
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("effect skipped after close", "effect", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		if err := runSafely(name, func() error { return effect(r.ctx) }); err != nil {
			r.logger.Error("effect failed", "effect", name, "error", err)
			return
		}
		r.logger.Debug("effect done", "effect", name)
	}()
}

// Wait blocks until every started effect has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels in-flight effects, rejects new ones and waits for completion.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func runSafely(scope string, fn func() error) (err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		err = fmt.Errorf("%s: panic recovered: %v", scope, recovered)
	}()

	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", scope, err)
	}

	return nil
}
