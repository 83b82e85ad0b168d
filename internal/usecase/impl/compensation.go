// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"
)

// undoAction reverses one completed side effect of a multi-step workflow.
type undoAction struct {
	label string
	fn    func(ctx context.Context) error
}

// compensator collects undo actions as a workflow progresses through steps
// with external side effects. When a later step fails, Run executes the
// collected actions in reverse order. Undo failures are logged, never
// propagated: the caller's original error stays the surfaced one.
type compensator struct {
	mu    sync.Mutex
	undos []undoAction
}

// Push records an undo action for a completed step. Safe for concurrent use,
// so parallel steps can register their undos as they finish.
func (c *compensator) Push(label string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.undos = append(c.undos, undoAction{label: label, fn: fn})
}

// Run executes all recorded undo actions in reverse registration order and
// clears the stack. It keeps going past individual failures. Undos run on a
// context detached from cancellation: the failure being compensated may be
// the request's own cancellation, and cleanup must still reach the store.
// Values (request ID, logger) stay attached.
func (c *compensator) Run(ctx context.Context, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	undos := c.undos
	c.undos = nil
	c.mu.Unlock()

	for i := len(undos) - 1; i >= 0; i-- {
		undo := undos[i]
		if err := undo.fn(ctx); err != nil {
			logger.Error("Compensation step failed",
				slog.String("step", undo.label),
				slog.Any("error", err),
			)

			continue
		}
		logger.Info("Compensation step completed", slog.String("step", undo.label))
	}
}

// Len reports the number of pending undo actions.
func (c *compensator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.undos)
}
