package arena

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/mcoot/dicearena-go/internal/model"
)

// DefaultInboxSize is the number of tasks that may queue before submitters block
const DefaultInboxSize = 256

// Executor runs submitted tasks one at a time on a single goroutine.
// Everything that touches arena state goes through it.
type Executor struct {
	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewExecutor creates an Executor. Run must be called to start it.
func NewExecutor(inboxSize int, logger *slog.Logger) *Executor {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	return &Executor{
		inbox:  make(chan func(), inboxSize),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "executor")),
	}
}

// Run processes tasks until ctx is cancelled
func (e *Executor) Run(ctx context.Context) error {
	e.logger.Info("executor started")
	defer e.stop()

	for {
		select {
		case task := <-e.inbox:
			e.run(task)
		case <-ctx.Done():
			e.logger.Info("executor stopped")
			return nil
		}
	}
}

// Submit queues a task without waiting for it. Tasks submitted after the
// executor stopped are dropped.
func (e *Executor) Submit(task func()) {
	select {
	case e.inbox <- task:
	case <-e.done:
	}
}

// Do queues a task and waits for it to finish
func (e *Executor) Do(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		task()
	}

	select {
	case e.inbox <- wrapped:
	case <-e.done:
		return model.ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-e.done:
		return model.ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task panicked",
				slog.String("error", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	task()
}

func (e *Executor) stop() {
	e.stopOnce.Do(func() { close(e.done) })
}
