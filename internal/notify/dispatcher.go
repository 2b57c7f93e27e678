// Package notify delivers match-engine side effects: in-app notifications,
// event publication and other hand-offs that must never fail a decision.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/metrics"
)

// Notifier is the consumed notification interface.
type Notifier interface {
	Create(ctx context.Context, userID uint64, kind, title, message string) error
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Create(ctx context.Context, userID uint64, kind, title, message string) error {
	var errs []error
	for _, n := range f {
		if err := n.Create(ctx, userID, kind, title, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher runs side effects on their own goroutines, detached from the
// request's cancellation. Failures are logged and counted, never returned.
type Dispatcher struct {
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{log: log, timeout: timeout}
}

// Go hands fn off. ctx contributes values (request-scoped logger) but not
// its deadline or cancellation.
func (d *Dispatcher) Go(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	base := context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, d.log)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		err := run(ctx, fn)
		if err != nil {
			log.Warn("side effect failed", "kind", kind, "err", err)
			metrics.SideEffectsTotal.WithLabelValues(kind, "error").Inc()
			return
		}
		metrics.SideEffectsTotal.WithLabelValues(kind, "ok").Inc()
	}()
}

func run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every handed-off side effect has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
