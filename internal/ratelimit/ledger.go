package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// EventCounter counts an actor's recorded decisions after a point in time and
// reports the oldest of them.
type EventCounter interface {
	EventsSince(ctx context.Context, actorID uint64, since time.Time) (int64, time.Time, error)
}

// LedgerLimiter derives the window from the decision event log. It needs no
// extra infrastructure but costs a query per check, and it does not record
// anything itself: the decision write is the action being counted.
type LedgerLimiter struct {
	events EventCounter
	rule   Rule
	now    Clock
}

func NewLedgerLimiter(events EventCounter, rule Rule) *LedgerLimiter {
	return &LedgerLimiter{events: events, rule: rule, now: systemClock}
}

// WithClock replaces the time source.
func (l *LedgerLimiter) WithClock(now Clock) *LedgerLimiter {
	l.now = now
	return l
}

// Allow fails closed: a database error is returned to the caller.
func (l *LedgerLimiter) Allow(ctx context.Context, actorID uint64) (Result, error) {
	now := l.now().UTC()
	count, oldest, err := l.events.EventsSince(ctx, actorID, now.Add(-l.rule.Window))
	if err != nil {
		return Result{}, fmt.Errorf("count recent decisions: %w", err)
	}
	if count < int64(l.rule.Limit) {
		return allowed(), nil
	}
	return denied(oldest.Add(l.rule.Window).Sub(now)), nil
}

// Release is a no-op: a failed write appends no event, so nothing was counted.
func (l *LedgerLimiter) Release(context.Context, uint64, string) error {
	return nil
}
