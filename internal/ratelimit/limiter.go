// Package ratelimit throttles decisions per actor over a sliding window.
//
// Two backends exist: a Redis sorted-set window evaluated atomically in a Lua
// script, and a ledger backend that counts the actor's own decision events in
// the database. Both answer with a Result carrying how long to wait when the
// actor is over the limit.
package ratelimit

import (
	"context"
	"time"
)

// Rule defines a rate limiting policy: the Redis key prefix, maximum number of
// actions allowed in the window, and the window duration.
type Rule struct {
	Key    string        // Redis key prefix
	Limit  int           // max count in the window
	Window time.Duration // trailing window
}

// RuleDecision allows 40 decisions per 30 seconds per actor.
var RuleDecision = Rule{Key: "rl:decision:", Limit: 40, Window: 30 * time.Second}

// Result is the outcome of a limiter check.
type Result struct {
	Allowed bool
	// RetryAfter is set when Allowed is false: the time until the oldest
	// counted action leaves the window.
	RetryAfter time.Duration
	// Token identifies the slot an admitted action occupies, for Release.
	// Empty when the backend keeps no slot of its own.
	Token string
}

func allowed() Result { return Result{Allowed: true} }

func denied(retryAfter time.Duration) Result {
	if retryAfter < time.Millisecond {
		retryAfter = time.Millisecond
	}
	return Result{Allowed: false, RetryAfter: retryAfter}
}

// Clock is injectable for tests.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// Limiter is the behaviour shared by both backends.
type Limiter interface {
	Allow(ctx context.Context, actorID uint64) (Result, error)
	// Release frees the slot taken by an admitted action whose write failed.
	Release(ctx context.Context, actorID uint64, token string) error
}
