package matching

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/ratelimit"
)

// Outcome is the result of a recorded decision.
type Outcome struct {
	Action db.Action
	// Matched is true only for the call that formed the match.
	Matched bool
	// Mutual reports whether both directions are LIKE after the write.
	Mutual bool
}

// RecordDecision stores actor's decision about target, overwriting any earlier
// one, and runs match detection for likes.
//
// Order of checks: input, actor, target, rate limit, write. A rejected call
// never touches the ledger.
func (e *Engine) RecordDecision(ctx context.Context, actorID, targetID uint64, rawAction string) (Outcome, error) {
	action, ok := db.ParseAction(rawAction)
	switch {
	case !ok:
		return Outcome{}, invalid("unknown action %q", rawAction)
	case actorID == 0 || targetID == 0:
		return Outcome{}, invalid("actor and target ids are required")
	case actorID == targetID:
		return Outcome{}, invalid("cannot decide on yourself")
	}

	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	log := e.logger(ctx).With("actor_id", actorID, "target_id", targetID, "action", action)

	actor, err := e.loadActor(ctx, actorID)
	if err != nil {
		return Outcome{}, err
	}
	target, err := e.loadTarget(ctx, actor, targetID)
	if err != nil {
		return Outcome{}, err
	}

	var slot ratelimit.Result
	if e.limiter != nil {
		slot, err = e.limiter.Allow(ctx, actorID)
		if err != nil {
			return Outcome{}, unavailable("rate limit", err)
		}
		if !slot.Allowed {
			metrics.RateLimitedTotal.Inc()
			log.Info("decision rate limited", "retry_after", slot.RetryAfter)
			return Outcome{}, &RateLimitError{RetryAfter: slot.RetryAfter}
		}
	}

	if err := e.decisions.Record(ctx, actorID, targetID, action); err != nil {
		e.releaseSlot(ctx, actorID, slot)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Outcome{}, fmt.Errorf("%w: concurrent write on pair: %w", ErrConflict, err)
		}
		return Outcome{}, unavailable("record decision", err)
	}
	metrics.DecisionsTotal.WithLabelValues(string(action)).Inc()
	// the actor's own count moves too: passing a liker hides them
	e.invalidateCounts(ctx, targetID, actorID)

	out := Outcome{Action: action}
	if action == db.ActionPass {
		log.Debug("decision recorded")
		return out, nil
	}

	det, err := e.detect(ctx, actor, target)
	if err != nil {
		// the like is committed and stays the result; repeating it re-runs
		// detection
		log.Error("match detection failed", "err", err)
		return out, nil
	}
	out.Mutual = det.mutual
	out.Matched = det.formed

	log.Debug("decision recorded", "mutual", out.Mutual, "matched", out.Matched)
	return out, nil
}

// releaseSlot gives back a rate limit slot whose write never happened.
func (e *Engine) releaseSlot(ctx context.Context, actorID uint64, slot ratelimit.Result) {
	if e.limiter == nil || slot.Token == "" {
		return
	}
	if err := e.limiter.Release(context.WithoutCancel(ctx), actorID, slot.Token); err != nil {
		e.logger(ctx).Warn("failed to release rate limit slot", "actor_id", actorID, "err", err)
	}
}
