package matching

import (
	"context"
	"strings"

	"github.com/oggyb/muzz-matching/internal/db"
)

// ResetMode selects which of the actor's decisions Reset clears.
type ResetMode string

const (
	// ResetSoft clears PASS decisions only, so passed candidates resurface.
	ResetSoft ResetMode = "soft"
	// ResetHard clears every decision and dissolves the actor's matches.
	ResetHard ResetMode = "hard"
)

// ParseResetMode is case-insensitive; an empty mode means hard.
func ParseResetMode(s string) (ResetMode, bool) {
	switch ResetMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResetHard:
		return ResetHard, true
	case ResetSoft:
		return ResetSoft, true
	}
	return "", false
}

// UndoResult describes the reverted decision. TargetID and Action are zero
// when Undone is false.
type UndoResult struct {
	Undone   bool
	TargetID uint64
	Action   db.Action
}

// ResetResult reports how many decisions were cleared.
type ResetResult struct {
	Mode    ResetMode
	Cleared int
}

// Undo reverts the actor's most recent decision that is still in effect. A
// reverted LIKE that formed a match dissolves it.
func (e *Engine) Undo(ctx context.Context, actorID uint64) (UndoResult, error) {
	if actorID == 0 {
		return UndoResult{}, invalid("actor id is required")
	}
	ctx, cancel := e.repoCtx(ctx)
	defer cancel()

	if _, err := e.loadActor(ctx, actorID); err != nil {
		return UndoResult{}, err
	}

	ev, err := e.decisions.UndoLatest(ctx, actorID)
	if err != nil {
		return UndoResult{}, unavailable("undo decision", err)
	}
	if ev == nil {
		return UndoResult{}, nil
	}

	e.invalidateCounts(ctx, ev.TargetID, actorID)
	e.logger(ctx).Info("decision undone", "actor_id", actorID, "target_id", ev.TargetID, "action", ev.Action)
	return UndoResult{Undone: true, TargetID: ev.TargetID, Action: ev.Action}, nil
}

// Reset clears the actor's decisions according to mode.
func (e *Engine) Reset(ctx context.Context, actorID uint64, rawMode string) (ResetResult, error) {
	mode, ok := ParseResetMode(rawMode)
	if !ok {
		return ResetResult{}, invalid("unknown reset mode %q", rawMode)
	}
	if actorID == 0 {
		return ResetResult{}, invalid("actor id is required")
	}
	ctx, cancel := e.repoCtx(ctx)
	defer cancel()

	if _, err := e.loadActor(ctx, actorID); err != nil {
		return ResetResult{}, err
	}

	targets, err := e.decisions.DeleteByActor(ctx, actorID, mode == ResetSoft)
	if err != nil {
		return ResetResult{}, unavailable("reset decisions", err)
	}

	e.invalidateCounts(ctx, append(targets, actorID)...)
	e.logger(ctx).Info("decisions reset", "actor_id", actorID, "mode", mode, "cleared", len(targets))
	return ResetResult{Mode: mode, Cleared: len(targets)}, nil
}
