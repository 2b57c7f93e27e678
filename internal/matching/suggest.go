package matching

import (
	"context"
	"log/slog"
	"time"

	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// Suggest returns up to limit ranked candidates for the seeker. Limit is
// clamped to the configured suggest bounds.
func (e *Engine) Suggest(ctx context.Context, seekerID uint64, limit int) ([]Suggestion, error) {
	start := time.Now()
	defer func() { metrics.SuggestLatency.Observe(time.Since(start).Seconds()) }()

	if seekerID == 0 {
		return nil, invalid("seeker id is required")
	}
	limit = e.cfg.SuggestLimit.Clamp(limit)

	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	log := e.logger(ctx)

	seeker, err := e.loadActor(ctx, seekerID)
	if err != nil {
		return nil, err
	}
	role, _ := seeker.Role.Counterpart()

	prefs, err := e.prefs.Get(ctx, seekerID)
	if err != nil {
		return nil, unavailable("load preferences", err)
	}

	exclude, err := e.decisions.DecidedTargets(ctx, seekerID)
	if err != nil {
		// already-decided candidates may resurface until the ledger recovers
		log.Warn("exclusion lookup failed, continuing without it", "seeker_id", seekerID, "err", err)
		exclude = nil
	}

	pool := e.cfg.CandidatePool
	if pool <= 0 {
		pool = 100
	}
	users, err := e.users.FindCandidates(ctx, repository.CandidateQuery{
		SeekerID: seekerID,
		Role:     role,
		Exclude:  exclude,
		City:     prefs.City,
		Country:  prefs.Country,
		Limit:    pool,
	})
	if err != nil {
		return nil, unavailable("find candidates", err)
	}

	ranked := rank(e.scorer, prefs, users)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Suggestion, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, toSuggestion(s))
	}

	if log.Enabled(ctx, slog.LevelDebug) && len(ranked) > 0 {
		top := ranked[0]
		log.Debug("suggest",
			"seeker_id", seekerID,
			"pool", len(users),
			"returned", len(out),
			"top_id", top.user.ID,
			"top_breakdown", e.scorer.Explain(prefs, top.user.Profile),
		)
	}
	return out, nil
}
