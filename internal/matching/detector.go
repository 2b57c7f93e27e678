package matching

import (
	"context"
	"fmt"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/metrics"
)

type detection struct {
	mutual bool
	formed bool
}

// detect runs after a committed LIKE from actor to target. The marker is
// only materialized while both rows are LIKE under a row lock, and only the
// insert that creates it emits the match side effects.
func (e *Engine) detect(ctx context.Context, actor, target *db.User) (detection, error) {
	likedBack, err := e.decisions.HasLiked(ctx, target.ID, actor.ID)
	if err != nil {
		return detection{}, unavailable("read reverse decision", err)
	}
	if !likedBack {
		e.notifyLike(ctx, actor, target)
		return detection{}, nil
	}

	mutual, won, err := e.matches.Materialize(ctx, actor.ID, target.ID, e.now())
	if err != nil {
		return detection{}, unavailable("materialize match", err)
	}
	if !mutual {
		// the reverse LIKE was withdrawn after it was read
		e.notifyLike(ctx, actor, target)
		return detection{}, nil
	}
	if !won {
		return detection{mutual: true}, nil
	}

	metrics.MatchesTotal.Inc()
	e.logger(ctx).Info("match formed", "user_a", actor.ID, "user_b", target.ID)
	e.notifyMatch(ctx, actor, target)
	e.triggerAutoMessage(ctx, actor, target)
	return detection{mutual: true, formed: true}, nil
}

func (e *Engine) notifyLike(ctx context.Context, actor, target *db.User) {
	if e.notifier == nil {
		return
	}
	msg := fmt.Sprintf("%s liked you", displayName(actor))
	e.dispatch.Go(ctx, "notify_like", func(ctx context.Context) error {
		return e.notifier.Create(ctx, target.ID, db.NotificationLike, "New like", msg)
	})
}

func (e *Engine) notifyMatch(ctx context.Context, a, b *db.User) {
	if e.notifier == nil {
		return
	}
	for _, pair := range [][2]*db.User{{a, b}, {b, a}} {
		to, other := pair[0], pair[1]
		msg := fmt.Sprintf("You and %s liked each other", displayName(other))
		e.dispatch.Go(ctx, "notify_match", func(ctx context.Context) error {
			return e.notifier.Create(ctx, to.ID, db.NotificationMatch, "It's a match!", msg)
		})
	}
}
