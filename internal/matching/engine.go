// Package matching is the mutual-interest matching engine: candidate ranking,
// the per-pair decision ledger, match detection with its side effects, rate
// limiting and undo/reset.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/notify"
	"github.com/oggyb/muzz-matching/internal/ratelimit"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// DecisionStore is the action ledger.
type DecisionStore interface {
	Record(ctx context.Context, actorID, targetID uint64, action db.Action) error
	HasLiked(ctx context.Context, actorID, targetID uint64) (bool, error)
	DecidedTargets(ctx context.Context, actorID uint64) ([]uint64, error)
	UndoLatest(ctx context.Context, actorID uint64) (*db.DecisionEvent, error)
	DeleteByActor(ctx context.Context, actorID uint64, passOnly bool) ([]uint64, error)
	ListLikesReceived(ctx context.Context, recipientID uint64, token *string, limit int) ([]repository.Liker, *string, error)
	CountLikesReceived(ctx context.Context, recipientID uint64) (int64, error)
	ListMutual(ctx context.Context, userID uint64, token *string, limit int) ([]repository.Mutual, *string, error)
	CountMutual(ctx context.Context, userID uint64) (int64, error)
}

// UserStore is the candidate repository.
type UserStore interface {
	FindUser(ctx context.Context, id uint64) (*db.User, error)
	FindUsers(ctx context.Context, ids []uint64) (map[uint64]db.User, error)
	FindCandidates(ctx context.Context, q repository.CandidateQuery) ([]db.User, error)
}

// PreferenceStore reads and writes seeker preferences.
type PreferenceStore interface {
	Get(ctx context.Context, userID uint64) (*db.Preference, error)
	Save(ctx context.Context, p *db.Preference) error
}

// MatchStore materializes match markers. mutual reports whether both
// directions were LIKE when checked; won whether this call created the marker.
type MatchStore interface {
	Materialize(ctx context.Context, a, b uint64, at time.Time) (mutual, won bool, err error)
}

// MessageStore is the messaging collaborator used by auto-messages.
type MessageStore interface {
	LatestFrom(ctx context.Context, senderID, receiverID uint64) (*db.Message, error)
	Send(ctx context.Context, senderID, receiverID uint64, content string) error
}

// LikeCountCache caches received-like counts. Optional.
type LikeCountCache interface {
	GetLikeCount(ctx context.Context, userID uint64) (int64, bool, error)
	SetLikeCount(ctx context.Context, userID uint64, count int64) error
	InvalidateLikeCounts(ctx context.Context, userIDs ...uint64) error
}

// Deps wires the engine to its collaborators.
type Deps struct {
	Decisions   DecisionStore
	Users       UserStore
	Preferences PreferenceStore
	Matches     MatchStore
	Messages    MessageStore
	Notifier    notify.Notifier
	Limiter     ratelimit.Limiter
	Counts      LikeCountCache
	Dispatcher  *notify.Dispatcher
	Logger      *slog.Logger
	Config      config.MatchingConfig
}

type Engine struct {
	decisions DecisionStore
	users     UserStore
	prefs     PreferenceStore
	matches   MatchStore
	messages  MessageStore
	notifier  notify.Notifier
	limiter   ratelimit.Limiter
	counts    LikeCountCache
	dispatch  *notify.Dispatcher
	log       *slog.Logger
	cfg       config.MatchingConfig
	scorer    Scorer
	now       func() time.Time
}

func NewEngine(d Deps) *Engine {
	log := d.Logger
	if log == nil {
		log = logger.L()
	}
	dispatch := d.Dispatcher
	if dispatch == nil {
		dispatch = notify.NewDispatcher(log, d.Config.DispatchTimeout)
	}
	return &Engine{
		decisions: d.Decisions,
		users:     d.Users,
		prefs:     d.Preferences,
		matches:   d.Matches,
		messages:  d.Messages,
		notifier:  d.Notifier,
		limiter:   d.Limiter,
		counts:    d.Counts,
		dispatch:  dispatch,
		log:       log,
		cfg:       d.Config,
		scorer:    NewScorer(d.Config.Weights),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Wait drains in-flight side effects.
func (e *Engine) Wait() {
	e.dispatch.Wait()
}

func (e *Engine) logger(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, e.log)
}

// repoCtx bounds repository work for one engine call.
func (e *Engine) repoCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.RepoTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.RepoTimeout)
}

// loadActor returns the acting user, who must exist and be active.
func (e *Engine) loadActor(ctx context.Context, id uint64) (*db.User, error) {
	u, err := e.users.FindUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized("user %d does not exist", id)
	}
	if err != nil {
		return nil, unavailable("load user", err)
	}
	if !u.Active {
		return nil, unauthorized("user %d is inactive", id)
	}
	if _, ok := u.Role.Counterpart(); !ok {
		return nil, unauthorized("user %d has no matching role", id)
	}
	return u, nil
}

// loadTarget returns the target, who must be an active user of the actor's
// counterpart role.
func (e *Engine) loadTarget(ctx context.Context, actor *db.User, id uint64) (*db.User, error) {
	u, err := e.users.FindUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user %d does not exist", id)
	}
	if err != nil {
		return nil, unavailable("load user", err)
	}
	want, _ := actor.Role.Counterpart()
	if !u.Active || u.Role != want {
		return nil, notFound("no active %s with id %d", want, id)
	}
	return u, nil
}

// unavailable wraps a repository failure. Deadline and cancellation errors
// stay matchable.
func unavailable(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}

func displayName(u *db.User) string {
	if u.Profile != nil && u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	return u.Username
}

func (e *Engine) invalidateCounts(ctx context.Context, userIDs ...uint64) {
	if e.counts == nil || len(userIDs) == 0 {
		return
	}
	if err := e.counts.InvalidateLikeCounts(ctx, userIDs...); err != nil {
		e.logger(ctx).Warn("failed to invalidate like counts", "users", userIDs, "err", err)
	}
}
