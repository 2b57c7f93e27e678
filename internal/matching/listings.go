package matching

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

// MatchSummary is a counterpart in a mutual-matches page.
type MatchSummary struct {
	UserID      uint64
	DisplayName string
	City        string
	Country     string
	MatchedAt   time.Time
}

// LikerSummary is a user who liked the caller.
type LikerSummary struct {
	UserID      uint64
	DisplayName string
	LikedAt     time.Time
	LikedBack   bool
}

// Page is one page of a cursor-paginated listing. NextToken is empty on the
// last page.
type Page[T any] struct {
	Items     []T
	NextToken string
}

// Counts are the badge numbers shown to a user.
type Counts struct {
	LikesReceived int64
	Mutual        int64
}

// ListMutual returns the users currently matched with userID, most recently
// matched first.
func (e *Engine) ListMutual(ctx context.Context, userID uint64, limit int, token string) (Page[MatchSummary], error) {
	if userID == 0 {
		return Page[MatchSummary]{}, invalid("user id is required")
	}
	limit = e.cfg.ListLimit.Clamp(limit)

	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	if _, err := e.loadActor(ctx, userID); err != nil {
		return Page[MatchSummary]{}, err
	}

	rows, next, err := e.decisions.ListMutual(ctx, userID, tokenPtr(token), limit)
	if err != nil {
		return Page[MatchSummary]{}, listErr("list mutual matches", err)
	}

	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	users, err := e.users.FindUsers(ctx, ids)
	if err != nil {
		return Page[MatchSummary]{}, unavailable("load users", err)
	}

	page := Page[MatchSummary]{Items: make([]MatchSummary, 0, len(rows)), NextToken: deref(next)}
	for _, r := range rows {
		s := MatchSummary{UserID: r.UserID, MatchedAt: r.MatchedAt()}
		if u, ok := users[r.UserID]; ok {
			s.DisplayName = displayName(&u)
			if u.Profile != nil {
				s.City = u.Profile.City
				s.Country = u.Profile.Country
			}
		}
		page.Items = append(page.Items, s)
	}
	return page, nil
}

// ListLikesReceived returns the users who liked userID and were not passed by
// them, newest first.
func (e *Engine) ListLikesReceived(ctx context.Context, userID uint64, limit int, token string) (Page[LikerSummary], error) {
	if userID == 0 {
		return Page[LikerSummary]{}, invalid("user id is required")
	}
	limit = e.cfg.ListLimit.Clamp(limit)

	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	if _, err := e.loadActor(ctx, userID); err != nil {
		return Page[LikerSummary]{}, err
	}

	rows, next, err := e.decisions.ListLikesReceived(ctx, userID, tokenPtr(token), limit)
	if err != nil {
		return Page[LikerSummary]{}, listErr("list likes received", err)
	}

	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	users, err := e.users.FindUsers(ctx, ids)
	if err != nil {
		return Page[LikerSummary]{}, unavailable("load users", err)
	}

	page := Page[LikerSummary]{Items: make([]LikerSummary, 0, len(rows)), NextToken: deref(next)}
	for _, r := range rows {
		s := LikerSummary{UserID: r.UserID, LikedAt: r.LikedAt, LikedBack: r.LikedBack}
		if u, ok := users[r.UserID]; ok {
			s.DisplayName = displayName(&u)
		}
		page.Items = append(page.Items, s)
	}
	return page, nil
}

// Counts returns the likes-received and mutual counts. The likes count is
// served from the cache when present.
func (e *Engine) Counts(ctx context.Context, userID uint64) (Counts, error) {
	if userID == 0 {
		return Counts{}, invalid("user id is required")
	}
	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	if _, err := e.loadActor(ctx, userID); err != nil {
		return Counts{}, err
	}

	likes, err := e.likesReceived(ctx, userID)
	if err != nil {
		return Counts{}, err
	}
	mutual, err := e.decisions.CountMutual(ctx, userID)
	if err != nil {
		return Counts{}, unavailable("count mutual", err)
	}
	return Counts{LikesReceived: likes, Mutual: mutual}, nil
}

func (e *Engine) likesReceived(ctx context.Context, userID uint64) (int64, error) {
	log := e.logger(ctx)
	if e.counts != nil {
		n, ok, err := e.counts.GetLikeCount(ctx, userID)
		if err != nil {
			log.Warn("like count cache read failed", "user_id", userID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	n, err := e.decisions.CountLikesReceived(ctx, userID)
	if err != nil {
		return 0, unavailable("count likes received", err)
	}
	if e.counts != nil {
		if err := e.counts.SetLikeCount(ctx, userID, n); err != nil {
			log.Warn("like count cache write failed", "user_id", userID, "err", err)
		}
	}
	return n, nil
}

func listErr(op string, err error) error {
	if errors.Is(err, pagination.ErrInvalidToken) {
		return invalid("bad pagination token")
	}
	return unavailable(op, err)
}

func tokenPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
