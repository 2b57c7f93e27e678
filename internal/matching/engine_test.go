package matching_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/db/dbtest"
	"github.com/oggyb/muzz-matching/internal/matching"
	"github.com/oggyb/muzz-matching/internal/notify"
	"github.com/oggyb/muzz-matching/internal/ratelimit"
	"github.com/oggyb/muzz-matching/internal/repository"
)

type note struct {
	UserID uint64
	Kind   string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (r *recordingNotifier) Create(_ context.Context, userID uint64, kind, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{UserID: userID, Kind: kind})
	return nil
}

func (r *recordingNotifier) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notes {
		if x.Kind == kind {
			n++
		}
	}
	return n
}

// hookedDecisions wraps the ledger to inject failures and interleavings.
type hookedDecisions struct {
	matching.DecisionStore

	recordErr     error
	hasLikedErr   error
	decidedErr    error
	afterHasLiked func()
}

func (s *hookedDecisions) Record(ctx context.Context, actorID, targetID uint64, action db.Action) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	return s.DecisionStore.Record(ctx, actorID, targetID, action)
}

func (s *hookedDecisions) HasLiked(ctx context.Context, actorID, targetID uint64) (bool, error) {
	if s.hasLikedErr != nil {
		return false, s.hasLikedErr
	}
	liked, err := s.DecisionStore.HasLiked(ctx, actorID, targetID)
	if hook := s.afterHasLiked; hook != nil {
		s.afterHasLiked = nil
		hook()
	}
	return liked, err
}

func (s *hookedDecisions) DecidedTargets(ctx context.Context, actorID uint64) ([]uint64, error) {
	if s.decidedErr != nil {
		return nil, s.decidedErr
	}
	return s.DecisionStore.DecidedTargets(ctx, actorID)
}

func newHookedHarness(t *testing.T) (*harness, *hookedDecisions) {
	t.Helper()
	var hooked *hookedDecisions
	h := newHarness(t, func(d *matching.Deps) {
		hooked = &hookedDecisions{DecisionStore: d.Decisions}
		d.Decisions = hooked
	})
	return h, hooked
}

type harness struct {
	engine   *matching.Engine
	gdb      *gorm.DB
	notes    *recordingNotifier
	messages *repository.MessageRepository
	redis    *miniredis.Miniredis
}

func newHarness(t *testing.T, opts ...func(*matching.Deps)) *harness {
	t.Helper()

	gdb := dbtest.Open(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultMatching()
	notes := &recordingNotifier{}
	messages := repository.NewMessageRepository(gdb)

	deps := matching.Deps{
		Decisions:   repository.NewDecisionRepository(gdb),
		Users:       repository.NewCandidateRepository(gdb),
		Preferences: repository.NewPreferenceRepository(gdb),
		Matches:     repository.NewMatchRepository(gdb),
		Messages:    messages,
		Notifier:    notes,
		Limiter:     ratelimit.NewRedisLimiter(client, ratelimit.RuleDecision, log),
		Counts:      cache.NewFromClient(client, time.Hour),
		Dispatcher:  notify.NewDispatcher(log, 5*time.Second),
		Logger:      log,
		Config:      cfg,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	e := matching.NewEngine(deps)
	return &harness{engine: e, gdb: gdb, notes: notes, messages: messages, redis: mr}
}

func (h *harness) member(t *testing.T, name string) db.User {
	return dbtest.User(t, h.gdb, name, db.RoleMember, db.Profile{})
}

func (h *harness) provider(t *testing.T, name string, p db.Profile) db.User {
	return dbtest.User(t, h.gdb, name, db.RoleProvider, p)
}

func (h *harness) decide(t *testing.T, actor, target uint64, action string) matching.Outcome {
	t.Helper()
	out, err := h.engine.RecordDecision(context.Background(), actor, target, action)
	require.NoError(t, err)
	return out
}

func suggestionIDs(in []matching.Suggestion) []uint64 {
	out := make([]uint64, 0, len(in))
	for _, s := range in {
		out = append(out, s.UserID)
	}
	return out
}

func TestRecordDecision_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	m2 := h.member(t, "m2")
	p := h.provider(t, "p", db.Profile{})
	gone := h.provider(t, "gone", db.Profile{})
	dbtest.Deactivate(t, h.gdb, gone.ID)

	tests := []struct {
		name   string
		actor  uint64
		target uint64
		action string
		want   error
	}{
		{"self", m.ID, m.ID, "LIKE", matching.ErrInvalidInput},
		{"bad action", m.ID, p.ID, "SUPERLIKE", matching.ErrInvalidInput},
		{"zero target", m.ID, 0, "LIKE", matching.ErrInvalidInput},
		{"unknown actor", 9999, p.ID, "LIKE", matching.ErrUnauthorized},
		{"unknown target", m.ID, 9999, "LIKE", matching.ErrNotFound},
		{"inactive target", m.ID, gone.ID, "LIKE", matching.ErrNotFound},
		{"same role", m.ID, m2.ID, "LIKE", matching.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.engine.RecordDecision(ctx, tt.actor, tt.target, tt.action)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	dbtest.Deactivate(t, h.gdb, m.ID)
	_, err := h.engine.RecordDecision(ctx, m.ID, p.ID, "like")
	assert.ErrorIs(t, err, matching.ErrUnauthorized)
}

func TestRecordDecision_LikeNotifiesTarget(t *testing.T) {
	h := newHarness(t)
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	out := h.decide(t, m.ID, p.ID, "like")
	h.engine.Wait()

	assert.Equal(t, db.ActionLike, out.Action)
	assert.False(t, out.Matched)
	assert.False(t, out.Mutual)
	assert.Equal(t, 1, h.notes.count(db.NotificationLike))
	assert.Zero(t, h.notes.count(db.NotificationMatch))
}

func TestRecordDecision_MatchIsEmittedOnce(t *testing.T) {
	h := newHarness(t)
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	h.decide(t, m.ID, p.ID, "LIKE")
	h.decide(t, m.ID, p.ID, "LIKE")
	out := h.decide(t, p.ID, m.ID, "LIKE")
	assert.True(t, out.Matched)
	assert.True(t, out.Mutual)

	// resubmission from either side does not re-emit
	out = h.decide(t, p.ID, m.ID, "LIKE")
	assert.False(t, out.Matched)
	assert.True(t, out.Mutual)
	out = h.decide(t, m.ID, p.ID, "LIKE")
	assert.False(t, out.Matched)
	assert.True(t, out.Mutual)

	h.engine.Wait()
	assert.Equal(t, 2, h.notes.count(db.NotificationMatch))
}

func TestRecordDecision_ConcurrentLikesMatchOnce(t *testing.T) {
	for round := 0; round < 5; round++ {
		h := newHarness(t)
		m := h.member(t, "m")
		p := h.provider(t, "p", db.Profile{})

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			matched int
		)
		for _, pair := range [][2]uint64{{m.ID, p.ID}, {p.ID, m.ID}} {
			wg.Add(1)
			go func(actor, target uint64) {
				defer wg.Done()
				out, err := h.engine.RecordDecision(context.Background(), actor, target, "LIKE")
				assert.NoError(t, err)
				if out.Matched {
					mu.Lock()
					matched++
					mu.Unlock()
				}
			}(pair[0], pair[1])
		}
		wg.Wait()
		h.engine.Wait()

		assert.Equal(t, 1, matched)
		assert.Equal(t, 2, h.notes.count(db.NotificationMatch))
	}
}

func TestRecordDecision_PassThenLikeOverwrites(t *testing.T) {
	h := newHarness(t)
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	out := h.decide(t, m.ID, p.ID, "PASS")
	assert.Equal(t, db.ActionPass, out.Action)
	h.decide(t, p.ID, m.ID, "LIKE")

	out = h.decide(t, m.ID, p.ID, "LIKE")
	assert.True(t, out.Matched)

	// passing again dissolves the match, liking re-forms it
	h.decide(t, m.ID, p.ID, "PASS")
	page, err := h.engine.ListMutual(context.Background(), p.ID, 0, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	out = h.decide(t, m.ID, p.ID, "LIKE")
	assert.True(t, out.Matched)
}

func TestRecordDecision_RateLimited(t *testing.T) {
	h := newHarness(t)
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	for i := 0; i < 40; i++ {
		h.decide(t, m.ID, p.ID, "LIKE")
	}
	_, err := h.engine.RecordDecision(context.Background(), m.ID, p.ID, "LIKE")
	require.ErrorIs(t, err, matching.ErrRateLimited)

	var rl *matching.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Greater(t, rl.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rl.RetryAfter, 30*time.Second)

	// the rejected call never reached the ledger
	var events int64
	require.NoError(t, h.gdb.Model(&db.DecisionEvent{}).Where("actor_id = ?", m.ID).Count(&events).Error)
	assert.Equal(t, int64(40), events)
}

func TestSuggest_ExcludesDecidedUntilReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p1 := h.provider(t, "p1", db.Profile{})
	p2 := h.provider(t, "p2", db.Profile{})
	p3 := h.provider(t, "p3", db.Profile{})

	h.decide(t, m.ID, p1.ID, "PASS")
	h.decide(t, m.ID, p2.ID, "LIKE")

	got, err := h.engine.Suggest(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{p3.ID}, suggestionIDs(got))

	res, err := h.engine.Reset(ctx, m.ID, "SOFT")
	require.NoError(t, err)
	assert.Equal(t, matching.ResetSoft, res.Mode)
	assert.Equal(t, 1, res.Cleared)

	got, err = h.engine.Suggest(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{p1.ID, p3.ID}, suggestionIDs(got))

	res, err = h.engine.Reset(ctx, m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, matching.ResetHard, res.Mode)
	assert.Equal(t, 1, res.Cleared)

	got, err = h.engine.Suggest(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{p1.ID, p2.ID, p3.ID}, suggestionIDs(got))
}

func TestSuggest_RanksByPreferences(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	plain := h.provider(t, "plain", db.Profile{Latitude: dbtest.Float(48.001), Longitude: dbtest.Float(11)})
	massage := h.provider(t, "massage", db.Profile{
		Tags:      []string{"Massage"},
		Latitude:  dbtest.Float(48.002),
		Longitude: dbtest.Float(11),
	})
	h.provider(t, "far", db.Profile{
		Tags:      []string{"massage"},
		Latitude:  dbtest.Float(48.45),
		Longitude: dbtest.Float(11),
	})
	h.provider(t, "nowhere", db.Profile{Tags: []string{"massage"}})

	_, err := h.engine.UpdatePreferences(ctx, m.ID, matching.PreferencePatch{
		Tags:      &[]string{"massage"},
		CenterLat: dbtest.Float(48),
		CenterLng: dbtest.Float(11),
		RadiusKm:  dbtest.Float(10),
	})
	require.NoError(t, err)

	got, err := h.engine.Suggest(ctx, m.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint64{massage.ID, plain.ID}, suggestionIDs(got))
	require.NotNil(t, got[0].DistanceKm)
	assert.Equal(t, "massage", got[0].DisplayName)
}

func TestSuggest_LimitIsClamped(t *testing.T) {
	h := newHarness(t)
	m := h.member(t, "m")
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		h.provider(t, name, db.Profile{})
	}

	got, err := h.engine.Suggest(context.Background(), m.ID, 1)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestUndo_BreaksMatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	h.decide(t, m.ID, p.ID, "LIKE")
	require.True(t, h.decide(t, p.ID, m.ID, "LIKE").Matched)

	res, err := h.engine.Undo(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Undone)
	assert.Equal(t, m.ID, res.TargetID)
	assert.Equal(t, db.ActionLike, res.Action)

	page, err := h.engine.ListMutual(ctx, m.ID, 0, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// the match can form again and is announced again
	assert.True(t, h.decide(t, p.ID, m.ID, "LIKE").Matched)
	h.engine.Wait()
	assert.Equal(t, 4, h.notes.count(db.NotificationMatch))

	res, err = h.engine.Undo(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, res.Undone)
	res, err = h.engine.Undo(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, res.Undone)
}

func TestReset_HardDissolvesMatchesAndRejectsUnknownMode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	h.decide(t, m.ID, p.ID, "LIKE")
	h.decide(t, p.ID, m.ID, "LIKE")

	_, err := h.engine.Reset(ctx, m.ID, "medium")
	assert.ErrorIs(t, err, matching.ErrInvalidInput)

	res, err := h.engine.Reset(ctx, m.ID, "hard")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cleared)

	counts, err := h.engine.Counts(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Mutual)
	assert.Zero(t, counts.LikesReceived)
}

func TestAutoMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	_, err := h.engine.UpdatePreferences(ctx, p.ID, matching.PreferencePatch{
		AutoMessageEnabled:  func() *bool { b := true; return &b }(),
		AutoMessageTemplate: func() *string { s := "  Hi there!  "; return &s }(),
	})
	require.NoError(t, err)

	h.decide(t, m.ID, p.ID, "LIKE")
	h.decide(t, p.ID, m.ID, "LIKE")
	h.engine.Wait()

	msgs, err := h.messages.Between(ctx, m.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, p.ID, msgs[0].SenderID)
	assert.Equal(t, "Hi there!", msgs[0].Content)

	// re-forming the match does not repeat an identical opener
	_, err = h.engine.Undo(ctx, p.ID)
	require.NoError(t, err)
	h.decide(t, p.ID, m.ID, "LIKE")
	h.engine.Wait()

	msgs, err = h.messages.Between(ctx, m.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestAutoMessage_NotSentWhenDisabled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	require.NoError(t, h.gdb.Create(&db.Preference{UserID: p.ID, AutoMessageTemplate: "hello"}).Error)

	h.decide(t, m.ID, p.ID, "LIKE")
	h.decide(t, p.ID, m.ID, "LIKE")
	h.engine.Wait()

	msgs, err := h.messages.Between(ctx, m.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.provider(t, "p", db.Profile{City: "Leeds"})
	var members []db.User
	for _, name := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"} {
		members = append(members, h.member(t, name))
	}

	for _, m := range members {
		h.decide(t, m.ID, p.ID, "LIKE")
		time.Sleep(2 * time.Millisecond)
	}
	h.decide(t, p.ID, members[0].ID, "LIKE")
	h.decide(t, p.ID, members[1].ID, "PASS")

	likes, err := h.engine.ListLikesReceived(ctx, p.ID, 5, "")
	require.NoError(t, err)
	require.Len(t, likes.Items, 5)
	assert.NotEmpty(t, likes.NextToken)
	assert.Equal(t, members[6].ID, likes.Items[0].UserID)
	assert.Equal(t, "m7", likes.Items[0].DisplayName)

	rest, err := h.engine.ListLikesReceived(ctx, p.ID, 5, likes.NextToken)
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextToken)
	assert.Equal(t, members[0].ID, rest.Items[0].UserID)
	assert.True(t, rest.Items[0].LikedBack)

	matches, err := h.engine.ListMutual(ctx, members[0].ID, 0, "")
	require.NoError(t, err)
	require.Len(t, matches.Items, 1)
	assert.Equal(t, p.ID, matches.Items[0].UserID)
	assert.Equal(t, "Leeds", matches.Items[0].City)
	assert.False(t, matches.Items[0].MatchedAt.IsZero())

	_, err = h.engine.ListMutual(ctx, p.ID, 0, "!!!")
	assert.ErrorIs(t, err, matching.ErrInvalidInput)
}

func TestCounts_CachedAndInvalidated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.provider(t, "p", db.Profile{})
	m1 := h.member(t, "m1")
	m2 := h.member(t, "m2")

	h.decide(t, m1.ID, p.ID, "LIKE")
	counts, err := h.engine.Counts(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.LikesReceived)
	assert.True(t, h.redis.Exists(cache.KeyForLikeCount(p.ID)))

	h.decide(t, m2.ID, p.ID, "LIKE")
	assert.False(t, h.redis.Exists(cache.KeyForLikeCount(p.ID)))

	counts, err = h.engine.Counts(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.LikesReceived)
	assert.Zero(t, counts.Mutual)
}

func TestUpdatePreferences(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")

	city := " Leeds "
	got, err := h.engine.UpdatePreferences(ctx, m.ID, matching.PreferencePatch{
		Tags: &[]string{"Yoga", " yoga", "", "massage"},
		City: &city,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yoga", "massage"}, got.Tags)
	assert.Equal(t, "Leeds", got.City)

	_, err = h.engine.UpdatePreferences(ctx, m.ID, matching.PreferencePatch{RadiusKm: dbtest.Float(-1)})
	assert.ErrorIs(t, err, matching.ErrInvalidInput)

	_, err = h.engine.UpdatePreferences(ctx, m.ID, matching.PreferencePatch{CenterLat: dbtest.Float(48)})
	assert.ErrorIs(t, err, matching.ErrInvalidInput)

	stored, err := h.engine.GetPreferences(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Yoga", "massage"}, stored.Tags)
	assert.Nil(t, stored.RadiusKm)
}

func mutualIDs(page matching.Page[matching.MatchSummary]) []uint64 {
	out := make([]uint64, 0, len(page.Items))
	for _, m := range page.Items {
		out = append(out, m.UserID)
	}
	return out
}

func TestRecordDecision_WithdrawnLikeDoesNotMatch(t *testing.T) {
	h, hooked := newHookedHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	h.decide(t, p.ID, m.ID, "LIKE")

	// p passes m right after m's detection read p's LIKE
	hooked.afterHasLiked = func() {
		require.NoError(t, hooked.DecisionStore.Record(ctx, p.ID, m.ID, db.ActionPass))
	}
	out := h.decide(t, m.ID, p.ID, "LIKE")
	assert.False(t, out.Matched)
	assert.False(t, out.Mutual)

	h.engine.Wait()
	assert.Zero(t, h.notes.count(db.NotificationMatch))
	assert.Equal(t, 2, h.notes.count(db.NotificationLike))

	// the genuine match later is announced
	out = h.decide(t, p.ID, m.ID, "LIKE")
	assert.True(t, out.Matched)

	h.engine.Wait()
	assert.Equal(t, 2, h.notes.count(db.NotificationMatch))
	page, err := h.engine.ListMutual(ctx, m.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, []uint64{p.ID}, mutualIDs(page))
}

func TestRecordDecision_DetectionFailureKeepsCommittedLike(t *testing.T) {
	h, hooked := newHookedHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	h.decide(t, p.ID, m.ID, "LIKE")

	hooked.hasLikedErr = errors.New("read timeout")
	out, err := h.engine.RecordDecision(ctx, m.ID, p.ID, "LIKE")
	require.NoError(t, err)
	assert.Equal(t, db.ActionLike, out.Action)
	assert.False(t, out.Matched)

	d, err := repository.NewDecisionRepository(h.gdb).Get(ctx, m.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, db.ActionLike, d.Action)

	// repeating the like re-runs detection
	hooked.hasLikedErr = nil
	out = h.decide(t, m.ID, p.ID, "LIKE")
	assert.True(t, out.Matched)
}

func TestRecordDecision_FailedWriteReleasesRateLimitSlot(t *testing.T) {
	h, hooked := newHookedHarness(t)
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	hooked.recordErr = errors.New("connection reset")
	_, err := h.engine.RecordDecision(context.Background(), m.ID, p.ID, "LIKE")
	require.ErrorIs(t, err, matching.ErrDependencyUnavailable)

	key := ratelimit.RuleDecision.Key + strconv.FormatUint(m.ID, 10)
	assert.False(t, h.redis.Exists(key))

	hooked.recordErr = nil
	h.decide(t, m.ID, p.ID, "LIKE")
	members, err := h.redis.ZMembers(key)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestSuggest_ExclusionOutageDegradesToNoExclusion(t *testing.T) {
	h, hooked := newHookedHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p1 := h.provider(t, "p1", db.Profile{})
	p2 := h.provider(t, "p2", db.Profile{})

	h.decide(t, m.ID, p1.ID, "PASS")
	got, err := h.engine.Suggest(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{p2.ID}, suggestionIDs(got))

	hooked.decidedErr = errors.New("ledger unavailable")
	got, err = h.engine.Suggest(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{p1.ID, p2.ID}, suggestionIDs(got))
}

func TestCounts_FollowRecipientsOwnDecisions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})

	h.decide(t, m.ID, p.ID, "LIKE")
	counts, err := h.engine.Counts(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.LikesReceived)

	// passing a liker hides them from the recipient's likes
	h.decide(t, p.ID, m.ID, "PASS")
	counts, err = h.engine.Counts(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.LikesReceived)
	likers, err := h.engine.ListLikesReceived(ctx, p.ID, 0, "")
	require.NoError(t, err)
	assert.Empty(t, likers.Items)

	undone, err := h.engine.Undo(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, undone.Undone)
	counts, err = h.engine.Counts(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.LikesReceived)
}

func TestReset_SoftKeepsMatches(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.member(t, "m")
	p := h.provider(t, "p", db.Profile{})
	p2 := h.provider(t, "p2", db.Profile{})

	h.decide(t, m.ID, p.ID, "LIKE")
	require.True(t, h.decide(t, p.ID, m.ID, "LIKE").Matched)
	h.decide(t, m.ID, p2.ID, "PASS")

	res, err := h.engine.Reset(ctx, m.ID, "soft")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cleared)

	page, err := h.engine.ListMutual(ctx, m.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, []uint64{p.ID}, mutualIDs(page))
	page, err = h.engine.ListMutual(ctx, p.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, []uint64{m.ID}, mutualIDs(page))

	// the match stays materialized, so liking again does not re-announce it
	out := h.decide(t, m.ID, p.ID, "LIKE")
	assert.True(t, out.Mutual)
	assert.False(t, out.Matched)
}
