package swipe_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/auth"
	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/db/dbtest"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	pb "github.com/oggyb/muzz-matching/internal/proto/swipe"
	"github.com/oggyb/muzz-matching/internal/service/swipe"
)

//
// Test helpers
//

// seedMinimalTestData inserts a small deterministic dataset.
//
// Dataset:
//   - Users: user1 (member), user2 and user3 (providers)
//   - Decisions:
//   - user1 → user2 = LIKE
//   - user2 → user1 = LIKE (mutual with above)
//   - user3 → user1 = LIKE (hidden from user1's likes because of the pass below)
//   - user1 → user3 = PASS
func seedMinimalTestData(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	users := []db.User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x", Role: db.RoleMember, Active: true},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x", Role: db.RoleProvider, Active: true},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x", Role: db.RoleProvider, Active: true},
	}
	require.NoError(t, gdb.Create(&users).Error)
	require.NoError(t, gdb.Create(&[]db.Profile{
		{UserID: 1, DisplayName: "One", City: "Leeds"},
		{UserID: 2, DisplayName: "Two", City: "Leeds"},
		{UserID: 3, DisplayName: "Three", City: "York"},
	}).Error)

	decisions := []db.Decision{
		{ActorID: 1, TargetID: 2, Action: db.ActionLike},
		{ActorID: 2, TargetID: 1, Action: db.ActionLike},
		{ActorID: 3, TargetID: 1, Action: db.ActionLike},
		{ActorID: 1, TargetID: 3, Action: db.ActionPass},
	}
	require.NoError(t, gdb.Create(&decisions).Error)
}

// setupService wires a Swipe service over a migrated in-memory SQLite DB and
// a miniredis. Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*swipe.Service, *app.AppContext) {
	t.Helper()

	gdb := dbtest.Open(t)
	seedMinimalTestData(t, gdb)

	mr := miniredis.RunT(t)
	redisCache := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(func() { _ = redisCache.Close() })

	cfg := &config.Config{Matching: config.DefaultMatching()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(cfg, gdb, redisCache, nil, logger)
	t.Cleanup(appCtx.Dispatcher.Wait)
	return swipe.NewSwipeService(appCtx), appCtx
}

func code(err error) codes.Code {
	return status.Code(err)
}

//
// Tests
//

// TestRecordDecision_FormsMatch: the seeded pair is mutual but has no match
// marker yet, so the first like through the service forms the match.
func TestRecordDecision_FormsMatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.RecordDecision(ctx, &pb.RecordDecisionRequest{ActorId: "2", TargetId: "1", Action: "like"})
	require.NoError(t, err)
	assert.Equal(t, "LIKE", resp.Action)
	assert.True(t, resp.Mutual)
	assert.True(t, resp.Matched)

	resp, err = svc.RecordDecision(ctx, &pb.RecordDecisionRequest{ActorId: "1", TargetId: "2", Action: "LIKE"})
	require.NoError(t, err)
	assert.True(t, resp.Mutual)
	assert.False(t, resp.Matched)
}

func TestRecordDecision_BadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	tests := []struct {
		name string
		req  *pb.RecordDecisionRequest
		want codes.Code
	}{
		{"bad actor id", &pb.RecordDecisionRequest{ActorId: "x", TargetId: "2", Action: "LIKE"}, codes.InvalidArgument},
		{"bad target id", &pb.RecordDecisionRequest{ActorId: "1", TargetId: "-1", Action: "LIKE"}, codes.InvalidArgument},
		{"self", &pb.RecordDecisionRequest{ActorId: "1", TargetId: "1", Action: "LIKE"}, codes.InvalidArgument},
		{"bad action", &pb.RecordDecisionRequest{ActorId: "1", TargetId: "2", Action: "MAYBE"}, codes.InvalidArgument},
		{"unknown target", &pb.RecordDecisionRequest{ActorId: "1", TargetId: "99", Action: "LIKE"}, codes.NotFound},
		{"same role", &pb.RecordDecisionRequest{ActorId: "2", TargetId: "3", Action: "LIKE"}, codes.NotFound},
		{"unknown actor", &pb.RecordDecisionRequest{ActorId: "99", TargetId: "2", Action: "LIKE"}, codes.PermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordDecision(ctx, tt.req)
			assert.Equal(t, tt.want, code(err))
		})
	}
}

// TestRecordDecision_RateLimited checks the ResourceExhausted mapping and the
// RetryInfo detail.
func TestRecordDecision_RateLimited(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	req := &pb.RecordDecisionRequest{ActorId: "3", TargetId: "1", Action: "PASS"}
	for i := 0; i < 40; i++ {
		_, err := svc.RecordDecision(ctx, req)
		require.NoError(t, err)
	}

	_, err := svc.RecordDecision(ctx, req)
	require.Equal(t, codes.ResourceExhausted, code(err))
	delay, ok := svcErr.RetryAfter(err)
	require.True(t, ok)
	assert.Greater(t, delay, time.Duration(0))
}

// TestSuggest: user1 decided on both providers, so nothing is left until a reset.
func TestSuggest(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.Suggest(ctx, &pb.SuggestRequest{SeekerId: "1"})
	require.NoError(t, err)
	assert.Empty(t, resp.GetCandidates())

	reset, err := svc.Reset(ctx, &pb.ResetRequest{ActorId: "1", Mode: "soft"})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), reset.Cleared)
	assert.Equal(t, "soft", reset.Mode)

	resp, err = svc.Suggest(ctx, &pb.SuggestRequest{SeekerId: "1"})
	require.NoError(t, err)
	require.Len(t, resp.GetCandidates(), 1)
	assert.Equal(t, "3", resp.Candidates[0].UserId)
	assert.Equal(t, "Three", resp.Candidates[0].DisplayName)
}

// TestListLikesReceived: only user2 is listed for user1 because user1 passed user3.
func TestListLikesReceived(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.ListLikesReceived(ctx, &pb.ListLikesReceivedRequest{UserId: "1"})
	require.NoError(t, err)
	require.Len(t, resp.Likers, 1)
	assert.Equal(t, "2", resp.Likers[0].UserId)
	assert.True(t, resp.Likers[0].LikedBack)
	assert.Empty(t, resp.GetNextPaginationToken())

	bad := "%%%"
	_, err = svc.ListLikesReceived(ctx, &pb.ListLikesReceivedRequest{UserId: "1", PaginationToken: &bad})
	assert.Equal(t, codes.InvalidArgument, code(err))
}

func TestListMutualMatches(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.ListMutualMatches(ctx, &pb.ListMutualMatchesRequest{UserId: "2"})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "1", resp.Matches[0].UserId)
	assert.Equal(t, "One", resp.Matches[0].DisplayName)
	assert.NotZero(t, resp.Matches[0].MatchedAtUnixMs)
}

// TestCountMatchingCache: the second call is served from Redis.
func TestCountMatchingCache(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	resp1, err := svc.CountMatching(ctx, &pb.CountMatchingRequest{UserId: "1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp1.LikesReceived)
	assert.Equal(t, uint64(1), resp1.Mutual)

	cached, ok, err := appCtx.RedisCache.GetLikeCount(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), cached)

	resp2, err := svc.CountMatching(ctx, &pb.CountMatchingRequest{UserId: "1"})
	require.NoError(t, err)
	assert.Equal(t, resp1, resp2)
}

func TestUndo(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.RecordDecision(ctx, &pb.RecordDecisionRequest{ActorId: "3", TargetId: "1", Action: "PASS"})
	require.NoError(t, err)

	resp, err := svc.Undo(ctx, &pb.UndoRequest{ActorId: "3"})
	require.NoError(t, err)
	assert.True(t, resp.Undone)
	assert.Equal(t, "1", resp.TargetId)
	assert.Equal(t, "PASS", resp.Action)

	// seeded rows have no event history
	resp, err = svc.Undo(ctx, &pb.UndoRequest{ActorId: "3"})
	require.NoError(t, err)
	assert.False(t, resp.Undone)
}

func TestReset_UnknownMode(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Reset(context.Background(), &pb.ResetRequest{ActorId: "1", Mode: "everything"})
	assert.Equal(t, codes.InvalidArgument, code(err))
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	got, err := svc.GetPreferences(ctx, &pb.GetPreferencesRequest{UserId: "1"})
	require.NoError(t, err)
	assert.Empty(t, got.GetPreferences().Tags)

	tags := []string{"massage", "Massage", "yoga"}
	city := "Leeds"
	updated, err := svc.UpdatePreferences(ctx, &pb.UpdatePreferencesRequest{
		UserId: "1",
		Patch:  &pb.PreferencesPatch{Tags: &tags, City: &city},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"massage", "yoga"}, updated.GetPreferences().Tags)
	assert.Equal(t, "Leeds", updated.GetPreferences().City)

	radius := -5.0
	_, err = svc.UpdatePreferences(ctx, &pb.UpdatePreferencesRequest{
		UserId: "1",
		Patch:  &pb.PreferencesPatch{RadiusKm: &radius},
	})
	assert.Equal(t, codes.InvalidArgument, code(err))

	_, err = svc.UpdatePreferences(ctx, &pb.UpdatePreferencesRequest{UserId: "1"})
	assert.Equal(t, codes.InvalidArgument, code(err))
}

func TestCallerMustMatchToken(t *testing.T) {
	svc, _ := setupService(t)
	ctx := auth.WithUserID(context.Background(), 2)

	_, err := svc.Undo(ctx, &pb.UndoRequest{ActorId: "1"})
	assert.Equal(t, codes.PermissionDenied, code(err))

	_, err = svc.Undo(ctx, &pb.UndoRequest{ActorId: "2"})
	assert.NoError(t, err)
}

// TestJSONCodecRoundTrip drives the service through a real gRPC stack over
// bufconn with the JSON codec and the auth interceptor.
func TestJSONCodecRoundTrip(t *testing.T) {
	_, appCtx := setupService(t)
	verifier := auth.NewVerifier("test-secret")

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(verifier.UnaryServerInterceptor()))
	swipe.NewRegistrar(appCtx).Register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := pb.NewSwipeServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.CountMatching(ctx, &pb.CountMatchingRequest{UserId: "2"})
	assert.Equal(t, codes.Unauthenticated, code(err))

	token, err := verifier.Issue(2, time.Minute)
	require.NoError(t, err)
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

	resp, err := client.RecordDecision(ctx, &pb.RecordDecisionRequest{ActorId: "2", TargetId: "1", Action: "LIKE"})
	require.NoError(t, err)
	assert.True(t, resp.Matched)

	counts, err := client.CountMatching(ctx, &pb.CountMatchingRequest{UserId: "2"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counts.Mutual)

	_, err = client.CountMatching(ctx, &pb.CountMatchingRequest{UserId: "1"})
	assert.Equal(t, codes.PermissionDenied, code(err))
}
