package swipe

import (
	"context"
	"strconv"
	"strings"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/auth"
	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/matching"
	pb "github.com/oggyb/muzz-matching/internal/proto/swipe"
)

// Service implements the Swipe gRPC API on top of the matching engine.
// Each method corresponds to an RPC of swipe.v1.SwipeService.
type Service struct {
	appCtx *app.AppContext
	engine *matching.Engine

	pb.UnimplementedSwipeServiceServer
}

// NewSwipeService creates the Swipe service with dependencies from AppContext.
func NewSwipeService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		engine: appCtx.Engine,
	}
}

// Suggest returns ranked candidates for the seeker.
//
// Behavior:
//   - Excludes everyone the seeker already decided on.
//   - Limit is clamped to [5, 50], default 20.
//
// Example:
//
//	svc.Suggest(ctx, &pb.SuggestRequest{SeekerId: "42", Limit: 10})
func (s *Service) Suggest(ctx context.Context, req *pb.SuggestRequest) (*pb.SuggestResponse, error) {
	seekerID, err := s.caller(ctx, "seeker_id", req.GetSeekerId())
	if err != nil {
		return nil, err
	}

	suggestions, err := s.engine.Suggest(ctx, seekerID, int(req.GetLimit()))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.SuggestResponse{Candidates: make([]*pb.Candidate, 0, len(suggestions))}
	for _, sg := range suggestions {
		resp.Candidates = append(resp.Candidates, &pb.Candidate{
			UserId:      formatID(sg.UserID),
			DisplayName: sg.DisplayName,
			City:        sg.City,
			Country:     sg.Country,
			Tags:        sg.Tags,
			Languages:   sg.Languages,
			Appearance:  sg.Appearance,
			DistanceKm:  sg.DistanceKm,
		})
	}
	return resp, nil
}

// RecordDecision stores a LIKE or PASS and reports whether it formed a match.
//
// Example:
//
//	svc.RecordDecision(ctx, &pb.RecordDecisionRequest{ActorId: "1", TargetId: "2", Action: "like"})
func (s *Service) RecordDecision(ctx context.Context, req *pb.RecordDecisionRequest) (*pb.RecordDecisionResponse, error) {
	actorID, err := s.caller(ctx, "actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}
	targetID, err := parseID("target_id", req.GetTargetId())
	if err != nil {
		return nil, err
	}

	out, err := s.engine.RecordDecision(ctx, actorID, targetID, req.GetAction())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.RecordDecisionResponse{
		Action:  string(out.Action),
		Matched: out.Matched,
		Mutual:  out.Mutual,
	}, nil
}

// ListMutualMatches returns the caller's current matches, most recent first,
// with cursor pagination.
func (s *Service) ListMutualMatches(ctx context.Context, req *pb.ListMutualMatchesRequest) (*pb.ListMutualMatchesResponse, error) {
	userID, err := s.caller(ctx, "user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}

	page, err := s.engine.ListMutual(ctx, userID, int(req.GetLimit()), req.GetPaginationToken())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListMutualMatchesResponse{
		Matches:             make([]*pb.Match, 0, len(page.Items)),
		NextPaginationToken: optional(page.NextToken),
	}
	for _, m := range page.Items {
		resp.Matches = append(resp.Matches, &pb.Match{
			UserId:          formatID(m.UserID),
			DisplayName:     m.DisplayName,
			City:            m.City,
			Country:         m.Country,
			MatchedAtUnixMs: uint64(m.MatchedAt.UnixMilli()),
		})
	}
	return resp, nil
}

// ListLikesReceived returns who liked the caller, excluding users the caller
// passed, newest first.
func (s *Service) ListLikesReceived(ctx context.Context, req *pb.ListLikesReceivedRequest) (*pb.ListLikesReceivedResponse, error) {
	userID, err := s.caller(ctx, "user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}

	page, err := s.engine.ListLikesReceived(ctx, userID, int(req.GetLimit()), req.GetPaginationToken())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListLikesReceivedResponse{
		Likers:              make([]*pb.Liker, 0, len(page.Items)),
		NextPaginationToken: optional(page.NextToken),
	}
	for _, l := range page.Items {
		resp.Likers = append(resp.Likers, &pb.Liker{
			UserId:        formatID(l.UserID),
			DisplayName:   l.DisplayName,
			LikedAtUnixMs: uint64(l.LikedAt.UnixMilli()),
			LikedBack:     l.LikedBack,
		})
	}
	return resp, nil
}

// CountMatching returns the caller's likes-received and mutual counts.
// The likes count is cache-first (Redis, invalidated on every write to the
// recipient).
func (s *Service) CountMatching(ctx context.Context, req *pb.CountMatchingRequest) (*pb.CountMatchingResponse, error) {
	userID, err := s.caller(ctx, "user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}

	counts, err := s.engine.Counts(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountMatchingResponse{
		LikesReceived: uint64(counts.LikesReceived),
		Mutual:        uint64(counts.Mutual),
	}, nil
}

// Undo reverts the caller's most recent decision still in effect.
func (s *Service) Undo(ctx context.Context, req *pb.UndoRequest) (*pb.UndoResponse, error) {
	actorID, err := s.caller(ctx, "actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Undo(ctx, actorID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !res.Undone {
		return &pb.UndoResponse{}, nil
	}
	return &pb.UndoResponse{
		Undone:   true,
		TargetId: formatID(res.TargetID),
		Action:   string(res.Action),
	}, nil
}

// Reset clears the caller's decisions. Mode "soft" clears passes only;
// "hard" (the default) clears everything and dissolves matches.
func (s *Service) Reset(ctx context.Context, req *pb.ResetRequest) (*pb.ResetResponse, error) {
	actorID, err := s.caller(ctx, "actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Reset(ctx, actorID, req.GetMode())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ResetResponse{Cleared: uint32(res.Cleared), Mode: string(res.Mode)}, nil
}

func (s *Service) GetPreferences(ctx context.Context, req *pb.GetPreferencesRequest) (*pb.PreferencesResponse, error) {
	userID, err := s.caller(ctx, "user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}

	p, err := s.engine.GetPreferences(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.PreferencesResponse{Preferences: toProtoPreferences(p)}, nil
}

// UpdatePreferences merges the fields present in the patch.
func (s *Service) UpdatePreferences(ctx context.Context, req *pb.UpdatePreferencesRequest) (*pb.PreferencesResponse, error) {
	userID, err := s.caller(ctx, "user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	patch := req.GetPatch()
	if patch == nil {
		return nil, svcErr.InvalidArgument("patch is required")
	}

	p, err := s.engine.UpdatePreferences(ctx, userID, matching.PreferencePatch{
		Tags:                patch.Tags,
		Languages:           patch.Languages,
		City:                patch.City,
		Country:             patch.Country,
		CenterLat:           patch.CenterLat,
		CenterLng:           patch.CenterLng,
		RadiusKm:            patch.RadiusKm,
		ClearLocation:       patch.ClearLocation,
		Appearance:          patch.Appearance,
		AutoMessageEnabled:  patch.AutoMessageEnabled,
		AutoMessageTemplate: patch.AutoMessageTemplate,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.PreferencesResponse{Preferences: toProtoPreferences(p)}, nil
}

// caller parses the id of the user the request acts for. With
// authentication enabled it must be the token's subject.
func (s *Service) caller(ctx context.Context, field, raw string) (uint64, error) {
	id, err := parseID(field, raw)
	if err != nil {
		return 0, err
	}
	if principal, ok := auth.UserID(ctx); ok && principal != id {
		s.appCtx.Logger.Warn("caller mismatch", "field", field, "requested", id, "principal", principal)
		return 0, svcErr.PermissionDenied(field + " does not match the authenticated user")
	}
	return id, nil
}

func parseID(field, raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(field + " must be a valid uint64")
	}
	return id, nil
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toProtoPreferences(p *db.Preference) *pb.Preferences {
	return &pb.Preferences{
		Tags:                p.Tags,
		Languages:           p.Languages,
		City:                p.City,
		Country:             p.Country,
		CenterLat:           p.CenterLat,
		CenterLng:           p.CenterLng,
		RadiusKm:            p.RadiusKm,
		Appearance:          p.Appearance,
		AutoMessageEnabled:  p.AutoMessageEnabled,
		AutoMessageTemplate: p.AutoMessageTemplate,
	}
}
