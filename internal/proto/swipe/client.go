package swipe

import (
	"context"

	"google.golang.org/grpc"
)

// SwipeServiceClient is the client API for swipe.v1.SwipeService. Every call
// uses the JSON codec.
type SwipeServiceClient interface {
	Suggest(ctx context.Context, in *SuggestRequest, opts ...grpc.CallOption) (*SuggestResponse, error)
	RecordDecision(ctx context.Context, in *RecordDecisionRequest, opts ...grpc.CallOption) (*RecordDecisionResponse, error)
	ListMutualMatches(ctx context.Context, in *ListMutualMatchesRequest, opts ...grpc.CallOption) (*ListMutualMatchesResponse, error)
	ListLikesReceived(ctx context.Context, in *ListLikesReceivedRequest, opts ...grpc.CallOption) (*ListLikesReceivedResponse, error)
	CountMatching(ctx context.Context, in *CountMatchingRequest, opts ...grpc.CallOption) (*CountMatchingResponse, error)
	Undo(ctx context.Context, in *UndoRequest, opts ...grpc.CallOption) (*UndoResponse, error)
	Reset(ctx context.Context, in *ResetRequest, opts ...grpc.CallOption) (*ResetResponse, error)
	GetPreferences(ctx context.Context, in *GetPreferencesRequest, opts ...grpc.CallOption) (*PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, in *UpdatePreferencesRequest, opts ...grpc.CallOption) (*PreferencesResponse, error)
}

type swipeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSwipeServiceClient(cc grpc.ClientConnInterface) SwipeServiceClient {
	return &swipeServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *swipeServiceClient) Suggest(ctx context.Context, in *SuggestRequest, opts ...grpc.CallOption) (*SuggestResponse, error) {
	return invoke[SuggestResponse](ctx, c.cc, SwipeService_Suggest_FullMethodName, in, opts)
}

func (c *swipeServiceClient) RecordDecision(ctx context.Context, in *RecordDecisionRequest, opts ...grpc.CallOption) (*RecordDecisionResponse, error) {
	return invoke[RecordDecisionResponse](ctx, c.cc, SwipeService_RecordDecision_FullMethodName, in, opts)
}

func (c *swipeServiceClient) ListMutualMatches(ctx context.Context, in *ListMutualMatchesRequest, opts ...grpc.CallOption) (*ListMutualMatchesResponse, error) {
	return invoke[ListMutualMatchesResponse](ctx, c.cc, SwipeService_ListMutualMatches_FullMethodName, in, opts)
}

func (c *swipeServiceClient) ListLikesReceived(ctx context.Context, in *ListLikesReceivedRequest, opts ...grpc.CallOption) (*ListLikesReceivedResponse, error) {
	return invoke[ListLikesReceivedResponse](ctx, c.cc, SwipeService_ListLikesReceived_FullMethodName, in, opts)
}

func (c *swipeServiceClient) CountMatching(ctx context.Context, in *CountMatchingRequest, opts ...grpc.CallOption) (*CountMatchingResponse, error) {
	return invoke[CountMatchingResponse](ctx, c.cc, SwipeService_CountMatching_FullMethodName, in, opts)
}

func (c *swipeServiceClient) Undo(ctx context.Context, in *UndoRequest, opts ...grpc.CallOption) (*UndoResponse, error) {
	return invoke[UndoResponse](ctx, c.cc, SwipeService_Undo_FullMethodName, in, opts)
}

func (c *swipeServiceClient) Reset(ctx context.Context, in *ResetRequest, opts ...grpc.CallOption) (*ResetResponse, error) {
	return invoke[ResetResponse](ctx, c.cc, SwipeService_Reset_FullMethodName, in, opts)
}

func (c *swipeServiceClient) GetPreferences(ctx context.Context, in *GetPreferencesRequest, opts ...grpc.CallOption) (*PreferencesResponse, error) {
	return invoke[PreferencesResponse](ctx, c.cc, SwipeService_GetPreferences_FullMethodName, in, opts)
}

func (c *swipeServiceClient) UpdatePreferences(ctx context.Context, in *UpdatePreferencesRequest, opts ...grpc.CallOption) (*PreferencesResponse, error) {
	return invoke[PreferencesResponse](ctx, c.cc, SwipeService_UpdatePreferences_FullMethodName, in, opts)
}
