package swipe

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "swipe.v1.SwipeService"

const (
	SwipeService_Suggest_FullMethodName           = "/swipe.v1.SwipeService/Suggest"
	SwipeService_RecordDecision_FullMethodName    = "/swipe.v1.SwipeService/RecordDecision"
	SwipeService_ListMutualMatches_FullMethodName = "/swipe.v1.SwipeService/ListMutualMatches"
	SwipeService_ListLikesReceived_FullMethodName = "/swipe.v1.SwipeService/ListLikesReceived"
	SwipeService_CountMatching_FullMethodName     = "/swipe.v1.SwipeService/CountMatching"
	SwipeService_Undo_FullMethodName              = "/swipe.v1.SwipeService/Undo"
	SwipeService_Reset_FullMethodName             = "/swipe.v1.SwipeService/Reset"
	SwipeService_GetPreferences_FullMethodName    = "/swipe.v1.SwipeService/GetPreferences"
	SwipeService_UpdatePreferences_FullMethodName = "/swipe.v1.SwipeService/UpdatePreferences"
)

// SwipeServiceServer is the server API for swipe.v1.SwipeService.
// Implementations must embed UnimplementedSwipeServiceServer.
type SwipeServiceServer interface {
	Suggest(context.Context, *SuggestRequest) (*SuggestResponse, error)
	RecordDecision(context.Context, *RecordDecisionRequest) (*RecordDecisionResponse, error)
	ListMutualMatches(context.Context, *ListMutualMatchesRequest) (*ListMutualMatchesResponse, error)
	ListLikesReceived(context.Context, *ListLikesReceivedRequest) (*ListLikesReceivedResponse, error)
	CountMatching(context.Context, *CountMatchingRequest) (*CountMatchingResponse, error)
	Undo(context.Context, *UndoRequest) (*UndoResponse, error)
	Reset(context.Context, *ResetRequest) (*ResetResponse, error)
	GetPreferences(context.Context, *GetPreferencesRequest) (*PreferencesResponse, error)
	UpdatePreferences(context.Context, *UpdatePreferencesRequest) (*PreferencesResponse, error)
	mustEmbedUnimplementedSwipeServiceServer()
}

// UnimplementedSwipeServiceServer answers every method with Unimplemented.
type UnimplementedSwipeServiceServer struct{}

func (UnimplementedSwipeServiceServer) Suggest(context.Context, *SuggestRequest) (*SuggestResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Suggest not implemented")
}
func (UnimplementedSwipeServiceServer) RecordDecision(context.Context, *RecordDecisionRequest) (*RecordDecisionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordDecision not implemented")
}
func (UnimplementedSwipeServiceServer) ListMutualMatches(context.Context, *ListMutualMatchesRequest) (*ListMutualMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMutualMatches not implemented")
}
func (UnimplementedSwipeServiceServer) ListLikesReceived(context.Context, *ListLikesReceivedRequest) (*ListLikesReceivedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListLikesReceived not implemented")
}
func (UnimplementedSwipeServiceServer) CountMatching(context.Context, *CountMatchingRequest) (*CountMatchingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountMatching not implemented")
}
func (UnimplementedSwipeServiceServer) Undo(context.Context, *UndoRequest) (*UndoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Undo not implemented")
}
func (UnimplementedSwipeServiceServer) Reset(context.Context, *ResetRequest) (*ResetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Reset not implemented")
}
func (UnimplementedSwipeServiceServer) GetPreferences(context.Context, *GetPreferencesRequest) (*PreferencesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPreferences not implemented")
}
func (UnimplementedSwipeServiceServer) UpdatePreferences(context.Context, *UpdatePreferencesRequest) (*PreferencesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePreferences not implemented")
}
func (UnimplementedSwipeServiceServer) mustEmbedUnimplementedSwipeServiceServer() {}

func RegisterSwipeServiceServer(s grpc.ServiceRegistrar, srv SwipeServiceServer) {
	s.RegisterService(&SwipeService_ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req any, Resp any](
	method string,
	call func(SwipeServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SwipeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SwipeServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SwipeService_ServiceDesc is the grpc.ServiceDesc for swipe.v1.SwipeService.
var SwipeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SwipeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Suggest", Handler: unary(SwipeService_Suggest_FullMethodName, SwipeServiceServer.Suggest)},
		{MethodName: "RecordDecision", Handler: unary(SwipeService_RecordDecision_FullMethodName, SwipeServiceServer.RecordDecision)},
		{MethodName: "ListMutualMatches", Handler: unary(SwipeService_ListMutualMatches_FullMethodName, SwipeServiceServer.ListMutualMatches)},
		{MethodName: "ListLikesReceived", Handler: unary(SwipeService_ListLikesReceived_FullMethodName, SwipeServiceServer.ListLikesReceived)},
		{MethodName: "CountMatching", Handler: unary(SwipeService_CountMatching_FullMethodName, SwipeServiceServer.CountMatching)},
		{MethodName: "Undo", Handler: unary(SwipeService_Undo_FullMethodName, SwipeServiceServer.Undo)},
		{MethodName: "Reset", Handler: unary(SwipeService_Reset_FullMethodName, SwipeServiceServer.Reset)},
		{MethodName: "GetPreferences", Handler: unary(SwipeService_GetPreferences_FullMethodName, SwipeServiceServer.GetPreferences)},
		{MethodName: "UpdatePreferences", Handler: unary(SwipeService_UpdatePreferences_FullMethodName, SwipeServiceServer.UpdatePreferences)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swipe/v1/swipe.proto",
}
