// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/matching"
)

// Map converts engine/repo/infra errors into gRPC status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var rl *matching.RateLimitError
	switch {
	case errors.As(err, &rl):
		return rateLimited(rl)

	case errors.Is(err, matching.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, matching.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, matching.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, matching.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())

	case errors.Is(err, matching.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return status.Error(codes.Aborted, "concurrent update, retry")

	case errors.Is(err, matching.ErrDependencyUnavailable):
		return status.Error(codes.Unavailable, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func rateLimited(rl *matching.RateLimitError) error {
	st := status.New(codes.ResourceExhausted, rl.Error())
	withInfo, err := st.WithDetails(&errdetails.RetryInfo{
		RetryDelay: durationpb.New(rl.RetryAfter),
	})
	if err != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// RetryAfter extracts the RetryInfo delay from a status error, if any.
func RetryAfter(err error) (time.Duration, bool) {
	st, isStatus := status.FromError(err)
	if !isStatus {
		return 0, false
	}
	for _, detail := range st.Details() {
		if ri, isRetry := detail.(*errdetails.RetryInfo); isRetry {
			return ri.GetRetryDelay().AsDuration(), true
		}
	}
	return 0, false
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// PermissionDenied creates a gRPC PermissionDenied error.
func PermissionDenied(msg string) error {
	return status.Error(codes.PermissionDenied, msg)
}
