package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/matching"
)

func TestMap_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"invalid", fmt.Errorf("%w: self action", matching.ErrInvalidInput), codes.InvalidArgument},
		{"not found", fmt.Errorf("%w: target", matching.ErrNotFound), codes.NotFound},
		{"gorm not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"unauthorized", fmt.Errorf("%w: inactive", matching.ErrUnauthorized), codes.PermissionDenied},
		{"conflict", matching.ErrConflict, codes.Aborted},
		{"duplicate key", gorm.ErrDuplicatedKey, codes.Aborted},
		{"dependency", fmt.Errorf("%w: redis", matching.ErrDependencyUnavailable), codes.Unavailable},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"other", fmt.Errorf("boom"), codes.Internal},
		{"already status", status.Error(codes.Unauthenticated, "no token"), codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(Map(tt.err)))
		})
	}
}

func TestMap_Nil(t *testing.T) {
	assert.NoError(t, Map(nil))
}

func TestMap_RateLimitedCarriesRetryInfo(t *testing.T) {
	err := Map(fmt.Errorf("record: %w", &matching.RateLimitError{RetryAfter: 1500 * time.Millisecond}))

	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	d, ok := RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, d)
}

func TestMap_InternalHidesDetail(t *testing.T) {
	err := Map(fmt.Errorf("dial tcp 10.0.0.1:3306: secret"))
	assert.NotContains(t, status.Convert(err).Message(), "secret")
}
