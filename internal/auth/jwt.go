// Package auth verifies bearer tokens on incoming RPCs and carries the
// authenticated user id in the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrMissingToken = errors.New("missing authorization bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the token payload. user_id is the decimal user id.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Verifier issues and checks HS256 tokens.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Issue mints a token for userID valid for ttl.
func (v *Verifier) Issue(userID uint64, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		UserID: strconv.FormatUint(userID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses token and returns the user id it was issued for.
func (v *Verifier) Verify(token string) (uint64, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad user_id claim", ErrInvalidToken)
	}
	return id, nil
}

type principalKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, principalKey{}, id)
}

// UserID returns the authenticated user id, if any.
func UserID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(principalKey{}).(uint64)
	return id, ok
}

// UnaryServerInterceptor rejects calls without a valid bearer token and
// stores the caller's id in the handler context.
func (v *Verifier) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token, err := bearer(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		id, err := v.Verify(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(WithUserID(ctx, id), req)
	}
}

func bearer(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrMissingToken
	}
	for _, h := range md.Get("authorization") {
		if strings.HasPrefix(h, "Bearer ") {
			if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
				return t, nil
			}
		}
	}
	return "", ErrMissingToken
}
