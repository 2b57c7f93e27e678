package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidToken is returned for tokens that do not decode to a Cursor.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque pagination state we encode/decode.
// UserID + AtUnixMilli (the sort timestamp) establish a stable keyset position.
type Cursor struct {
	UserID      uint64 `json:"user_id"`
	AtUnixMilli int64  `json:"at_ms,omitempty"`
}

// At returns the cursor timestamp in UTC.
func (c Cursor) At() time.Time {
	return time.UnixMilli(c.AtUnixMilli).UTC()
}

// IsZero reports a first-page cursor.
func (c Cursor) IsZero() bool {
	return c.UserID == 0 && c.AtUnixMilli == 0
}

// After builds the cursor that resumes after the row (userID, at).
func After(userID uint64, at time.Time) Cursor {
	return Cursor{UserID: userID, AtUnixMilli: at.UnixMilli()}
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}
