package db

import (
	"strings"
	"time"
)

// Role partitions users into the two sides of the marketplace.
type Role string

const (
	RoleMember   Role = "member"
	RoleProvider Role = "provider"
)

// Counterpart returns the role a user of r is matched against.
// Unknown roles have no counterpart.
func (r Role) Counterpart() (Role, bool) {
	switch r {
	case RoleMember:
		return RoleProvider, true
	case RoleProvider:
		return RoleMember, true
	}
	return "", false
}

// Action is a directed decision one user records about another.
type Action string

const (
	ActionLike Action = "LIKE"
	ActionPass Action = "PASS"
)

// ParseAction is case-insensitive and ignores surrounding whitespace.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case ActionLike, ActionPass:
		return a, true
	}
	return "", false
}

// User table. Account CRUD lives outside this service; rows are read-only here
// apart from seeding.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:16;not null;index:idx_users_role_active,priority:1"`
	Active       bool   `gorm:"not null;index:idx_users_role_active,priority:2"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	Profile *Profile `gorm:"foreignKey:UserID"`
}

// Profile holds the attributes candidates are scored on.
type Profile struct {
	UserID      uint64 `gorm:"primaryKey"`
	DisplayName string `gorm:"size:128;not null"`
	City        string `gorm:"size:128;not null"`
	Country     string `gorm:"size:128;not null"`
	Latitude    *float64
	Longitude   *float64
	Tags        []string          `gorm:"serializer:json"`
	Languages   []string          `gorm:"serializer:json"`
	Appearance  map[string]string `gorm:"serializer:json"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

// HasLocation reports whether both coordinates are known.
func (p *Profile) HasLocation() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

// Preference is the seeker's stored filter. Every field is optional; a missing
// row behaves as an empty preference.
type Preference struct {
	UserID              uint64              `gorm:"primaryKey" json:"-"`
	Tags                []string            `gorm:"serializer:json" json:"tags,omitempty" validate:"omitempty,max=50,dive,required,max=64"`
	Languages           []string            `gorm:"serializer:json" json:"languages,omitempty" validate:"omitempty,max=20,dive,required,max=64"`
	City                string              `gorm:"size:128;not null" json:"city,omitempty" validate:"max=128"`
	Country             string              `gorm:"size:128;not null" json:"country,omitempty" validate:"max=128"`
	CenterLat           *float64            `json:"center_lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	CenterLng           *float64            `json:"center_lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	RadiusKm            *float64            `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=20000"`
	Appearance          map[string][]string `gorm:"serializer:json" json:"appearance,omitempty" validate:"omitempty,max=32,dive,keys,required,max=64,endkeys,min=1"`
	AutoMessageEnabled  bool                `gorm:"not null" json:"auto_message_enabled"`
	AutoMessageTemplate string              `gorm:"type:text" json:"auto_message_template,omitempty" validate:"required_if=AutoMessageEnabled true,max=1000"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"-"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"-"`
}

// RadiusFilter reports whether a centre and a radius are both set.
func (p *Preference) RadiusFilter() bool {
	return p != nil && p.CenterLat != nil && p.CenterLng != nil && p.RadiusKm != nil
}

// Decision is the current directed decision of actor about target.
//
// Composite PK: (ActorID, TargetID)
//   - One row per ordered pair; a new decision overwrites the previous one.
//
// Indexes:
//   - idx_decisions_target_action(target_id, action, updated_at)
//     Serves "who liked me" lists and counts.
type Decision struct {
	ActorID   uint64    `gorm:"primaryKey"`
	TargetID  uint64    `gorm:"primaryKey;index:idx_decisions_target_action,priority:1"`
	Action    Action    `gorm:"size:8;not null;index:idx_decisions_target_action,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_decisions_target_action,priority:3"`
}

// DecisionEvent is the append-only log of every decision write. Undo walks it
// backwards; the ledger rate limiter counts it.
type DecisionEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ActorID   uint64    `gorm:"not null;index:idx_decision_events_actor,priority:1"`
	TargetID  uint64    `gorm:"not null"`
	Action    Action    `gorm:"size:8;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_decision_events_actor,priority:2"`
}

// MatchMarker records that an unordered pair is currently matched.
// UserLow < UserHigh always holds.
type MatchMarker struct {
	UserLow   uint64    `gorm:"primaryKey;autoIncrement:false"`
	UserHigh  uint64    `gorm:"primaryKey;autoIncrement:false"`
	MatchedAt time.Time `gorm:"not null"`
}

// NewMatchMarker orders the pair.
func NewMatchMarker(a, b uint64, at time.Time) MatchMarker {
	if a > b {
		a, b = b, a
	}
	return MatchMarker{UserLow: a, UserHigh: b, MatchedAt: at}
}

// Notification kinds.
const (
	NotificationLike  = "like"
	NotificationMatch = "match"
)

// Notification is an in-app notice for a user.
type Notification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index"`
	Type      string    `gorm:"size:32;not null"`
	Title     string    `gorm:"size:128;not null"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message is a direct message between two users.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID   uint64    `gorm:"not null;index:idx_messages_pair,priority:1"`
	ReceiverID uint64    `gorm:"not null;index:idx_messages_pair,priority:2"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
