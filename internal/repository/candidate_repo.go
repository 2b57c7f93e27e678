package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
)

// CandidateRepository is the read side of users and their profiles.
type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(database *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: database}
}

// CandidateQuery narrows the candidate pool before scoring.
type CandidateQuery struct {
	SeekerID uint64
	Role     db.Role
	Exclude  []uint64
	// City and Country are case-insensitive substring pre-filters.
	City    string
	Country string
	Limit   int
}

// FindUser loads a user with its profile. Returns gorm.ErrRecordNotFound
// (wrapped) when the id is unknown.
func (r *CandidateRepository) FindUser(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Preload("Profile").Take(&u, id).Error; err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// FindUsers loads the given users with profiles, keyed by id. Unknown ids are
// absent from the map.
func (r *CandidateRepository) FindUsers(ctx context.Context, ids []uint64) (map[uint64]db.User, error) {
	out := make(map[uint64]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// FindCandidates returns active users of the requested role, ordered by id.
//
// Behavior:
//   - The seeker and every excluded id are left out.
//   - City/Country filters match profile substrings case-insensitively;
//     users without a profile never pass a non-empty filter.
//   - At most Limit rows are returned.
func (r *CandidateRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Preload("Profile").
		Where("users.role = ? AND users.active = ?", q.Role, true).
		Where("users.id <> ?", q.SeekerID)

	if len(q.Exclude) > 0 {
		query = query.Where("users.id NOT IN ?", q.Exclude)
	}

	if q.City != "" || q.Country != "" {
		query = query.Joins("JOIN profiles p ON p.user_id = users.id")
		if q.City != "" {
			query = query.Where("LOWER(p.city) LIKE ? ESCAPE '!'", containsPattern(q.City))
		}
		if q.Country != "" {
			query = query.Where("LOWER(p.country) LIKE ? ESCAPE '!'", containsPattern(q.Country))
		}
	}

	var users []db.User
	err := query.
		Order("users.id ASC").
		Limit(q.Limit).
		Find(&users).Error
	return users, err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
