package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
)

// PreferenceRepository stores the seeker-side filters.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

// Get returns the user's preferences. A missing row yields an empty
// preference, never an error.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint64) (*db.Preference, error) {
	var p db.Preference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &db.Preference{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save upserts the full preference row.
func (r *PreferenceRepository) Save(ctx context.Context, p *db.Preference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(p).Error
}
