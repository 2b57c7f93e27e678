package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
)

// MatchRepository owns the match markers that serialize match emission.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Materialize inserts the marker for the unordered pair if both directions
// are LIKE at that moment.
//
// Behavior:
//   - Both decision rows are read with FOR UPDATE inside the insert's
//     transaction, so a PASS, undo or reset on either row waits for the
//     marker to commit and then dissolves it.
//   - mutual is false when either direction is no longer LIKE; no marker
//     is written then.
//   - won is true only for the caller whose insert created the row.
func (r *MatchRepository) Materialize(ctx context.Context, a, b uint64, at time.Time) (mutual, won bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var likes []db.Decision
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("((actor_id = ? AND target_id = ?) OR (actor_id = ? AND target_id = ?)) AND action = ?",
				a, b, b, a, db.ActionLike).
			Find(&likes).Error; err != nil {
			return err
		}
		if len(likes) != 2 {
			return nil
		}
		mutual = true

		marker := db.NewMatchMarker(a, b, at)
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
		if res.Error != nil {
			return res.Error
		}
		won = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return mutual, won, nil
}

// Exists reports whether the pair currently carries a marker.
func (r *MatchRepository) Exists(ctx context.Context, a, b uint64) (bool, error) {
	marker := db.NewMatchMarker(a, b, time.Time{})
	err := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", marker.UserLow, marker.UserHigh).
		Take(&db.MatchMarker{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
