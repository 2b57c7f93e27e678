package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

// DecisionRepository provides data access methods for the Decision model.
// It encapsulates all queries related to likes/passes between users, the
// append-only event log behind them, and match-marker cleanup.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository bound to the given DB connection.
func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// Liker is one row of a "who liked me" page.
type Liker struct {
	UserID    uint64
	LikedAt   time.Time
	LikedBack bool
}

// Mutual is one row of a mutual-matches page. MatchedAt is the later of the
// two LIKE timestamps.
type Mutual struct {
	UserID      uint64
	LikedAt     time.Time
	LikedBackAt time.Time
}

func (m Mutual) MatchedAt() time.Time {
	if m.LikedAt.After(m.LikedBackAt) {
		return m.LikedAt
	}
	return m.LikedBackAt
}

var decisionUpsert = clause.OnConflict{
	Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
}

// Record inserts or updates the decision made by actor -> target and appends
// it to the event log, in one transaction.
//
// Behavior:
//   - If (actor_id, target_id) exists → action and updated_at are overwritten.
//   - If it doesn't exist → a new row is inserted.
//   - A PASS removes the pair's match marker; the pair cannot be matched anymore.
//   - A duplicate-key error from a racing first insert is retried once.
//
// Example:
//
//	repo.Record(ctx, 1, 2, db.ActionLike) // user 1 liked user 2
func (r *DecisionRepository) Record(
	ctx context.Context,
	actorID, targetID uint64,
	action db.Action,
) error {
	err := r.record(ctx, actorID, targetID, action)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = r.record(ctx, actorID, targetID, action)
	}
	return err
}

func (r *DecisionRepository) record(ctx context.Context, actorID, targetID uint64, action db.Action) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		decision := db.Decision{ActorID: actorID, TargetID: targetID, Action: action}
		if err := tx.Clauses(decisionUpsert).Create(&decision).Error; err != nil {
			return fmt.Errorf("upsert decision: %w", err)
		}
		if err := tx.Create(&db.DecisionEvent{ActorID: actorID, TargetID: targetID, Action: action}).Error; err != nil {
			return fmt.Errorf("append decision event: %w", err)
		}
		if action == db.ActionPass {
			marker := db.NewMatchMarker(actorID, targetID, time.Time{})
			if err := tx.Where("user_low = ? AND user_high = ?", marker.UserLow, marker.UserHigh).
				Delete(&db.MatchMarker{}).Error; err != nil {
				return fmt.Errorf("dissolve match: %w", err)
			}
		}
		return nil
	})
}

// Get returns the current decision of actor about target, or nil.
func (r *DecisionRepository) Get(ctx context.Context, actorID, targetID uint64) (*db.Decision, error) {
	var d db.Decision
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// HasLiked checks whether an actor currently likes a target.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *DecisionRepository) HasLiked(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("decisions d").
		Where("d.actor_id = ? AND d.target_id = ? AND d.action = ?", actorID, targetID, db.ActionLike).
		Count(&count).Error
	return count > 0, err
}

// DecidedTargets returns every target the actor holds a decision about,
// regardless of action.
func (r *DecisionRepository) DecidedTargets(ctx context.Context, actorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("actor_id = ?", actorID).
		Pluck("target_id", &ids).Error
	return ids, err
}

// ListLikesReceived returns users who currently like the recipient.
//
// Behavior:
//   - Only rows where target_id = X and action = LIKE are returned.
//   - Excludes users that the recipient explicitly passed.
//   - LikedBack is true when the recipient likes the liker too.
//   - Ordered by updated_at DESC, actor_id DESC with cursor pagination.
//
// Example:
//
//	repo.ListLikesReceived(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *DecisionRepository) ListLikesReceived(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]Liker, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("decisions d").
		Select(`d.actor_id AS user_id, d.updated_at AS liked_at,
			CASE WHEN EXISTS (
				SELECT 1 FROM decisions b
				WHERE b.actor_id = d.target_id AND b.target_id = d.actor_id AND b.action = ?
			) THEN 1 ELSE 0 END AS liked_back`, db.ActionLike).
		Where("d.target_id = ? AND d.action = ?", recipientID, db.ActionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM decisions p
				WHERE p.actor_id = ?
				  AND p.target_id = d.actor_id
				  AND p.action = ?
			)`, recipientID, db.ActionPass).
		Order("d.updated_at DESC, d.actor_id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.At()
		query = query.Where(
			"(d.updated_at < ? OR (d.updated_at = ? AND d.actor_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var likers []Liker
	if err := query.Scan(&likers).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(likers) > limit {
		last := likers[limit-1]
		token, _ := pagination.Encode(pagination.After(last.UserID, last.LikedAt))
		nextToken = &token
		likers = likers[:limit]
	}

	return likers, nextToken, nil
}

// CountLikesReceived counts the rows ListLikesReceived would return.
// Used in conjunction with the Redis cache (DB is the fallback).
func (r *DecisionRepository) CountLikesReceived(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("decisions d").
		Where("d.target_id = ? AND d.action = ?", recipientID, db.ActionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM decisions p
				WHERE p.actor_id = ?
				  AND p.target_id = d.actor_id
				  AND p.action = ?
			)`, recipientID, db.ActionPass).
		Count(&count).Error
	return count, err
}

// matchedAtExpr is the later of the two LIKE timestamps of a mutual pair.
const matchedAtExpr = "CASE WHEN d.updated_at > b.updated_at THEN d.updated_at ELSE b.updated_at END"

func (r *DecisionRepository) mutualQuery(ctx context.Context, userID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("decisions d").
		Joins("JOIN decisions b ON b.actor_id = d.target_id AND b.target_id = d.actor_id AND b.action = ?", db.ActionLike).
		Where("d.actor_id = ? AND d.action = ?", userID, db.ActionLike)
}

// ListMutual returns the users that currently match userID, most recently
// matched first, with cursor pagination.
func (r *DecisionRepository) ListMutual(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]Mutual, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.mutualQuery(ctx, userID).
		Select("d.target_id AS user_id, d.updated_at AS liked_at, b.updated_at AS liked_back_at").
		Order(matchedAtExpr + " DESC, d.target_id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.At()
		query = query.Where(
			"("+matchedAtExpr+" < ? OR ("+matchedAtExpr+" = ? AND d.target_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var rows []Mutual
	if err := query.Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(rows) > limit {
		last := rows[limit-1]
		token, _ := pagination.Encode(pagination.After(last.UserID, last.MatchedAt()))
		nextToken = &token
		rows = rows[:limit]
	}

	return rows, nextToken, nil
}

// CountMutual counts the users that currently match userID.
func (r *DecisionRepository) CountMutual(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.mutualQuery(ctx, userID).Count(&count).Error
	return count, err
}

// UndoLatest reverts the actor's most recent decision that is still in effect.
//
// Behavior:
//   - Walks the event log newest first, skipping pairs whose row is gone
//     (already undone or reset).
//   - Deletes that decision row and the pair's match marker.
//   - Returns nil when nothing is left to undo.
func (r *DecisionRepository) UndoLatest(ctx context.Context, actorID uint64) (*db.DecisionEvent, error) {
	var undone *db.DecisionEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev db.DecisionEvent
		err := tx.Table("decision_events e").
			Select("e.*").
			Joins("JOIN decisions d ON d.actor_id = e.actor_id AND d.target_id = e.target_id").
			Where("e.actor_id = ?", actorID).
			Order("e.id DESC").
			Limit(1).
			Take(&ev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find latest decision: %w", err)
		}

		if err := tx.Where("actor_id = ? AND target_id = ?", ev.ActorID, ev.TargetID).
			Delete(&db.Decision{}).Error; err != nil {
			return fmt.Errorf("delete decision: %w", err)
		}
		marker := db.NewMatchMarker(ev.ActorID, ev.TargetID, time.Time{})
		if err := tx.Where("user_low = ? AND user_high = ?", marker.UserLow, marker.UserHigh).
			Delete(&db.MatchMarker{}).Error; err != nil {
			return fmt.Errorf("dissolve match: %w", err)
		}
		undone = &ev
		return nil
	})
	return undone, err
}

// DeleteByActor removes the actor's decisions and returns the affected targets.
//
// Behavior:
//   - passOnly = true → only PASS rows are removed (soft reset).
//   - passOnly = false → every row is removed together with every match
//     marker involving the actor (hard reset).
//   - The event log is left untouched.
func (r *DecisionRepository) DeleteByActor(ctx context.Context, actorID uint64, passOnly bool) ([]uint64, error) {
	var targets []uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := func() *gorm.DB {
			q := tx.Model(&db.Decision{}).Where("actor_id = ?", actorID)
			if passOnly {
				q = q.Where("action = ?", db.ActionPass)
			}
			return q
		}

		if err := scope().Pluck("target_id", &targets).Error; err != nil {
			return fmt.Errorf("list decisions: %w", err)
		}
		if len(targets) == 0 {
			return nil
		}
		if err := scope().Delete(&db.Decision{}).Error; err != nil {
			return fmt.Errorf("delete decisions: %w", err)
		}
		if !passOnly {
			if err := tx.Where("user_low = ? OR user_high = ?", actorID, actorID).
				Delete(&db.MatchMarker{}).Error; err != nil {
				return fmt.Errorf("dissolve matches: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// EventsSince counts the actor's decision events created after since and
// returns the oldest of them.
func (r *DecisionRepository) EventsSince(ctx context.Context, actorID uint64, since time.Time) (int64, time.Time, error) {
	var count int64
	scope := r.db.WithContext(ctx).
		Model(&db.DecisionEvent{}).
		Where("actor_id = ? AND created_at > ?", actorID, since)
	if err := scope.Count(&count).Error; err != nil {
		return 0, time.Time{}, err
	}
	if count == 0 {
		return 0, time.Time{}, nil
	}

	var oldest db.DecisionEvent
	if err := r.db.WithContext(ctx).
		Where("actor_id = ? AND created_at > ?", actorID, since).
		Order("created_at ASC, id ASC").
		Take(&oldest).Error; err != nil {
		return 0, time.Time{}, err
	}
	return count, oldest.CreatedAt, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
