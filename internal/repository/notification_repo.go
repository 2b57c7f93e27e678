package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
)

// NotificationRepository is the in-app inbox.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// Create appends a notification for userID.
func (r *NotificationRepository) Create(ctx context.Context, userID uint64, kind, title, message string) error {
	return r.db.WithContext(ctx).Create(&db.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}).Error
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint64, limit int) ([]db.Notification, error) {
	var out []db.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
