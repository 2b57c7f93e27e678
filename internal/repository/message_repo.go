package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
)

// MessageRepository is the minimal messaging store the auto-message needs.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// LatestFrom returns the most recent message sender sent to receiver, or nil.
func (r *MessageRepository) LatestFrom(ctx context.Context, senderID, receiverID uint64) (*db.Message, error) {
	var m db.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Order("id DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Send stores a message.
func (r *MessageRepository) Send(ctx context.Context, senderID, receiverID uint64, content string) error {
	return r.db.WithContext(ctx).Create(&db.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}).Error
}

// Between returns the conversation between two users in send order.
func (r *MessageRepository) Between(ctx context.Context, a, b uint64) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}
