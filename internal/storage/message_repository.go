package storage

import (
	"context"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// MessageRepository defines the interface for message data operations.
// Messages are immutable apart from the read flag and are never deleted.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	// ListBetweenUsers returns every message exchanged between the two users,
	// ascending by creation time.
	ListBetweenUsers(ctx context.Context, userID, partnerID uint) ([]*models.Message, error)
	// ListForUser returns every message where the user is sender or receiver,
	// descending by creation time.
	ListForUser(ctx context.Context, userID uint) ([]*models.Message, error)
	// MarkConversationRead flips the read flag on every unread message from
	// partner to user. Returns the number of rows affected; idempotent.
	MarkConversationRead(ctx context.Context, userID, partnerID uint) (int64, error)
	// CountUnread counts unread messages addressed to the user.
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

// gormMessageRepository implements MessageRepository using GORM.
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based MessageRepository.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *gormMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *gormMessageRepository) ListBetweenUsers(ctx context.Context, userID, partnerID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *gormMessageRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead only touches messages flowing partner -> user; the
// opposite direction is never affected.
func (r *gormMessageRepository) MarkConversationRead(ctx context.Context, userID, partnerID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", userID, partnerID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *gormMessageRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
