package storage

import (
	"context"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// NotificationRepository defines the interface for notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	// ListForRecipient returns the recipient's notifications, newest first,
	// bounded by limit.
	ListForRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	// MarkAllRead flips the read flag on every currently-unread notification
	// for the recipient.
	MarkAllRead(ctx context.Context, recipientID uint) error
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-based NotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *gormNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *gormNotificationRepository) ListForRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

func (r *gormNotificationRepository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}

func (r *gormNotificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
