package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// ConnectionRepository defines the interface for connection data operations.
type ConnectionRepository interface {
	Create(ctx context.Context, connection *models.Connection) error
	GetByID(ctx context.Context, id uint) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id uint, status models.ConnectionStatus) error
	Delete(ctx context.Context, id uint) error
	// ListForUser returns every connection where the user is requester or
	// receiver, newest first.
	ListForUser(ctx context.Context, userID uint) ([]models.Connection, error)
	// FindActiveBetween returns a pending or accepted connection linking the
	// two users in either direction, or nil when none exists.
	FindActiveBetween(ctx context.Context, userID1, userID2 uint) (*models.Connection, error)
	// ConnectedUserIDs returns the ids of every user linked to the given user
	// by a connection record in any status. Used for suggestion exclusion.
	ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GORM-based ConnectionRepository.
func NewGormConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &gormConnectionRepository{db: db}
}

func (r *gormConnectionRepository) Create(ctx context.Context, connection *models.Connection) error {
	return r.db.WithContext(ctx).Create(connection).Error
}

func (r *gormConnectionRepository) GetByID(ctx context.Context, id uint) (*models.Connection, error) {
	var connection models.Connection
	err := r.db.WithContext(ctx).First(&connection, id).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func (r *gormConnectionRepository) UpdateStatus(ctx context.Context, id uint, status models.ConnectionStatus) error {
	return r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete hard-deletes the connection record regardless of status.
func (r *gormConnectionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Connection{}, id).Error
}

func (r *gormConnectionRepository) ListForUser(ctx context.Context, userID uint) ([]models.Connection, error) {
	var connections []models.Connection
	err := r.db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&connections).Error
	return connections, err
}

// FindActiveBetween checks both directions for a pending or accepted
// connection between the pair.
func (r *gormConnectionRepository) FindActiveBetween(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	var connection models.Connection
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", userID1, userID2, userID2, userID1).
		Where("status IN ?", []models.ConnectionStatus{models.ConnectionStatusPending, models.ConnectionStatusAccepted}).
		First(&connection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no active connection is not an error here
		}
		return nil, err
	}
	return &connection, nil
}

// ConnectedUserIDs collects partner ids from both directions.
func (r *gormConnectionRepository) ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	var idsAsRequester []uint
	err := r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("requester_id = ?", userID).
		Pluck("receiver_id", &idsAsRequester).Error
	if err != nil {
		return nil, err
	}

	var idsAsReceiver []uint
	err = r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("receiver_id = ?", userID).
		Pluck("requester_id", &idsAsReceiver).Error
	if err != nil {
		return nil, err
	}

	return append(idsAsRequester, idsAsReceiver...), nil
}
