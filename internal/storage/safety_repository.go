package storage

import (
	"context"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// BlockRepository defines the interface for block record data operations.
type BlockRepository interface {
	Create(ctx context.Context, block *models.BlockRecord) error
	// ExistsBetween reports whether a block record links the two users in
	// either direction. The messaging send-guard checks both ways.
	ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error)
}

type gormBlockRepository struct {
	db *gorm.DB
}

// NewGormBlockRepository creates a new GORM-based BlockRepository.
func NewGormBlockRepository(db *gorm.DB) BlockRepository {
	return &gormBlockRepository{db: db}
}

func (r *gormBlockRepository) Create(ctx context.Context, block *models.BlockRecord) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *gormBlockRepository) ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlockRecord{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", userID1, userID2, userID2, userID1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReportRepository defines the interface for report data operations.
// Reports are append-only; there is no retraction.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
}

type gormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GORM-based ReportRepository.
func NewGormReportRepository(db *gorm.DB) ReportRepository {
	return &gormReportRepository{db: db}
}

func (r *gormReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}
