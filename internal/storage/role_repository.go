package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// RoleRepository defines the interface for role request/grant data operations.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Role, error)
	// ListPending returns every role request awaiting admin review, oldest first.
	ListPending(ctx context.Context) ([]models.Role, error)
	UpdateStatus(ctx context.Context, id uint, status models.RoleStatus) error
	// FindForUser returns the user's role record with the given name in any
	// status, or nil when none exists.
	FindForUser(ctx context.Context, userID uint, name models.RoleName) (*models.Role, error)
	// HasApprovedRole reports whether the user holds an approved role with
	// the given name.
	HasApprovedRole(ctx context.Context, userID uint, name models.RoleName) (bool, error)
}

type gormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GORM-based RoleRepository.
func NewGormRoleRepository(db *gorm.DB) RoleRepository {
	return &gormRoleRepository{db: db}
}

func (r *gormRoleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *gormRoleRepository) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *gormRoleRepository) ListForUser(ctx context.Context, userID uint) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&roles).Error
	return roles, err
}

func (r *gormRoleRepository) ListPending(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RoleStatusPending).
		Order("created_at ASC").
		Find(&roles).Error
	return roles, err
}

func (r *gormRoleRepository) UpdateStatus(ctx context.Context, id uint, status models.RoleStatus) error {
	return r.db.WithContext(ctx).Model(&models.Role{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormRoleRepository) FindForUser(ctx context.Context, userID uint, name models.RoleName) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *gormRoleRepository) HasApprovedRole(ctx context.Context, userID uint, name models.RoleName) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Role{}).
		Where("user_id = ? AND name = ? AND status = ?", userID, name, models.RoleStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
