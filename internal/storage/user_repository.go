package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithRoles(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePresence(ctx context.Context, userID uint, online bool, lastSeen time.Time) error
	SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error)
	// ListAllWithRoles returns every user except the excluded one, with role
	// records preloaded. Used by the suggestion engine.
	ListAllWithRoles(ctx context.Context, excludeUserID uint) ([]models.User, error)
	GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error)
	GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err // Handles gorm.ErrRecordNotFound as well
	}
	return &user, nil
}

// GetByIDWithRoles retrieves a user with their role records preloaded.
func (r *gormUserRepository) GetByIDWithRoles(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Roles").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username.
func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user record in the database.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdatePresence flips the online flag and last-seen timestamp for a user.
func (r *gormUserRepository) UpdatePresence(ctx context.Context, userID uint, online bool, lastSeen time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"online": online, "last_seen_at": lastSeen}).Error
}

// SearchUsers performs a case-insensitive substring match on username and
// full name, excluding the searching user.
func (r *gormUserRepository) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error) {
	var users []models.User
	searchTerm := "%" + strings.ToLower(query) + "%"

	err := r.db.WithContext(ctx).
		Where("(LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?) AND id != ?", searchTerm, searchTerm, currentUserID).
		Select("id", "username", "full_name", "avatar_url", "graduation_year", "online").
		Limit(10).
		Find(&users).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users, nil // empty result is not an error for search
		}
		return nil, err
	}
	return users, nil
}

// ListAllWithRoles returns every user except the excluded one, roles preloaded.
func (r *gormUserRepository) ListAllWithRoles(ctx context.Context, excludeUserID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id != ?", excludeUserID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetBasicInfoByID retrieves minimal public user info by ID.
func (r *gormUserRepository) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	var basicInfo models.UserBasicInfo
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "full_name", "avatar_url", "graduation_year", "online").
		Where("id = ?", id).
		First(&basicInfo).Error
	if err != nil {
		return nil, err
	}
	return &basicInfo, nil
}

// GetMultipleBasicInfoByIDs retrieves minimal public user info for a list of user IDs.
func (r *gormUserRepository) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	var basicInfos []*models.UserBasicInfo
	if len(userIDs) == 0 {
		return basicInfos, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "full_name", "avatar_url", "graduation_year", "online").
		Where("id IN ?", userIDs).
		Find(&basicInfos).Error
	if err != nil {
		return nil, err
	}
	return basicInfos, nil
}
