package services

import (
	"context"
	"errors"
	"fmt"

	"teamnet-go/internal/models"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when an operation references a user id that
// does not exist.
var ErrUserNotFound = errors.New("user not found")

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "leave unchanged"; empty strings clear the field.
type ProfileUpdate struct {
	FullName       *string  `json:"fullName,omitempty"`
	AvatarURL      *string  `json:"avatarUrl,omitempty"`
	Bio            *string  `json:"bio,omitempty"`
	GraduationYear *int     `json:"graduationYear,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Interests      []string `json:"interests,omitempty"`
}

// UserService exposes member profiles and directory search.
type UserService interface {
	// GetProfile returns the user with role records preloaded.
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	// UpdateProfile applies the non-nil fields of update to the user's own
	// profile.
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error)
	// Search matches the query against usernames and full names,
	// case-insensitively, excluding the searching user.
	Search(ctx context.Context, query string, currentUserID uint) ([]models.User, error)
}

type userService struct {
	userRepo storage.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo storage.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.GraduationYear != nil {
		user.GraduationYear = update.GraduationYear
	}
	if update.Skills != nil {
		user.Skills = update.Skills
	}
	if update.Interests != nil {
		user.Interests = update.Interests
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, query string, currentUserID uint) ([]models.User, error) {
	if query == "" {
		return []models.User{}, nil
	}
	users, err := s.userRepo.SearchUsers(ctx, query, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
