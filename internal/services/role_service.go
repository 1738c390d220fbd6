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

var (
	ErrRoleNotFound      = errors.New("role request not found")
	ErrRoleAlreadyExists = errors.New("a role request with this name already exists for the user")
	ErrRoleNotPending    = errors.New("role request has already been reviewed")
)

// RoleService manages role requests and the admin approval gate. A role is
// requested at signup or later, sits in pending state, and only an explicit
// admin action approves or rejects it.
type RoleService interface {
	// Request files a pending role request for the user. At most one request
	// per (user, role name) pair, in any status.
	Request(ctx context.Context, userID uint, name models.RoleName) (*models.Role, error)
	// ListForUser returns the user's role records in every status.
	ListForUser(ctx context.Context, userID uint) ([]models.Role, error)
	// ListPending returns every request awaiting review, oldest first, with
	// basic requester info attached.
	ListPending(ctx context.Context) ([]models.RoleWithUser, error)
	// Review approves or rejects a pending request.
	Review(ctx context.Context, roleID uint, approve bool) (*models.Role, error)
}

type roleService struct {
	roleRepo storage.RoleRepository
	userRepo storage.UserRepository
	logger   *zap.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo storage.RoleRepository, userRepo storage.UserRepository, logger *zap.Logger) RoleService {
	return &roleService{roleRepo: roleRepo, userRepo: userRepo, logger: logger}
}

func (s *roleService) Request(ctx context.Context, userID uint, name models.RoleName) (*models.Role, error) {
	if !models.ValidRoleName(name) {
		return nil, ErrInvalidRoleName
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}

	existing, err := s.roleRepo.FindForUser(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing role request: %w", err)
	}
	if existing != nil {
		return nil, ErrRoleAlreadyExists
	}

	role := &models.Role{
		UserID: userID,
		Name:   name,
		Status: models.RoleStatusPending,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role request: %w", err)
	}
	s.logger.Info("role requested", zap.Uint("userID", userID), zap.String("role", string(name)))
	return role, nil
}

func (s *roleService) ListForUser(ctx context.Context, userID uint) ([]models.Role, error) {
	return s.roleRepo.ListForUser(ctx, userID)
}

func (s *roleService) ListPending(ctx context.Context) ([]models.RoleWithUser, error) {
	roles, err := s.roleRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending role requests: %w", err)
	}

	userIDs := make([]uint, 0, len(roles))
	for _, r := range roles {
		userIDs = append(userIDs, r.UserID)
	}
	users, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester profiles: %w", err)
	}
	userByID := make(map[uint]*models.UserBasicInfo, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	result := make([]models.RoleWithUser, 0, len(roles))
	for _, r := range roles {
		result = append(result, models.RoleWithUser{Role: r, User: userByID[r.UserID]})
	}
	return result, nil
}

func (s *roleService) Review(ctx context.Context, roleID uint, approve bool) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to load role request %d: %w", roleID, err)
	}
	if role.Status != models.RoleStatusPending {
		return nil, ErrRoleNotPending
	}

	newStatus := models.RoleStatusRejected
	if approve {
		newStatus = models.RoleStatusApproved
	}
	if err := s.roleRepo.UpdateStatus(ctx, roleID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update role request %d: %w", roleID, err)
	}
	role.Status = newStatus
	s.logger.Info("role request reviewed",
		zap.Uint("roleID", roleID),
		zap.String("status", string(newStatus)))
	return role, nil
}
