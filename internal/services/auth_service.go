package services

import (
	"context"
	"errors"
	"fmt"

	"teamnet-go/internal/auth"
	"teamnet-go/internal/config"
	"teamnet-go/internal/models"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRoleName    = errors.New("unknown role name")
)

// AuthService handles registration, login and logout.
type AuthService interface {
	// Register creates a new user account. When requestedRole is non-empty a
	// pending role request is filed alongside; it stays pending until an
	// admin approves it.
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	// Login verifies credentials and issues a JWT.
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	// Logout revokes the token by blacklisting its JTI until its natural
	// expiry.
	Logout(ctx context.Context, claims *auth.Claims) error
}

// RegisterRequest carries the signup form fields.
type RegisterRequest struct {
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	Email          string          `json:"email"`
	FullName       string          `json:"fullName"`
	GraduationYear *int            `json:"graduationYear,omitempty"`
	RequestedRole  models.RoleName `json:"requestedRole,omitempty"`
}

type authService struct {
	userRepo  storage.UserRepository
	roleRepo  storage.RoleRepository
	blacklist auth.TokenBlacklist
	authCfg   config.AuthConfig
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo storage.UserRepository,
	roleRepo storage.RoleRepository,
	blacklist auth.TokenBlacklist,
	authCfg config.AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		blacklist: blacklist,
		authCfg:   authCfg,
		logger:    logger,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.RequestedRole != "" && !models.ValidRoleName(req.RequestedRole) {
		return nil, ErrInvalidRoleName
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}
	if req.Email != "" {
		if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email availability: %w", err)
		}
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       req.Username,
		PasswordHash:   passwordHash,
		Email:          req.Email,
		FullName:       req.FullName,
		GraduationYear: req.GraduationYear,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if req.RequestedRole != "" {
		role := &models.Role{
			UserID: user.ID,
			Name:   req.RequestedRole,
			Status: models.RoleStatusPending,
		}
		// Role requests are never auto-approved; an admin has to act.
		if err := s.roleRepo.Create(ctx, role); err != nil {
			// The account itself stands; the user can re-request the role.
			s.logger.Error("failed to create role request at signup",
				zap.Uint("userID", user.ID),
				zap.String("role", string(req.RequestedRole)),
				zap.Error(err))
		} else {
			user.Roles = append(user.Roles, *role)
		}
	}

	s.logger.Info("user registered", zap.Uint("userID", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.authCfg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return fmt.Errorf("token is missing the claims required for revocation")
	}
	if err := s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
