package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"evamed-backend/internal/model"
	"evamed-backend/internal/repository"
	"evamed-backend/utilities"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)

// LoginResult is returned by Login and Refresh.
type LoginResult struct {
	OK           bool   `json:"ok"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
}

// CreateUserInput is the payload for a new back-office account.
type CreateUserInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// AuthService interface
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	ListUsers(ctx context.Context) ([]model.AdminUser, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*model.AdminUser, error)
	DeleteUser(ctx context.Context, actorID, id uint) error
	// EnsureBootstrapAdmin creates the given admin when no admin account exists.
	EnsureBootstrapAdmin(ctx context.Context, username, password, displayName string) (bool, error)
}

type authService struct {
	store  *repository.Store
	tokens *utilities.TokenManager
}

// NewAuthService initializes authentication service
func NewAuthService(store *repository.Store, tokens *utilities.TokenManager) AuthService {
	return &authService{store: store, tokens: tokens}
}

// HashPassword returns the bcrypt hash stored for an account.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must have at least %d characters", ErrInvalidUser, minPasswordLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.AdminUsers.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		utilities.L().Warn("failed login", zap.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, true)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	// The account may have been deleted or changed role since the token was issued.
	user, err := s.store.AdminUsers.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.issue(user)
}

func (s *authService) issue(user *model.AdminUser) (*LoginResult, error) {
	access, refresh, err := s.tokens.GenerateTokens(utilities.TokenSubject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, err
	}
	display := user.DisplayName
	if display == "" {
		display = user.Username
	}
	return &LoginResult{
		OK:           true,
		Token:        access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Username:     user.Username,
		DisplayName:  display,
		Role:         user.Role,
	}, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	users, err := s.store.AdminUsers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *authService) CreateUser(ctx context.Context, in CreateUserInput) (*model.AdminUser, error) {
	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-64 letters, digits, dots, dashes or underscores", ErrInvalidUser)
	}
	role := in.Role
	if role == "" {
		role = model.RoleCreator
	}
	if role != model.RoleAdmin && role != model.RoleCreator {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, role)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.AdminUser{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         role,
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.AdminUsers.GetByUsername(ctx, username); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.AdminUsers.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utilities.L().Info("admin user created", zap.String("username", username), zap.String("role", role))
	return user, nil
}

func (s *authService) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.AdminUsers.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if user.Role == model.RoleAdmin {
			n, err := tx.AdminUsers.CountByRole(ctx, model.RoleAdmin)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastAdmin
			}
		}
		if err := tx.AdminUsers.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		utilities.L().Info("admin user deleted", zap.String("username", user.Username), zap.Uint("by", actorID))
		return nil
	})
}

func (s *authService) EnsureBootstrapAdmin(ctx context.Context, username, password, displayName string) (bool, error) {
	n, err := s.store.AdminUsers.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if password == "" {
		return false, fmt.Errorf("%w: no admin account exists and ADMIN_PASS is not set", ErrInvalidUser)
	}
	if _, err := s.CreateUser(ctx, CreateUserInput{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		Role:        model.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}
