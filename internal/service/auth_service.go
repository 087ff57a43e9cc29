package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const errInvalidCredentials = "invalid email or password"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,nefield=CurrentPassword"`
}

type LoginResponse struct {
	Tokens     *jwt.Pair          `json:"tokens"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type MeResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
	// Authenticate resolves an access token to its still-valid user.
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

type authService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	tokens    *jwt.Manager
	log       *zap.Logger
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, repos *repository.Repositories, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{
		db:        db,
		userRepo:  repos.Users,
		auditRepo: repos.Audit,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized(errInvalidCredentials)
	}
	if err != nil {
		return nil, Unexpected("failed to load user", err)
	}
	if !user.IsActive {
		return nil, Unauthorized("user account is inactive")
	}
	if !user.CheckPassword(req.Password) {
		s.log.Info("login rejected", zap.String("email", req.Email))
		return nil, Unauthorized(errInvalidCredentials)
	}

	// a new token version signs out every other session of this user
	now := s.now().UTC()
	user.TokenVersion = uuid.NewString()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, Unexpected("failed to update session", err)
	}
	if err := writeAudit(s.db.WithContext(ctx), s.auditRepo, user.ID, model.AuditLogin, "user", user.ID.String(), nil); err != nil {
		s.log.Warn("login audit failed", zap.Error(err))
	}

	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.tokens.Validate(refreshToken, jwt.RefreshToken)
	if err != nil {
		return nil, Unauthorized(err.Error())
	}
	user, err := s.currentUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(ctx, userID, uuid.NewString()); err != nil {
		return Unexpected("failed to revoke session", err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return storageError(err, "user", userID)
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return Validation("current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return Unexpected("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, user.Password); err != nil {
		return Unexpected("failed to update password", err)
	}
	return s.Logout(ctx, userID)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storageError(err, "user", userID)
	}
	return &MeResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokens.Validate(accessToken, jwt.AccessToken)
	if err != nil {
		return nil, Unauthorized(err.Error())
	}
	return s.currentUser(ctx, claims)
}

// currentUser rejects tokens of deactivated users and tokens issued before the last logout.
func (s *authService) currentUser(ctx context.Context, claims *jwt.Claims) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized("user not found")
	}
	if err != nil {
		return nil, Unexpected("failed to load user", err)
	}
	if !user.IsActive {
		return nil, Unauthorized("user account is inactive")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, Unauthorized("session expired")
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	pair, err := s.tokens.Issue(jwt.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, Unexpected("failed to issue tokens", err)
	}
	return &LoginResponse{
		Tokens:     pair,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}
