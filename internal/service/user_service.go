package service

import (
	"context"
	"errors"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actingUserID uuid.UUID) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actingUserID uuid.UUID) (*model.UserResponse, error)
	DeactivateUser(ctx context.Context, userID uuid.UUID, actingUserID uuid.UUID) error
	UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actingUserID uuid.UUID) (*model.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListPrivileges(ctx context.Context) ([]model.Privilege, error)
	// SeedDefaults installs the default privileges and roles and creates the admin when missing.
	SeedDefaults(ctx context.Context, adminEmail, adminPassword string) error
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=255"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required,max=255"`
	RoleID   uint    `json:"role_id" validate:"required"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	auditRepo     repository.AuditRepository
	log           *zap.Logger
}

func NewUserService(db *gorm.DB, repos *repository.Repositories, log *zap.Logger) UserService {
	return &userService{
		db:            db,
		userRepo:      repos.Users,
		privilegeRepo: repos.Privilege,
		roleRepo:      repos.Roles,
		auditRepo:     repos.Audit,
		log:           log,
	}
}

func (s *userService) audit(ctx context.Context, actor uuid.UUID, action string, userID uuid.UUID, details interface{}) {
	if err := writeAudit(s.db.WithContext(ctx), s.auditRepo, actor, action, "user", userID.String(), details); err != nil {
		s.log.Warn("user audit failed", zap.Error(err), zap.String("action", action))
	}
}

func (s *userService) ensureEmail(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Unexpected("failed to check email", err)
	}
	if existing != nil && existing.ID != self {
		return Conflict("email '%s' already exists", email)
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actingUserID uuid.UUID) (*model.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.ensureEmail(ctx, req.Email, uuid.Nil); err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, storageError(err, "role", req.RoleID)
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
		IsActive: true,
	}
	user.CreatedBy = actingUserID.String()
	user.UpdatedBy = actingUserID.String()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, Unexpected("failed to hash password", err)
	}
	// privileges start from the role's defaults
	user.Privileges = role.Privileges

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageError(err, "user", req.Email)
	}
	s.audit(ctx, actingUserID, model.AuditCreate, user.ID, map[string]interface{}{"email": user.Email, "role": role.Code})

	return s.GetUserByID(ctx, user.ID)
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actingUserID uuid.UUID) (*model.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storageError(err, "user", userID)
	}
	if !strings.EqualFold(req.Email, user.Email) {
		if err := s.ensureEmail(ctx, req.Email, userID); err != nil {
			return nil, err
		}
	}
	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, storageError(err, "role", req.RoleID)
	}
	roleChanged := user.RoleID == nil || *user.RoleID != role.ID

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		if !*req.IsActive && userID == actingUserID {
			return nil, Validation("you cannot deactivate your own account")
		}
		if user.IsActive && !*req.IsActive {
			user.TokenVersion = uuid.NewString()
		}
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actingUserID.String()
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, Unexpected("failed to hash password", err)
		}
		user.TokenVersion = uuid.NewString()
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storageError(err, "user", userID)
	}
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(ctx, userID, role.Privileges); err != nil {
			return nil, Unexpected("failed to apply role privileges", err)
		}
	}
	s.audit(ctx, actingUserID, model.AuditUpdate, userID, map[string]interface{}{"email": user.Email, "role": role.Code})

	return s.GetUserByID(ctx, userID)
}

// DeactivateUser keeps the row for sales history and revokes the user's tokens.
func (s *userService) DeactivateUser(ctx context.Context, userID uuid.UUID, actingUserID uuid.UUID) error {
	if userID == actingUserID {
		return Validation("you cannot deactivate your own account")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return storageError(err, "user", userID)
	}
	user.IsActive = false
	user.TokenVersion = uuid.NewString()
	user.UpdatedBy = actingUserID.String()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return storageError(err, "user", userID)
	}
	s.audit(ctx, actingUserID, model.AuditDeactivate, userID, nil)
	return nil
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actingUserID uuid.UUID) (*model.UserResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, storageError(err, "user", userID)
	}
	privileges, err := s.privilegeRepo.FindByCodes(ctx, privilegeCodes)
	if err != nil {
		return nil, Unexpected("failed to load privileges", err)
	}
	if len(privileges) != len(uniqueStrings(privilegeCodes)) {
		known := make(map[string]bool, len(privileges))
		for _, p := range privileges {
			known[p.Code] = true
		}
		for _, code := range privilegeCodes {
			if !known[code] {
				return nil, Validation("unknown privilege '%s'", code)
			}
		}
	}
	if err := s.userRepo.UpdatePrivileges(ctx, userID, privileges); err != nil {
		return nil, Unexpected("failed to update privileges", err)
	}
	s.audit(ctx, actingUserID, model.AuditPrivileges, userID, privilegeCodes)

	return s.GetUserByID(ctx, userID)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, Unexpected("failed to list users", err)
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "user", id)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, Unexpected("failed to list roles", err)
	}
	return roles, nil
}

func (s *userService) ListPrivileges(ctx context.Context) ([]model.Privilege, error) {
	privileges, err := s.privilegeRepo.FindAll(ctx)
	if err != nil {
		return nil, Unexpected("failed to list privileges", err)
	}
	return privileges, nil
}

func (s *userService) SeedDefaults(ctx context.Context, adminEmail, adminPassword string) error {
	if err := s.privilegeRepo.SeedDefaults(ctx); err != nil {
		return err
	}
	if err := s.roleRepo.SeedDefaults(ctx); err != nil {
		return err
	}
	all, err := s.privilegeRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range roles {
		if len(roles[i].Privileges) > 0 {
			continue
		}
		if err := s.roleRepo.ReplacePrivileges(ctx, &roles[i], model.DefaultPrivilegesFor(roles[i].Code, all)); err != nil {
			return err
		}
	}

	if adminEmail == "" {
		return nil
	}
	_, err = s.userRepo.FindByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if adminPassword == "" {
		s.log.Warn("ADMIN_PASSWORD not set, skipping admin user creation", zap.String("email", adminEmail))
		return nil
	}
	admin, err := s.roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	user := &model.User{
		Email:      adminEmail,
		FullName:   "Administrator",
		RoleID:     &admin.ID,
		IsActive:   true,
		Privileges: admin.Privileges,
	}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"
	if err := user.SetPassword(adminPassword); err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	s.log.Info("admin user created", zap.String("email", adminEmail))
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
