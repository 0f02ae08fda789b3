package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const manageUsersDenied = "Access denied. You do not have permission to manage users."

// AdminService manages admin accounts, their permission bags and user activation.
type AdminService struct {
	users      repository.UserRepository
	audit      repository.AuditRepository
	tx         persistence.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo   repository.UserRepository
	AuditRepo  repository.AuditRepository
	Tx         persistence.Transactor
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CreateAdminInput describes a new admin account.
type CreateAdminInput struct {
	Username    string
	Email       string
	Password    string
	FullName    *string
	Permissions []domain.Capability
}

// LegacyMigrationResult summarizes a permission bag rewrite.
type LegacyMigrationResult struct {
	Scanned    int
	Migrated   int
	Defaulted  int
	Unchanged  int
	Failed     int
	AdminNames []string
}

// NewAdminService constructs the service.
func NewAdminService(cfg config.Config, deps AdminDependencies) *AdminService {
	return &AdminService{
		users:      deps.UserRepo,
		audit:      deps.AuditRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// requireUserManager reloads the requester so a stale session cannot outlive a revoked right.
func (s *AdminService) requireUserManager(ctx context.Context, requester domain.Actor) (*domain.User, error) {
	if !requester.Authenticated() {
		return nil, apperrors.NewLoginRequired()
	}
	user, err := s.users.GetByID(ctx, requester.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewAuthorizationError(manageUsersDenied)
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active || !user.EffectivePermissions().Has(domain.CapManageUsers) {
		return nil, apperrors.NewAuthorizationError(manageUsersDenied)
	}
	return user, nil
}

// CreateAdmin persists a new admin together with its audit entry.
func (s *AdminService) CreateAdmin(ctx context.Context, requester domain.Actor, in CreateAdminInput) (*domain.User, error) {
	creator, err := s.requireUserManager(ctx, requester)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("Username, email and password are required.", nil)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		return nil, apperrors.NewValidationError("Please enter a valid email address.", map[string]any{"field": "email"})
	}
	permissions := domain.PermissionsFrom(in.Permissions)
	if !permissions.Any() {
		return nil, apperrors.NewValidationError("Please select at least one permission.", map[string]any{"field": "permissions"})
	}

	return s.insertAdmin(ctx, domain.ActorFromUser(creator), username, email, in.Password, optional(in.FullName), permissions)
}

func (s *AdminService) insertAdmin(ctx context.Context, creator domain.Actor, username, email, password string, fullName *string, permissions domain.Permissions) (*domain.User, error) {
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	admin := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
		FullName:     fullName,
		Permissions:  permissions,
		CreatedBy:    actorRef(creator),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, admin); err != nil {
			return err
		}
		return recordAudit(ctx, s.audit, creator, domain.AuditEntityUser, admin.ID, domain.AuditActionAdminCreated, map[string]any{
			"username":    admin.Username,
			"permissions": permissions.Granted(),
		})
	})
	if err != nil {
		return nil, uniquenessConflict(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventAdminCreated, admin.ID, creator,
		events.AdminCreatedPayload{Username: admin.Username, Permissions: permissions.Granted()}))
	return admin, nil
}

func (s *AdminService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperrors.NewValidationError("Username already exists.", map[string]any{"field": "username"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewValidationError("Email already registered.", map[string]any{"field": "email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	return nil
}

// UpdateAdminPermissions replaces the permission bag of another admin.
func (s *AdminService) UpdateAdminPermissions(ctx context.Context, requester domain.Actor, adminID int64, caps []domain.Capability) (*domain.User, error) {
	manager, err := s.requireUserManager(ctx, requester)
	if err != nil {
		return nil, err
	}
	permissions := domain.PermissionsFrom(caps)
	if !permissions.Any() {
		return nil, apperrors.NewValidationError("Please select at least one permission.", map[string]any{"field": "permissions"})
	}
	if adminID == manager.ID && !permissions.Has(domain.CapManageUsers) {
		return nil, apperrors.NewValidationError("You cannot remove your own user management permission.", map[string]any{"field": "permissions"})
	}

	target, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("admin", map[string]any{"id": adminID})
		}
		return nil, apperrors.MapError(err)
	}
	if target.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("Permissions can only be assigned to admins.", map[string]any{"id": adminID})
	}

	previous := target.Permissions
	actor := domain.ActorFromUser(manager)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.UpdatePermissions(ctx, target.ID, permissions.Serialize()); err != nil {
			return err
		}
		return recordAudit(ctx, s.audit, actor, domain.AuditEntityUser, target.ID, domain.AuditActionPermissionsChanged, map[string]any{
			"old": previous.Granted(),
			"new": permissions.Granted(),
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Permissions = permissions
	return target, nil
}

// ListUsers returns accounts matching filter.
func (s *AdminService) ListUsers(ctx context.Context, requester domain.Actor, filter repository.UserFilter) ([]domain.User, error) {
	if _, err := s.requireUserManager(ctx, requester); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// SetUserActive toggles an account. Accounts are never hard-deleted.
func (s *AdminService) SetUserActive(ctx context.Context, requester domain.Actor, userID int64, active bool) (*domain.User, error) {
	manager, err := s.requireUserManager(ctx, requester)
	if err != nil {
		return nil, err
	}
	if userID == manager.ID && !active {
		return nil, apperrors.NewValidationError("You cannot deactivate your own account.", nil)
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if target.Active == active {
		return target, nil
	}

	actor := domain.ActorFromUser(manager)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.SetActive(ctx, target.ID, active); err != nil {
			return err
		}
		return recordAudit(ctx, s.audit, actor, domain.AuditEntityUser, target.ID, domain.AuditActionUserActivation, map[string]any{
			"active": active,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Active = active
	return target, nil
}

// SeedAdmin bootstraps the first admin with every capability. It is a no-op once an admin exists.
func (s *AdminService) SeedAdmin(ctx context.Context, username, email, password string) (*domain.User, bool, error) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	if len(admins) > 0 {
		return nil, false, nil
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || !validPassword(password) || !validEmail(email) {
		return nil, false, apperrors.NewValidationError("A username, a valid email and a password of at least 6 characters are required.", nil)
	}

	admin, err := s.insertAdmin(ctx, domain.AnonymousActor, username, email, password, nil, domain.DefaultAdminPermissions())
	if err != nil {
		return nil, false, err
	}
	return admin, true, nil
}

// MigrateLegacyPermissions rewrites admin bags that still use the old can_* keys.
// Admins whose bag grants nothing receive the default bag.
func (s *AdminService) MigrateLegacyPermissions(ctx context.Context) (*LegacyMigrationResult, error) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &LegacyMigrationResult{Scanned: len(admins)}
	for _, row := range admins {
		permissions, migrated := domain.MigrateLegacyPermissions(row.Permissions)
		defaulted := false
		if !permissions.Any() {
			permissions = domain.DefaultAdminPermissions()
			defaulted = true
		}
		if !migrated && !defaulted {
			result.Unchanged++
			continue
		}
		if err := s.users.UpdatePermissions(ctx, row.ID, permissions.Serialize()); err != nil {
			s.logger.Warn("permission migration failed", zap.Int64("user_id", row.ID), zap.Error(err))
			result.Failed++
			continue
		}
		if defaulted {
			result.Defaulted++
		} else {
			result.Migrated++
		}
		result.AdminNames = append(result.AdminNames, row.Username)
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%d admin permission bags could not be migrated", result.Failed)
	}
	return result, nil
}
