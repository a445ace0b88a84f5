package service

import (
	"context"
	"fmt"
	"strings"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/models"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles account management. Add, delete and list require the
// manager capability, re-checked inside each operation.
type UserService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store *store.Store) *UserService {
	return &UserService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddUserRequest represents a request to create an account
type AddUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsManager bool   `json:"is_manager"`
}

// ListUsers returns all accounts
func (us *UserService) ListUsers(ctx context.Context, sess *auth.Session) ([]models.User, error) {
	if !sess.IsManager {
		return nil, fmt.Errorf("%w: listing users requires the manager capability", ErrForbidden)
	}

	users, err := us.store.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AddUser creates an account with the first-login flag set, forcing a
// password reset on first use.
func (us *UserService) AddUser(ctx context.Context, sess *auth.Session, req *AddUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.AddUser")
	defer span.End()

	if !sess.IsManager {
		return nil, fmt.Errorf("%w: adding users requires the manager capability", ErrForbidden)
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, fmt.Errorf("%w: username, password and name must not be blank", ErrValidation)
	}

	existing, err := us.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		FirstLogin:   true,
		IsManager:    req.IsManager,
	}

	if err := us.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	us.logger.Info("User added",
		zap.String("username", user.Username),
		zap.Bool("is_manager", user.IsManager),
		zap.String("added_by", sess.Username))

	return user, nil
}

// DeleteUser removes an account and releases every package assigned to it
// back to the unassigned pool, in one transaction.
func (us *UserService) DeleteUser(ctx context.Context, sess *auth.Session, userID string) error {
	ctx, span := util.StartSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	if !sess.IsManager {
		return fmt.Errorf("%w: deleting users requires the manager capability", ErrForbidden)
	}

	if err := us.store.DeleteUserTx(ctx, userID); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	us.logger.Info("User deleted",
		zap.String("user_id", userID),
		zap.String("deleted_by", sess.Username))

	return nil
}

// ResetPassword sets a new password for the calling user and clears the
// first-login flag.
func (us *UserService) ResetPassword(ctx context.Context, sess *auth.Session, newPassword string) error {
	ctx, span := util.StartSpan(ctx, "UserService.ResetPassword")
	defer span.End()

	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: password must not be blank", ErrValidation)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := us.store.UpdateUserPassword(ctx, sess.UserID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	us.logger.Info("Password reset", zap.String("user_id", sess.UserID))
	return nil
}
