package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-expense-tracker/internal/model"
	"go-expense-tracker/pkg/apierror"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	UpdateEmail(ctx context.Context, userID string, email string) (model.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type UserService struct {
	users userStore
}

func NewUserService(users userStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Me(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("user not found", userID)
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) UpdateEmail(ctx context.Context, userID string, email string) (model.PublicUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.PublicUser{}, apierror.BadRequest("a valid email is required", "email")
	}

	user, err := s.users.UpdateEmail(ctx, userID, email)
	if errors.Is(err, model.ErrEmailTaken) {
		return model.PublicUser{}, apierror.BadRequest("Email already in use", "email")
	}
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("user not found", userID)
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// ChangePassword re-validates the old password first. The repository clears
// the refresh slot together with the hash swap, so the active session dies
// with the old password.
func (s *UserService) ChangePassword(ctx context.Context, userID string, oldPassword string, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound("user not found", userID)
	}
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return apierror.Unauthorized("old password is incorrect")
	}

	if len(newPassword) < 8 {
		return apierror.BadRequest("password must be at least 8 characters", "newPassword")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound("user not found", userID)
	}
	return err
}
