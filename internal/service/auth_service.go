package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-expense-tracker/internal/model"
	"go-expense-tracker/pkg/apierror"
)

const bcryptCost = 12

type credentialStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	SetRefreshTokenHash(ctx context.Context, userID string, hash *string) error
	RefreshTokenHash(ctx context.Context, userID string) (*string, error)
}

type tokenIssuer interface {
	IssuePair(userID string, email string) (model.TokenPair, error)
}

type AuthService struct {
	users  credentialStore
	tokens tokenIssuer
}

func NewAuthService(users credentialStore, tokens tokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (model.TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.TokenPair{}, apierror.BadRequest("a valid email is required", "email")
	}
	if len(password) < 8 {
		return model.TokenPair{}, apierror.BadRequest("password must be at least 8 characters", "password")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return model.TokenPair{}, apierror.BadRequest("Email already registered", "email")
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can race past the lookup; the unique
		// constraint settles it.
		if errors.Is(err, model.ErrEmailTaken) {
			return model.TokenPair{}, apierror.BadRequest("Email already registered", "email")
		}
		return model.TokenPair{}, err
	}

	return s.issueAndStore(ctx, user.ID, user.Email)
}

// Login deliberately reports unknown email and wrong password identically.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.Unauthorized("invalid credentials")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, apierror.Unauthorized("invalid credentials")
	}

	return s.issueAndStore(ctx, user.ID, user.Email)
}

// Refresh runs only after the gate verified the presented token's signature;
// claims therefore come from a verified token. The stored hash check rejects
// anything but the single active refresh token, and issuing a new pair
// rotates the slot so the presented token can never be replayed.
func (s *AuthService) Refresh(ctx context.Context, claims *model.AuthClaims, presentedToken string) (model.TokenPair, error) {
	stored, err := s.users.RefreshTokenHash(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is invalid")
	}
	if err != nil {
		return model.TokenPair{}, err
	}
	if stored == nil {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is invalid")
	}

	if bcrypt.CompareHashAndPassword([]byte(*stored), refreshTokenDigest(presentedToken)) != nil {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is invalid")
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.Unauthorized("user not found")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issueAndStore(ctx, user.ID, user.Email)
}

// Logout clears the refresh slot. Outstanding access tokens stay valid until
// they expire on their own.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.SetRefreshTokenHash(ctx, userID, nil)
}

func (s *AuthService) issueAndStore(ctx context.Context, userID string, email string) (model.TokenPair, error) {
	pair, err := s.tokens.IssuePair(userID, email)
	if err != nil {
		return model.TokenPair{}, err
	}

	hash, err := bcrypt.GenerateFromPassword(refreshTokenDigest(pair.RefreshToken), bcryptCost)
	if err != nil {
		return model.TokenPair{}, err
	}

	hashStr := string(hash)
	if err := s.users.SetRefreshTokenHash(ctx, userID, &hashStr); err != nil {
		return model.TokenPair{}, err
	}

	return pair, nil
}

// refreshTokenDigest reduces the token to a fixed 64-byte hex digest before
// bcrypt sees it; bcrypt rejects inputs over 72 bytes and JWTs are far longer.
func refreshTokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}
