package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"task-manager.com/task-manager/internal/auth"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

type Session struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService registers users, issues tokens and revokes them on logout.
type AuthService struct {
	users    repository.UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.JWTManager
	denylist auth.Denylist
	validate *validator.Validate
	now      func() time.Time
}

func NewAuthService(
	users repository.UserStore,
	hasher *auth.PasswordHasher,
	tokens *auth.JWTManager,
	denylist auth.Denylist,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		validate: validator.New(),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) checkCredentials(email, password string) error {
	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "email is required"
	} else if s.validate.Var(email, "email") != nil {
		fields["email"] = "email must be a valid email address"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return apperrors.ErrValidation.WithFields(fields)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.checkCredentials(email, password); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, apperrors.Validation("password", "password must be between 6 and 72 characters")
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.ErrEmailTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, err
	}

	return s.session(user)
}

// Login reports ErrInvalidCredentials for both an unknown email and a wrong
// password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.checkCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.session(user)
}

// Logout revokes the presented token until its natural expiry. Tokens without
// a jti cannot be revoked individually; for those logout is client-side only.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrUnauthenticated
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) session(user *model.User) (*Session, error) {
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
