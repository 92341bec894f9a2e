package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/littlelemon/ordering-api/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetSuperuser(ctx context.Context, id uint, superuser bool) error
	GetOrCreateToken(ctx context.Context, candidate *models.Token) (*models.Token, error)
	ListRoles(ctx context.Context, userID uint) ([]models.Role, error)
}

type Service struct {
	users    UserStore
	throttle Throttle
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(users UserStore, throttle Throttle, logger zerolog.Logger) *Service {
	if users == nil {
		panic("auth service missing required dependency user store")
	}
	if throttle == nil {
		throttle = NoThrottle{}
	}
	return &Service{
		users:    users,
		throttle: throttle,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a customer account. New users hold no roles.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user := &models.User{Username: username, Email: email, DateJoined: s.now()}
	if err := user.Normalize(); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// ObtainToken exchanges credentials for the user's bearer token.
func (s *Service) ObtainToken(ctx context.Context, username, password string) (string, error) {
	// usernames are stored trimmed
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", models.Validation("username and password are required")
	}

	wait, err := s.throttle.Wait(ctx, username)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login throttle unavailable")
	} else if wait > 0 {
		return "", &ThrottledError{RetryAfter: wait}
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if err := s.throttle.Failed(ctx, username); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable")
		}
		return "", models.Unauthorized("Unable to log in with provided credentials.")
	}
	if err := s.throttle.Succeeded(ctx, username); err != nil {
		s.logger.Warn().Err(err).Msg("login throttle unavailable")
	}

	key, err := newTokenKey()
	if err != nil {
		return "", err
	}
	token, err := s.users.GetOrCreateToken(ctx, &models.Token{Key: key, UserID: user.ID, Created: s.now()})
	if err != nil {
		return "", err
	}
	return token.Key, nil
}

// Profile describes the caller.
type Profile struct {
	User  *models.User
	Roles []models.Role
}

func (s *Service) Me(ctx context.Context) (*Profile, error) {
	who, err := Require(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	roles, err := s.users.ListRoles(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Roles: roles}, nil
}

// EnsureSuperuser creates the bootstrap admin, or promotes an existing user
// with that username. The password of an existing user is left unchanged.
func (s *Service) EnsureSuperuser(ctx context.Context, username, email, password string) error {
	existing, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.IsSuperuser {
			return nil
		}
		if err := s.users.SetSuperuser(ctx, existing.ID, true); err != nil {
			return fmt.Errorf("promote superuser: %w", err)
		}
		s.logger.Info().Str("username", username).Msg("existing user promoted to superuser")
		return nil
	case !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("look up superuser: %w", err)
	}

	user := &models.User{Username: username, Email: email, IsSuperuser: true, DateJoined: s.now()}
	if err := user.Normalize(); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	s.logger.Info().Str("username", username).Msg("superuser created")
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", models.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > 72 {
		return "", models.Validation("password must be at most 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// newTokenKey returns 40 hex characters of randomness.
func newTokenKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
