package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/utils"
)

// AuthConfig carries the token and hashing parameters.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken string           `json:"access_token"`
	User        model.PublicUser `json:"user"`
}

// AuthService registers users and issues access tokens.
type AuthService struct {
	users  repository.UserRepository
	cfg    AuthConfig
	events queue.Emitter
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig, events queue.Emitter, log *zap.Logger) *AuthService {
	if events == nil {
		events = queue.Nop{}
	}
	return &AuthService{users: users, cfg: cfg, events: events, log: log}
}

// Register creates a user with the default role and signs a token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.log.Warn("registration failed: user already exists", zap.String("email", email))
		return nil, errs.Conflict(errs.MsgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, errs.Internal(err)
	}

	u, err := s.newUser(email, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.log.Warn("registration failed: user already exists", zap.String("email", email))
			return nil, errs.Conflict(errs.MsgUserExists)
		}
		return nil, errs.Internal(err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.UserRegistered, u.ID, u.ID, ""))

	return s.issue(u)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("login failed: user not found", zap.String("email", email))
			return nil, errs.Auth(errs.MsgInvalidCredentials)
		}
		return nil, errs.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.log.Warn("login failed: invalid password", zap.String("email", email))
		return nil, errs.Auth(errs.MsgInvalidCredentials)
	}

	s.log.Info("user logged in", zap.String("user_id", u.ID))
	return s.issue(u)
}

// EnsureAdmin promotes the user with email to admin, creating it with
// password when it does not exist yet. It reports whether a user was
// created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == model.RoleAdmin {
			return false, nil
		}
		if err := s.users.UpdateRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return false, errs.Internal(err)
		}
		s.log.Info("user promoted to admin", zap.String("user_id", u.ID))
		emit(ctx, s.events, s.log, queue.NewEvent(queue.UserRoleUpdated, u.ID, u.ID, ""))
		return false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return false, errs.Internal(err)
	}

	if err := validateCredentials(email, password); err != nil {
		return false, err
	}
	u, err = s.newUser(email, password, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return false, errs.Conflict(errs.MsgUserExists)
		}
		return false, errs.Internal(err)
	}
	s.log.Info("admin user created", zap.String("user_id", u.ID))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.UserRegistered, u.ID, u.ID, ""))
	return true, nil
}

func (s *AuthService) newUser(email, password string, role model.Role) (*model.User, error) {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, errs.Internal(err)
	}
	t := now()
	return &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    t,
		UpdatedAt:    t,
	}, nil
}

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	tok, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Email, string(u.Role), s.cfg.TokenTTL)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &AuthResult{AccessToken: tok.Token, User: u.Public()}, nil
}

func validateCredentials(email, password string) error {
	if !ValidEmail(email) {
		return errs.Validation("Invalid email format")
	}
	if len(password) < MinPasswordLength {
		return errs.Validation("Password must be at least 6 characters long")
	}
	return nil
}
