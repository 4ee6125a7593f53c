package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/device"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/metrics"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

// Store is the persistence the services need. *repo.GormRepo implements it.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	CreateUserWithToken(ctx context.Context, u *models.User, rt *models.RefreshToken) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserEmail(ctx context.Context, id string) (string, error)
	ListUsers(ctx context.Context, role *models.Role) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) error
	DeleteUser(ctx context.Context, id string) error

	CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error
	DeleteRefreshByDevice(ctx context.Context, userID, device string) (int64, error)
	RotateRefreshToken(ctx context.Context, oldJTI, subject, device string, next *models.RefreshToken) error
}

type Hasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

type AuthService struct {
	Store      Store
	Hasher     Hasher
	Codec      *tokens.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Events     events.Publisher
	Metrics    *metrics.Metrics
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	UserID       string
	Role         models.Role
}

// issue signs an access and a refresh token for sub and returns the record
// that has to be stored for the refresh token to be usable.
func (s *AuthService) issue(sub tokens.Subject) (*TokenPair, *models.RefreshToken, error) {
	access, err := s.Codec.Issue(sub, tokens.Access, s.AccessTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Codec.Issue(sub, tokens.Refresh, s.RefreshTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("issue refresh token: %w", err)
	}

	pair := &TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		AccessExp:    access.ExpiresAt,
		RefreshExp:   refresh.ExpiresAt,
		UserID:       sub.UserID,
		Role:         sub.Role,
	}
	record := &models.RefreshToken{JTI: refresh.JTI, UserID: sub.UserID, Device: sub.Device}
	return pair, record, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in, role, err := in.normalize()
	if err != nil {
		s.Metrics.Registration(metrics.ResultInvalid)
		return nil, err
	}

	pwHash, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		s.Metrics.Registration(metrics.ResultError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Surname:      in.Surname,
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	dev := device.Fingerprint(in.UserAgent)

	pair, record, err := s.issue(tokens.Subject{UserID: user.ID, Role: user.Role, Device: dev})
	if err != nil {
		s.Metrics.Registration(metrics.ResultError)
		return nil, err
	}

	if err := s.Store.CreateUserWithToken(ctx, user, record); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			s.Metrics.Registration(metrics.ResultConflict)
			l.Warn("register_conflict", "login", user.Login)
			return nil, ErrDuplicateIdentity
		}
		s.Metrics.Registration(metrics.ResultError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Metrics.Registration(metrics.ResultOK)
	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, events.UserEvent{
		Type:   events.TypeUserRegistered,
		UserID: user.ID,
		Login:  user.Login,
		Email:  user.Email,
		Role:   string(user.Role),
	})

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	in, err := in.normalize()
	if err != nil {
		s.Metrics.Login(metrics.ResultInvalid)
		return nil, err
	}

	user, err := s.lookup(ctx, in.LoginOrEmail)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.Login(metrics.ResultInvalid)
			l.Warn("login_failed", "reason", "unknown user")
			return nil, ErrUnauthorized
		}
		s.Metrics.Login(metrics.ResultError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, in.Password) {
		s.Metrics.Login(metrics.ResultInvalid)
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrUnauthorized
	}

	dev := device.Fingerprint(in.UserAgent)
	pair, record, err := s.issue(tokens.Subject{UserID: user.ID, Role: user.Role, Device: dev})
	if err != nil {
		s.Metrics.Login(metrics.ResultError)
		return nil, err
	}
	if err := s.Store.CreateRefreshToken(ctx, record); err != nil {
		s.Metrics.Login(metrics.ResultError)
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.Metrics.Login(metrics.ResultOK)
	l.Info("login_successful", "user_id", user.ID, "device", dev)
	return pair, nil
}

func (s *AuthService) lookup(ctx context.Context, loginOrEmail string) (*models.User, error) {
	if looksLikeEmail(loginOrEmail) {
		return s.Store.GetUserByEmail(ctx, strings.ToLower(loginOrEmail))
	}
	return s.Store.GetUserByLogin(ctx, loginOrEmail)
}

// Logout drops the caller's refresh tokens for the current device. Nothing
// to drop is not an error.
func (s *AuthService) Logout(ctx context.Context, userID, userAgent string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	dev := device.Fingerprint(userAgent)
	n, err := s.Store.DeleteRefreshByDevice(ctx, userID, dev)
	if err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}

	s.Metrics.Logout()
	l.Info("logout", "user_id", userID, "device", dev, "revoked", n)
	return nil
}

// Refresh exchanges a refresh token for a new pair. The role is carried over
// from the presented token, not re-read from storage.
func (s *AuthService) Refresh(ctx context.Context, raw, userAgent string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if raw == "" {
		s.Metrics.Refresh(metrics.ResultInvalid)
		return nil, invalid("refresh_token", "is required")
	}
	if err := s.Codec.CheckType(raw, tokens.Refresh); err != nil {
		s.Metrics.Refresh(metrics.ResultInvalid)
		l.Warn("refresh_rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		s.Metrics.Refresh(metrics.ResultInvalid)
		l.Warn("refresh_rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	dev := device.Fingerprint(userAgent)
	sub := tokens.Subject{UserID: claims.RegisteredClaims.Subject, Role: claims.Role, Device: dev}
	pair, record, err := s.issue(sub)
	if err != nil {
		s.Metrics.Refresh(metrics.ResultError)
		return nil, err
	}

	err = s.Store.RotateRefreshToken(ctx, claims.ID, sub.UserID, dev, record)
	switch {
	case errors.Is(err, repo.ErrTokenReuse):
		s.Metrics.Refresh(metrics.ResultReuse)
		l.Warn("refresh_token_reuse", "user_id", sub.UserID, "jti", claims.ID, "device", dev, "issued_for", claims.Device)
		return nil, ErrTokenReuse
	case err != nil:
		s.Metrics.Refresh(metrics.ResultError)
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.Metrics.Refresh(metrics.ResultOK)
	l.Info("refresh_successful", "user_id", sub.UserID)
	return pair, nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes the account
// with that login if it exists. Running it again changes nothing.
func (s *AuthService) EnsureAdmin(ctx context.Context, login, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	existing, err := s.Store.GetUserByLogin(ctx, strings.TrimSpace(login))
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if err := s.Store.UpdateUserRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		l.Info("admin_promoted", "user_id", existing.ID)
		return nil
	case !errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	in, _, err := RegisterInput{
		Name:     "Administrator",
		Surname:  "Administrator",
		Login:    login,
		Email:    email,
		Password: password,
	}.normalize()
	if err != nil {
		return err
	}

	pwHash, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Surname:      in.Surname,
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("create admin: %w", err)
	}

	l.Info("admin_created", "user_id", user.ID)
	return nil
}

func (s *AuthService) publish(ctx context.Context, ev events.UserEvent) {
	publish(ctx, s.Events, ev)
}

func publish(ctx context.Context, p events.Publisher, ev events.UserEvent) {
	if p == nil {
		return
	}
	if err := p.PublishUserEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "type", ev.Type, "user_id", ev.UserID, "error", err)
	}
}
