package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
)

// UserService is the read and delete side of the user directory.
type UserService struct {
	Store  Store
	Events events.Publisher
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	filter, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	users, err := s.Store.ListUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes the user; its refresh tokens go with it.
func (s *UserService) Delete(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "users.delete")

	if err := s.Store.DeleteUser(ctx, id); err != nil {
		return notFound(err, "delete user")
	}

	l.Info("user_deleted", "user_id", id)
	publish(ctx, s.Events, events.UserEvent{Type: events.TypeUserDeleted, UserID: id})
	return nil
}

func (s *UserService) Email(ctx context.Context, id string) (string, error) {
	email, err := s.Store.GetUserEmail(ctx, id)
	if err != nil {
		return "", notFound(err, "get email")
	}
	return email, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
