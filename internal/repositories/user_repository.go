package repositories

import (
	"context"
	"errors"

	"spark/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// UserRepository is the local user directory. The ledger only asks whether a
// user exists; the remaining methods serve the admin seed command.
type UserRepository interface {
	Exists(ctx context.Context, userID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
