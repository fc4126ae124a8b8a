package auth

import (
	"context"

	"trustmrr/internal/domain"
)

// UserRepositoryInterface is the subset of the user repository auth needs.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type jwtService interface {
	GenerateToken(userID int64, username string) (string, error)
}
