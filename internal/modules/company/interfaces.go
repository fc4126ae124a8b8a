package company

import (
	"context"
	"mime/multipart"

	"trustmrr/internal/domain"
	"trustmrr/internal/storage"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	ListLeaderboard(ctx context.Context, category domain.Category) ([]domain.Company, error)
	Rank(ctx context.Context, c *domain.Company) (int, error)
	Update(ctx context.Context, c *domain.Company) error
	Delete(ctx context.Context, id int64) error
}

type ImageStore interface {
	Save(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (*storage.Object, error)
}
