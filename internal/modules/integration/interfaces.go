package integration

import (
	"context"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"
)

// RevenueFetcher verifies credentials with a provider and returns the revenue
// collected in a window and in the one before it.
type RevenueFetcher interface {
	Provider() domain.Provider
	FetchRecentRevenue(ctx context.Context, creds domain.IntegrationCredentials, w integrations.Window) (integrations.Revenue, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	SaveVerification(ctx context.Context, id int64, revenue, growth float64, at time.Time) error
}

type IntegrationRepository interface {
	Upsert(ctx context.Context, key *domain.IntegrationKey) error
	Get(ctx context.Context, companyID int64, provider domain.Provider) (*domain.IntegrationKey, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.IntegrationKey, error)
}

// Recorder observes provider calls.
type Recorder interface {
	RecordVerification(provider, outcome string, seconds float64)
}
