package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"
	"trustmrr/internal/pkg/clock"
	"trustmrr/internal/pkg/validator"
	"trustmrr/internal/repository"

	"github.com/rs/zerolog"
)

const (
	outcomeVerified   = "verified"
	outcomeAuthFailed = "auth_failed"
	outcomeError      = "error"
)

type Service struct {
	companies    CompanyRepository
	integrations IntegrationRepository
	fetchers     map[domain.Provider]RevenueFetcher
	clock        clock.Clock
	window       time.Duration
	metrics      Recorder
	log          zerolog.Logger
}

// NewService registers one fetcher per provider. window is the length of a
// revenue period; zero means thirty days.
func NewService(
	companies CompanyRepository,
	keys IntegrationRepository,
	fetchers []RevenueFetcher,
	clk clock.Clock,
	window time.Duration,
	metrics Recorder,
	log zerolog.Logger,
) *Service {
	byProvider := make(map[domain.Provider]RevenueFetcher, len(fetchers))
	for _, f := range fetchers {
		byProvider[f.Provider()] = f
	}
	return &Service{
		companies:    companies,
		integrations: keys,
		fetchers:     byProvider,
		clock:        clk,
		window:       window,
		metrics:      metrics,
		log:          log,
	}
}

// Viewer is the authenticated caller.
type Viewer struct {
	UserID   int64
	Username string
}

func parseProvider(raw string) (domain.Provider, error) {
	p := domain.Provider(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
	}
	return p, nil
}

// Link stores credentials for provider after the provider accepted them, and
// saves the fetched revenue on the company. A company named by CompanyName is
// created only once verification succeeded.
func (s *Service) Link(ctx context.Context, v Viewer, provider string, req LinkRequest) (*VerificationResult, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return nil, err
	}
	if fields := validator.Validate(req); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}
	creds, err := req.Credentials.forProvider(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var company *domain.Company
	switch {
	case req.CompanyID != nil:
		if company, err = s.loadOwned(ctx, *req.CompanyID, v); err != nil {
			return nil, err
		}
	case strings.TrimSpace(req.CompanyName) != "":
		if company, err = newCompany(v, req); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: company_id or company_name is required", ErrValidation)
	}

	rev, err := s.fetch(ctx, p, creds)
	if err != nil {
		return nil, err
	}

	if company.ID == 0 {
		if err := s.companies.Create(ctx, company); err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		s.log.Info().Int64("company_id", company.ID).Int64("user_id", v.UserID).Msg("company created from integration")
	}

	return s.persist(ctx, v, company.ID, p, creds, rev, true)
}

// Refresh re-verifies an owned company with new credentials, or with the
// stored ones when none are sent.
func (s *Service) Refresh(ctx context.Context, v Viewer, companyID int64, req RefreshRequest) (*VerificationResult, error) {
	p, err := parseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadOwned(ctx, companyID, v); err != nil {
		return nil, err
	}

	var (
		creds domain.IntegrationCredentials
		fresh = !req.Credentials.empty()
	)
	if fresh {
		if creds, err = req.Credentials.forProvider(p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	} else {
		key, err := s.integrations.Get(ctx, companyID, p)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoCredentials
		}
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		creds = key.Credentials
	}

	rev, err := s.fetch(ctx, p, creds)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, v, companyID, p, creds, rev, fresh)
}

// Linked lists the providers linked to an owned company.
func (s *Service) Linked(ctx context.Context, v Viewer, companyID int64) ([]LinkedProvider, error) {
	if _, err := s.loadOwned(ctx, companyID, v); err != nil {
		return nil, err
	}
	keys, err := s.integrations.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	out := make([]LinkedProvider, 0, len(keys))
	for _, k := range keys {
		out = append(out, LinkedProvider{Provider: k.Provider, AddedBy: k.AddedBy, AddedAt: k.AddedAt})
	}
	return out, nil
}

func (s *Service) fetch(ctx context.Context, p domain.Provider, creds domain.IntegrationCredentials) (integrations.Revenue, error) {
	f, ok := s.fetchers[p]
	if !ok {
		return integrations.Revenue{}, fmt.Errorf("%w: %s is not configured", ErrUnknownProvider, p)
	}

	start := time.Now()
	rev, err := f.FetchRecentRevenue(ctx, creds, integrations.RecentWindow(s.clock.Now(), s.window))
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		s.record(p, outcomeVerified, elapsed)
		return rev, nil
	case errors.Is(err, integrations.ErrAuthFailed):
		s.record(p, outcomeAuthFailed, elapsed)
		return integrations.Revenue{}, ErrProviderAuth
	default:
		s.record(p, outcomeError, elapsed)
		s.log.Warn().Err(err).Str("provider", string(p)).Msg("revenue fetch failed")
		return integrations.Revenue{}, err
	}
}

func (s *Service) record(p domain.Provider, outcome string, seconds float64) {
	if s.metrics != nil {
		s.metrics.RecordVerification(string(p), outcome, seconds)
	}
}

func (s *Service) persist(ctx context.Context, v Viewer, companyID int64, p domain.Provider, creds domain.IntegrationCredentials, rev integrations.Revenue, storeKey bool) (*VerificationResult, error) {
	if storeKey {
		key := &domain.IntegrationKey{CompanyID: companyID, Provider: p, Credentials: creds, AddedBy: v.UserID}
		if err := s.integrations.Upsert(ctx, key); err != nil {
			return nil, fmt.Errorf("store credentials: %w", err)
		}
	}

	now := s.clock.Now()
	growth := rev.Growth()
	if err := s.companies.SaveVerification(ctx, companyID, rev.Total, growth, now); err != nil {
		return nil, fmt.Errorf("save verification: %w", err)
	}

	s.log.Info().
		Int64("company_id", companyID).
		Str("provider", string(p)).
		Float64("monthly_revenue", rev.Total).
		Float64("mom_growth", growth).
		Msg("revenue verified")

	return &VerificationResult{
		Message:        fmt.Sprintf("%s keys saved & connection tested!", providerNames[p]),
		CompanyID:      companyID,
		Provider:       p,
		MonthlyRevenue: rev.Total,
		MoMGrowth:      growth,
		IsVerified:     true,
		LastVerifiedAt: now,
	}, nil
}

func (s *Service) loadOwned(ctx context.Context, id int64, v Viewer) (*domain.Company, error) {
	c, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if !c.IsOwnedBy(v.UserID, v.Username) {
		return nil, ErrForbidden
	}
	return c, nil
}

func newCompany(v Viewer, req LinkRequest) (*domain.Company, error) {
	cat, ok := domain.ParseCategory(req.Category)
	if !ok {
		return nil, fmt.Errorf("%w: invalid category %q", ErrValidation, req.Category)
	}
	show := true
	if req.ShowInLeaderboard != nil {
		show = *req.ShowInLeaderboard
	}
	owner := v.UserID
	return &domain.Company{
		Name:              strings.TrimSpace(req.CompanyName),
		FounderName:       v.Username,
		Description:       strings.TrimSpace(req.Description),
		Website:           strings.TrimSpace(req.Website),
		TwitterHandle:     strings.TrimSpace(req.TwitterHandle),
		Category:          cat,
		ShowInLeaderboard: show,
		IsAnonymous:       req.IsAnonymous,
		OwnerID:           &owner,
		OwnerUsername:     v.Username,
	}, nil
}
