package company

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/pkg/validator"
	"trustmrr/internal/repository"

	"github.com/rs/zerolog"
)

const (
	logoPrefix    = "logos"
	founderPrefix = "founders"
)

type Service struct {
	companies CompanyRepository
	images    ImageStore
	log       zerolog.Logger
}

func NewService(companies CompanyRepository, images ImageStore, log zerolog.Logger) *Service {
	return &Service{companies: companies, images: images, log: log}
}

// List returns the visible leaderboard, highest revenue first. rank is the
// position in the returned list, so it is per category when one is given.
func (s *Service) List(ctx context.Context, category string, v Viewer) ([]CompanyResponse, error) {
	var cat domain.Category
	if strings.TrimSpace(category) != "" {
		c, ok := domain.ParseCategory(category)
		if !ok {
			return nil, ErrInvalidCategory
		}
		cat = c
	}

	list, err := s.companies.ListLeaderboard(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}

	out := make([]CompanyResponse, 0, len(list))
	for i := range list {
		r := toResponse(&list[i], v)
		r.Rank = i + 1
		out = append(out, r)
	}
	return out, nil
}

// Get returns one company with its overall leaderboard rank (0 when hidden).
func (s *Service) Get(ctx context.Context, id int64, v Viewer) (*CompanyResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rank, err := s.companies.Rank(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("rank company: %w", err)
	}

	r := toResponse(c, v)
	r.Rank = rank
	return &r, nil
}

// Create adds an unverified entry owned by the viewer.
func (s *Service) Create(ctx context.Context, v Viewer, req CreateRequest) (*CompanyResponse, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, FieldErrors(fields)
	}
	cat, ok := domain.ParseCategory(req.Category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	founded, err := parseFoundingDate(req.FoundingDate)
	if err != nil {
		return nil, err
	}

	show := true
	if req.ShowInLeaderboard != nil {
		show = *req.ShowInLeaderboard
	}
	owner := v.UserID

	c := &domain.Company{
		Name:              strings.TrimSpace(req.Name),
		Website:           strings.TrimSpace(req.Website),
		FounderName:       strings.TrimSpace(req.FounderName),
		LogoURL:           strings.TrimSpace(req.LogoURL),
		Description:       strings.TrimSpace(req.Description),
		TwitterHandle:     strings.TrimSpace(req.TwitterHandle),
		Tagline:           strings.TrimSpace(req.Tagline),
		FoundingDate:      founded,
		Country:           strings.TrimSpace(req.Country),
		FollowerCount:     req.FollowerCount,
		EstimatedMRR:      req.EstimatedMRR,
		MonthlyRevenue:    req.MonthlyRevenue,
		MoMGrowth:         req.MoMGrowth,
		Category:          cat,
		ShowInLeaderboard: show,
		IsAnonymous:       req.IsAnonymous,
		OwnerID:           &owner,
		OwnerUsername:     v.Username,
	}
	if c.FounderName == "" {
		c.FounderName = v.Username
	}

	if err := s.companies.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	s.log.Info().Int64("company_id", c.ID).Int64("user_id", v.UserID).Msg("company created")

	r := toResponse(c, v)
	return &r, nil
}

// Uploads are the optional files of a multipart update.
type Uploads struct {
	Logo         *multipart.FileHeader
	FounderPhoto *multipart.FileHeader
}

// Update applies req to a company the viewer owns. Setting monthly_revenue
// by hand drops the verified flag.
func (s *Service) Update(ctx context.Context, id int64, v Viewer, req UpdateRequest, files Uploads) (*CompanyResponse, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, FieldErrors(fields)
	}

	c, err := s.loadOwned(ctx, id, v)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(c, req); err != nil {
		return nil, err
	}

	if files.Logo != nil {
		url, err := s.saveImage(ctx, logoPrefix, files.Logo)
		if err != nil {
			return nil, err
		}
		c.LogoURL = url
	}
	if files.FounderPhoto != nil {
		url, err := s.saveImage(ctx, founderPrefix, files.FounderPhoto)
		if err != nil {
			return nil, err
		}
		c.FounderPhoto = url
	}

	c.UpdatedAt = time.Now()
	if err := s.companies.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("update company: %w", err)
	}

	r := toResponse(c, v)
	return &r, nil
}

// Delete removes a company the viewer owns. Its ads stay, detached.
func (s *Service) Delete(ctx context.Context, id int64, v Viewer) error {
	if _, err := s.loadOwned(ctx, id, v); err != nil {
		return err
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("delete company: %w", err)
	}
	s.log.Info().Int64("company_id", id).Int64("user_id", v.UserID).Msg("company deleted")
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	return c, nil
}

func (s *Service) loadOwned(ctx context.Context, id int64, v Viewer) (*domain.Company, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(v.UserID, v.Username) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) saveImage(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("%w: uploads are disabled", ErrValidation)
	}
	obj, err := s.images.Save(ctx, prefix, fh)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrValidation, prefix, err)
	}
	return obj.URL, nil
}

func parseFoundingDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, FieldErrors{"founding_date": "date"}
	}
	return &d, nil
}

func applyUpdate(c *domain.Company, req UpdateRequest) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&c.Name, req.Name)
	setString(&c.Website, req.Website)
	setString(&c.FounderName, req.FounderName)
	setString(&c.LogoURL, req.LogoURL)
	setString(&c.Description, req.Description)
	setString(&c.TwitterHandle, req.TwitterHandle)
	setString(&c.Tagline, req.Tagline)
	setString(&c.Country, req.Country)

	if req.FoundingDate != nil {
		founded, err := parseFoundingDate(*req.FoundingDate)
		if err != nil {
			return err
		}
		c.FoundingDate = founded
	}
	if req.Category != nil {
		cat, ok := domain.ParseCategory(*req.Category)
		if !ok {
			return ErrInvalidCategory
		}
		c.Category = cat
	}
	if req.FollowerCount != nil {
		c.FollowerCount = *req.FollowerCount
	}
	if req.EstimatedMRR != nil {
		c.EstimatedMRR = req.EstimatedMRR
	}
	if req.MonthlyRevenue != nil && *req.MonthlyRevenue != c.MonthlyRevenue {
		c.MonthlyRevenue = *req.MonthlyRevenue
		c.IsVerified = false
	}
	if req.ShowInLeaderboard != nil {
		c.ShowInLeaderboard = *req.ShowInLeaderboard
	}
	if req.IsAnonymous != nil {
		c.IsAnonymous = *req.IsAnonymous
	}
	return nil
}
