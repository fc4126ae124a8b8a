package repository

import (
	"context"
	"time"

	"trustmrr/internal/domain"

	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

type companyModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	Name              string     `gorm:"column:name;size:255;not null"`
	Website           *string    `gorm:"column:website"`
	FounderName       *string    `gorm:"column:founder_name;size:255"`
	LogoURL           *string    `gorm:"column:logo_url"`
	FounderPhoto      *string    `gorm:"column:founder_photo"`
	Description       *string    `gorm:"column:description;size:500"`
	TwitterHandle     *string    `gorm:"column:twitter_handle;size:100"`
	Tagline           *string    `gorm:"column:tagline;size:200"`
	FoundingDate      *time.Time `gorm:"column:founding_date;type:date"`
	Country           *string    `gorm:"column:country;size:100"`
	FollowerCount     int        `gorm:"column:follower_count;not null"`
	EstimatedMRR      *float64   `gorm:"column:estimated_mrr;type:decimal(15,2)"`
	MonthlyRevenue    float64    `gorm:"column:monthly_revenue;type:decimal(15,2);not null;index"`
	MoMGrowth         float64    `gorm:"column:mom_growth;type:decimal(5,2);not null"`
	Category          string     `gorm:"column:category;size:100;not null;index"`
	IsVerified        bool       `gorm:"column:is_verified;not null"`
	LastVerifiedAt    *time.Time `gorm:"column:last_verified_at"`
	ShowInLeaderboard bool       `gorm:"column:show_in_leaderboard;not null"`
	IsAnonymous       bool       `gorm:"column:is_anonymous;not null"`
	OwnerID           *int64     `gorm:"column:owner_id;index"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (companyModel) TableName() string { return "companies" }

// companyRow is a company joined with its owner's username.
type companyRow struct {
	companyModel
	OwnerUsername *string `gorm:"column:owner_username"`
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDomainCompany(m companyModel) *domain.Company {
	return &domain.Company{
		ID:                m.ID,
		Name:              m.Name,
		Website:           strOrEmpty(m.Website),
		FounderName:       strOrEmpty(m.FounderName),
		LogoURL:           strOrEmpty(m.LogoURL),
		FounderPhoto:      strOrEmpty(m.FounderPhoto),
		Description:       strOrEmpty(m.Description),
		TwitterHandle:     strOrEmpty(m.TwitterHandle),
		Tagline:           strOrEmpty(m.Tagline),
		FoundingDate:      m.FoundingDate,
		Country:           strOrEmpty(m.Country),
		FollowerCount:     m.FollowerCount,
		EstimatedMRR:      m.EstimatedMRR,
		MonthlyRevenue:    m.MonthlyRevenue,
		MoMGrowth:         m.MoMGrowth,
		Category:          domain.Category(m.Category),
		IsVerified:        m.IsVerified,
		LastVerifiedAt:    m.LastVerifiedAt,
		ShowInLeaderboard: m.ShowInLeaderboard,
		IsAnonymous:       m.IsAnonymous,
		OwnerID:           m.OwnerID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toCompanyModel(c *domain.Company) companyModel {
	category := c.Category
	if category == "" {
		category = domain.CategoryOther
	}

	return companyModel{
		ID:                c.ID,
		Name:              c.Name,
		Website:           strOrNil(c.Website),
		FounderName:       strOrNil(c.FounderName),
		LogoURL:           strOrNil(c.LogoURL),
		FounderPhoto:      strOrNil(c.FounderPhoto),
		Description:       strOrNil(c.Description),
		TwitterHandle:     strOrNil(c.TwitterHandle),
		Tagline:           strOrNil(c.Tagline),
		FoundingDate:      c.FoundingDate,
		Country:           strOrNil(c.Country),
		FollowerCount:     c.FollowerCount,
		EstimatedMRR:      c.EstimatedMRR,
		MonthlyRevenue:    c.MonthlyRevenue,
		MoMGrowth:         c.MoMGrowth,
		Category:          string(category),
		IsVerified:        c.IsVerified,
		LastVerifiedAt:    c.LastVerifiedAt,
		ShowInLeaderboard: c.ShowInLeaderboard,
		IsAnonymous:       c.IsAnonymous,
		OwnerID:           c.OwnerID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toDomainCompanyRow(r companyRow) *domain.Company {
	c := toDomainCompany(r.companyModel)
	c.OwnerUsername = strOrEmpty(r.OwnerUsername)
	return c
}

func (r *CompanyRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("companies").
		Select("companies.*, users.username AS owner_username").
		Joins("LEFT JOIN users ON users.id = companies.owner_id")
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	m := toCompanyModel(c)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	owner := c.OwnerUsername
	*c = *toDomainCompany(m)
	c.OwnerUsername = owner
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	var rows []companyRow
	if err := r.withOwner(ctx).Where("companies.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return toDomainCompanyRow(rows[0]), nil
}

// ListLeaderboard returns visible companies, highest monthly revenue first.
// An empty category means all categories.
func (r *CompanyRepository) ListLeaderboard(ctx context.Context, category domain.Category) ([]domain.Company, error) {
	q := r.withOwner(ctx).Where("companies.show_in_leaderboard = ?", true)
	if category != "" {
		q = q.Where("companies.category = ?", string(category))
	}

	var rows []companyRow
	if err := q.Order("companies.monthly_revenue DESC, companies.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Company, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toDomainCompanyRow(row))
	}
	return out, nil
}

// Rank is the 1-based leaderboard position of a company among visible
// companies in the same ordering as ListLeaderboard. Hidden companies get 0.
func (r *CompanyRepository) Rank(ctx context.Context, c *domain.Company) (int, error) {
	if !c.ShowInLeaderboard {
		return 0, nil
	}
	var ahead int64
	err := r.db.WithContext(ctx).Model(&companyModel{}).
		Where("show_in_leaderboard = ?", true).
		Where("monthly_revenue > ? OR (monthly_revenue = ? AND id < ?)", c.MonthlyRevenue, c.MonthlyRevenue, c.ID).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	m := toCompanyModel(c)
	res := r.db.WithContext(ctx).Model(&companyModel{ID: c.ID}).
		Select("*").
		Omit("id", "created_at", "owner_id").
		Updates(&m)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveVerification stores freshly fetched revenue figures and marks the company verified.
func (r *CompanyRepository) SaveVerification(ctx context.Context, id int64, revenue, growth float64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&companyModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"monthly_revenue":  revenue,
			"mom_growth":       growth,
			"is_verified":      true,
			"last_verified_at": at,
			"updated_at":       at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the company together with its integration keys and detaches
// (never deletes) advertisements that referenced it.
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&integrationKeyModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&adModel{}).
			Where("company_id = ?", id).
			UpdateColumn("company_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		res := tx.Delete(&companyModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}
