package repository

import (
	"context"
	"time"

	"trustmrr/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IntegrationRepository struct {
	db *gorm.DB
}

func NewIntegrationRepository(db *gorm.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

type integrationKeyModel struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	CompanyID   int64          `gorm:"column:company_id;not null;uniqueIndex:idx_integration_company_provider,priority:1"`
	Provider    string         `gorm:"column:provider;size:20;not null;uniqueIndex:idx_integration_company_provider,priority:2"`
	Credentials datatypes.JSON `gorm:"column:credentials;not null"`
	AddedBy     int64          `gorm:"column:added_by;not null"`
	AddedAt     time.Time      `gorm:"column:added_at;not null"`
}

func (integrationKeyModel) TableName() string { return "integration_keys" }

func toDomainIntegrationKey(m integrationKeyModel) (*domain.IntegrationKey, error) {
	provider := domain.Provider(m.Provider)
	creds, err := domain.DecodeCredentials(provider, m.Credentials)
	if err != nil {
		return nil, err
	}
	return &domain.IntegrationKey{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Provider:    provider,
		Credentials: creds,
		AddedBy:     m.AddedBy,
		AddedAt:     m.AddedAt,
	}, nil
}

// Upsert writes the key for (company, provider), overwriting credentials of a
// previous link.
func (r *IntegrationRepository) Upsert(ctx context.Context, key *domain.IntegrationKey) error {
	raw, err := domain.EncodeCredentials(key.Credentials)
	if err != nil {
		return err
	}
	if key.AddedAt.IsZero() {
		key.AddedAt = time.Now().UTC()
	}

	m := integrationKeyModel{
		CompanyID:   key.CompanyID,
		Provider:    string(key.Credentials.Provider()),
		Credentials: datatypes.JSON(raw),
		AddedBy:     key.AddedBy,
		AddedAt:     key.AddedAt,
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"credentials", "added_by", "added_at"}),
	}).Create(&m).Error
	if err != nil {
		return translate(err)
	}

	stored, err := r.Get(ctx, key.CompanyID, key.Credentials.Provider())
	if err != nil {
		return err
	}
	*key = *stored
	return nil
}

func (r *IntegrationRepository) Get(ctx context.Context, companyID int64, provider domain.Provider) (*domain.IntegrationKey, error) {
	var m integrationKeyModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND provider = ?", companyID, string(provider)).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return toDomainIntegrationKey(m)
}

func (r *IntegrationRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.IntegrationKey, error) {
	var rows []integrationKeyModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("provider ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.IntegrationKey, 0, len(rows))
	for _, m := range rows {
		k, err := toDomainIntegrationKey(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, nil
}
