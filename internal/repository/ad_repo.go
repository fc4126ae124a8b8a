package repository

import (
	"context"
	"time"

	"trustmrr/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

// adSlotModel holds one row per sidebar slot. Booking locks the row so two
// bookings for the same slot are serialised.
type adSlotModel struct {
	ID    string `gorm:"column:id;primaryKey;size:20"`
	Label string `gorm:"column:label;size:50;not null"`
}

func (adSlotModel) TableName() string { return "ad_slots" }

type adModel struct {
	ID                    int64     `gorm:"column:id;primaryKey"`
	OwnerID               int64     `gorm:"column:owner_id;not null;index"`
	CompanyID             *int64    `gorm:"column:company_id;index"`
	SlotID                string    `gorm:"column:slot_id;size:20;not null;index:idx_ads_slot_dates,priority:1"`
	Title                 string    `gorm:"column:title;size:100;not null"`
	Description           string    `gorm:"column:description;size:200;not null"`
	TargetURL             string    `gorm:"column:target_url;not null"`
	ImageURL              *string   `gorm:"column:image_url"`
	StartDate             time.Time `gorm:"column:start_date;type:date;not null;index:idx_ads_slot_dates,priority:2"`
	EndDate               time.Time `gorm:"column:end_date;type:date;not null;index:idx_ads_slot_dates,priority:3"`
	IsActive              bool      `gorm:"column:is_active;not null"`
	PaymentID             *string   `gorm:"column:payment_id;size:100"`
	AmountPaid            float64   `gorm:"column:amount_paid;type:decimal(10,2);not null"`
	Impressions           int64     `gorm:"column:impressions;not null"`
	Clicks                int64     `gorm:"column:clicks;not null"`
	ConfirmationEmailSent bool      `gorm:"column:confirmation_email_sent;not null"`
	LiveNotificationSent  bool      `gorm:"column:live_notification_sent;not null"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func (adModel) TableName() string { return "advertisements" }

func toDomainAd(m adModel) *domain.Advertisement {
	var image, payment string
	if m.ImageURL != nil {
		image = *m.ImageURL
	}
	if m.PaymentID != nil {
		payment = *m.PaymentID
	}

	return &domain.Advertisement{
		ID:                    m.ID,
		OwnerID:               m.OwnerID,
		CompanyID:             m.CompanyID,
		SlotID:                domain.SlotID(m.SlotID),
		Title:                 m.Title,
		Description:           m.Description,
		TargetURL:             m.TargetURL,
		ImageURL:              image,
		StartDate:             domain.DateOf(m.StartDate),
		EndDate:               domain.DateOf(m.EndDate),
		IsActive:              m.IsActive,
		PaymentID:             payment,
		AmountPaid:            m.AmountPaid,
		Impressions:           m.Impressions,
		Clicks:                m.Clicks,
		ConfirmationEmailSent: m.ConfirmationEmailSent,
		LiveNotificationSent:  m.LiveNotificationSent,
		CreatedAt:             m.CreatedAt,
	}
}

func toAdModel(a *domain.Advertisement) adModel {
	var image, payment *string
	if a.ImageURL != "" {
		v := a.ImageURL
		image = &v
	}
	if a.PaymentID != "" {
		v := a.PaymentID
		payment = &v
	}

	return adModel{
		ID:                    a.ID,
		OwnerID:               a.OwnerID,
		CompanyID:             a.CompanyID,
		SlotID:                string(a.SlotID),
		Title:                 a.Title,
		Description:           a.Description,
		TargetURL:             a.TargetURL,
		ImageURL:              image,
		StartDate:             domain.DateOf(a.StartDate),
		EndDate:               domain.DateOf(a.EndDate),
		IsActive:              a.IsActive,
		PaymentID:             payment,
		AmountPaid:            a.AmountPaid,
		Impressions:           a.Impressions,
		Clicks:                a.Clicks,
		ConfirmationEmailSent: a.ConfirmationEmailSent,
		LiveNotificationSent:  a.LiveNotificationSent,
		CreatedAt:             a.CreatedAt,
	}
}

func toDomainAds(rows []adModel) []domain.Advertisement {
	out := make([]domain.Advertisement, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAd(m))
	}
	return out
}

// overlapping selects active ads on slot whose inclusive range meets [start, end].
func overlapping(tx *gorm.DB, slot domain.SlotID, start, end time.Time) *gorm.DB {
	return tx.Model(&adModel{}).
		Where("slot_id = ?", string(slot)).
		Where("is_active = ?", true).
		Where("start_date <= ?", domain.DateOf(end)).
		Where("end_date >= ?", domain.DateOf(start))
}

// CreateIfSlotFree inserts the ad only if no active booking on the same slot
// overlaps its dates. The check and the insert share one transaction that
// holds the slot row lock; on PostgreSQL the exclusion constraint backs it up.
func (r *AdRepository) CreateIfSlotFree(ctx context.Context, ad *domain.Advertisement) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot adSlotModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", string(ad.SlotID)).
			First(&slot).Error; err != nil {
			return err
		}

		var cnt int64
		if err := overlapping(tx, ad.SlotID, ad.StartDate, ad.EndDate).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrSlotTaken
		}

		m := toAdModel(ad)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*ad = *toDomainAd(m)
		return nil
	})
	return translate(err)
}

func (r *AdRepository) OverlapExists(ctx context.Context, slot domain.SlotID, start, end time.Time) (bool, error) {
	var cnt int64
	if err := overlapping(r.db.WithContext(ctx), slot, start, end).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *AdRepository) GetByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	var m adModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainAd(m), nil
}

// GetOwned returns ErrNotFound both for unknown ids and for ads of other users.
func (r *AdRepository) GetOwned(ctx context.Context, id, ownerID int64) (*domain.Advertisement, error) {
	var m adModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return toDomainAd(m), nil
}

func (r *AdRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Advertisement, error) {
	var rows []adModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainAds(rows), nil
}

// ListActiveInWindow returns active ads with end >= from and start <= to,
// i.e. every booking that touches the window, with its full stored range.
func (r *AdRepository) ListActiveInWindow(ctx context.Context, from, to time.Time) ([]domain.Advertisement, error) {
	var rows []adModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("end_date >= ?", domain.DateOf(from)).
		Where("start_date <= ?", domain.DateOf(to)).
		Order("slot_id ASC, start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainAds(rows), nil
}

func (r *AdRepository) ListActiveOn(ctx context.Context, day time.Time) ([]domain.Advertisement, error) {
	return r.ListActiveInWindow(ctx, day, day)
}

// ListLiveWithoutNotification returns ads that are live on day and whose owner
// has not been told yet.
func (r *AdRepository) ListLiveWithoutNotification(ctx context.Context, day time.Time) ([]domain.Advertisement, error) {
	var rows []adModel
	d := domain.DateOf(day)
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND live_notification_sent = ?", true, false).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainAds(rows), nil
}

func (r *AdRepository) ListEndingOn(ctx context.Context, day time.Time) ([]domain.Advertisement, error) {
	var rows []adModel
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND end_date = ?", true, domain.DateOf(day)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainAds(rows), nil
}

// CountDemand counts bookings on slot that have not ended before today,
// cancelled ones included.
func (r *AdRepository) CountDemand(ctx context.Context, slot domain.SlotID, today time.Time) (int, error) {
	query, args, err := sq.Select("COUNT(1)").
		From("advertisements").
		Where(sq.Eq{"slot_id": string(slot)}).
		Where(sq.GtOrEq{"end_date": domain.DateOf(today)}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var cnt int64
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&cnt).Error; err != nil {
		return 0, err
	}
	return int(cnt), nil
}

type OwnerTotals struct {
	TotalSpent       float64 `gorm:"column:total_spent"`
	TotalClicks      int64   `gorm:"column:total_clicks"`
	TotalImpressions int64   `gorm:"column:total_impressions"`
}

// OwnerTotals sums spend and counters over every ad of the owner, whatever its state.
func (r *AdRepository) OwnerTotals(ctx context.Context, ownerID int64) (OwnerTotals, error) {
	query, args, err := sq.Select(
		"COALESCE(SUM(amount_paid), 0) AS total_spent",
		"COALESCE(SUM(clicks), 0) AS total_clicks",
		"COALESCE(SUM(impressions), 0) AS total_impressions",
	).
		From("advertisements").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return OwnerTotals{}, err
	}

	var totals OwnerTotals
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&totals).Error; err != nil {
		return OwnerTotals{}, err
	}
	return totals, nil
}

// Deactivate flips is_active off. It is the only way an ad is cancelled.
func (r *AdRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&adModel{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClicks adds one click in SQL and returns the new total.
func (r *AdRepository) IncrementClicks(ctx context.Context, id int64) (int64, error) {
	var clicks int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&adModel{}).
			Where("id = ?", id).
			UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&adModel{}).Select("clicks").Where("id = ?", id).Scan(&clicks).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return clicks, nil
}

// IncrementImpressions bumps every listed ad by one in a single statement.
// Unknown ids are ignored.
func (r *AdRepository) IncrementImpressions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&adModel{}).
		Where("id IN ?", ids).
		UpdateColumn("impressions", gorm.Expr("impressions + ?", 1)).Error
}

func (r *AdRepository) MarkConfirmationSent(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&adModel{}).
		Where("id = ?", id).
		UpdateColumn("confirmation_email_sent", true).Error
}

func (r *AdRepository) MarkLiveNotificationSent(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&adModel{}).
		Where("id = ?", id).
		UpdateColumn("live_notification_sent", true).Error
}
