package ads

import (
	"math"
	"time"

	"trustmrr/internal/domain"
)

type PriceRequest struct {
	SlotID        string `json:"slot_id" binding:"required"`
	DurationWeeks int    `json:"duration_weeks" binding:"required"`
	StartDate     string `json:"start_date"`
}

// BookRequest is accepted as JSON or as a multipart form with an "image" file.
type BookRequest struct {
	SlotID      string  `json:"slot_id" form:"slot_id" validate:"required"`
	StartDate   string  `json:"start_date" form:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" form:"end_date" validate:"required"`
	Title       string  `json:"title" form:"title" validate:"required,max=100"`
	Description string  `json:"description" form:"description" validate:"required,max=200"`
	TargetURL   string  `json:"target_url" form:"target_url" validate:"required,httpurl"`
	ImageURL    string  `json:"image_url" form:"image_url" validate:"omitempty,max=500"`
	PaymentID   string  `json:"payment_id" form:"payment_id" validate:"required,max=100"`
	AmountPaid  float64 `json:"amount_paid" form:"amount_paid" validate:"gte=0"`
	CompanyID   *int64  `json:"company_id" form:"company_id"`
}

type ImpressionsRequest struct {
	AdIDs []int64 `json:"ad_ids"`
}

type CancelResult struct {
	Message        string  `json:"message"`
	RefundEligible bool    `json:"refund_eligible"`
	RefundAmount   float64 `json:"refund_amount"`
}

// AdView is an ad as its owner sees it, with the derived fields filled in
// for a given day.
type AdView struct {
	ID            int64           `json:"id"`
	SlotID        domain.SlotID   `json:"slot_id"`
	SlotLabel     string          `json:"slot_label"`
	CompanyID     *int64          `json:"company_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetURL     string          `json:"target_url"`
	ImageURL      string          `json:"image_url,omitempty"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	IsActive      bool            `json:"is_active"`
	PaymentID     string          `json:"payment_id"`
	AmountPaid    float64         `json:"amount_paid"`
	Impressions   int64           `json:"impressions"`
	Clicks        int64           `json:"clicks"`
	Status        domain.AdStatus `json:"status"`
	IsLive        bool            `json:"is_live"`
	DaysRemaining int             `json:"days_remaining"`
	StartsInDays  *int            `json:"starts_in_days,omitempty"`
	CTR           float64         `json:"ctr"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toAdView(ad *domain.Advertisement, today time.Time) AdView {
	v := AdView{
		ID:            ad.ID,
		SlotID:        ad.SlotID,
		SlotLabel:     ad.SlotID.Label(),
		CompanyID:     ad.CompanyID,
		Title:         ad.Title,
		Description:   ad.Description,
		TargetURL:     ad.TargetURL,
		ImageURL:      ad.ImageURL,
		StartDate:     domain.FormatDate(ad.StartDate),
		EndDate:       domain.FormatDate(ad.EndDate),
		IsActive:      ad.IsActive,
		PaymentID:     ad.PaymentID,
		AmountPaid:    ad.AmountPaid,
		Impressions:   ad.Impressions,
		Clicks:        ad.Clicks,
		Status:        ad.Status(today),
		IsLive:        ad.IsLive(today),
		DaysRemaining: ad.DaysRemaining(today),
		CTR:           round2(ad.CTR()),
		CreatedAt:     ad.CreatedAt,
	}
	if v.Status == domain.AdScheduled {
		n := ad.StartsInDays(today)
		v.StartsInDays = &n
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MyAds is the owner's dashboard.
type MyAds struct {
	Active           []AdView `json:"active"`
	Scheduled        []AdView `json:"scheduled"`
	Expired          []AdView `json:"expired"`
	TotalSpent       float64  `json:"total_spent"`
	TotalClicks      int64    `json:"total_clicks"`
	TotalImpressions int64    `json:"total_impressions"`
}

// PublicAd is what visitors see in a booked slot.
type PublicAd struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetURL   string `json:"target_url"`
	ImageURL    string `json:"image_url,omitempty"`
	EndDate     string `json:"end_date"`
}

// SlotState is one entry of the slot board.
type SlotState struct {
	SlotID domain.SlotID `json:"slot_id"`
	Label  string        `json:"label"`
	Status string        `json:"status"`
	Ad     *PublicAd     `json:"ad,omitempty"`
	Price  *PriceQuote   `json:"price,omitempty"`
}

const (
	SlotBooked    = "booked"
	SlotAvailable = "available"
)

// exportRow is one CSV line of the my-ads export.
type exportRow struct {
	ID          int64   `csv:"id"`
	Slot        string  `csv:"slot"`
	Title       string  `csv:"title"`
	TargetURL   string  `csv:"target_url"`
	StartDate   string  `csv:"start_date"`
	EndDate     string  `csv:"end_date"`
	Status      string  `csv:"status"`
	AmountPaid  float64 `csv:"amount_paid"`
	PaymentID   string  `csv:"payment_id"`
	Impressions int64   `csv:"impressions"`
	Clicks      int64   `csv:"clicks"`
	CTR         float64 `csv:"ctr"`
}
