package company

import (
	"time"

	"trustmrr/internal/domain"
)

// Viewer is whoever makes the request. A zero Viewer is anonymous.
type Viewer struct {
	UserID   int64
	Username string
}

// CreateRequest adds a manual, unverified leaderboard entry.
type CreateRequest struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Website           string   `json:"website" validate:"omitempty,httpurl"`
	FounderName       string   `json:"founder_name" validate:"omitempty,max=255"`
	LogoURL           string   `json:"logo_url" validate:"omitempty,max=500"`
	Description       string   `json:"description" validate:"omitempty,max=500"`
	TwitterHandle     string   `json:"twitter_handle" validate:"omitempty,max=100"`
	Tagline           string   `json:"tagline" validate:"omitempty,max=200"`
	FoundingDate      string   `json:"founding_date"`
	Country           string   `json:"country" validate:"omitempty,max=100"`
	FollowerCount     int      `json:"follower_count" validate:"gte=0"`
	EstimatedMRR      *float64 `json:"estimated_mrr" validate:"omitempty,gte=0"`
	MonthlyRevenue    float64  `json:"monthly_revenue" validate:"gte=0"`
	MoMGrowth         float64  `json:"mom_growth" validate:"gte=-999.99,lte=999.99"`
	Category          string   `json:"category"`
	ShowInLeaderboard *bool    `json:"show_in_leaderboard"`
	IsAnonymous       bool     `json:"is_anonymous"`
}

// UpdateRequest changes only the fields that are set. It binds from JSON or
// from a multipart form carrying "logo" and "founder_photo" files.
type UpdateRequest struct {
	Name              *string  `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	Website           *string  `json:"website" form:"website" validate:"omitempty,httpurl"`
	FounderName       *string  `json:"founder_name" form:"founder_name" validate:"omitempty,max=255"`
	LogoURL           *string  `json:"logo_url" form:"logo_url" validate:"omitempty,max=500"`
	Description       *string  `json:"description" form:"description" validate:"omitempty,max=500"`
	TwitterHandle     *string  `json:"twitter_handle" form:"twitter_handle" validate:"omitempty,max=100"`
	Tagline           *string  `json:"tagline" form:"tagline" validate:"omitempty,max=200"`
	FoundingDate      *string  `json:"founding_date" form:"founding_date"`
	Country           *string  `json:"country" form:"country" validate:"omitempty,max=100"`
	FollowerCount     *int     `json:"follower_count" form:"follower_count" validate:"omitempty,gte=0"`
	EstimatedMRR      *float64 `json:"estimated_mrr" form:"estimated_mrr" validate:"omitempty,gte=0"`
	MonthlyRevenue    *float64 `json:"monthly_revenue" form:"monthly_revenue" validate:"omitempty,gte=0"`
	Category          *string  `json:"category" form:"category"`
	ShowInLeaderboard *bool    `json:"show_in_leaderboard" form:"show_in_leaderboard"`
	IsAnonymous       *bool    `json:"is_anonymous" form:"is_anonymous"`
}

// CompanyResponse is a leaderboard entry as the viewer may see it.
type CompanyResponse struct {
	ID                int64           `json:"id"`
	Rank              int             `json:"rank,omitempty"`
	Name              string          `json:"name"`
	Website           string          `json:"website"`
	FounderName       string          `json:"founder_name"`
	LogoURL           string          `json:"logo_url"`
	FounderPhoto      string          `json:"founder_photo"`
	Description       string          `json:"description"`
	TwitterHandle     string          `json:"twitter_handle"`
	Tagline           string          `json:"tagline"`
	FoundingDate      *string         `json:"founding_date"`
	Country           string          `json:"country"`
	FollowerCount     int             `json:"follower_count"`
	EstimatedMRR      *float64        `json:"estimated_mrr"`
	MonthlyRevenue    float64         `json:"monthly_revenue"`
	MoMGrowth         float64         `json:"mom_growth"`
	Category          domain.Category `json:"category"`
	CategoryLabel     string          `json:"category_label"`
	IsVerified        bool            `json:"is_verified"`
	LastVerifiedAt    *time.Time      `json:"last_verified_at"`
	ShowInLeaderboard bool            `json:"show_in_leaderboard"`
	IsAnonymous       bool            `json:"is_anonymous"`
	AddedByUsername   string          `json:"added_by_username,omitempty"`
	IsOwner           bool            `json:"is_owner"`
}

// toResponse shows the real entry to its owner and the public view to everyone else.
func toResponse(c *domain.Company, v Viewer) CompanyResponse {
	owner := v.UserID != 0 && c.IsOwnedBy(v.UserID, v.Username)
	shown := *c
	if !owner {
		shown = c.PublicView()
	}

	var founded *string
	if shown.FoundingDate != nil {
		s := domain.FormatDate(*shown.FoundingDate)
		founded = &s
	}

	return CompanyResponse{
		ID:                shown.ID,
		Name:              shown.Name,
		Website:           shown.Website,
		FounderName:       shown.FounderName,
		LogoURL:           shown.LogoURL,
		FounderPhoto:      shown.FounderPhoto,
		Description:       shown.Description,
		TwitterHandle:     shown.TwitterHandle,
		Tagline:           shown.Tagline,
		FoundingDate:      founded,
		Country:           shown.Country,
		FollowerCount:     shown.FollowerCount,
		EstimatedMRR:      shown.EstimatedMRR,
		MonthlyRevenue:    shown.MonthlyRevenue,
		MoMGrowth:         shown.MoMGrowth,
		Category:          shown.Category,
		CategoryLabel:     shown.Category.Label(),
		IsVerified:        shown.IsVerified,
		LastVerifiedAt:    shown.LastVerifiedAt,
		ShowInLeaderboard: shown.ShowInLeaderboard,
		IsAnonymous:       shown.IsAnonymous,
		AddedByUsername:   shown.OwnerUsername,
		IsOwner:           owner,
	}
}
