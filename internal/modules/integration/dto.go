package integration

import (
	"strings"
	"time"

	"trustmrr/internal/domain"
)

// Credentials are the provider fields of a request; which ones apply depends
// on the provider.
type Credentials struct {
	APIKey       string `json:"api_key"`
	APISecret    string `json:"api_secret"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (c Credentials) empty() bool {
	return strings.TrimSpace(c.APIKey+c.APISecret+c.ClientID+c.ClientSecret) == ""
}

// forProvider picks the variant for p and checks it is complete.
func (c Credentials) forProvider(p domain.Provider) (domain.IntegrationCredentials, error) {
	var creds domain.IntegrationCredentials
	switch p {
	case domain.ProviderStripe:
		creds = domain.StripeCredentials{APIKey: strings.TrimSpace(c.APIKey)}
	case domain.ProviderRazorpay:
		creds = domain.RazorpayCredentials{KeyID: strings.TrimSpace(c.APIKey), KeySecret: strings.TrimSpace(c.APISecret)}
	case domain.ProviderPayPal:
		creds = domain.PayPalCredentials{ClientID: strings.TrimSpace(c.ClientID), ClientSecret: strings.TrimSpace(c.ClientSecret)}
	default:
		return nil, ErrUnknownProvider
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// LinkRequest links a provider to an owned company, or to a new one named by
// CompanyName.
type LinkRequest struct {
	Credentials
	CompanyID         *int64 `json:"company_id"`
	CompanyName       string `json:"company_name" validate:"omitempty,max=255"`
	Category          string `json:"category"`
	ShowInLeaderboard *bool  `json:"show_in_leaderboard"`
	IsAnonymous       bool   `json:"is_anonymous"`
	Description       string `json:"description" validate:"omitempty,max=500"`
	Website           string `json:"website" validate:"omitempty,httpurl"`
	TwitterHandle     string `json:"twitter_handle" validate:"omitempty,max=100"`
}

// RefreshRequest re-verifies a company. Without credentials the stored ones
// are used.
type RefreshRequest struct {
	Credentials
	Provider string `json:"provider" binding:"required"`
}

type VerificationResult struct {
	Message        string          `json:"message"`
	CompanyID      int64           `json:"company_id"`
	Provider       domain.Provider `json:"provider"`
	MonthlyRevenue float64         `json:"monthly_revenue"`
	MoMGrowth      float64         `json:"mom_growth"`
	IsVerified     bool            `json:"is_verified"`
	LastVerifiedAt time.Time       `json:"last_verified_at"`
}

// LinkedProvider describes a stored integration without its secrets.
type LinkedProvider struct {
	Provider domain.Provider `json:"provider"`
	AddedBy  int64           `json:"added_by"`
	AddedAt  time.Time       `json:"added_at"`
}

var providerNames = map[domain.Provider]string{
	domain.ProviderStripe:   "Stripe",
	domain.ProviderRazorpay: "Razorpay",
	domain.ProviderPayPal:   "PayPal",
}
