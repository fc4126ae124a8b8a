// Package paypal fetches collected revenue from the PayPal transaction search API.
package paypal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"

	paypalsdk "github.com/plutov/paypal/v4"
)

const (
	pageSize = 500
	// statusSuccess is the transaction_status of a completed payment.
	statusSuccess = "S"
)

type Fetcher struct {
	apiBase string
}

// NewFetcher talks to apiBase, the sandbox when empty.
func NewFetcher(apiBase string) *Fetcher {
	if apiBase == "" {
		apiBase = paypalsdk.APIBaseSandBox
	}
	return &Fetcher{apiBase: apiBase}
}

func (f *Fetcher) Provider() domain.Provider { return domain.ProviderPayPal }

// FetchRecentRevenue sums successful transactions in w and in the window
// before it, one search per window.
func (f *Fetcher) FetchRecentRevenue(ctx context.Context, creds domain.IntegrationCredentials, w integrations.Window) (integrations.Revenue, error) {
	c, ok := creds.(domain.PayPalCredentials)
	if !ok {
		return integrations.Revenue{}, integrations.WrongCredentials(domain.ProviderPayPal, creds)
	}

	client, err := paypalsdk.NewClient(c.ClientID, c.ClientSecret, f.apiBase)
	if err != nil {
		return integrations.Revenue{}, classify(err)
	}
	if _, err := client.GetAccessToken(ctx); err != nil {
		return integrations.Revenue{}, classify(err)
	}

	total, err := sumWindow(ctx, client, w)
	if err != nil {
		return integrations.Revenue{}, err
	}
	prior, err := sumWindow(ctx, client, w.Prior())
	if err != nil {
		return integrations.Revenue{}, err
	}
	return integrations.Revenue{Total: total, PriorTotal: prior}, nil
}

func sumWindow(ctx context.Context, client *paypalsdk.Client, w integrations.Window) (float64, error) {
	var total float64
	size := pageSize
	for page := 1; ; page++ {
		p := page
		resp, err := client.ListTransactions(ctx, &paypalsdk.TransactionSearchRequest{
			StartDate: w.From,
			EndDate:   w.To.Add(-time.Second),
			Page:      &p,
			PageSize:  &size,
		})
		if err != nil {
			return 0, classify(err)
		}
		for _, d := range resp.TransactionDetails {
			info := d.TransactionInfo
			total += successAmount(info.TransactionStatus, info.TransactionAmount.Value)
		}
		if page >= resp.TotalPages {
			return total, nil
		}
	}
}

// successAmount is the value of a completed transaction, 0 otherwise.
// Refunds come back as negative amounts and reduce the total.
func successAmount(status, value string) float64 {
	if status != statusSuccess {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return v
}

func classify(err error) error {
	var er *paypalsdk.ErrorResponse
	if !errors.As(err, &er) {
		return &integrations.ProviderError{Provider: domain.ProviderPayPal, Message: err.Error()}
	}
	status := 0
	if er.Response != nil {
		status = er.Response.StatusCode
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return integrations.ErrAuthFailed
	}
	msg := er.Message
	if msg == "" {
		msg = er.Name
	}
	return &integrations.ProviderError{Provider: domain.ProviderPayPal, StatusCode: status, Message: msg}
}
