// Package stripe fetches collected revenue from Stripe charges.
package stripe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"

	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

const pageSize = "100"

type Fetcher struct {
	backends *stripego.Backends
}

// NewFetcher uses the default Stripe backends. backends may be nil.
func NewFetcher(backends *stripego.Backends) *Fetcher {
	return &Fetcher{backends: backends}
}

func (f *Fetcher) Provider() domain.Provider { return domain.ProviderStripe }

// FetchRecentRevenue sums succeeded charges, net of refunds, created in w and
// in the window before it.
func (f *Fetcher) FetchRecentRevenue(ctx context.Context, creds domain.IntegrationCredentials, w integrations.Window) (integrations.Revenue, error) {
	c, ok := creds.(domain.StripeCredentials)
	if !ok {
		return integrations.Revenue{}, integrations.WrongCredentials(domain.ProviderStripe, creds)
	}

	sc := &client.API{}
	sc.Init(c.APIKey, f.backends)

	prior := w.Prior()
	params := &stripego.ChargeListParams{
		CreatedRange: &stripego.RangeQueryParams{
			GreaterThanOrEqual: prior.From.Unix(),
			LesserThan:         w.To.Unix(),
		},
	}
	params.Context = ctx
	params.Filters.AddFilter("limit", "", pageSize)

	var charges []*stripego.Charge
	it := sc.Charges.List(params)
	for it.Next() {
		charges = append(charges, it.Charge())
	}
	if err := it.Err(); err != nil {
		return integrations.Revenue{}, classify(err)
	}
	return sumCharges(charges, w), nil
}

func sumCharges(charges []*stripego.Charge, w integrations.Window) integrations.Revenue {
	prior := w.Prior()
	var cur, prev int64
	for _, ch := range charges {
		if ch == nil || !ch.Paid || ch.Status != stripego.ChargeStatusSucceeded {
			continue
		}
		net := ch.Amount - ch.AmountRefunded
		at := time.Unix(ch.Created, 0)
		switch {
		case w.Contains(at):
			cur += net
		case prior.Contains(at):
			prev += net
		}
	}
	return integrations.Revenue{
		Total:      integrations.FromMinor(cur),
		PriorTotal: integrations.FromMinor(prev),
	}
}

func classify(err error) error {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return &integrations.ProviderError{Provider: domain.ProviderStripe, Message: err.Error()}
	}
	if se.HTTPStatusCode == http.StatusUnauthorized || se.HTTPStatusCode == http.StatusForbidden {
		return integrations.ErrAuthFailed
	}
	msg := se.Msg
	if msg == "" {
		msg = err.Error()
	}
	return &integrations.ProviderError{Provider: domain.ProviderStripe, StatusCode: se.HTTPStatusCode, Message: msg}
}
