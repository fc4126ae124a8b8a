// Package razorpay fetches collected revenue from Razorpay payments.
package razorpay

import (
	"context"
	"strings"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"

	razorpaygo "github.com/razorpay/razorpay-go"
)

const (
	pageSize        = 100
	statusCaptured  = "captured"
	authFailureText = "authentication failed"
)

// payments lists one page of payments. *razorpaygo.Client's Payment resource
// satisfies it.
type payments interface {
	All(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Fetcher struct {
	// newClient is swapped in tests.
	newClient func(keyID, keySecret string) payments
}

func NewFetcher() *Fetcher {
	return &Fetcher{newClient: func(keyID, keySecret string) payments {
		return razorpaygo.NewClient(keyID, keySecret).Payment
	}}
}

func (f *Fetcher) Provider() domain.Provider { return domain.ProviderRazorpay }

// FetchRecentRevenue sums captured payments created in w and in the window
// before it. The SDK takes no context; cancellation is checked between pages.
func (f *Fetcher) FetchRecentRevenue(ctx context.Context, creds domain.IntegrationCredentials, w integrations.Window) (integrations.Revenue, error) {
	c, ok := creds.(domain.RazorpayCredentials)
	if !ok {
		return integrations.Revenue{}, integrations.WrongCredentials(domain.ProviderRazorpay, creds)
	}

	api := f.newClient(c.KeyID, c.KeySecret)
	prior := w.Prior()

	var items []interface{}
	for skip := 0; ; skip += pageSize {
		if err := ctx.Err(); err != nil {
			return integrations.Revenue{}, err
		}
		page, err := api.All(map[string]interface{}{
			"from":  prior.From.Unix(),
			"to":    w.To.Unix(),
			"count": pageSize,
			"skip":  skip,
		}, nil)
		if err != nil {
			return integrations.Revenue{}, classify(err)
		}
		batch, _ := page["items"].([]interface{})
		items = append(items, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	return sumPayments(items, w), nil
}

func sumPayments(items []interface{}, w integrations.Window) integrations.Revenue {
	prior := w.Prior()
	var cur, prev int64
	for _, it := range items {
		p, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		if status, _ := p["status"].(string); status != statusCaptured {
			continue
		}
		amount := number(p["amount"]) - number(p["amount_refunded"])
		at := time.Unix(number(p["created_at"]), 0)
		switch {
		case w.Contains(at):
			cur += amount
		case prior.Contains(at):
			prev += amount
		}
	}
	return integrations.Revenue{
		Total:      integrations.FromMinor(cur),
		PriorTotal: integrations.FromMinor(prev),
	}
}

// number reads a JSON number decoded into an interface{}.
func number(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func classify(err error) error {
	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), authFailureText) {
		return integrations.ErrAuthFailed
	}
	return &integrations.ProviderError{Provider: domain.ProviderRazorpay, Message: msg}
}
