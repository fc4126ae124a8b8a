// Package integrations holds what the payment-provider revenue fetchers share.
package integrations

import (
	"errors"
	"fmt"
	"math"
	"time"

	"trustmrr/internal/domain"
)

// DefaultWindow is the length of one revenue period.
const DefaultWindow = 30 * 24 * time.Hour

// ErrAuthFailed means the provider rejected the credentials.
var ErrAuthFailed = errors.New("provider rejected credentials")

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// RecentWindow is the period of the given length that ends at now.
func RecentWindow(now time.Time, length time.Duration) Window {
	if length <= 0 {
		length = DefaultWindow
	}
	return Window{From: now.Add(-length), To: now}
}

// Prior is the window of the same length immediately before w.
func (w Window) Prior() Window {
	return Window{From: w.From.Add(-w.To.Sub(w.From)), To: w.From}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Revenue is the collected total of a window and of the one before it, in
// whole currency units.
type Revenue struct {
	Total      float64
	PriorTotal float64
}

// Growth is the period-over-period change in percent, clamped to what a
// decimal(5,2) column can hold. No prior revenue means no growth.
func (r Revenue) Growth() float64 {
	if r.PriorTotal <= 0 {
		return 0
	}
	g := (r.Total - r.PriorTotal) / r.PriorTotal * 100
	g = math.Max(-999.99, math.Min(999.99, g))
	return math.Round(g*100) / 100
}

// ProviderError carries a provider failure that is not a credential problem.
// Message is what the provider said.
type ProviderError struct {
	Provider   domain.Provider
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// FromMinor converts an amount in minor units (cents, paise) to whole units.
func FromMinor(amount int64) float64 {
	return float64(amount) / 100
}

// WrongCredentials is returned when a fetcher receives another provider's credentials.
func WrongCredentials(want domain.Provider, got domain.IntegrationCredentials) error {
	if got == nil {
		return fmt.Errorf("%w: no %s credentials", domain.ErrMissingCredentials, want)
	}
	return fmt.Errorf("%w: %s fetcher got %s credentials", domain.ErrUnknownProvider, want, got.Provider())
}
