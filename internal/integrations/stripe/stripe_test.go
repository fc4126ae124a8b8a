package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
)

func TestSumCharges(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	w := integrations.RecentWindow(now, 0)

	charges := []*stripego.Charge{
		{Paid: true, Status: stripego.ChargeStatusSucceeded, Amount: 10000, Created: now.Add(-time.Hour).Unix()},
		{Paid: true, Status: stripego.ChargeStatusSucceeded, Amount: 5000, AmountRefunded: 1000, Created: now.Add(-48 * time.Hour).Unix()},
		{Paid: false, Status: stripego.ChargeStatusFailed, Amount: 99999, Created: now.Add(-time.Hour).Unix()},
		{Paid: true, Status: stripego.ChargeStatusSucceeded, Amount: 2500, Created: w.From.Add(-time.Hour).Unix()},
		{Paid: true, Status: stripego.ChargeStatusSucceeded, Amount: 7000, Created: now.Add(time.Hour).Unix()},
		nil,
	}

	rev := sumCharges(charges, w)

	assert.Equal(t, 140.0, rev.Total)
	assert.Equal(t, 25.0, rev.PriorTotal)
}

func TestClassify(t *testing.T) {
	err := classify(&stripego.Error{HTTPStatusCode: http.StatusUnauthorized, Msg: "Invalid API Key provided"})
	assert.ErrorIs(t, err, integrations.ErrAuthFailed)

	err = classify(&stripego.Error{HTTPStatusCode: http.StatusTooManyRequests, Msg: "Too many requests"})
	var pe *integrations.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, domain.ProviderStripe, pe.Provider)
	assert.Equal(t, "Too many requests", pe.Message)

	err = classify(errors.New("dial tcp: timeout"))
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.StatusCode)
}

func TestFetchRecentRevenue_WrongCredentials(t *testing.T) {
	_, err := NewFetcher(nil).FetchRecentRevenue(context.Background(),
		domain.PayPalCredentials{ClientID: "id", ClientSecret: "s"},
		integrations.RecentWindow(time.Now(), 0))

	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
