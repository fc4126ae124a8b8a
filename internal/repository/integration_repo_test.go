package repository

import (
	"context"
	"testing"

	"trustmrr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationRepository_UpsertOverwrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewIntegrationRepository(db)
	ctx := context.Background()

	c := &domain.Company{Name: "Acme"}
	require.NoError(t, NewCompanyRepository(db).Create(ctx, c))

	first := &domain.IntegrationKey{
		CompanyID:   c.ID,
		Credentials: domain.RazorpayCredentials{KeyID: "rzp_old", KeySecret: "old"},
		AddedBy:     1,
	}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.NotZero(t, first.ID)

	second := &domain.IntegrationKey{
		CompanyID:   c.ID,
		Credentials: domain.RazorpayCredentials{KeyID: "rzp_new", KeySecret: "new"},
		AddedBy:     2,
	}
	require.NoError(t, repo.Upsert(ctx, second))

	require.NoError(t, repo.Upsert(ctx, &domain.IntegrationKey{
		CompanyID:   c.ID,
		Credentials: domain.PayPalCredentials{ClientID: "pp", ClientSecret: "secret"},
		AddedBy:     2,
	}))

	keys, err := repo.ListByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, domain.ProviderPayPal, keys[0].Provider)
	assert.Equal(t, domain.ProviderRazorpay, keys[1].Provider)

	rp, ok := keys[1].Credentials.(domain.RazorpayCredentials)
	require.True(t, ok)
	assert.Equal(t, "rzp_new", rp.KeyID)
	assert.Equal(t, int64(2), keys[1].AddedBy)
}
