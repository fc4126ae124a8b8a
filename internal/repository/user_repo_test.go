package repository

import (
	"context"
	"testing"

	"trustmrr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_UniqueFields(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := createUser(t, repo, "jane")
	assert.NotZero(t, u.ID)

	dup := &domain.User{Username: "jane", Email: "other@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	exists, err := repo.ExistsByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := repo.GetByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
