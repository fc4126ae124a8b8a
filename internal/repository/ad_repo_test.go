package repository

import (
	"context"
	"testing"

	"trustmrr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdRepository_CreateIfSlotFree_RejectsOverlap(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))
	ctx := context.Background()

	first := newAd(1, domain.SlotLeft1, day(t, "2025-06-01"), day(t, "2025-06-07"))
	require.NoError(t, repo.CreateIfSlotFree(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, "2025-06-07", domain.FormatDate(first.EndDate))

	overlapping := newAd(2, domain.SlotLeft1, day(t, "2025-06-05"), day(t, "2025-06-10"))
	assert.ErrorIs(t, repo.CreateIfSlotFree(ctx, overlapping), ErrSlotTaken)

	sameLastDay := newAd(2, domain.SlotLeft1, day(t, "2025-06-07"), day(t, "2025-06-07"))
	assert.ErrorIs(t, repo.CreateIfSlotFree(ctx, sameLastDay), ErrSlotTaken)

	adjacent := newAd(2, domain.SlotLeft1, day(t, "2025-06-08"), day(t, "2025-06-10"))
	assert.NoError(t, repo.CreateIfSlotFree(ctx, adjacent))

	otherSlot := newAd(2, domain.SlotRight1, day(t, "2025-06-05"), day(t, "2025-06-10"))
	assert.NoError(t, repo.CreateIfSlotFree(ctx, otherSlot))
}

func TestAdRepository_CreateIfSlotFree_UnknownSlot(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))

	ad := newAd(1, domain.SlotID("top_1"), day(t, "2025-06-01"), day(t, "2025-06-07"))
	assert.ErrorIs(t, repo.CreateIfSlotFree(context.Background(), ad), ErrNotFound)
}

func TestAdRepository_CancelledAdFreesSlot(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))
	ctx := context.Background()

	ad := newAd(1, domain.SlotLeft2, day(t, "2025-06-01"), day(t, "2025-06-07"))
	require.NoError(t, repo.CreateIfSlotFree(ctx, ad))

	taken, err := repo.OverlapExists(ctx, domain.SlotLeft2, day(t, "2025-06-03"), day(t, "2025-06-04"))
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, repo.Deactivate(ctx, ad.ID))
	assert.ErrorIs(t, repo.Deactivate(ctx, ad.ID), ErrNotFound, "second cancel is a no-op")

	taken, err = repo.OverlapExists(ctx, domain.SlotLeft2, day(t, "2025-06-03"), day(t, "2025-06-04"))
	require.NoError(t, err)
	assert.False(t, taken)

	again := newAd(2, domain.SlotLeft2, day(t, "2025-06-01"), day(t, "2025-06-07"))
	assert.NoError(t, repo.CreateIfSlotFree(ctx, again))
}

func TestAdRepository_GetOwned(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))
	ctx := context.Background()

	ad := newAd(1, domain.SlotLeft3, day(t, "2025-06-01"), day(t, "2025-06-07"))
	require.NoError(t, repo.CreateIfSlotFree(ctx, ad))

	got, err := repo.GetOwned(ctx, ad.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "pay_123", got.PaymentID)

	_, err = repo.GetOwned(ctx, ad.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdRepository_Counters(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))
	ctx := context.Background()

	a := newAd(1, domain.SlotLeft4, day(t, "2025-06-01"), day(t, "2025-06-07"))
	b := newAd(1, domain.SlotLeft5, day(t, "2025-06-01"), day(t, "2025-06-07"))
	require.NoError(t, repo.CreateIfSlotFree(ctx, a))
	require.NoError(t, repo.CreateIfSlotFree(ctx, b))

	total, err := repo.IncrementClicks(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	total, err = repo.IncrementClicks(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = repo.IncrementClicks(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.IncrementImpressions(ctx, []int64{a.ID, b.ID, 9999}))
	require.NoError(t, repo.IncrementImpressions(ctx, []int64{a.ID}))
	require.NoError(t, repo.IncrementImpressions(ctx, nil))

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gotA.Impressions)
	assert.Equal(t, int64(1), gotB.Impressions)

	totals, err := repo.OwnerTotals(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, totals.TotalSpent)
	assert.Equal(t, int64(2), totals.TotalClicks)
	assert.Equal(t, int64(3), totals.TotalImpressions)
}

func TestAdRepository_CountDemand_IgnoresActiveFlag(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))
	ctx := context.Background()
	today := day(t, "2025-06-10")

	past := newAd(1, domain.SlotRight2, day(t, "2025-05-01"), day(t, "2025-05-07"))
	current := newAd(1, domain.SlotRight2, day(t, "2025-06-08"), day(t, "2025-06-10"))
	future := newAd(1, domain.SlotRight2, day(t, "2025-07-01"), day(t, "2025-07-07"))
	for _, ad := range []*domain.Advertisement{past, current, future} {
		require.NoError(t, repo.CreateIfSlotFree(ctx, ad))
	}
	require.NoError(t, repo.Deactivate(ctx, future.ID))

	n, err := repo.CountDemand(ctx, domain.SlotRight2, today)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountDemand(ctx, domain.SlotRight3, today)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAdRepository_Windows(t *testing.T) {
	repo := NewAdRepository(newTestDB(t))
	ctx := context.Background()

	a := newAd(1, domain.SlotRight4, day(t, "2025-06-01"), day(t, "2025-06-07"))
	b := newAd(1, domain.SlotRight4, day(t, "2025-06-20"), day(t, "2025-06-25"))
	c := newAd(1, domain.SlotRight5, day(t, "2025-06-05"), day(t, "2025-06-05"))
	for _, ad := range []*domain.Advertisement{a, b, c} {
		require.NoError(t, repo.CreateIfSlotFree(ctx, ad))
	}

	on, err := repo.ListActiveOn(ctx, day(t, "2025-06-05"))
	require.NoError(t, err)
	assert.Len(t, on, 2)

	window, err := repo.ListActiveInWindow(ctx, day(t, "2025-06-06"), day(t, "2025-06-21"))
	require.NoError(t, err)
	assert.Len(t, window, 2)

	ending, err := repo.ListEndingOn(ctx, day(t, "2025-06-25"))
	require.NoError(t, err)
	require.Len(t, ending, 1)
	assert.Equal(t, b.ID, ending[0].ID)

	live, err := repo.ListLiveWithoutNotification(ctx, day(t, "2025-06-05"))
	require.NoError(t, err)
	assert.Len(t, live, 2)

	require.NoError(t, repo.MarkLiveNotificationSent(ctx, a.ID))
	live, err = repo.ListLiveWithoutNotification(ctx, day(t, "2025-06-05"))
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, c.ID, live[0].ID)
}
