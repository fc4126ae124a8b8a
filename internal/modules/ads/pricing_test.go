package ads

import (
	"encoding/json"
	"testing"

	"trustmrr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	today, err := domain.ParseDate("2025-06-01")
	require.NoError(t, err)

	tests := []struct {
		name       string
		weeks      int
		start      string
		demand     int
		wantWeekly int64
		wantTotal  int64
		demandTag  string
		durTag     string
		urgent     bool
	}{
		{name: "base rate", weeks: 1, wantWeekly: 5000, wantTotal: 5000},
		{name: "eight weeks no demand", weeks: 8, wantWeekly: 4000, wantTotal: 32000, durTag: "20% off"},
		{name: "four weeks", weeks: 4, demand: 1, start: "2025-06-20", wantWeekly: 4500, wantTotal: 18000, durTag: "10% off"},
		{name: "medium demand and urgent", weeks: 4, demand: 3, start: "2025-06-02", wantWeekly: 6800, wantTotal: 27200, demandTag: "20% surcharge", durTag: "10% off", urgent: true},
		{name: "high demand urgent", weeks: 1, demand: 6, start: "2025-06-03", wantWeekly: 9400, wantTotal: 9400, demandTag: "50% surcharge", urgent: true},
		{name: "urgency needs demand", weeks: 1, demand: 0, start: "2025-06-01", wantWeekly: 5000, wantTotal: 5000},
		{name: "urgent with one booking", weeks: 1, demand: 1, start: "2025-06-01", wantWeekly: 6200, wantTotal: 6200, urgent: true},
		{name: "bad start date ignored", weeks: 1, demand: 4, start: "next week", wantWeekly: 6000, wantTotal: 6000, demandTag: "20% surcharge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Quote(domain.SlotLeft1, tt.weeks, tt.start, tt.demand, today)
			require.NoError(t, err)

			assert.Equal(t, int64(BaseWeeklyRate), q.BaseRate)
			assert.Equal(t, tt.wantWeekly, q.FinalWeeklyRate)
			assert.Equal(t, tt.wantTotal, q.TotalPrice)
			assert.Equal(t, tt.demand, q.DemandCount)

			if tt.demandTag == "" {
				assert.Nil(t, q.AppliedDiscounts.Demand)
			} else {
				require.NotNil(t, q.AppliedDiscounts.Demand)
				assert.Equal(t, tt.demandTag, *q.AppliedDiscounts.Demand)
			}
			if tt.durTag == "" {
				assert.Nil(t, q.AppliedDiscounts.Duration)
			} else {
				require.NotNil(t, q.AppliedDiscounts.Duration)
				assert.Equal(t, tt.durTag, *q.AppliedDiscounts.Duration)
			}
			assert.Equal(t, tt.urgent, q.AppliedDiscounts.Urgency != nil)
		})
	}
}

func TestQuote_RejectsZeroWeeks(t *testing.T) {
	_, err := Quote(domain.SlotLeft1, 0, "", 0, domain.DateOf(fixedNow))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuote_OmitsNeutralDiscounts(t *testing.T) {
	today := domain.DateOf(fixedNow)

	neutral, err := Quote(domain.SlotLeft1, 1, "", 0, today)
	require.NoError(t, err)
	raw, err := json.Marshal(neutral.AppliedDiscounts)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	discounted, err := Quote(domain.SlotLeft1, 8, "", 4, today)
	require.NoError(t, err)
	raw, err = json.Marshal(discounted.AppliedDiscounts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"demand":"20% surcharge","duration":"20% off"}`, string(raw))
}
