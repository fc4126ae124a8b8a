package ads

import (
	"fmt"
	"math"
	"time"

	"trustmrr/internal/domain"
)

// BaseWeeklyRate is the undiscounted price of one slot for one week, in rupees.
const BaseWeeklyRate = 5000

const (
	highDemandThreshold   = 5
	mediumDemandThreshold = 2
	urgencyWindowDays     = 2
)

// PriceQuote is the result of pricing a booking.
type PriceQuote struct {
	SlotID           domain.SlotID    `json:"slot_id"`
	Weeks            int              `json:"duration_weeks"`
	BaseRate         int64            `json:"base_rate"`
	FinalWeeklyRate  int64            `json:"final_weekly_rate"`
	TotalPrice       int64            `json:"total_price"`
	AppliedDiscounts AppliedDiscounts `json:"applied_discounts"`
	DemandCount      int              `json:"demand_count"`
}

// AppliedDiscounts describes every non-neutral multiplier.
type AppliedDiscounts struct {
	Demand   *string `json:"demand,omitempty"`
	Duration *string `json:"duration,omitempty"`
	Urgency  *string `json:"urgency,omitempty"`
}

// demandMultiplier returns the multiplier and the surcharge in percent.
func demandMultiplier(demandCount int) (float64, int) {
	switch {
	case demandCount > highDemandThreshold:
		return 1.5, 50
	case demandCount > mediumDemandThreshold:
		return 1.2, 20
	default:
		return 1.0, 0
	}
}

// durationDiscount returns the multiplier and the discount in percent.
func durationDiscount(weeks int) (float64, int) {
	switch {
	case weeks >= 8:
		return 0.80, 20
	case weeks >= 4:
		return 0.90, 10
	default:
		return 1.0, 0
	}
}

// urgencyMultiplier applies a last-minute premium when the start date is at
// most two days away and the slot already has demand. An unparsable start
// date is ignored.
func urgencyMultiplier(startDate string, demandCount int, today time.Time) float64 {
	if startDate == "" || demandCount == 0 {
		return 1.0
	}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return 1.0
	}
	if domain.DaysBetween(today, start) <= urgencyWindowDays {
		return 1.25
	}
	return 1.0
}

// Quote prices a booking of slot for weeks. demandCount is the number of
// bookings on the slot that end today or later.
func Quote(slot domain.SlotID, weeks int, startDate string, demandCount int, today time.Time) (PriceQuote, error) {
	if weeks < 1 {
		return PriceQuote{}, FieldErrors{"duration_weeks": "min"}
	}

	demand, demandPct := demandMultiplier(demandCount)
	duration, durationPct := durationDiscount(weeks)
	urgency := urgencyMultiplier(startDate, demandCount, today)

	// round half to even on the hundreds
	weekly := float64(BaseWeeklyRate) * demand * urgency * duration
	weeklyRate := int64(math.RoundToEven(weekly/100) * 100)

	q := PriceQuote{
		SlotID:          slot,
		Weeks:           weeks,
		BaseRate:        BaseWeeklyRate,
		FinalWeeklyRate: weeklyRate,
		TotalPrice:      weeklyRate * int64(weeks),
		DemandCount:     demandCount,
	}
	if demandPct > 0 {
		s := fmt.Sprintf("%d%% surcharge", demandPct)
		q.AppliedDiscounts.Demand = &s
	}
	if durationPct > 0 {
		s := fmt.Sprintf("%d%% off", durationPct)
		q.AppliedDiscounts.Duration = &s
	}
	if urgency > 1 {
		s := "25% last-minute premium"
		q.AppliedDiscounts.Urgency = &s
	}
	return q, nil
}
