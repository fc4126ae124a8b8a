package domain

import "time"

type AdStatus string

const (
	AdScheduled AdStatus = "scheduled"
	AdLive      AdStatus = "live"
	AdExpired   AdStatus = "expired"
	AdCancelled AdStatus = "cancelled"
)

// Advertisement is a booking of one slot for an inclusive date range.
// Status, liveness and CTR are never stored; they are derived from the dates
// and the caller's notion of today.
type Advertisement struct {
	ID          int64
	OwnerID     int64
	CompanyID   *int64
	SlotID      SlotID
	Title       string
	Description string
	TargetURL   string
	ImageURL    string
	StartDate   time.Time
	EndDate     time.Time
	IsActive    bool
	PaymentID   string
	AmountPaid  float64
	Impressions int64
	Clicks      int64

	ConfirmationEmailSent bool
	LiveNotificationSent  bool

	CreatedAt time.Time
}

// IsLive reports whether the ad is active and today falls inside [start, end].
func (a *Advertisement) IsLive(today time.Time) bool {
	today = DateOf(today)
	return a.IsActive && !today.Before(a.StartDate) && !today.After(a.EndDate)
}

func (a *Advertisement) Status(today time.Time) AdStatus {
	today = DateOf(today)
	switch {
	case !a.IsActive:
		return AdCancelled
	case today.Before(a.StartDate):
		return AdScheduled
	case today.After(a.EndDate):
		return AdExpired
	default:
		return AdLive
	}
}

// CTR is clicks per hundred impressions, 0 when nothing was shown yet.
func (a *Advertisement) CTR() float64 {
	if a.Impressions == 0 {
		return 0
	}
	return float64(a.Clicks) / float64(a.Impressions) * 100
}

func (a *Advertisement) DaysRemaining(today time.Time) int {
	if !a.IsLive(today) {
		return 0
	}
	return DaysBetween(today, a.EndDate)
}

// StartsInDays is positive only for ads that have not started yet.
func (a *Advertisement) StartsInDays(today time.Time) int {
	n := DaysBetween(today, a.StartDate)
	if n < 0 {
		return 0
	}
	return n
}

// Overlaps uses inclusive bounds on both sides: an ad ending on the 7th
// collides with one starting on the 7th but not with one starting on the 8th.
func (a *Advertisement) Overlaps(start, end time.Time) bool {
	return !a.StartDate.After(DateOf(end)) && !a.EndDate.Before(DateOf(start))
}

// RefundQuote is what cancelling an ad would return to its owner.
type RefundQuote struct {
	Eligible bool
	Amount   float64
}

// RefundPolicyDays is the minimum lead time, in days, for a refundable cancellation.
const RefundPolicyDays = 7

func (a *Advertisement) RefundOnCancel(today time.Time) RefundQuote {
	if DaysBetween(today, a.StartDate) > RefundPolicyDays {
		return RefundQuote{Eligible: true, Amount: a.AmountPaid}
	}
	return RefundQuote{}
}
