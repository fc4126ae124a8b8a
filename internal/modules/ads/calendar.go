package ads

import (
	"time"

	"trustmrr/internal/domain"
)

// CalendarHorizonDays is how far ahead the availability calendar looks.
const CalendarHorizonDays = 90

// Availability is the booking picture of one slot over the horizon.
type Availability struct {
	BookedDates         []string `json:"booked_dates"`
	NextAvailable       *string  `json:"next_available"`
	AvailabilityPercent float64  `json:"availability_percent"`
}

// inWindow reports whether an ad counts for a calendar starting today.
func inWindow(ad *domain.Advertisement, today time.Time, horizon int) bool {
	windowEnd := domain.AddDays(today, horizon)
	return ad.IsActive && !ad.EndDate.Before(today) && !ad.StartDate.After(windowEnd)
}

// AvailabilityWindow computes the availability of one slot from its bookings.
//
// Bookings in scope are active ones with end >= today and start <= today+horizon.
// Every day of an in-scope booking is listed, including days past the horizon,
// and those days also count against availability_percent.
func AvailabilityWindow(bookings []domain.Advertisement, today time.Time, horizon int) Availability {
	today = domain.DateOf(today)

	booked := make([]string, 0)
	unique := make(map[string]struct{})
	for i := range bookings {
		ad := &bookings[i]
		if !inWindow(ad, today, horizon) {
			continue
		}
		for d := ad.StartDate; !d.After(ad.EndDate); d = domain.AddDays(d, 1) {
			s := domain.FormatDate(d)
			booked = append(booked, s)
			unique[s] = struct{}{}
		}
	}

	var next *string
	for i := 0; i < horizon; i++ {
		s := domain.FormatDate(domain.AddDays(today, i))
		if _, taken := unique[s]; !taken {
			next = &s
			break
		}
	}

	return Availability{
		BookedDates:         booked,
		NextAvailable:       next,
		AvailabilityPercent: float64(horizon-len(unique)) / float64(horizon) * 100,
	}
}

// BuildCalendar groups bookings by slot and computes every slot's availability.
func BuildCalendar(bookings []domain.Advertisement, today time.Time, horizon int) map[domain.SlotID]Availability {
	bySlot := make(map[domain.SlotID][]domain.Advertisement, len(domain.AllSlots))
	for _, ad := range bookings {
		bySlot[ad.SlotID] = append(bySlot[ad.SlotID], ad)
	}

	out := make(map[domain.SlotID]Availability, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		out[slot] = AvailabilityWindow(bySlot[slot], today, horizon)
	}
	return out
}
