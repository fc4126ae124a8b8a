package ads

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync/atomic"
	"time"

	"trustmrr/internal/cache"
	"trustmrr/internal/domain"
	"trustmrr/internal/notification"
	"trustmrr/internal/pkg/clock"
	"trustmrr/internal/pkg/validator"
	"trustmrr/internal/repository"

	"github.com/jszwec/csvutil"
	"github.com/rs/zerolog"
)

const (
	calendarCacheKeyPrefix = "ads:calendar:"
	defaultCalendarTTL     = time.Minute
	imagePrefix            = "ads"
)

// Deps wires the ads service. Ads, Users and Clock are required; everything
// else may be left nil.
type Deps struct {
	Ads       AdRepository
	Users     UserRepository
	Companies CompanyRepository
	Clock     clock.Clock

	Cache       cache.Cache
	CalendarTTL time.Duration
	Notifier    Notifier
	Templates   *notification.Templates
	Hub         Broadcaster
	Images      ImageStore
	Metrics     Recorder
	Log         zerolog.Logger
}

type Service struct {
	ads       AdRepository
	users     UserRepository
	companies CompanyRepository
	clock     clock.Clock

	cache       cache.Cache
	calendarTTL time.Duration
	// calendarGen counts booking changes; a calendar built across a change
	// must not stay cached.
	calendarGen atomic.Uint64
	notifier    Notifier
	templates   *notification.Templates
	hub         Broadcaster
	images      ImageStore
	metrics     Recorder
	log         zerolog.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		ads:         d.Ads,
		users:       d.Users,
		companies:   d.Companies,
		clock:       d.Clock,
		cache:       d.Cache,
		calendarTTL: d.CalendarTTL,
		notifier:    d.Notifier,
		templates:   d.Templates,
		hub:         d.Hub,
		images:      d.Images,
		metrics:     d.Metrics,
		log:         d.Log,
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	if s.calendarTTL <= 0 {
		s.calendarTTL = defaultCalendarTTL
	}
	if s.templates == nil {
		s.templates = notification.NewTemplates("", "")
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	return s
}

type noopRecorder struct{}

func (noopRecorder) RecordBooking(string)     {}
func (noopRecorder) RecordBookingConflict()   {}
func (noopRecorder) RecordCancellation()      {}
func (noopRecorder) RecordClick()             {}
func (noopRecorder) RecordImpressions(int)    {}
func (noopRecorder) RecordCalendarCache(bool) {}

func parseSlot(raw string) (domain.SlotID, error) {
	slot := domain.SlotID(strings.TrimSpace(raw))
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	return slot, nil
}

// IsSlotFree reports whether no active booking on slot overlaps [start, end].
func (s *Service) IsSlotFree(ctx context.Context, slot domain.SlotID, start, end time.Time) (bool, error) {
	taken, err := s.ads.OverlapExists(ctx, slot, start, end)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Price quotes a booking of slotID, counting the slot's current demand.
func (s *Service) Price(ctx context.Context, req PriceRequest) (PriceQuote, error) {
	slot, err := parseSlot(req.SlotID)
	if err != nil {
		return PriceQuote{}, err
	}
	if req.DurationWeeks < 1 {
		return PriceQuote{}, FieldErrors{"duration_weeks": "min"}
	}

	today := s.clock.Today()
	demand, err := s.ads.CountDemand(ctx, slot, today)
	if err != nil {
		return PriceQuote{}, fmt.Errorf("count demand: %w", err)
	}
	return Quote(slot, req.DurationWeeks, req.StartDate, demand, today)
}

// Book validates req and atomically books the slot. image may be nil.
func (s *Service) Book(ctx context.Context, userID int64, req BookRequest, image *multipart.FileHeader) (*domain.Advertisement, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, FieldErrors(fields)
	}

	slot, err := parseSlot(req.SlotID)
	if err != nil {
		return nil, err
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, FieldErrors{"start_date": "date"}
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, FieldErrors{"end_date": "date"}
	}

	today := s.clock.Today()
	if start.Before(today) {
		return nil, fmt.Errorf("%w: start date is in the past", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidDateRange)
	}

	owner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	if req.CompanyID != nil {
		if err := s.checkCompany(ctx, *req.CompanyID, owner); err != nil {
			return nil, err
		}
	}

	ad := &domain.Advertisement{
		OwnerID:     userID,
		CompanyID:   req.CompanyID,
		SlotID:      slot,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		TargetURL:   strings.TrimSpace(req.TargetURL),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		PaymentID:   strings.TrimSpace(req.PaymentID),
		AmountPaid:  req.AmountPaid,
	}

	var imageKey string
	if image != nil && s.images != nil {
		obj, err := s.images.Save(ctx, imagePrefix, image)
		if err != nil {
			return nil, fmt.Errorf("%w: image: %v", ErrValidation, err)
		}
		ad.ImageURL, imageKey = obj.URL, obj.Key
	}

	if err := s.ads.CreateIfSlotFree(ctx, ad); err != nil {
		if imageKey != "" {
			if derr := s.images.Delete(ctx, imageKey); derr != nil {
				s.log.Warn().Err(derr).Str("key", imageKey).Msg("failed to remove orphaned ad image")
			}
		}
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			s.metrics.RecordBookingConflict()
			return nil, ErrSlotConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
		}
		return nil, fmt.Errorf("create ad: %w", err)
	}

	s.metrics.RecordBooking(string(slot))
	s.log.Info().
		Int64("ad_id", ad.ID).
		Int64("user_id", userID).
		Str("slot", string(slot)).
		Str("start", req.StartDate).
		Str("end", req.EndDate).
		Msg("ad booked")

	s.afterChange(ctx, EventAdBooked, ad)
	s.sendConfirmation(ad, owner)
	return ad, nil
}

func (s *Service) checkCompany(ctx context.Context, companyID int64, owner *domain.User) error {
	if s.companies == nil {
		return nil
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if errors.Is(err, repository.ErrNotFound) {
		return FieldErrors{"company_id": "not_found"}
	}
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}
	if !company.IsOwnedBy(owner.ID, owner.Username) {
		return FieldErrors{"company_id": "not_owner"}
	}
	return nil
}

func (s *Service) sendConfirmation(ad *domain.Advertisement, owner *domain.User) {
	if s.notifier == nil {
		return
	}
	adID := ad.ID
	s.notifier.Dispatch(s.templates.Confirmation(ad, owner), func(ctx context.Context) error {
		return s.ads.MarkConfirmationSent(ctx, adID)
	})
}

// afterChange pushes the event to live clients and drops the cached calendar.
func (s *Service) afterChange(ctx context.Context, kind string, ad *domain.Advertisement) {
	if s.hub != nil {
		s.hub.Broadcast(newSlotEvent(kind, ad))
	}
	s.calendarGen.Add(1)
	if err := s.cache.Delete(ctx, s.calendarKey(s.clock.Today())); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate calendar cache")
	}
}

// Cancel deactivates a not yet started ad of userID and reports the refund
// it would be entitled to. Ads of other users look like missing ads.
func (s *Service) Cancel(ctx context.Context, adID, userID int64) (CancelResult, error) {
	ad, err := s.ads.GetOwned(ctx, adID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return CancelResult{}, ErrAdNotFound
	}
	if err != nil {
		return CancelResult{}, fmt.Errorf("load ad: %w", err)
	}

	if !ad.IsActive {
		return CancelResult{}, ErrAlreadyCancelled
	}
	today := s.clock.Today()
	if !ad.StartDate.After(today) {
		return CancelResult{}, ErrAlreadyStarted
	}

	if err := s.ads.Deactivate(ctx, ad.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CancelResult{}, ErrAlreadyCancelled
		}
		return CancelResult{}, fmt.Errorf("deactivate ad: %w", err)
	}
	ad.IsActive = false

	refund := ad.RefundOnCancel(today)
	s.metrics.RecordCancellation()
	s.log.Info().
		Int64("ad_id", ad.ID).
		Int64("user_id", userID).
		Bool("refund_eligible", refund.Eligible).
		Float64("refund_amount", refund.Amount).
		Msg("ad cancelled")

	s.afterChange(ctx, EventAdCancelled, ad)

	return CancelResult{
		Message:        "Ad cancelled successfully",
		RefundEligible: refund.Eligible,
		RefundAmount:   refund.Amount,
	}, nil
}

// MyAds splits the owner's ads into live, scheduled and everything else.
// Cancelled ads land in the expired bucket.
func (s *Service) MyAds(ctx context.Context, userID int64) (*MyAds, error) {
	list, err := s.ads.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	totals, err := s.ads.OwnerTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("owner totals: %w", err)
	}

	today := s.clock.Today()
	out := &MyAds{
		Active:           []AdView{},
		Scheduled:        []AdView{},
		Expired:          []AdView{},
		TotalSpent:       totals.TotalSpent,
		TotalClicks:      totals.TotalClicks,
		TotalImpressions: totals.TotalImpressions,
	}
	for i := range list {
		ad := &list[i]
		v := toAdView(ad, today)
		switch {
		case ad.IsLive(today):
			out.Active = append(out.Active, v)
		case ad.IsActive && ad.StartDate.After(today):
			out.Scheduled = append(out.Scheduled, v)
		default:
			out.Expired = append(out.Expired, v)
		}
	}
	return out, nil
}

// ExportMyAds renders the owner's ads as CSV.
func (s *Service) ExportMyAds(ctx context.Context, userID int64) ([]byte, error) {
	list, err := s.ads.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}

	today := s.clock.Today()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(exportRow{}); err != nil {
		return nil, err
	}
	for i := range list {
		ad := &list[i]
		row := exportRow{
			ID:          ad.ID,
			Slot:        string(ad.SlotID),
			Title:       ad.Title,
			TargetURL:   ad.TargetURL,
			StartDate:   domain.FormatDate(ad.StartDate),
			EndDate:     domain.FormatDate(ad.EndDate),
			Status:      string(ad.Status(today)),
			AmountPaid:  ad.AmountPaid,
			PaymentID:   ad.PaymentID,
			Impressions: ad.Impressions,
			Clicks:      ad.Clicks,
			CTR:         round2(ad.CTR()),
		}
		if err := enc.Encode(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecordClick adds one click and returns the new total.
func (s *Service) RecordClick(ctx context.Context, adID int64) (int64, error) {
	total, err := s.ads.IncrementClicks(ctx, adID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrAdNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment clicks: %w", err)
	}
	s.metrics.RecordClick()
	return total, nil
}

// RecordImpressions adds one impression to each listed ad and returns how
// many ids were submitted. Unknown ids are ignored.
func (s *Service) RecordImpressions(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.ads.IncrementImpressions(ctx, ids); err != nil {
		return 0, fmt.Errorf("increment impressions: %w", err)
	}
	s.metrics.RecordImpressions(len(ids))
	return len(ids), nil
}

func (s *Service) calendarKey(today time.Time) string {
	return calendarCacheKeyPrefix + domain.FormatDate(today)
}

// Calendar returns the 90-day availability of every slot. Results are cached
// per day until the next booking or cancellation.
func (s *Service) Calendar(ctx context.Context) (map[domain.SlotID]Availability, error) {
	today := s.clock.Today()
	key := s.calendarKey(today)

	var cached map[domain.SlotID]Availability
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("calendar cache read failed")
	}
	s.metrics.RecordCalendarCache(hit)
	if hit {
		return cached, nil
	}

	gen := s.calendarGen.Load()
	bookings, err := s.ads.ListActiveInWindow(ctx, today, domain.AddDays(today, CalendarHorizonDays))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	cal := BuildCalendar(bookings, today, CalendarHorizonDays)

	if err := s.cache.Set(ctx, key, cal, s.calendarTTL); err != nil {
		s.log.Warn().Err(err).Msg("calendar cache write failed")
	}
	// A change that landed after gen was read may have invalidated before our
	// Set; drop the entry so the next read rebuilds it.
	if s.calendarGen.Load() != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate calendar cache")
		}
	}
	return cal, nil
}

// Slots shows each slot on day as booked (with its ad) or available (with a
// one week quote starting that day). An empty day means today.
func (s *Service) Slots(ctx context.Context, day string) ([]SlotState, error) {
	today := s.clock.Today()
	on := today
	if day != "" {
		d, err := domain.ParseDate(day)
		if err != nil {
			return nil, FieldErrors{"date": "date"}
		}
		on = d
	}

	active, err := s.ads.ListActiveOn(ctx, on)
	if err != nil {
		return nil, fmt.Errorf("list active ads: %w", err)
	}
	bySlot := make(map[domain.SlotID]*domain.Advertisement, len(active))
	for i := range active {
		bySlot[active[i].SlotID] = &active[i]
	}

	out := make([]SlotState, 0, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		st := SlotState{SlotID: slot, Label: slot.Label()}
		if ad, ok := bySlot[slot]; ok {
			st.Status = SlotBooked
			st.Ad = &PublicAd{
				ID:          ad.ID,
				Title:       ad.Title,
				Description: ad.Description,
				TargetURL:   ad.TargetURL,
				ImageURL:    ad.ImageURL,
				EndDate:     domain.FormatDate(ad.EndDate),
			}
		} else {
			demand, err := s.ads.CountDemand(ctx, slot, today)
			if err != nil {
				return nil, fmt.Errorf("count demand: %w", err)
			}
			q, err := Quote(slot, 1, domain.FormatDate(on), demand, today)
			if err != nil {
				return nil, err
			}
			st.Status = SlotAvailable
			st.Price = &q
		}
		out = append(out, st)
	}
	return out, nil
}

// View renders ad with derived fields for today.
func (s *Service) View(ad *domain.Advertisement) AdView {
	return toAdView(ad, s.clock.Today())
}
