package notification

import (
	"context"
	"fmt"
	"time"

	"trustmrr/internal/domain"

	"github.com/rs/zerolog"
)

// AdSource lists the ads the scheduled job looks at.
type AdSource interface {
	ListLiveWithoutNotification(ctx context.Context, day time.Time) ([]domain.Advertisement, error)
	ListEndingOn(ctx context.Context, day time.Time) ([]domain.Advertisement, error)
	MarkLiveNotificationSent(ctx context.Context, id int64) error
}

type OwnerSource interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RunSummary counts what one run sent.
type RunSummary struct {
	Live      int
	Reminders int
	Failed    int
}

// Scheduler sends the "ad is live" and expiry reminder messages. It is meant
// to run once a day, shortly after midnight in the business time zone.
type Scheduler struct {
	ads       AdSource
	owners    OwnerSource
	templates *Templates
	sender    *Dispatcher
	log       zerolog.Logger
}

func NewScheduler(ads AdSource, owners OwnerSource, templates *Templates, sender *Dispatcher, log zerolog.Logger) *Scheduler {
	return &Scheduler{ads: ads, owners: owners, templates: templates, sender: sender, log: log}
}

// Run sends both kinds of message for today. A live notice is sent once per
// ad; a reminder goes out for ads whose last day is ExpiryReminderDays away.
func (s *Scheduler) Run(ctx context.Context, today time.Time) (RunSummary, error) {
	var sum RunSummary

	live, err := s.ads.ListLiveWithoutNotification(ctx, today)
	if err != nil {
		return sum, fmt.Errorf("list live ads: %w", err)
	}
	for i := range live {
		ad := &live[i]
		owner, ok := s.owner(ctx, ad)
		if !ok {
			sum.Failed++
			continue
		}
		if err := s.sender.Send(ctx, s.templates.Live(ad, owner, today)); err != nil {
			sum.Failed++
			continue
		}
		if err := s.ads.MarkLiveNotificationSent(ctx, ad.ID); err != nil {
			return sum, fmt.Errorf("mark ad %d notified: %w", ad.ID, err)
		}
		sum.Live++
	}

	ending, err := s.ads.ListEndingOn(ctx, domain.AddDays(today, ExpiryReminderDays))
	if err != nil {
		return sum, fmt.Errorf("list ending ads: %w", err)
	}
	for i := range ending {
		ad := &ending[i]
		owner, ok := s.owner(ctx, ad)
		if !ok {
			sum.Failed++
			continue
		}
		if err := s.sender.Send(ctx, s.templates.ExpiryReminder(ad, owner, ExpiryReminderDays)); err != nil {
			sum.Failed++
			continue
		}
		sum.Reminders++
	}

	return sum, nil
}

func (s *Scheduler) owner(ctx context.Context, ad *domain.Advertisement) (*domain.User, bool) {
	owner, err := s.owners.GetByID(ctx, ad.OwnerID)
	if err != nil {
		s.log.Warn().Err(err).Int64("ad_id", ad.ID).Int64("owner_id", ad.OwnerID).Msg("ad owner lookup failed")
		return nil, false
	}
	return owner, true
}
