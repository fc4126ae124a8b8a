package ads

import (
	"context"
	"mime/multipart"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/notification"
	"trustmrr/internal/repository"
	"trustmrr/internal/storage"
)

// AdRepository is the persistence the ads module needs.
type AdRepository interface {
	CreateIfSlotFree(ctx context.Context, ad *domain.Advertisement) error
	OverlapExists(ctx context.Context, slot domain.SlotID, start, end time.Time) (bool, error)
	GetOwned(ctx context.Context, id, ownerID int64) (*domain.Advertisement, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Advertisement, error)
	ListActiveInWindow(ctx context.Context, from, to time.Time) ([]domain.Advertisement, error)
	ListActiveOn(ctx context.Context, day time.Time) ([]domain.Advertisement, error)
	CountDemand(ctx context.Context, slot domain.SlotID, today time.Time) (int, error)
	OwnerTotals(ctx context.Context, ownerID int64) (repository.OwnerTotals, error)
	Deactivate(ctx context.Context, id int64) error
	IncrementClicks(ctx context.Context, id int64) (int64, error)
	IncrementImpressions(ctx context.Context, ids []int64) error
	MarkConfirmationSent(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
}

// Notifier sends a message in the background.
type Notifier interface {
	Dispatch(msg notification.Message, onSent func(ctx context.Context) error)
}

// Broadcaster pushes slot events to live subscribers.
type Broadcaster interface {
	Broadcast(evt SlotEvent)
}

type ImageStore interface {
	Save(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// Recorder counts ads business events.
type Recorder interface {
	RecordBooking(slot string)
	RecordBookingConflict()
	RecordCancellation()
	RecordClick()
	RecordImpressions(n int)
	RecordCalendarCache(hit bool)
}
