package ads

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidSlot      = errors.New("invalid slot")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrSlotConflict     = errors.New("slot already booked for the selected dates")
	ErrAdNotFound       = errors.New("ad not found")
	ErrAlreadyStarted   = errors.New("cannot cancel ad that has already started")
	ErrAlreadyCancelled = errors.New("ad is already cancelled")
)

// FieldErrors carries per-field validation failures. It matches ErrValidation.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation error: " + strings.Join(parts, ", ")
}

func (f FieldErrors) Unwrap() error { return ErrValidation }
