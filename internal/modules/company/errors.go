package company

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidCategory = errors.New("invalid category")
	ErrCompanyNotFound = errors.New("company not found")
	ErrForbidden       = errors.New("you do not own this company")
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
