package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrSlotTaken = errors.New("slot already booked for overlapping dates")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// translate maps driver and gorm errors onto the repository sentinels so
// callers never depend on gorm or a particular database.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return ErrSlotTaken
		case pgUniqueViolation:
			return ErrDuplicate
		}
	}

	if isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
