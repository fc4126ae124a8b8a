package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"trustmrr/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:repo_test_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newAd(owner int64, slot domain.SlotID, start, end time.Time) *domain.Advertisement {
	return &domain.Advertisement{
		OwnerID:     owner,
		SlotID:      slot,
		Title:       "Ship faster",
		Description: "Deploy previews for every PR",
		TargetURL:   "https://example.com",
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		PaymentID:   "pay_123",
		AmountPaid:  5000,
	}
}
