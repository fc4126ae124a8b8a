package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"trustmrr/internal/config"
	"trustmrr/internal/database"
	"trustmrr/internal/domain"
	"trustmrr/internal/logger"
	"trustmrr/internal/modules/ads"
	"trustmrr/internal/pkg/clock"
	"trustmrr/internal/repository"
)

const (
	seedUsers     = 8
	seedCompanies = 25
	seedPassword  = "password123"
)

var seedCategories = []domain.Category{
	domain.CategorySaaS,
	domain.CategoryIndianStartup,
	domain.CategoryEcommerce,
	domain.CategoryYoutuberEducational,
	domain.CategoryAgency,
	domain.CategoryConsulting,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, true)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("auto migrate failed")
	}

	ctx := context.Background()
	faker := gofakeit.New(0)
	today := clock.NewSystem(cfg.Location).Today()

	users := repository.NewUserRepository(db)
	companies := repository.NewCompanyRepository(db)
	adRepo := repository.NewAdRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	// ================== USERS ==================
	owners := make([]*domain.User, 0, seedUsers)
	for len(owners) < seedUsers {
		u := &domain.User{
			Username:     strings.ToLower(faker.Username()),
			Email:        strings.ToLower(faker.Email()),
			PasswordHash: string(hash),
		}
		if err := users.Create(ctx, u); err != nil {
			log.Warn().Err(err).Str("username", u.Username).Msg("skipping user")
			continue
		}
		owners = append(owners, u)
	}
	log.Info().Int("count", len(owners)).Str("password", seedPassword).Msg("users created")

	// ================== COMPANIES ==================
	created := make([]*domain.Company, 0, seedCompanies)
	for i := 0; i < seedCompanies; i++ {
		owner := owners[i%len(owners)]
		ownerID := owner.ID
		founded := faker.PastDate()
		prior := faker.Float64Range(500, 250000)
		current := prior * faker.Float64Range(0.7, 1.6)

		c := &domain.Company{
			Name:              faker.Company(),
			Website:           faker.URL(),
			FounderName:       owner.Username,
			Description:       faker.Sentence(12),
			TwitterHandle:     "@" + strings.ToLower(faker.Username()),
			Tagline:           faker.Slogan(),
			FoundingDate:      &founded,
			Country:           faker.Country(),
			FollowerCount:     faker.Number(0, 50000),
			MonthlyRevenue:    roundRupees(current),
			MoMGrowth:         roundRupees((current - prior) / prior * 100),
			Category:          seedCategories[i%len(seedCategories)],
			IsVerified:        i%3 != 0,
			ShowInLeaderboard: i%7 != 6,
			IsAnonymous:       i%5 == 4,
			OwnerID:           &ownerID,
		}
		if err := companies.Create(ctx, c); err != nil {
			log.Fatal().Err(err).Str("company", c.Name).Msg("create company")
		}
		created = append(created, c)
	}
	log.Info().Int("count", len(created)).Msg("companies created")

	// ================== ADS ==================
	booked := 0
	for i, slot := range domain.AllSlots {
		owner := owners[i%len(owners)]
		company := created[i%len(created)]
		weeks := 1 + i%4
		start := domain.AddDays(today, faker.Number(-7, 21))

		quote, err := ads.Quote(slot, weeks, domain.FormatDate(start), 0, today)
		if err != nil {
			log.Fatal().Err(err).Msg("price ad")
		}

		ad := &domain.Advertisement{
			OwnerID:     owner.ID,
			CompanyID:   &company.ID,
			SlotID:      slot,
			Title:       truncate(company.Name, 60),
			Description: truncate(faker.Sentence(10), 150),
			TargetURL:   company.Website,
			StartDate:   start,
			EndDate:     domain.AddDays(start, weeks*7-1),
			IsActive:    true,
			PaymentID:   fmt.Sprintf("seed_%s", faker.UUID()),
			AmountPaid:  float64(quote.TotalPrice),
			Impressions: int64(faker.Number(0, 20000)),
			Clicks:      int64(faker.Number(0, 400)),
		}
		if err := adRepo.CreateIfSlotFree(ctx, ad); err != nil {
			log.Warn().Err(err).Str("slot", string(slot)).Msg("skipping ad")
			continue
		}
		booked++
	}
	log.Info().Int("count", booked).Msg("ads created")

	log.Info().Msg("seed completed")
}

func roundRupees(v float64) float64 {
	return float64(int64(v*100)) / 100
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
