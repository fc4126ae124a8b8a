package main

import (
	"context"
	"log"

	"trustmrr/internal/config"
	"trustmrr/internal/database"
	"trustmrr/internal/logger"
	"trustmrr/internal/metrics"
	"trustmrr/internal/notification"
	"trustmrr/internal/pkg/clock"
	"trustmrr/internal/repository"
)

// ad_notifier is run daily from cron: it tells owners their ad went live and
// reminds them before it expires.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl := logger.New(cfg.LogLevel, !cfg.IsProd())

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	var sender notification.Sender = notification.NewLogSender(zl)
	if len(cfg.Kafka.Brokers) > 0 {
		ks := notification.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic, zl)
		defer ks.Close()
		sender = ks
	}

	scheduler := notification.NewScheduler(
		repository.NewAdRepository(db),
		repository.NewUserRepository(db),
		notification.NewTemplates(cfg.Notify.From, cfg.Notify.AdminEmail),
		notification.NewDispatcher(sender, cfg.Notify.Timeout, zl, metrics.GetDefaultMetrics()),
		zl,
	)

	today := clock.NewSystem(cfg.Location).Today()
	sum, err := scheduler.Run(context.Background(), today)
	if err != nil {
		log.Fatalf("ad notifications failed: %v", err)
	}

	log.Printf("ad notifications completed: day=%s live=%d reminders=%d failed=%d",
		today.Format("2006-01-02"), sum.Live, sum.Reminders, sum.Failed)
}
