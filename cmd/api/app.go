package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"trustmrr/internal/cache"
	"trustmrr/internal/config"
	"trustmrr/internal/integrations/paypal"
	"trustmrr/internal/integrations/razorpay"
	"trustmrr/internal/integrations/stripe"
	"trustmrr/internal/metrics"
	"trustmrr/internal/middleware"
	"trustmrr/internal/modules/ads"
	"trustmrr/internal/modules/auth"
	"trustmrr/internal/modules/company"
	"trustmrr/internal/modules/integration"
	"trustmrr/internal/notification"
	"trustmrr/internal/pkg/clock"
	jwtsvc "trustmrr/internal/pkg/jwt"
	"trustmrr/internal/repository"
	"trustmrr/internal/storage"
)

// app is the wired HTTP service. close releases the hub, the cache and the
// notification sender once the server has stopped.
type app struct {
	router     *gin.Engine
	dispatcher *notification.Dispatcher
	closers    []func() error
}

func (a *app) close() {
	a.dispatcher.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, db *gorm.DB) (*app, error) {
	a := &app{}
	m := metrics.GetDefaultMetrics()
	clk := clock.NewSystem(cfg.Location)

	userRepo := repository.NewUserRepository(db)
	adRepo := repository.NewAdRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)

	var calendarCache cache.Cache = cache.NewMemory()
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.URL, "trustmrr:")
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		calendarCache = rc
		log.Info().Msg("calendar cache: redis")
	}

	var blobs storage.BlobStore
	switch cfg.Blob.Backend {
	case "s3":
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.Blob.S3Bucket,
			Region:        cfg.Blob.S3Region,
			Endpoint:      cfg.Blob.S3Endpoint,
			AccessKey:     cfg.Blob.S3AccessKey,
			SecretKey:     cfg.Blob.S3SecretKey,
			PublicBaseURL: cfg.Blob.S3PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		blobs = s3
	default:
		blobs = storage.NewLocalStore(cfg.Blob.UploadsDir, cfg.Blob.StaticBase)
	}
	images := storage.NewImages(blobs)

	var sender notification.Sender = notification.NewLogSender(log)
	if len(cfg.Kafka.Brokers) > 0 {
		ks := notification.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic, log)
		a.closers = append(a.closers, ks.Close)
		sender = ks
	}
	a.dispatcher = notification.NewDispatcher(sender, cfg.Notify.Timeout, log, m)
	templates := notification.NewTemplates(cfg.Notify.From, cfg.Notify.AdminEmail)

	hub := ads.NewHub(m.CalendarSubscribers)
	a.closers = append(a.closers, func() error { hub.Close(); return nil })

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j, cfg.JWTTTL, log))

	adsService := ads.NewService(ads.Deps{
		Ads:         adRepo,
		Users:       userRepo,
		Companies:   companyRepo,
		Clock:       clk,
		Cache:       calendarCache,
		CalendarTTL: cfg.Redis.CalendarTTL,
		Notifier:    a.dispatcher,
		Templates:   templates,
		Hub:         hub,
		Images:      images,
		Metrics:     m,
		Log:         log,
	})
	adsHandler := ads.NewHandler(adsService, ads.NewWSHandler(hub, log), log)

	companyHandler := company.NewHandler(company.NewService(companyRepo, images, log), log)

	integrationService := integration.NewService(
		companyRepo,
		integrationRepo,
		[]integration.RevenueFetcher{
			stripe.NewFetcher(nil),
			razorpay.NewFetcher(),
			paypal.NewFetcher(cfg.Providers.PayPalAPIBase),
		},
		clk,
		cfg.Providers.RevenueWindow,
		m,
		log,
	)
	integrationHandler := integration.NewHandler(integrationService, log)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Metrics(m),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Blob.Backend == "local" {
		r.Static(cfg.Blob.StaticBase, cfg.Blob.UploadsDir)
	}

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		optional := v1.Group("/")
		optional.Use(middleware.OptionalJWTAuth(j))

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))

		authHandler.RegisterProtectedRoutes(protected)
		adsHandler.RegisterRoutes(v1, protected)
		companyHandler.RegisterRoutes(optional, protected)
		integrationHandler.RegisterRoutes(protected)
	}

	a.router = r
	return a, nil
}
