package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/AdilAzhari/car-rental-api/internal/app"
	"github.com/AdilAzhari/car-rental-api/internal/cache"
	"github.com/AdilAzhari/car-rental-api/internal/clock"
	"github.com/AdilAzhari/car-rental-api/internal/config"
	"github.com/AdilAzhari/car-rental-api/internal/metrics"
	"github.com/AdilAzhari/car-rental-api/internal/payments"
	"github.com/AdilAzhari/car-rental-api/internal/storage/postgres"
	transporthttp "github.com/AdilAzhari/car-rental-api/internal/transport/http"
	"github.com/AdilAzhari/car-rental-api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	metrics.Register()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	clk := clock.NewSystem()

	conflictRepo := postgres.NewConflictRepository(pool)
	conflictSvc := app.NewConflictService(conflictRepo,
		app.WithSearchWindow(cfg.SearchDaysBefore, cfg.SearchDaysAfter),
		app.WithPriceBand(cfg.PriceBand),
	)

	bookingRepo := postgres.NewBookingRepository(pool)
	bookingSvc := app.NewBookingService(bookingRepo, clk)

	cleanupRepo := postgres.NewCleanupRepository(pool)
	cleanupSvc := app.NewCleanupService(cleanupRepo, clk, logger,
		app.WithPendingTimeout(cfg.PendingTimeout),
	)

	var statsCache cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, stats cache disabled")
		} else {
			statsCache = cache.NewRedis(rdb)
			defer rdb.Close()
		}
	}
	statsSvc := app.NewStatsService(postgres.NewStatsRepository(pool), statsCache, cfg.StatsCacheTTL)

	var checkout payments.CheckoutProvider
	if cfg.StripeSecretKey != "" {
		checkout = payments.NewStripeService(cfg.StripeSecretKey, cfg.StripeSuccessURL, cfg.StripeCancelURL)
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set, bookings created without payment links")
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", transporthttp.HealthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/bookings",
		transporthttp.RateLimit(
			transporthttp.HandleCreateBooking(bookingSvc, conflictSvc, checkout, cfg.PaymentCurrency, logger),
			rate.Limit(5), 10,
		),
	).Methods(http.MethodPost)
	api.Handle("/conflicts/check", transporthttp.HandleCheckConflicts(conflictSvc, logger)).Methods(http.MethodPost)
	api.Handle("/bookings/{id}/validate", transporthttp.HandleValidateBookingUpdate(conflictSvc, logger)).Methods(http.MethodPost)

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Handle("/stats", transporthttp.HandleFleetStats(statsSvc, logger)).Methods(http.MethodGet)
	admin.Handle("/reservations/cleanup", transporthttp.HandleCleanup(cleanupSvc, logger)).Methods(http.MethodPost)

	router.NotFoundHandler = transporthttp.NotFoundHandler()

	cors := handlers.CORS(
		handlers.AllowedOrigins(parseCSV(cfg.CORSOrigins)),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	handler := transporthttp.RequestLogger(cors(router), logger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := cleanupSvc.CleanupExpiredReservations(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled cleanup failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("invalid cleanup schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info().Str("port", cfg.Port).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
