package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/cache"
	adapterHTTP "github.com/ahmed11551/SmartTasbihGoals/internal/adapters/handler/http"
	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/hijri"
	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/notify"
	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/repository"
	"github.com/ahmed11551/SmartTasbihGoals/internal/config"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/services"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/workers"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	startTime := time.Now()
	cfg := config.Load()

	log.Info().Msg("connecting to database")

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info().Msg("database connected")

	rdb := connectRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	var debtRepo domain.QazaDebtRepository = repository.NewPostgresDebtRepository(db)
	if rdb != nil {
		debtRepo = repository.NewCachedDebtRepository(debtRepo, rdb)
	}
	calendarRepo := repository.NewPostgresCalendarRepository(db)

	var notifier domain.CompletionNotifier = notify.NewLogNotifier()
	if rdb != nil {
		notifier = notify.NewRedisNotifier(rdb, cfg.SettlementChannel)
	}

	var primary domain.DateConverter
	if cfg.HijriAPIBaseURL != "" {
		primary = hijri.NewRemoteConverter(cfg.HijriAPIBaseURL, cfg.HijriAPITimeout)
	}
	converter := hijri.NewFailover(primary, hijri.NewArithmeticConverter())

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	materializer := workers.NewMaterializeWorker(calendarRepo)
	materializer.Start(workerCtx)

	locks := services.NewUserLocks()
	hijriService := services.NewHijriService(converter)
	debtService := services.NewDebtService(debtRepo, hijriService, materializer, locks)
	progressService := services.NewProgressService(debtRepo, calendarRepo, notifier, locks)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		DebtHandler:     adapterHTTP.NewDebtHandler(debtService, progressService),
		CalendarHandler: adapterHTTP.NewCalendarHandler(progressService),
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("qaza engine listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("stop signal received, shutting down")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped gracefully")
}

func connectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, running without redis")
		return nil
	}

	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without redis")
		return nil
	}

	log.Info().Msg("redis connected")
	return rdb
}
