package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"middleware-users/assembly"
	"middleware-users/middleware/ratelimit/infra"
)

func main() {
	if err := loadDotEnv(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.logLevel, cfg.logFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server error", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config, logger *zap.Logger) error {
	opts := cfg.assemblyOptions()
	opts.Logger = logger

	closeStats, err := wireStats(cfg, &opts)
	if err != nil {
		return err
	}
	defer closeStats()

	app, err := assembly.New(opts)
	if err != nil {
		return errors.WithMessage(err, "assemble application")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	app.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("server listening",
		zap.String("addr", cfg.listenAddr),
		zap.String("usersFile", app.UsersFile()),
	)
	logger.Info("rate",
		zap.Bool("enabled", cfg.rateEnabled),
		zap.String("algorithm", cfg.rateAlgorithm),
		zap.Int("maxRequests", cfg.rateMaxRequests),
		zap.Duration("window", cfg.rateWindow),
		zap.String("keyHeader", cfg.rateKeyHeader),
	)
	logger.Info("rate-stats",
		zap.String("backend", cfg.rateStatsBackend),
		zap.String("redisAddr", cfg.rateStatsRedisAddr),
		zap.String("bucket", cfg.rateStatsBucket),
		zap.Duration("ttl", cfg.rateStatsTTL),
		zap.Bool("trackKeys", cfg.rateStatsTrackKeys),
	)
	logger.Info("concurrency",
		zap.Int("max", cfg.concurrencyMax),
		zap.Duration("acquireTimeout", cfg.concurrencyTimeout),
	)

	return serve(ctx, srv, srv.ListenAndServe, 10*time.Second)
}

// serve roda listen até ctx encerrar e só retorna depois que Shutdown drenou
// as requisições em andamento (ou estourou drainTimeout).
func serve(ctx context.Context, srv *http.Server, listen func() error, drainTimeout time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	if err := <-shutdownErr; err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// wireStats escolhe o backend de estatísticas. O retorno fecha as conexões abertas.
func wireStats(cfg config, opts *assembly.Options) (func(), error) {
	switch cfg.rateStatsBackend {
	case statsMemory:
		stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.rateStatsTrackKeys))
		opts.Stats = stats
		opts.StatsSource = stats
		return func() {}, nil

	case statsRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.rateStatsRedisAddr,
			Password: cfg.rateStatsRedisPassword,
			DB:       cfg.rateStatsRedisDB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, errors.Wrap(err, "redis stats ping")
		}

		opts.Stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		)
		return func() { _ = rdb.Close() }, nil
	}
	return func() {}, nil
}
