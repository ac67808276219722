package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ibb-guide/internal/adapter/events"
	httpadp "ibb-guide/internal/adapter/http"
	"ibb-guide/internal/adapter/moderation"
	"ibb-guide/internal/adapter/repository/mysql"
	"ibb-guide/internal/config"
	"ibb-guide/internal/infrastructure/cache"
	"ibb-guide/internal/infrastructure/db"
	"ibb-guide/internal/infrastructure/metrics"
	"ibb-guide/internal/usecase/approval"
	auditUC "ibb-guide/internal/usecase/audit"
	"ibb-guide/internal/usecase/pendingchange"
	"ibb-guide/internal/usecase/request"

	"go.uber.org/zap"
)

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), logger)
	if err != nil {
		logger.Fatal("mysql", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatal("mysql pool", zap.Error(err))
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	m := metrics.Default()

	accounts := mysql.NewAccountRepository(gdb)
	partners := mysql.NewPartnerRepository(gdb)
	listings := mysql.NewListingRepository(gdb)
	changes := mysql.NewPendingChangeRepository(gdb)
	requests := mysql.NewRequestRepository(gdb)
	auditRepo := mysql.NewAuditRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	dispatcher := events.NewAsyncDispatcher(
		events.NewRedisPublisher(rdb, cfg.NotifyChannel, logger),
		logger,
		events.WithQueueSize(cfg.NotifyQueueSize),
		events.WithMaxAttempts(cfg.NotifyMaxAttempts),
		events.WithMetrics(m),
	)

	classifier := moderation.NewClassifier(mysql.NewBannedWordRepository(gdb), rdb, cfg.ModerationCacheTTL(), logger, m)
	words := moderation.NewInvalidatingRepository(mysql.NewBannedWordRepository(gdb), classifier, logger)

	writer := auditUC.NewWriter(auditRepo, logger)
	governor := pendingchange.NewUsecase(tx, changes, writer, dispatcher, logger, pendingchange.WithClassifier(classifier))
	approvals := approval.NewUsecase(approval.Deps{
		Accounts: accounts,
		Partners: partners,
		Listings: listings,
		Changes:  changes,
		UoW:      tx,
		Audit:    writer,
		Events:   dispatcher,
		Governor: governor,
		Metrics:  m,
		Log:      logger,
	})
	requestUC := request.NewUsecase(tx, requests, accounts, writer, dispatcher, logger)

	e := httpadp.NewServer(httpadp.Routes{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "mysql", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		),
		Approvals:  httpadp.NewApprovalHandler(approvals, logger),
		Changes:    httpadp.NewChangeHandler(governor, logger),
		Requests:   httpadp.NewRequestHandler(requestUC, logger),
		Moderation: httpadp.NewModerationHandler(words, classifier, accounts, logger),
	}, rdb, cfg.IdempotencyTTL(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("notifications not drained", zap.Error(err))
	}
}
