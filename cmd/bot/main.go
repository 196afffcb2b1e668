package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/Spok95/stockbook/internal/backup"
	"github.com/Spok95/stockbook/internal/bot"
	"github.com/Spok95/stockbook/internal/config"
	"github.com/Spok95/stockbook/internal/dialog"
	"github.com/Spok95/stockbook/internal/domain/analytics"
	"github.com/Spok95/stockbook/internal/domain/ledger"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/infra/db"
	httpx "github.com/Spok95/stockbook/internal/infra/http"
	"github.com/Spok95/stockbook/internal/infra/logger"
	"github.com/Spok95/stockbook/internal/store"
)

func runMigrations(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	pg := store.NewPG(pool)
	ledgerSvc := ledger.NewService(pg, log)
	analyticsSvc := analytics.NewService(pg, cfg.Inventory.LowStockThreshold)
	backupSvc := backup.NewService(pg, log, cfg.Backup.MaxSizeMB<<20)
	productsRepo := products.NewRepo(pool)
	statesRepo := dialog.NewRepo(pool)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "err", err)
		return
	}
	log.Info("telegram authorized", "account", api.Self.UserName)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, pool)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	b := bot.New(api, log, statesRepo, ledgerSvc, analyticsSvc, backupSvc,
		productsRepo, cfg.Telegram.AdminChatID, cfg.Inventory.LowStockThreshold)
	go func() {
		if err := b.Run(ctx, 30); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", "err", err)
		}
	}()
	log.Info("bot started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
