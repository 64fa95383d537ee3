package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minbank/ledger-service/internal/api"
	"github.com/minbank/ledger-service/internal/auth"
	"github.com/minbank/ledger-service/internal/config"
	"github.com/minbank/ledger-service/internal/db"
	"github.com/minbank/ledger-service/internal/logger"
	"github.com/minbank/ledger-service/internal/metrics"
	"github.com/minbank/ledger-service/internal/repository"
	"github.com/minbank/ledger-service/internal/repository/memory"
	"github.com/minbank/ledger-service/internal/repository/postgres"
	"github.com/minbank/ledger-service/internal/services"
	"github.com/minbank/ledger-service/internal/worker"
)

// treasury is the privileged system account funds are issued from.
const treasuryAccount = "treasury"

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		accounts repository.Accounts
		trx      repository.Transactions
		audits   repository.AuditLogs
	)
	if cfg.DatabaseURL == "memory" {
		store := memory.New(cfg.LockWait)
		accounts, trx, audits = store, store, store.AuditLogs()
		log.Info("using in-memory store")
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}

		repos := postgres.NewRepositories(pool, cfg.LockWait)
		accounts, trx, audits = repos.Accounts, repos.Transactions, repos.AuditLogs
	}

	metrics.Init()
	wp := worker.NewPool(4)
	defer wp.Stop()

	accountSvc := services.NewAccountService(accounts, cfg.OpeningBalance)
	ledgerSvc := services.NewLedgerService(accounts, trx, audits, wp)
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)

	if err := accountSvc.EnsureSystemAccount(ctx, treasuryAccount); err != nil {
		log.Error("seed treasury", "err", err)
		os.Exit(1)
	}

	r := api.NewRouter(cfg, accountSvc, ledgerSvc, tm)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
