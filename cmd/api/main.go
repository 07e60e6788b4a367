package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	sessionStore "github.com/MrJamesThe3rd/tillbook/internal/cashsession/store"
	"github.com/MrJamesThe3rd/tillbook/internal/config"
	"github.com/MrJamesThe3rd/tillbook/internal/database"
	tillbookHttp "github.com/MrJamesThe3rd/tillbook/internal/http"
	ledgerHandler "github.com/MrJamesThe3rd/tillbook/internal/http/ledger"
	reportHandler "github.com/MrJamesThe3rd/tillbook/internal/http/report"
	sessionHandler "github.com/MrJamesThe3rd/tillbook/internal/http/session"
	shiftHandler "github.com/MrJamesThe3rd/tillbook/internal/http/shift"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger/checkpoint"
	ledgerStore "github.com/MrJamesThe3rd/tillbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/tillbook/internal/notify"
	orderStore "github.com/MrJamesThe3rd/tillbook/internal/order/store"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
	reportStore "github.com/MrJamesThe3rd/tillbook/internal/report/store"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
	shiftStore "github.com/MrJamesThe3rd/tillbook/internal/ridershift/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	var (
		sink     notify.Sink = notify.LogSink{}
		ledgerOp []ledger.Option
	)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, continuing without checkpoints and event queue", "error", err)
		} else {
			sink = notify.NewRedisSink(rdb, cfg.Ledger.EventsKey)

			if cfg.Ledger.Checkpoints {
				ledgerOp = append(ledgerOp, ledger.WithCheckpoints(checkpoint.New(rdb, cfg.Ledger.CheckpointTTL)))
			}
		}
	}

	events := notify.NewWorker(sink, cfg.Ledger.EventBuffer)
	events.Start()
	defer events.Shutdown()

	ledgerOp = append(ledgerOp, ledger.WithPublisher(events))

	archiver, format, err := newArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		ledgerService  = ledger.NewService(ledgerStore.New(db), orderStore.New(db), ledgerOp...)
		sessionManager = cashsession.NewManager(sessionStore.New(db), ledgerService)
		shiftManager   = ridershift.NewManager(shiftStore.New(db), ledgerService)
		reports        = report.NewGenerator(reportStore.New(db), nil)
	)

	router := tillbookHttp.New(
		cfg.Server.Timeout,
		ledgerHandler.NewHandler(ledgerService),
		sessionHandler.NewHandler(sessionManager),
		shiftHandler.NewHandler(shiftManager),
		reportHandler.NewHandler(reports, archiver, format),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	slog.Info("server stopped")

	return nil
}

func newArchiver(ctx context.Context, cfg *config.Config) (*report.Archiver, *report.Formatter, error) {
	format := report.NewFormatter(cfg.Archive.Language)

	if cfg.Archive.Bucket == "" {
		return report.NewArchiver(report.NewDirSink(cfg.Archive.Dir), cfg.Archive.Prefix, format), format, nil
	}

	s3Sink, err := report.DialS3(ctx, report.S3Config{
		Bucket:    cfg.Archive.Bucket,
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to archive: %w", err)
	}

	return report.NewArchiver(s3Sink, cfg.Archive.Prefix, format), format, nil
}
