package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/bootstrap"
	"github.com/jmehdipour/overdue-notifier/internal/db"
	httpSrv "github.com/jmehdipour/overdue-notifier/internal/http"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server (after-submit webhook)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		redisClient, err := db.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		chDB, err := db.NewClickHouseConnection(cfg.ClickHouse.DSN, db.PoolOptsFrom(cfg.ClickHouse))
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		diagnostics := repository.NewDiagnosticsRepository(chDB)
		hook := bootstrap.NewHook(cfg, mysqlDB, redisClient, diagnostics, log)

		server := httpSrv.NewServer(cfg, httpSrv.Deps{
			Hook:        hook,
			Diagnostics: diagnostics,
			Redis:       redisClient,
			Log:         log,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
