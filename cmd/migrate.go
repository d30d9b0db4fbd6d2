package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmehdipour/overdue-notifier/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var skipClickHouse bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (dev: DROP & CREATE tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		sqlBytes, err := readMigration("001_init.sql")
		if err != nil {
			return err
		}

		if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
			return fmt.Errorf("disable fk checks: %w", err)
		}
		if _, err := sqlDB.Exec(sqlBytes); err != nil {
			_, _ = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")
			return fmt.Errorf("exec migration: %w", err)
		}
		if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
			return fmt.Errorf("enable fk checks: %w", err)
		}
		log.Info("mysql migration applied", zap.String("file", "001_init.sql"))

		if skipClickHouse {
			log.Info("clickhouse migration skipped")
			return nil
		}

		chDB, err := db.NewClickHouseConnection(cfg.ClickHouse.DSN, db.PoolOptsFrom(cfg.ClickHouse))
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		chBytes, err := readMigration(filepath.Join("clickhouse", "001_diagnostics.sql"))
		if err != nil {
			return err
		}
		if err := execEach(chDB, chBytes); err != nil {
			return fmt.Errorf("exec clickhouse migration: %w", err)
		}
		log.Info("clickhouse migration applied", zap.String("file", "clickhouse/001_diagnostics.sql"))

		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&skipClickHouse, "skip-clickhouse", false, "only migrate MySQL")
}

func readMigration(name string) (string, error) {
	p := filepath.Join("migrations", name)
	b, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read migration file %s: %w", p, err)
	}
	return string(b), nil
}

// execEach runs statements one at a time; ClickHouse rejects multi-statement queries.
func execEach(dbx *sqlx.DB, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := dbx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
