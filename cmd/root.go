package cmd

import (
	"fmt"
	"os"

	"github.com/jmehdipour/overdue-notifier/cmd/worker"
	"github.com/jmehdipour/overdue-notifier/internal/config"
	"github.com/jmehdipour/overdue-notifier/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is stamped at build time: -ldflags "-X github.com/jmehdipour/overdue-notifier/cmd.version=..."
var version = "dev"

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:           "overdue-notifier",
		Short:         "Alerts supervisors when sales orders are created for customers with overdue balances",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultCfg := "config.yaml"
	if p := os.Getenv("ONOTIFY_CONFIG"); p != "" {
		defaultCfg = p
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to YAML config file (env ONOTIFY_CONFIG)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}

// loadRuntime loads the config named by --config and builds the zap logger from it.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log.With(zap.String("version", version)), nil
}
