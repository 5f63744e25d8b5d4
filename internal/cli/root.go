// Package cli implements stringctl, the operator command line for the stringing service.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/bootstrap"
	"github.com/stringdesk/stringing-service/internal/config"
	"github.com/stringdesk/stringing-service/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:           "stringctl",
	Short:         "Operate the racquet stringing service",
	Long:          `Maintenance commands that share the API server's configuration (environment and .env).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// withContainer loads config, builds the service graph and hands it to fn.
// The CLI never migrates implicitly; use `stringctl migrate`.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	c, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{SkipMigrations: true})
	if err != nil {
		return err
	}
	defer c.Close()

	if c.Postgres.PoolHandle() == nil {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if err := fn(ctx, c); err != nil {
		logger.Error(cmd.Name()+" failed", zap.Error(err))
		return err
	}
	return nil
}
