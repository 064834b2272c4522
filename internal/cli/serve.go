package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/nudge/internal/adapters/httpapi"
)

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest API and the trigger dispatcher",
		Long: `Run the nudge service: the HTTP ingest API for task creation and the
embedded dispatcher that fires reminder and escalation triggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			container, err := buildContainer(cmd, logger)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if n, err := container.PurgeExpired(ctx); err != nil {
				logger.Warn("failed to purge expired tasks", zap.Error(err))
			} else if n > 0 {
				logger.Info("purged expired tasks", zap.Int64("count", n))
			}

			server := httpapi.NewServer(container.TaskService, container.Health, logger)

			errCh := make(chan error, 2)
			go func() {
				errCh <- server.Listen(container.Config.HTTPAddr)
			}()
			go func() {
				errCh <- container.Dispatcher.Run(ctx)
			}()

			color.New(color.FgHiGreen).Fprintf(cmd.OutOrStdout(),
				"nudge serving on %s\n", container.Config.HTTPAddr)

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil && !errors.Is(err, context.Canceled) {
					stop()
					server.Shutdown()
					return fmt.Errorf("service failed: %w", err)
				}
			}

			logger.Info("shutting down")
			if err := server.Shutdown(); err != nil {
				logger.Warn("failed to shut down http server", zap.Error(err))
			}
			return nil
		},
	}

	addConfigFlag(cmd)
	return cmd
}
