// Command promptkit serves the prompt optimizer API and runs its
// maintenance tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/promptkit/pkg/config"
	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/pkg/requestid"
	"github.com/dmitrymomot/promptkit/svc/identity"
)

type appConfig struct {
	Name string `env:"APP_NAME" envDefault:"promptkit"`
	Env  string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var log *slog.Logger

	root := &cobra.Command{
		Use:           "promptkit",
		Short:         "Prompt optimizer API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var cfg appConfig
			if err := config.Load(&cfg); err != nil {
				return err
			}
			log = logger.New(
				logger.WithEnvironment(cfg.Env, cfg.Name),
				logger.WithContextExtractors(requestid.LoggerExtractor(), identity.LoggerExtractor()),
			)
			logger.SetAsDefault(log)
			return nil
		},
	}

	logFn := func() *slog.Logger { return log }
	root.AddCommand(
		newServeCmd(logFn),
		newMigrateCmd(logFn),
		newBackfillCmd(logFn),
	)
	return root
}
