package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newMigrateCmd(log func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := openInfra(cmd.Context(), log())
			if err != nil {
				return err
			}
			defer in.Close()
			return in.migrate(cmd.Context())
		},
	}
}
