package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/promptkit/pkg/pg"
)

func newBackfillCmd(log func() *slog.Logger) *cobra.Command {
	var (
		since time.Duration
		limit int
	)
	cmd := &cobra.Command{
		Use:   "backfill-customers",
		Short: "Store user to customer mappings for recently created processor customers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in, err := openInfra(ctx, log())
			if err != nil {
				return err
			}
			defer in.Close()
			if in.pool == nil {
				return pg.ErrEmptyConnectionString
			}

			svc, err := in.billingService(ctx, nil)
			if err != nil {
				return err
			}
			res, err := svc.BackfillCustomers(ctx, time.Now().Add(-since), limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d linked=%d skipped=%d\n", res.Scanned, res.Linked, res.Skipped)
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 720*time.Hour, "look back this far for customers")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum customers to scan")
	return cmd
}
