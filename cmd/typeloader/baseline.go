package typeloader

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typeloader/typeloader/internal/engine"
	"github.com/typeloader/typeloader/internal/report"
)

var flagBaselineOut string

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Record the current load failures as known",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolveScan(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := engine.Scan(ctx, s.cfg)
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(flagBaselineOut, res.Failures); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated with %d failure(s).\n", len(res.Failures))
			return nil
		},
	}
	addScanFlags(update)
	update.Flags().StringVar(&flagBaselineOut, "output", ".typeloader-baseline.json", "baseline file to write")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
