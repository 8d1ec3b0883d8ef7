package typeloader

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/typeloader/typeloader/internal/engine"
	"github.com/typeloader/typeloader/internal/report"
)

var flagDebounce time.Duration

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rescan a plugin directory whenever it changes",
		Long:  "watch keeps libraries loaded between scans, so each rescan only loads libraries that were not seen before.",
		RunE:  runWatch,
	}
	rootCmd.AddCommand(cmd)

	addScanFlags(cmd)
	cmd.Flags().DurationVar(&flagDebounce, "debounce", engine.DefaultDebounce, "wait this long for changes to settle before rescanning")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := resolveScan(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	s.logger.Info("watching", "path", s.cfg.Root)
	return engine.Watch(ctx, s.cfg, flagDebounce, func(res engine.Result, err error) {
		if err != nil {
			s.logger.Error("scan failed", "err", err)
			return
		}
		report.PrintText(out, res.Matches, res.Failures, report.PrintOptions{
			NoColor:    s.noColor,
			Duration:   res.Duration,
			Candidates: res.Candidates,
			Libraries:  res.Libraries,
		})
	})
}
