package typeloader

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typeloader/typeloader/internal/audit"
)

var (
	flagHistoryLog   string
	flagHistoryLimit int
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show scans recorded with --audit-log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := audit.NewAuditLog(flagHistoryLog).LoadHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No scans recorded.")
				return nil
			}
			if flagJSON {
				return writeJSON(out, records)
			}
			for i, r := range records {
				if flagHistoryLimit > 0 && i >= flagHistoryLimit {
					break
				}
				fmt.Fprintf(out, "%s  %s  libraries=%d matches=%d failures=%d (%s)\n",
					r.Timestamp.Format("2006-01-02 15:04:05"), r.Root, r.Libraries, r.Matches, len(r.Failures), r.Duration)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagHistoryLog, "audit-log", audit.DefaultFile, "audit log to read")
	cmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "show at most this many scans (0 = all)")
	rootCmd.AddCommand(cmd)
}
