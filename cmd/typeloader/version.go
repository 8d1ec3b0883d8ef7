package typeloader

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/typeloader/typeloader/internal/library/native"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "typeloader %s (%s, %s/%s, native plugins: %t)\n",
				version, runtime.Version(), runtime.GOOS, runtime.GOARCH, native.Supported)
		},
	})
}
