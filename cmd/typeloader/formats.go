package typeloader

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/engine"
	"github.com/typeloader/typeloader/internal/library/native"
	"github.com/typeloader/typeloader/pkg/sdk"
)

func init() {
	formats := &cobra.Command{
		Use:   "formats",
		Short: "List supported library formats",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, f := range engine.DefaultFormats(sdk.Default) {
				note := ""
				if f.Name() == "native" && !native.Supported {
					note = "  (unavailable: built without cgo)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s%s\n", f.Name(), strings.Join(f.Suffixes(), ","), note)
			}
		},
	}
	capabilities := &cobra.Command{
		Use:   "capabilities",
		Short: "List capabilities selectable with --capability",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range capability.Names() {
				c, _ := capability.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, c.Name)
			}
		},
	}
	symbols := &cobra.Command{
		Use:   "symbols",
		Short: "List host symbols manifest libraries can bind to",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range sdk.Default.Names() {
				s, _ := sdk.Default.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, s.Type)
			}
		},
	}
	rootCmd.AddCommand(formats, capabilities, symbols)
}
