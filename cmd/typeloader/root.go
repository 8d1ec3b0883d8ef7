package typeloader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagJSON            bool
	flagSARIF           bool
	flagThreads         int
	flagNoColor         bool
	flagVerbose         bool
	flagDefaultExcludes bool

	version = "0.1.0"
)

// errFailuresFound makes Execute exit with status 1.
var errFailuresFound = errors.New("load failures found")

// rootCmd is the base Cobra command for the typeloader CLI.
var rootCmd = &cobra.Command{
	Use:           "typeloader",
	Short:         "Discover plugin types in a directory",
	Long:          "typeloader scans a directory for plugin libraries, loads each library once, and lists the types that satisfy a capability.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the typeloader CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFailuresFound) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit load failures as SARIF 2.1.0")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log load traces and progress")
	rootCmd.PersistentFlags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "skip built-in excluded directories (.git, node_modules, vendor, ...)")
}

// newLogger returns the stderr logger; verbose enables debug detail.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "typeloader"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
