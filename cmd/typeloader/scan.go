package typeloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/typeloader/typeloader/internal/audit"
	"github.com/typeloader/typeloader/internal/cache"
	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/config"
	"github.com/typeloader/typeloader/internal/engine"
	"github.com/typeloader/typeloader/internal/report"
	"github.com/typeloader/typeloader/pkg/core"
	"github.com/typeloader/typeloader/pkg/sdk"
)

var (
	flagPath        string
	flagExt         string
	flagCapability  string
	flagInclude     string
	flagExclude     string
	flagTimeout     time.Duration
	flagText        bool
	flagFailOnError bool
	flagBaseline    string
	flagAuditLog    string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Load every plugin library under a directory and list matching types",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	addScanFlags(cmd)
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "abort the scan after this long and print partial results (0 = none)")
	cmd.Flags().BoolVar(&flagText, "text", false, "output in plain text instead of tables")
	cmd.Flags().BoolVar(&flagFailOnError, "fail-on-error", false, "exit with status 1 when any library fails to load")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "only report failures missing from this baseline file")
	cmd.Flags().StringVar(&flagAuditLog, "audit-log", "", "append a summary of the scan to this JSONL file")
}

// addScanFlags registers the flags shared by scan, watch and baseline.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "plugin directory to scan")
	cmd.Flags().StringVar(&flagExt, "ext", "", "comma-separated library suffixes (default .so,.typelib)")
	cmd.Flags().StringVar(&flagCapability, "capability", "", "capability types must satisfy (see `typeloader capabilities`)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
}

type scanSettings struct {
	cfg      engine.Config
	timeout  time.Duration
	baseline string
	noColor  bool
	logger   *log.Logger
}

// resolveScan builds engine configuration with precedence CLI > local > global.
func resolveScan(cmd *cobra.Command) (scanSettings, error) {
	var s scanSettings
	abs, err := filepath.Abs(flagPath)
	if err != nil {
		return s, err
	}
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	} else if !errors.Is(err, config.ErrNotFound) {
		return s, fmt.Errorf("global config: %w", err)
	}
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	} else if !errors.Is(err, config.ErrNotFound) {
		return s, fmt.Errorf("local config: %w", err)
	}

	s.logger = newLogger(cmd.ErrOrStderr(), pickBool(flagVerbose, lcfg.Verbose, gcfg.Verbose))
	s.noColor = pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)
	s.baseline = pickString(flagBaseline, lcfg.Baseline, gcfg.Baseline)
	if s.timeout, err = pickDuration(flagTimeout, lcfg.Timeout, gcfg.Timeout); err != nil {
		return s, fmt.Errorf("invalid timeout: %w", err)
	}

	name := pickString(flagCapability, lcfg.Capability, gcfg.Capability)
	if name == "" {
		name = capability.DefaultName
	}
	c, ok := capability.Lookup(name)
	if !ok {
		return s, fmt.Errorf("unknown capability %q (available: %s)", name, strings.Join(capability.Names(), ", "))
	}

	for module, v := range lcfg.Merge(gcfg).Provides {
		if err := sdk.Provide(module, v); err != nil {
			return s, err
		}
	}

	defaultExcludes := flagDefaultExcludes
	if !cmd.Flags().Changed("default-excludes") {
		if lcfg.DefaultExcludes != nil {
			defaultExcludes = *lcfg.DefaultExcludes
		} else if gcfg.DefaultExcludes != nil {
			defaultExcludes = *gcfg.DefaultExcludes
		}
	}

	s.cfg = engine.Config{
		Root:            abs,
		Extensions:      splitList(pickString(flagExt, lcfg.Extensions, gcfg.Extensions)),
		IncludeGlobs:    pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:    pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		DefaultExcludes: defaultExcludes,
		Threads:         pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
		Capability:      c,
		Probes:          cache.NewProbes(),
		Reporter:        report.NewLogReporter(s.logger),
		Logger:          s.logger,
	}
	return s, nil
}

func runScan(cmd *cobra.Command, _ []string) error {
	s, err := resolveScan(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := engine.Scan(ctx, s.cfg)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.logger.Warn("scan interrupted; results are partial", "err", err)
	case err != nil:
		return fmt.Errorf("scan error: %w", err)
	}

	if flagAuditLog != "" {
		rec := audit.CreateScanRecord(s.cfg.Root, s.cfg.Capability.Name, res.Candidates, res.Libraries, len(res.Matches), res.Failures, res.Duration)
		if err := audit.NewAuditLog(flagAuditLog).LogScan(rec); err != nil {
			s.logger.Warn("audit log not written", "err", err)
		}
	}

	if s.baseline != "" {
		base, err := report.LoadBaseline(s.baseline)
		if err == nil {
			res.Failures = report.FilterNewFailures(res.Failures, base)
		} else {
			s.logger.Warn("baseline not loaded", "path", s.baseline, "err", err)
		}
	}

	out := cmd.OutOrStdout()
	opts := report.PrintOptions{NoColor: s.noColor, Duration: res.Duration, Candidates: res.Candidates, Libraries: res.Libraries}
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(out, res.Failures, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := core.MarshalResult(out, res); err != nil {
			return err
		}
	case flagText:
		report.PrintText(out, res.Matches, res.Failures, opts)
	default:
		report.PrintTable(out, res.Matches, res.Failures, opts)
	}

	if flagFailOnError && len(res.Failures) > 0 {
		return errFailuresFound
	}
	return nil
}
