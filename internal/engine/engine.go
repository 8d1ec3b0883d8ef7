package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/typeloader/typeloader/internal/cache"
	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/library/manifest"
	"github.com/typeloader/typeloader/internal/library/native"
	"github.com/typeloader/typeloader/internal/report"
	"github.com/typeloader/typeloader/internal/scanner"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

// Config controls discovery scope, concurrency and collaborators. Zero
// values select the process-wide defaults.
type Config struct {
	Root            string
	Extensions      []string
	IncludeGlobs    string
	ExcludeGlobs    string
	DefaultExcludes bool
	// IgnoreFile overrides the ignore file name; "-" disables it.
	IgnoreFile string
	Threads    int

	// Capability filters loaded types; the zero value means sdk.Plugin.
	Capability capability.Capability
	Formats    []library.Format
	Table      *sdk.Table
	Registry   *library.Registry
	Probes     *cache.Probes

	Reporter report.Reporter
	Logger   *log.Logger
	// Progress is called once per loaded candidate, from worker goroutines.
	Progress func()
}

// Result holds the matches and failures of one scan. Order carries no
// meaning beyond being stable for identical inputs.
type Result struct {
	Matches    []capability.Match
	Failures   []*types.LoadFailure
	Candidates int
	Libraries  int
	Skipped    int
	Reused     int
	Duration   time.Duration
}

// DefaultFormats returns the native and manifest formats, the latter bound
// to table.
func DefaultFormats(table *sdk.Table) []library.Format {
	return []library.Format{native.New(), manifest.New(table)}
}

// Scan discovers every library under cfg.Root and returns the types
// satisfying cfg.Capability. An inaccessible root fails before anything is
// loaded. Load failures are reported through cfg.Reporter and returned in
// Result.Failures. When ctx is cancelled, loads in flight finish and the
// partial result is returned with the context error.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	started := time.Now()
	var result Result

	c := cfg.Capability
	if c.Type == nil {
		var err error
		if c, err = capability.Of[sdk.Plugin](); err != nil {
			return result, err
		}
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = report.Discard
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	paths, err := scanner.Walk(ctx, scanner.Config{
		Root:            cfg.Root,
		Extensions:      cfg.Extensions,
		IncludeGlobs:    cfg.IncludeGlobs,
		ExcludeGlobs:    cfg.ExcludeGlobs,
		DefaultExcludes: cfg.DefaultExcludes,
		IgnoreFile:      cfg.IgnoreFile,
	})
	if err != nil {
		return result, err
	}
	result.Candidates = len(paths)

	loader := newLoader(cfg)
	outcomes := make([]library.Outcome, len(paths))
	var g errgroup.Group
	g.SetLimit(threads)
	for i, p := range paths {
		if ctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = loader.Load(ctx, p)
			if cfg.Progress != nil {
				cfg.Progress()
			}
			return nil
		})
	}
	_ = g.Wait()

	merge(&result, outcomes, c, reporter)
	result.Duration = time.Since(started)
	if cfg.Logger != nil {
		cfg.Logger.Debug("scan finished",
			"root", cfg.Root,
			"candidates", result.Candidates,
			"libraries", result.Libraries,
			"matches", len(result.Matches),
			"failures", len(result.Failures),
			"duration", result.Duration)
	}
	return result, ctx.Err()
}

func newLoader(cfg Config) *library.Loader {
	formats := cfg.Formats
	if len(formats) == 0 {
		formats = DefaultFormats(cfg.Table)
	}
	opts := []library.Option{}
	if cfg.Registry != nil {
		opts = append(opts, library.WithRegistry(cfg.Registry))
	}
	if cfg.Probes != nil {
		opts = append(opts, library.WithProbeCache(cfg.Probes))
	}
	if cfg.Logger != nil {
		opts = append(opts, library.WithLogger(cfg.Logger))
	}
	return library.NewLoader(formats, opts...)
}

// merge folds outcomes into result in candidate order. A library identity
// found at several paths contributes once.
func merge(result *Result, outcomes []library.Outcome, c capability.Capability, reporter report.Reporter) {
	seen := map[types.Identity]bool{}
	for _, out := range outcomes {
		switch {
		case out.Path == "" || out.Err != nil:
			continue
		case out.Skipped:
			result.Skipped++
			continue
		}
		if out.Library != nil {
			if seen[out.Library.Identity] {
				continue
			}
			seen[out.Library.Identity] = true
			result.Libraries++
			if out.Reused {
				result.Reused++
			}
			result.Matches = append(result.Matches, capability.Filter(out.Library, c)...)
		}
		if out.Failure != nil {
			report.Report(reporter, out.Failure)
			result.Failures = append(result.Failures, out.Failure)
		}
	}
}
