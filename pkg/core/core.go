package core

import (
	"context"
	"time"

	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/engine"
	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/report"
	"github.com/typeloader/typeloader/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config      = engine.Config
	Result      = engine.Result
	Match       = capability.Match
	Capability  = capability.Capability
	LoadFailure = types.LoadFailure
	FailureKind = types.FailureKind
	Identity    = types.Identity
	Reporter    = report.Reporter
	Registry    = library.Registry
)

const (
	FormatMismatch  = types.FormatMismatch
	PartialTypeLoad = types.PartialTypeLoad
	FatalIO         = types.FatalIO
)

// Scan is the stable entrypoint for other programs.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	return engine.Scan(ctx, cfg)
}

// LoadTypes scans dir and returns the matching types for capability C using
// the process-wide registry and symbol table.
func LoadTypes[C any](ctx context.Context, dir string, reporter Reporter) ([]Match, error) {
	c, err := capability.Of[C]()
	if err != nil {
		return nil, err
	}
	res, err := engine.Scan(ctx, engine.Config{Root: dir, Capability: c, Reporter: reporter})
	return res.Matches, err
}

// Watch rescans cfg.Root on every change until ctx is done.
func Watch(ctx context.Context, cfg Config, debounce time.Duration, onScan func(Result, error)) error {
	return engine.Watch(ctx, cfg, debounce, onScan)
}

// CapabilityOf returns the capability for interface type C.
func CapabilityOf[C any]() (Capability, error) { return capability.Of[C]() }

// Instantiate creates an instance of m typed as C.
func Instantiate[C any](m Match) (C, error) { return capability.Instantiate[C](m) }

// NewRegistry returns a registry isolated from the process-wide one.
func NewRegistry() *Registry { return library.NewRegistry() }

// Summary and Detail render a failure the way the command line does.
func Summary(f *LoadFailure) string { return report.Summary(f) }
func Detail(f *LoadFailure) string  { return report.Detail(f) }
