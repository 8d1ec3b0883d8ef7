package library

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"github.com/typeloader/typeloader/internal/cache"
	"github.com/typeloader/typeloader/internal/types"
)

// Outcome is the result of loading one candidate file.
type Outcome struct {
	Path string
	// Skipped is set for files no format recognized.
	Skipped bool
	// Reused is set when the identity was already loaded by an earlier call.
	Reused bool
	// Library is the loaded library; nil when skipped or probing failed.
	Library *Library
	// Failure is the partial-load failure, if any. It is kept alongside
	// Library, which may still hold the types that did resolve.
	Failure *types.LoadFailure
	// Err is set when the context was cancelled before loading started.
	Err error
}

// Loader reads identities and loads candidates through a set of formats.
type Loader struct {
	formats  []Format
	registry *Registry
	probes   *cache.Probes
	logger   *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry replaces the Default registry.
func WithRegistry(r *Registry) Option { return func(l *Loader) { l.registry = r } }

// WithProbeCache shares a probe cache between loaders.
func WithProbeCache(c *cache.Probes) Option { return func(l *Loader) { l.probes = c } }

// WithLogger sets a logger for debug output.
func WithLogger(lg *log.Logger) Option { return func(l *Loader) { l.logger = lg } }

// NewLoader returns a loader trying formats in order.
func NewLoader(formats []Format, opts ...Option) *Loader {
	l := &Loader{formats: formats, registry: Default}
	for _, o := range opts {
		o(l)
	}
	if l.probes == nil {
		l.probes = cache.NewProbes()
	}
	return l
}

// Formats returns the configured formats.
func (l *Loader) Formats() []Format { return append([]Format(nil), l.formats...) }

// Load reads path's identity and loads it at most once per identity. It is
// safe to call from multiple goroutines. Cancellation is only observed before
// the library is opened; an open in progress always completes.
func (l *Loader) Load(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	f, id, err := l.probe(path)
	if errors.Is(err, ErrFormatMismatch) {
		l.debug("skipping foreign file", "path", path)
		out.Skipped = true
		return out
	}
	if err != nil {
		out.Failure = &types.LoadFailure{
			Kind:    types.PartialTypeLoad,
			Path:    path,
			Message: "could not read library identity",
			Causes:  []types.Cause{{Message: err.Error()}},
		}
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	lib, failure, reused := l.registry.LoadOnce(id, func() (*Library, *types.LoadFailure) {
		l.debug("loading library", "path", path, "library", id.String(), "format", f.Name())
		return l.open(f, path, id)
	})
	if reused {
		l.debug("library already loaded", "path", path, "library", id.String())
	}
	out.Library, out.Failure, out.Reused = lib, failure, reused
	return out
}

func (l *Loader) probe(path string) (Format, types.Identity, error) {
	fp, err := cache.FingerprintFile(path)
	if err != nil {
		return nil, types.Identity{}, fmt.Errorf("read library: %w", err)
	}
	if p, ok := l.probes.Get(path, fp); ok {
		if p.Mismatch {
			return nil, types.Identity{}, ErrFormatMismatch
		}
		if f := l.format(p.Format); f != nil {
			return f, p.Identity, nil
		}
	}
	for _, f := range l.candidates(path) {
		id, err := f.Probe(path)
		if errors.Is(err, ErrFormatMismatch) {
			continue
		}
		if err != nil {
			return f, types.Identity{}, err
		}
		if id.Name == "" {
			return f, types.Identity{}, fmt.Errorf("%s library has no name", f.Name())
		}
		l.probes.Put(path, fp, cache.Probe{Format: f.Name(), Identity: id})
		return f, id, nil
	}
	l.probes.Put(path, fp, cache.Probe{Mismatch: true})
	return nil, types.Identity{}, ErrFormatMismatch
}

// candidates returns the formats claiming path by suffix, or every format
// when none does.
func (l *Loader) candidates(path string) []Format {
	var out []Format
	for _, f := range l.formats {
		if claims(f, path) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return l.formats
	}
	return out
}

func (l *Loader) format(name string) Format {
	for _, f := range l.formats {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (l *Loader) open(f Format, path string, id types.Identity) (lib *Library, failure *types.LoadFailure) {
	lib = &Library{Identity: id, Format: f.Name(), Path: path}
	defer func() {
		if r := recover(); r != nil {
			lib.Exports = nil
			failure = &types.LoadFailure{
				Kind:    types.PartialTypeLoad,
				Path:    path,
				Library: id,
				Message: "library panicked while loading",
				Causes:  []types.Cause{{Message: fmt.Sprint(r)}},
				Trace:   string(debug.Stack()),
			}
		}
	}()

	contents, err := f.Open(path, id)
	if err != nil {
		var oe *OpenError
		trace := ""
		if errors.As(err, &oe) {
			trace = oe.Trace
		}
		return lib, &types.LoadFailure{
			Kind:    types.PartialTypeLoad,
			Path:    path,
			Library: id,
			Message: "could not load library",
			Causes:  []types.Cause{{Message: err.Error()}},
			Trace:   trace,
		}
	}
	lib.Exports = contents.Exports
	if len(contents.Causes) > 0 {
		failure = &types.LoadFailure{
			Kind:    types.PartialTypeLoad,
			Path:    path,
			Library: id,
			Message: fmt.Sprintf("%d of %d types could not be loaded", len(contents.Causes), len(contents.Causes)+len(contents.Exports)),
			Causes:  contents.Causes,
		}
	}
	return lib, failure
}

func (l *Loader) debug(msg string, kv ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, kv...)
	}
}
