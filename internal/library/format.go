package library

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/typeloader/typeloader/internal/types"
)

// ErrFormatMismatch is returned by Format.Probe for files that are not
// libraries of that format. It is not a load failure.
var ErrFormatMismatch = errors.New("not a library of this format")

// Format is one kind of loadable library.
type Format interface {
	// Name identifies the format in diagnostics ("native", "manifest").
	Name() string
	// Suffixes are the file suffixes the format claims.
	Suffixes() []string
	// Probe reads the library identity without loading it. It returns
	// ErrFormatMismatch (possibly wrapped) for foreign files.
	Probe(path string) (types.Identity, error)
	// Open loads the library and enumerates its exported types. Types that
	// fail to resolve are reported as causes alongside the ones that did.
	// An error means nothing could be loaded; wrap it in *OpenError to
	// attach a resolution trace.
	Open(path string, id types.Identity) (Contents, error)
}

// Export is one type a library exposes.
type Export struct {
	Name string
	Type reflect.Type
	// New returns an instance, or is nil when the library gave no factory.
	New func() any
}

// Contents is what Format.Open loaded.
type Contents struct {
	Exports []Export
	Causes  []types.Cause
}

// OpenError is a whole-library load error with an extended trace.
type OpenError struct {
	Err   error
	Trace string
}

func (e *OpenError) Error() string { return e.Err.Error() }

func (e *OpenError) Unwrap() error { return e.Err }

// Library is a loaded library. It stays resident for the process lifetime.
type Library struct {
	Identity types.Identity
	Format   string
	Path     string
	Exports  []Export
}

func claims(f Format, path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, s := range f.Suffixes() {
		if strings.HasSuffix(base, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
