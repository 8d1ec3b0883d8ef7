//go:build !cgo || !(linux || darwin || freebsd)

package native

import (
	"errors"

	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
)

// Supported reports whether this build can open native plugins.
const Supported = false

var errUnsupported = errors.New("native plugins require a cgo build on linux, darwin or freebsd")

// Open always fails on this build.
func (f *Format) Open(path string, _ types.Identity) (library.Contents, error) {
	return library.Contents{}, &library.OpenError{Err: errUnsupported, Trace: f.openTrace(path)}
}
