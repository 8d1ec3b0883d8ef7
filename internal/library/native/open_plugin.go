//go:build cgo && (linux || darwin || freebsd)

package native

import (
	"plugin"

	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
)

// Supported reports whether this build can open native plugins.
const Supported = true

// Open loads the plugin into the process. A plugin cannot be unloaded.
func (f *Format) Open(path string, _ types.Identity) (library.Contents, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return library.Contents{}, &library.OpenError{Err: err, Trace: f.openTrace(path)}
	}
	return contents(func(name string) (any, error) {
		s, err := p.Lookup(name)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
