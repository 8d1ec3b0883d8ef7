package native

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	semver "github.com/blang/semver/v4"

	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

// contents resolves the symbols a plugin lists under sdk.TypesSymbol.
// Symbols that cannot be looked up or converted become per-type causes.
func contents(lookup func(string) (any, error)) (library.Contents, error) {
	sym, err := lookup(sdk.TypesSymbol)
	if err != nil {
		return library.Contents{}, fmt.Errorf("plugin does not export %s: %w", sdk.TypesSymbol, err)
	}
	names, ok := sym.(*[]string)
	if !ok {
		return library.Contents{}, fmt.Errorf("plugin symbol %s is %T, want *[]string", sdk.TypesSymbol, sym)
	}
	var c library.Contents
	for _, name := range *names {
		s, err := lookup(name)
		if err != nil {
			c.Causes = append(c.Causes, types.Cause{Type: name, Message: err.Error()})
			continue
		}
		e, err := exportOf(name, s)
		if err != nil {
			c.Causes = append(c.Causes, types.Cause{Type: name, Message: err.Error()})
			continue
		}
		c.Exports = append(c.Exports, e)
	}
	return c, nil
}

// openTrace explains a failed plugin.Open by comparing the plugin's
// dependencies with the host's.
func (f *Format) openTrace(path string) string {
	info, err := readBuildInfo(path)
	if err != nil {
		return "could not read plugin build info: " + err.Error()
	}
	var host *debug.BuildInfo
	if f.host != nil {
		host, _ = f.host()
	}
	return dependencyTrace(info, host)
}

func modVersion(m *debug.Module) string {
	for m.Replace != nil {
		m = m.Replace
	}
	return m.Version
}

// dependencyTrace lists every plugin dependency the host links at a
// different version or not at all, sorted by module path.
func dependencyTrace(plug, host *debug.BuildInfo) string {
	if host == nil {
		return "host build info unavailable; cannot compare plugin dependencies"
	}
	var b strings.Builder
	if plug.GoVersion != host.GoVersion {
		fmt.Fprintf(&b, "toolchain: plugin built with %s, host built with %s\n", plug.GoVersion, host.GoVersion)
	}
	have := map[string]string{host.Main.Path: modVersion(&host.Main)}
	for _, d := range host.Deps {
		have[d.Path] = modVersion(d)
	}
	deps := append([]*debug.Module(nil), plug.Deps...)
	sort.Slice(deps, func(i, j int) bool { return deps[i].Path < deps[j].Path })
	for _, d := range deps {
		want := modVersion(d)
		got, ok := have[d.Path]
		switch {
		case !ok:
			fmt.Fprintf(&b, "%s %s: not linked into host\n", d.Path, want)
		case got != want:
			fmt.Fprintf(&b, "%s: plugin requires %s, host has %s%s\n", d.Path, want, got, direction(want, got))
		}
	}
	if b.Len() == 0 {
		return "plugin dependencies match the host build"
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func direction(want, got string) string {
	w, err1 := semver.ParseTolerant(want)
	g, err2 := semver.ParseTolerant(got)
	if err1 != nil || err2 != nil {
		return ""
	}
	if g.LT(w) {
		return " (host is older)"
	}
	return " (host is newer)"
}
