package native

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

func TestProbe_ForeignFiles(t *testing.T) {
	f := New()
	p := filepath.Join(t.TempDir(), "readme.so")
	require.NoError(t, os.WriteFile(p, []byte("not a shared object"), 0o644))
	_, err := f.Probe(p)
	assert.ErrorIs(t, err, library.ErrFormatMismatch)

	// the test binary is a Go executable, not a plugin
	exe, err := os.Executable()
	require.NoError(t, err)
	_, err = f.Probe(exe)
	assert.ErrorIs(t, err, library.ErrFormatMismatch)
}

func TestProbe_MissingFile(t *testing.T) {
	_, err := New().Probe(filepath.Join(t.TempDir(), "gone.so"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, library.ErrFormatMismatch))
}

func TestIdentityOf(t *testing.T) {
	tagged := &debug.BuildInfo{Path: "example.com/plugins/alpha", Main: debug.Module{Path: "example.com/plugins", Version: "v1.2.0"}}
	assert.Equal(t, types.Identity{Name: "example.com/plugins/alpha", Version: "v1.2.0"}, identityOf(tagged, "/x/alpha.so", "ignored"))

	devel := &debug.BuildInfo{Path: "command-line-arguments", Main: debug.Module{Version: "(devel)"}}
	assert.Equal(t, types.Identity{Name: "beta", Version: "devel+0123456789abcdef"}, identityOf(devel, "/x/beta.so", "0123456789abcdef"))
}

func TestBuildMode(t *testing.T) {
	assert.Equal(t, "exe", buildMode(&debug.BuildInfo{}))
	assert.Equal(t, "plugin", buildMode(&debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "-buildmode", Value: "plugin"}}}))
}

type greeter struct{}

func (greeter) PluginName() string { return "greeter" }

func TestContents(t *testing.T) {
	var plain greeter
	var iface sdk.Plugin
	syms := map[string]any{
		sdk.TypesSymbol: &[]string{"Greeter", "NewGreeter", "Iface", "Missing", "BadCtor"},
		"Greeter":       &plain,
		"NewGreeter":    func() *greeter { return &greeter{} },
		"Iface":         &iface,
		"BadCtor":       func(int) greeter { return greeter{} },
	}
	lookup := func(name string) (any, error) {
		s, ok := syms[name]
		if !ok {
			return nil, errors.New("symbol " + name + " not found")
		}
		return s, nil
	}

	c, err := contents(lookup)
	require.NoError(t, err)
	require.Len(t, c.Exports, 3)
	assert.Equal(t, reflect.TypeOf(greeter{}), c.Exports[0].Type)
	assert.IsType(t, &greeter{}, c.Exports[0].New())
	assert.Equal(t, reflect.TypeOf(&greeter{}), c.Exports[1].Type)
	assert.IsType(t, &greeter{}, c.Exports[1].New())
	assert.Equal(t, reflect.Interface, c.Exports[2].Type.Kind())
	assert.Nil(t, c.Exports[2].New)

	require.Len(t, c.Causes, 2)
	assert.Equal(t, "Missing", c.Causes[0].Type)
	assert.Equal(t, "BadCtor", c.Causes[1].Type)
}

type counter struct{ n int }

func (c *counter) PluginName() string { c.n++; return "counter" }

func TestExportOf(t *testing.T) {
	var plain greeter
	ptr := &counter{n: 7}
	ptrPtr := &ptr
	var iface sdk.Plugin
	plug, err := capability.Of[sdk.Plugin]()
	require.NoError(t, err)

	cases := []struct {
		name    string
		sym     any
		typ     reflect.Type
		match   bool
		wantErr string
	}{
		{name: "variable", sym: &plain, typ: reflect.TypeOf(greeter{}), match: true},
		{name: "pointer variable", sym: &ptr, typ: reflect.TypeOf(&counter{}), match: true},
		{name: "pointer to pointer", sym: &ptrPtr, typ: reflect.TypeOf(&ptr)},
		{name: "interface variable", sym: &iface, typ: sdk.TypeOf[sdk.Plugin]()},
		{name: "constructor", sym: func() *counter { return &counter{n: 1} }, typ: reflect.TypeOf(&counter{}), match: true},
		{name: "bad arity", sym: func(int) *counter { return nil }, wantErr: "constructor must be func() T"},
		{name: "interface constructor", sym: func() sdk.Plugin { return greeter{} }, wantErr: "constructor must return a concrete type"},
		{name: "plain value", sym: 42, wantErr: "unsupported kind int"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := exportOf("Sym", tc.sym)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.typ, e.Type)

			lib := &library.Library{Identity: types.Identity{Name: "p", Version: "1.0.0"}, Exports: []library.Export{e}}
			matches := capability.Filter(lib, plug)
			if !tc.match {
				assert.Empty(t, matches)
				return
			}
			require.Len(t, matches, 1)
			inst, err := capability.Instantiate[sdk.Plugin](matches[0])
			require.NoError(t, err)
			require.NotNil(t, inst)
			assert.NotPanics(t, func() { inst.PluginName() })
		})
	}
}

func TestExportOf_PointerLevelsAllocated(t *testing.T) {
	ptr := &counter{}
	ptrPtr := &ptr
	e, err := exportOf("Deep", &ptrPtr)
	require.NoError(t, err)
	v, ok := e.New().(**counter)
	require.True(t, ok)
	require.NotNil(t, *v)
	assert.Equal(t, 0, (*v).n)

	// the plugin's own variable is not handed out
	e, err = exportOf("Ptr", &ptr)
	require.NoError(t, err)
	assert.NotSame(t, ptr, e.New())
}

func TestContents_BadTypesSymbol(t *testing.T) {
	_, err := contents(func(string) (any, error) { return nil, errors.New("not found") })
	assert.ErrorContains(t, err, "does not export Types")

	_, err = contents(func(string) (any, error) { return &[]int{1}, nil })
	assert.ErrorContains(t, err, "want *[]string")
}

func TestDependencyTrace(t *testing.T) {
	host := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "example.com/host"},
		Deps: []*debug.Module{
			{Path: "example.com/a", Version: "v1.2.0"},
			{Path: "example.com/b", Version: "v1.0.0"},
			{Path: "example.com/c", Version: "v0.1.0", Replace: &debug.Module{Path: "../c", Version: "v0.2.0"}},
		},
	}
	plug := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Deps: []*debug.Module{
			{Path: "example.com/z", Version: "v0.0.1"},
			{Path: "example.com/b", Version: "v1.1.0"},
			{Path: "example.com/a", Version: "v1.2.0"},
			{Path: "example.com/c", Version: "v0.2.0"},
		},
	}
	want := "example.com/b: plugin requires v1.1.0, host has v1.0.0 (host is older)\n" +
		"example.com/z v0.0.1: not linked into host"
	assert.Equal(t, want, dependencyTrace(plug, host))

	plug.GoVersion = "go1.24.3"
	plug.Deps = nil
	assert.Equal(t, "toolchain: plugin built with go1.24.3, host built with go1.25.0", dependencyTrace(plug, host))

	plug.GoVersion = host.GoVersion
	assert.Equal(t, "plugin dependencies match the host build", dependencyTrace(plug, host))
	assert.Contains(t, dependencyTrace(plug, nil), "unavailable")
}

func TestOpen_TraceOnFailure(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.so")
	require.NoError(t, os.WriteFile(p, []byte("garbage"), 0o644))
	_, err := New().Open(p, types.Identity{Name: "x"})
	var oe *library.OpenError
	require.ErrorAs(t, err, &oe)
	assert.NotEmpty(t, oe.Trace)
}
