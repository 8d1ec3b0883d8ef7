// Package native loads Go plugins built with -buildmode=plugin.
//
// A plugin lists its types in an exported []string variable named
// sdk.TypesSymbol. Each entry names another exported symbol: either a
// variable, whose type is exported, or a func() T constructor, whose result
// type T is exported. T must be concrete; a constructor returning an
// interface is reported as an unresolved type.
package native

import (
	"debug/buildinfo"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/typeloader/typeloader/internal/cache"
	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

var _ library.Format = (*Format)(nil)

// Format is the native plugin format.
type Format struct {
	host func() (*debug.BuildInfo, bool)
}

// New returns the native format diffing load failures against the running
// binary's build info.
func New() *Format { return &Format{host: debug.ReadBuildInfo} }

func (*Format) Name() string       { return "native" }
func (*Format) Suffixes() []string { return []string{".so"} }

// Probe reads the plugin's embedded build info. Files that are not Go
// binaries, or are Go binaries built without -buildmode=plugin, mismatch.
func (f *Format) Probe(path string) (types.Identity, error) {
	info, err := readBuildInfo(path)
	if err != nil {
		return types.Identity{}, err
	}
	if buildMode(info) != "plugin" {
		return types.Identity{}, fmt.Errorf("%w: go binary built as %q", library.ErrFormatMismatch, buildMode(info))
	}
	fp := ""
	if isDevel(info.Main.Version) {
		if fp, err = cache.FingerprintFile(path); err != nil {
			return types.Identity{}, err
		}
	}
	return identityOf(info, path, fp), nil
}

func readBuildInfo(path string) (*debug.BuildInfo, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	info, err := buildinfo.Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", library.ErrFormatMismatch, err)
	}
	return info, nil
}

func buildMode(info *debug.BuildInfo) string {
	for _, s := range info.Settings {
		if s.Key == "-buildmode" {
			return s.Value
		}
	}
	return "exe"
}

func isDevel(v string) bool { return v == "" || v == "(devel)" }

// identityOf names a plugin after its main package. Untagged builds are
// versioned by content so that rebuilt plugins are not mistaken for loaded
// ones.
func identityOf(info *debug.BuildInfo, path, fingerprint string) types.Identity {
	name := info.Path
	if name == "" || name == "command-line-arguments" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	version := info.Main.Version
	if isDevel(version) {
		version = "devel+" + fingerprint
	}
	return types.Identity{Name: name, Version: version}
}

// exportOf converts a looked-up plugin symbol into an export.
func exportOf(name string, sym any) (library.Export, error) {
	v := reflect.ValueOf(sym)
	if !v.IsValid() {
		return library.Export{}, fmt.Errorf("symbol %s is nil", name)
	}
	t := v.Type()
	switch t.Kind() {
	case reflect.Func:
		if t.NumIn() != 0 || t.NumOut() != 1 {
			return library.Export{}, fmt.Errorf("symbol %s: constructor must be func() T, got %s", name, t)
		}
		if v.IsNil() {
			return library.Export{}, fmt.Errorf("symbol %s: nil constructor", name)
		}
		if t.Out(0).Kind() == reflect.Interface {
			return library.Export{}, fmt.Errorf("symbol %s: constructor must return a concrete type, got %s", name, t.Out(0))
		}
		return library.Export{
			Name: name,
			Type: t.Out(0),
			New:  func() any { return v.Call(nil)[0].Interface() },
		}, nil
	case reflect.Pointer:
		elem := t.Elem()
		e := library.Export{Name: name, Type: elem}
		switch elem.Kind() {
		case reflect.Interface:
		case reflect.Pointer:
			e.New = func() any { return sdk.Alloc(elem).Interface() }
		default:
			e.New = func() any { return reflect.New(elem).Interface() }
		}
		return e, nil
	default:
		return library.Export{}, fmt.Errorf("symbol %s has unsupported kind %s", name, t.Kind())
	}
}
