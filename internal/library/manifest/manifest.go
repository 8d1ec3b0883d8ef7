// Package manifest implements YAML type libraries. A manifest declares
// types by name and binds each to a symbol the host registered in an
// sdk.Table, optionally gated on host-provided dependency versions.
//
//	apiVersion: typeloader/v1
//	kind: TypeLibrary
//	name: example.com/greeters
//	version: 1.2.0
//	requires:
//	  - name: example.com/runtime
//	    version: ">=1.0.0 <2.0.0"
//	types:
//	  - name: Hello
//	    symbol: greeters.Hello
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	semver "github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"

	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

const (
	APIVersion = "typeloader/v1"
	Kind       = "TypeLibrary"

	// maxSize bounds how much of a candidate is read while probing.
	maxSize = 1 << 20
)

// Requirement gates a library or type on a host-provided module. Version is
// a semver range; empty accepts any version.
type Requirement struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// TypeDecl declares one exported type. Symbol defaults to Name.
type TypeDecl struct {
	Name     string        `yaml:"name"`
	Symbol   string        `yaml:"symbol,omitempty"`
	Requires []Requirement `yaml:"requires,omitempty"`
}

// Document is a parsed manifest.
type Document struct {
	APIVersion string        `yaml:"apiVersion"`
	Kind       string        `yaml:"kind"`
	Name       string        `yaml:"name"`
	Version    string        `yaml:"version,omitempty"`
	Requires   []Requirement `yaml:"requires,omitempty"`
	Types      []TypeDecl    `yaml:"types"`
}

// Parse decodes a manifest. Input that is not YAML, or YAML without the
// manifest header, returns library.ErrFormatMismatch. A document with the
// header whose body does not decode returns a plain error.
func Parse(r io.Reader) (Document, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return Document{}, err
	}
	if len(b) > maxSize || bytes.IndexByte(b, 0) >= 0 {
		return Document{}, library.ErrFormatMismatch
	}
	var head struct {
		APIVersion string `yaml:"apiVersion"`
		Kind       string `yaml:"kind"`
	}
	if err := yaml.Unmarshal(b, &head); err != nil {
		if declaresHeader(b) {
			return Document{}, fmt.Errorf("malformed manifest: %w", err)
		}
		return Document{}, fmt.Errorf("%w: %v", library.ErrFormatMismatch, err)
	}
	if head.APIVersion != APIVersion || head.Kind != Kind {
		return Document{}, library.ErrFormatMismatch
	}
	// A manifest with a valid header and broken body is reported, not skipped.
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("malformed manifest: %w", err)
	}
	return doc, nil
}

// declaresHeader reports whether b carries both header lines at the top
// level, for input the YAML decoder rejects outright.
func declaresHeader(b []byte) bool {
	var api, kind bool
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimRight(line, " \r")
		switch line {
		case "apiVersion: " + APIVersion:
			api = true
		case "kind: " + Kind:
			kind = true
		}
	}
	return api && kind
}

func parseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Identity validates the header fields that name the library.
func (d Document) Identity() (types.Identity, error) {
	if d.Name == "" {
		return types.Identity{}, fmt.Errorf("manifest has no name")
	}
	if d.Version != "" {
		if _, err := semver.ParseTolerant(d.Version); err != nil {
			return types.Identity{}, fmt.Errorf("manifest %s: invalid version %q: %w", d.Name, d.Version, err)
		}
	}
	return types.Identity{Name: d.Name, Version: d.Version}, nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc Document) error {
	if doc.APIVersion == "" {
		doc.APIVersion = APIVersion
	}
	if doc.Kind == "" {
		doc.Kind = Kind
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

var _ library.Format = (*Format)(nil)

// Format resolves manifests against an sdk.Table.
type Format struct {
	table *sdk.Table
}

// New returns the manifest format for table, or sdk.Default when nil.
func New(table *sdk.Table) *Format {
	if table == nil {
		table = sdk.Default
	}
	return &Format{table: table}
}

func (*Format) Name() string       { return "manifest" }
func (*Format) Suffixes() []string { return []string{".typelib"} }

func (f *Format) Probe(path string) (types.Identity, error) {
	doc, err := parseFile(path)
	if err != nil {
		return types.Identity{}, err
	}
	return doc.Identity()
}

// Open binds every declared type. Library-level requirements apply to all
// types; a type fails when its symbol is not registered or any requirement
// is unmet.
func (f *Format) Open(path string, _ types.Identity) (library.Contents, error) {
	doc, err := parseFile(path)
	if err != nil {
		return library.Contents{}, err
	}
	libTrace, libErr := f.resolve(doc.Requires)

	var c library.Contents
	for i, decl := range doc.Types {
		if decl.Name == "" {
			c.Causes = append(c.Causes, types.Cause{Message: fmt.Sprintf("type #%d has no name", i+1)})
			continue
		}
		if libErr != nil {
			c.Causes = append(c.Causes, types.Cause{
				Type:    decl.Name,
				Message: fmt.Sprintf("type %s: %v", decl.Name, libErr),
				Trace:   libTrace,
			})
			continue
		}
		trace, err := f.resolve(decl.Requires)
		if err != nil {
			c.Causes = append(c.Causes, types.Cause{
				Type:    decl.Name,
				Message: fmt.Sprintf("type %s: %v", decl.Name, err),
				Trace:   joinTrace(libTrace, trace),
			})
			continue
		}
		symbol := decl.Symbol
		if symbol == "" {
			symbol = decl.Name
		}
		sym, ok := f.table.Lookup(symbol)
		if !ok {
			c.Causes = append(c.Causes, types.Cause{
				Type:    decl.Name,
				Message: fmt.Sprintf("type %s: symbol %q is not registered by the host", decl.Name, symbol),
				Trace:   joinTrace(libTrace, trace, fmt.Sprintf("looking up symbol %s: not found", symbol)),
			})
			continue
		}
		c.Exports = append(c.Exports, library.Export{Name: decl.Name, Type: sym.Type, New: sym.New})
	}
	return c, nil
}

func joinTrace(parts ...string) string {
	var b bytes.Buffer
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}
