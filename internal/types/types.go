package types

import (
	"fmt"
	"path/filepath"
)

// FailureKind classifies why a candidate library did not load cleanly.
type FailureKind string

const (
	// FormatMismatch marks a file that is not a library of any known format.
	// It is never reported; the candidate is skipped.
	FormatMismatch FailureKind = "format-mismatch"
	// PartialTypeLoad marks a library of a known format where one or more
	// declared types could not be resolved.
	PartialTypeLoad FailureKind = "partial-type-load"
	// FatalIO marks an inaccessible scan root. It aborts the scan.
	FatalIO FailureKind = "fatal-io"
)

// Identity names a library independently of the file it was found in.
type Identity struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String returns name@version, the key used by the load registry.
func (id Identity) String() string {
	if id.Version == "" {
		return id.Name
	}
	return id.Name + "@" + id.Version
}

// IsZero reports whether no identity was read.
func (id Identity) IsZero() bool { return id.Name == "" && id.Version == "" }

// Cause is one nested reason for a load failure, usually one unresolved type.
type Cause struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	// Trace is the optional resolution log for this cause.
	Trace string `json:"trace,omitempty"`
}

// LoadFailure describes a candidate or root that could not be fully loaded.
type LoadFailure struct {
	Kind    FailureKind `json:"kind"`
	Path    string      `json:"path"`
	Library Identity    `json:"library,omitempty"`
	Message string      `json:"message"`
	Causes  []Cause     `json:"causes,omitempty"`
	// Trace is extended diagnostic text that applies to the whole failure.
	Trace string `json:"trace,omitempty"`
}

// Error implements the error interface.
func (f *LoadFailure) Error() string {
	if f.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", filepath.Base(f.Path), f.Message, f.Kind)
	}
	return fmt.Sprintf("%s (%s)", f.Message, f.Kind)
}

// Fatal reports whether the failure aborts the whole scan.
func (f *LoadFailure) Fatal() bool { return f.Kind == FatalIO }

// UnresolvedTypes returns the type names of every cause that names one.
func (f *LoadFailure) UnresolvedTypes() []string {
	var out []string
	for _, c := range f.Causes {
		if c.Type != "" {
			out = append(out, c.Type)
		}
	}
	return out
}
