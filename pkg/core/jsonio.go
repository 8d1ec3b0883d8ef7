package core

import (
	"encoding/json"
	"io"
	"sort"
)

// MatchJSON is the serialized form of a Match.
type MatchJSON struct {
	Library Identity `json:"library"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Pointer bool     `json:"pointer,omitempty"`
	Path    string   `json:"path"`
}

// ResultJSON is the serialized form of a Result.
type ResultJSON struct {
	Matches    []MatchJSON    `json:"matches"`
	Failures   []*LoadFailure `json:"failures"`
	Candidates int            `json:"candidates"`
	Libraries  int            `json:"libraries"`
	Skipped    int            `json:"skipped"`
	Reused     int            `json:"reused"`
	DurationMS int64          `json:"duration_ms"`
}

// ToJSON converts r, sorting matches by library and name.
func ToJSON(r Result) ResultJSON {
	out := ResultJSON{
		Matches:    make([]MatchJSON, 0, len(r.Matches)),
		Failures:   append([]*LoadFailure{}, r.Failures...),
		Candidates: r.Candidates,
		Libraries:  r.Libraries,
		Skipped:    r.Skipped,
		Reused:     r.Reused,
		DurationMS: r.Duration.Milliseconds(),
	}
	for _, m := range r.Matches {
		mj := MatchJSON{Library: m.Library, Name: m.Name, Pointer: m.Pointer, Path: m.Path}
		if m.Type != nil {
			mj.Type = m.Type.String()
		}
		out.Matches = append(out.Matches, mj)
	}
	sort.Slice(out.Matches, func(i, j int) bool {
		a, b := out.Matches[i], out.Matches[j]
		if a.Library == b.Library {
			return a.Name < b.Name
		}
		return a.Library.String() < b.Library.String()
	})
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].Path < out.Failures[j].Path })
	return out
}

// MarshalResult pretty-prints r as JSON for humans or pipelines.
func MarshalResult(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToJSON(r))
}

// UnmarshalResult decodes result JSON, useful for ingestion tests.
func UnmarshalResult(r io.Reader) (ResultJSON, error) {
	var out ResultJSON
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
