package report

import (
	"encoding/json"
	"os"

	"github.com/typeloader/typeloader/internal/types"
)

// Baseline records known load failures so later scans report only new ones.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return b, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, failures []*types.LoadFailure) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range failures {
		b.Items[key(f)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// FilterNewFailures drops failures already recorded in base.
func FilterNewFailures(failures []*types.LoadFailure, base Baseline) []*types.LoadFailure {
	var out []*types.LoadFailure
	for _, f := range failures {
		if !base.Items[key(f)] {
			out = append(out, f)
		}
	}
	return out
}

// key ignores messages so reworded causes stay baselined.
func key(f *types.LoadFailure) string {
	return f.Path + "|" + string(f.Kind) + "|" + f.Library.String()
}
