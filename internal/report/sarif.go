package report

import (
	"encoding/json"
	"io"

	"github.com/typeloader/typeloader/internal/types"
)

type sarif struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

var sarifRules = []types.FailureKind{types.PartialTypeLoad, types.FatalIO}

func kindToLevel(k types.FailureKind) string {
	if k == types.FatalIO {
		return "error"
	}
	return "warning"
}

// WriteSARIF writes load failures as SARIF 2.1.0, one result per failure.
func WriteSARIF(w io.Writer, failures []*types.LoadFailure, version string) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "typeloader", Version: version}},
		Results: []sarifResult{},
	}
	index := map[types.FailureKind]int{}
	for i, k := range sarifRules {
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: string(k)})
		index[k] = i
	}
	for _, f := range sortedFailures(failures) {
		run.Results = append(run.Results, sarifResult{
			RuleID:    string(f.Kind),
			RuleIndex: index[f.Kind],
			Level:     kindToLevel(f.Kind),
			Message:   sarifMessage{Text: Summary(f) + "\n" + Detail(f)},
			Locations: []sarifLoc{{PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: f.Path}}}},
		})
	}
	doc := sarif{Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
