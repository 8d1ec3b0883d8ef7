package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

type greeter struct{}

func (greeter) PluginName() string { return "greeter" }

func testMatches(t *testing.T) []capability.Match {
	t.Helper()
	c, err := capability.Of[sdk.Plugin]()
	require.NoError(t, err)
	lib := &library.Library{
		Identity: types.Identity{Name: "greeters", Version: "1.0.0"},
		Path:     "/plugins/greeters.typelib",
		Exports:  []library.Export{{Name: "Hello", Type: reflect.TypeOf(greeter{})}},
	}
	return capability.Filter(lib, c)
}

var testFailures = []*types.LoadFailure{
	{Kind: types.PartialTypeLoad, Path: "/plugins/c.typelib", Library: types.Identity{Name: "gamma"}, Message: "1 of 2 types could not be loaded"},
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, testMatches(t), testFailures, PrintOptions{NoColor: true, Candidates: 3, Libraries: 2, Duration: 1500 * time.Millisecond})
	out := buf.String()
	assert.Contains(t, out, "Matches: 1\n")
	assert.Contains(t, out, "greeters@1.0.0:Hello")
	assert.Contains(t, out, "partial-type-load c.typelib  1 of 2 types could not be loaded")
	assert.Contains(t, out, "Candidates: 3, libraries: 2")
	assert.Contains(t, out, "Scan duration: 1.50s")
}

func TestPrintText_NoMatches(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, nil, nil, PrintOptions{})
	assert.Equal(t, "No matching types found\n", buf.String())
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, testMatches(t), testFailures, PrintOptions{NoColor: true})
	out := buf.String()
	assert.Contains(t, out, "greeters@1.0.0")
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "c.typelib")
	assert.Contains(t, out, "partial-type-load")
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, testFailures, "test"))
	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	require.Len(t, doc.Runs[0].Results, 1)
	assert.Equal(t, "partial-type-load", doc.Runs[0].Results[0].RuleID)
	assert.Equal(t, 0, doc.Runs[0].Results[0].RuleIndex)
	assert.Equal(t, "warning", doc.Runs[0].Results[0].Level)
}

func TestBaseline(t *testing.T) {
	p := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, SaveBaseline(p, testFailures))
	base, err := LoadBaseline(p)
	require.NoError(t, err)

	fresh := &types.LoadFailure{Kind: types.PartialTypeLoad, Path: "/plugins/d.typelib"}
	reworded := *testFailures[0]
	reworded.Message = "something else"
	got := FilterNewFailures([]*types.LoadFailure{&reworded, fresh}, base)
	assert.Equal(t, []*types.LoadFailure{fresh}, got)

	_, err = LoadBaseline(p + ".missing")
	assert.Error(t, err)
}

func TestReport_LogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	Report(NewLogReporter(logger), &types.LoadFailure{
		Kind:   types.PartialTypeLoad,
		Path:   "c.typelib",
		Causes: []types.Cause{{Message: "type X unresolved"}},
	})
	out := buf.String()
	assert.Contains(t, out, "ERRO")
	assert.Contains(t, out, `could not load "c.typelib" as a plugin library`)
	assert.Contains(t, out, "DEBU")
	assert.Contains(t, out, "type X unresolved")

	buf.Reset()
	logger.SetLevel(log.InfoLevel)
	Report(NewLogReporter(logger), &types.LoadFailure{Kind: types.PartialTypeLoad, Path: "d.typelib", Causes: []types.Cause{{Message: "hidden"}}})
	assert.NotContains(t, buf.String(), "hidden")
}

func TestRecorderConcurrent(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Report(&r, testFailures[0])
		}()
	}
	wg.Wait()
	assert.Len(t, r.Summaries(), 16)
	assert.Len(t, r.Details(), 16)
	Report(Discard, testFailures[0])
	Report(nil, testFailures[0])
	assert.True(t, strings.HasPrefix(r.Summaries()[0], "could not load"))
}
