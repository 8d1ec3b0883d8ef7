package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/typeloader/typeloader/internal/capability"
	"github.com/typeloader/typeloader/internal/types"
)

type PrintOptions struct {
	NoColor    bool
	Duration   time.Duration
	Candidates int
	Libraries  int
}

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	fatalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

func sortedMatches(ms []capability.Match) []capability.Match {
	out := append([]capability.Match(nil), ms...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Library == out[j].Library {
			return out[i].Name < out[j].Name
		}
		return out[i].Library.String() < out[j].Library.String()
	})
	return out
}

func sortedFailures(fs []*types.LoadFailure) []*types.LoadFailure {
	out := append([]*types.LoadFailure(nil), fs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func receiver(m capability.Match) string {
	if m.Pointer {
		return "pointer"
	}
	return "value"
}

func kindLabel(k types.FailureKind, noColor bool) string {
	if noColor {
		return string(k)
	}
	if k == types.FatalIO {
		return fatalStyle.Render(string(k))
	}
	return partialStyle.Render(string(k))
}

// PrintText writes one line per match and failure.
func PrintText(w io.Writer, matches []capability.Match, failures []*types.LoadFailure, opts PrintOptions) {
	ms := sortedMatches(matches)
	if len(ms) == 0 {
		fmt.Fprintln(w, "No matching types found")
	} else {
		fmt.Fprintf(w, "Matches: %d\n", len(ms))
		for _, m := range ms {
			fmt.Fprintf(w, "%-7s %s  %s\n", receiver(m), m, m.Path)
		}
	}
	for _, f := range sortedFailures(failures) {
		fmt.Fprintf(w, "%s %s  %s\n", kindLabel(f.Kind, opts.NoColor), filepath.Base(f.Path), f.Message)
	}
	printFooter(w, len(ms), len(failures), opts)
}

// PrintTable renders matches and failures as tables.
func PrintTable(w io.Writer, matches []capability.Match, failures []*types.LoadFailure, opts PrintOptions) {
	ms := sortedMatches(matches)
	if len(ms) == 0 {
		fmt.Fprintln(w, "No matching types found")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Library", "Type", "Receiver", "Path")
		for _, m := range ms {
			_ = table.Append(m.Library.String(), m.Name, receiver(m), m.Path)
		}
		_ = table.Render()
	}
	if len(failures) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.Header("Kind", "File", "Library", "Message")
		for _, f := range sortedFailures(failures) {
			_ = table.Append(string(f.Kind), filepath.Base(f.Path), f.Library.String(), f.Message)
		}
		_ = table.Render()
	}
	printFooter(w, len(ms), len(failures), opts)
}

func printFooter(w io.Writer, matches, failures int, opts PrintOptions) {
	if opts.Duration <= 0 && opts.Candidates <= 0 {
		return
	}
	fmt.Fprintln(w)
	status := fmt.Sprintf("Matches: %d, failures: %d", matches, failures)
	if !opts.NoColor {
		if failures == 0 {
			status = okStyle.Render(status)
		} else {
			status = partialStyle.Render(status)
		}
	}
	fmt.Fprintln(w, status)
	if opts.Candidates > 0 {
		fmt.Fprintf(w, "Candidates: %d, libraries: %d\n", opts.Candidates, opts.Libraries)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}
