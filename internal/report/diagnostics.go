package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/typeloader/typeloader/internal/types"
)

// TraceHeader introduces a resolution trace in Detail output.
const TraceHeader = "Resolution trace:"

// Summary returns a single line naming the failed candidate and the kind of
// failure.
func Summary(f *types.LoadFailure) string {
	if f == nil {
		return ""
	}
	name := filepath.Base(f.Path)
	if f.Kind == types.FatalIO {
		return fmt.Sprintf("could not scan %q: %s (%s)", name, f.Message, f.Kind)
	}
	return fmt.Sprintf("could not load %q as a plugin library (%s)", name, f.Kind)
}

// Detail lists every cause message in order. A cause with a trace is
// followed by it, and each cause ends with a blank line. A failure-level
// trace comes last.
func Detail(f *types.LoadFailure) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	if len(f.Causes) == 0 {
		b.WriteString(f.Message)
		b.WriteString("\n\n")
	}
	for _, c := range f.Causes {
		b.WriteString(c.Message)
		b.WriteByte('\n')
		writeTrace(&b, c.Trace)
		b.WriteByte('\n')
	}
	writeTrace(&b, f.Trace)
	return b.String()
}

func writeTrace(b *strings.Builder, trace string) {
	trace = strings.TrimRight(trace, "\n")
	if trace == "" {
		return
	}
	b.WriteString(TraceHeader)
	b.WriteByte('\n')
	b.WriteString(trace)
	b.WriteByte('\n')
}
