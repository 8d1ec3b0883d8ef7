package report

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/typeloader/typeloader/internal/types"
)

// Reporter receives load diagnostics. Implementations must be safe for
// concurrent use.
type Reporter interface {
	// ReportSummary receives one line per failure, at error severity.
	ReportSummary(text string)
	// ReportDetail receives the multi-line explanation, at debug severity.
	ReportDetail(text string)
}

// Report sends the summary and detail of f to r.
func Report(r Reporter, f *types.LoadFailure) {
	if r == nil || f == nil {
		return
	}
	r.ReportSummary(Summary(f))
	r.ReportDetail(Detail(f))
}

// LogReporter writes summaries at error level and details at debug level.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter wraps logger, or the charm default logger when nil.
func NewLogReporter(logger *log.Logger) LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return LogReporter{Logger: logger}
}

func (r LogReporter) ReportSummary(text string) { r.Logger.Error(text) }
func (r LogReporter) ReportDetail(text string)  { r.Logger.Debug(text) }

type discard struct{}

func (discard) ReportSummary(string) {}
func (discard) ReportDetail(string)  {}

// Discard drops all diagnostics.
var Discard Reporter = discard{}

// Recorder keeps every diagnostic in arrival order.
type Recorder struct {
	mu        sync.Mutex
	summaries []string
	details   []string
}

func (r *Recorder) ReportSummary(text string) {
	r.mu.Lock()
	r.summaries = append(r.summaries, text)
	r.mu.Unlock()
}

func (r *Recorder) ReportDetail(text string) {
	r.mu.Lock()
	r.details = append(r.details, text)
	r.mu.Unlock()
}

// Summaries returns the recorded summaries.
func (r *Recorder) Summaries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.summaries...)
}

// Details returns the recorded details.
func (r *Recorder) Details() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.details...)
}
