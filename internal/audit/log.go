package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/typeloader/typeloader/internal/types"
)

// DefaultFile is the audit log name used when only a directory is known.
const DefaultFile = ".typeloader_audit.jsonl"

type ScanRecord struct {
	Timestamp  time.Time                 `json:"timestamp"`
	ScanID     string                    `json:"scan_id"`
	Root       string                    `json:"root"`
	Capability string                    `json:"capability"`
	Candidates int                       `json:"candidates"`
	Libraries  int                       `json:"libraries"`
	Matches    int                       `json:"matches"`
	KindCounts map[types.FailureKind]int `json:"kind_counts"`
	Duration   string                    `json:"duration"`
	Failures   []FailureSummary          `json:"failures,omitempty"`
}

type FailureSummary struct {
	Path       string            `json:"path"`
	Kind       types.FailureKind `json:"kind"`
	Library    string            `json:"library,omitempty"`
	Unresolved []string          `json:"unresolved,omitempty"`
}

// AuditLog appends one JSON record per scan to a file.
type AuditLog struct {
	logPath string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{logPath: path}
}

func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns the recorded scans, newest first. Undecodable lines
// are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", record.Timestamp.UnixNano())
	}
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// CreateScanRecord summarises one scan. Traces are left out; they can be
// long and are already available through the reporter.
func CreateScanRecord(root, capability string, candidates, libraries, matches int, failures []*types.LoadFailure, duration time.Duration) ScanRecord {
	counts := make(map[types.FailureKind]int)
	summaries := make([]FailureSummary, 0, len(failures))
	for _, f := range failures {
		counts[f.Kind]++
		summaries = append(summaries, FailureSummary{
			Path:       f.Path,
			Kind:       f.Kind,
			Library:    f.Library.String(),
			Unresolved: f.UnresolvedTypes(),
		})
	}
	return ScanRecord{
		Timestamp:  time.Now(),
		Root:       root,
		Capability: capability,
		Candidates: candidates,
		Libraries:  libraries,
		Matches:    matches,
		KindCounts: counts,
		Duration:   duration.String(),
		Failures:   summaries,
	}
}
