package security

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one security validation call. The raw input is never
// stored; only its one-way hash.
type AuditEntry struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	InputHash    string            `json:"input_hash"`
	ClientMeta   map[string]string `json:"client_meta,omitempty"`
	ProcessingMS int64             `json:"processing_ms"`
	Tokens       int               `json:"tokens,omitempty"`
	PIITypes     []PIIType         `json:"pii_types,omitempty"`
	Success      bool              `json:"success"`
	Errors       []string          `json:"errors,omitempty"`
}

// HashInput returns the hex SHA-256 of the input text.
func HashInput(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// AuditLog is a process-wide append-only log with a retention window.
// Appends are mutex-guarded so concurrent parse calls can share one log.
type AuditLog struct {
	mu        sync.Mutex
	entries   []AuditEntry
	retention time.Duration
	now       func() time.Time
}

// NewAuditLog creates a log that drops entries older than retention on each
// write. The clock is injectable for tests via SetClock.
func NewAuditLog(retention time.Duration) *AuditLog {
	return &AuditLog{retention: retention, now: time.Now}
}

// SetClock overrides the log's clock.
func (l *AuditLog) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Append adds an entry, assigning ID and timestamp when absent, then prunes
// entries outside the retention window.
func (l *AuditLog) Append(entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	l.entries = append(l.entries, entry)

	cutoff := l.now().Add(-l.retention)
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	l.entries = kept
}

// Entries returns a copy of the current entries.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the current entry count.
func (l *AuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// ComplianceReport aggregates audit activity over a window.
type ComplianceReport struct {
	WindowStart    time.Time       `json:"window_start"`
	WindowEnd      time.Time       `json:"window_end"`
	TotalCalls     int             `json:"total_calls"`
	FailedCalls    int             `json:"failed_calls"`
	PIIDetections  map[PIIType]int `json:"pii_detections"`
	TotalTokens    int             `json:"total_tokens"`
	AvgProcessMS   float64         `json:"avg_processing_ms"`
	DistinctInputs int             `json:"distinct_inputs"`
}

// Report summarizes entries whose timestamps fall inside the last window.
func (l *AuditLog) Report(window time.Duration) ComplianceReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	end := l.now()
	start := end.Add(-window)
	report := ComplianceReport{
		WindowStart:   start,
		WindowEnd:     end,
		PIIDetections: make(map[PIIType]int),
	}

	inputs := make(map[string]bool)
	var totalMS int64
	for _, e := range l.entries {
		if e.Timestamp.Before(start) {
			continue
		}
		report.TotalCalls++
		if !e.Success {
			report.FailedCalls++
		}
		for _, t := range e.PIITypes {
			report.PIIDetections[t]++
		}
		report.TotalTokens += e.Tokens
		totalMS += e.ProcessingMS
		inputs[e.InputHash] = true
	}
	report.DistinctInputs = len(inputs)
	if report.TotalCalls > 0 {
		report.AvgProcessMS = float64(totalMS) / float64(report.TotalCalls)
	}

	return report
}
