package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashInput(t *testing.T) {
	h := HashInput("hello")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashInput("hello"))
	assert.NotEqual(t, h, HashInput("world"))
}

func TestAuditLogAppendAssignsIDAndTimestamp(t *testing.T) {
	log := NewAuditLog(24 * time.Hour)
	log.Append(AuditEntry{Action: "validate", InputHash: HashInput("x")})

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAuditLogRetentionPrune(t *testing.T) {
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	log := NewAuditLog(24 * time.Hour)
	log.SetClock(func() time.Time { return clock })

	log.Append(AuditEntry{Action: "validate"})
	assert.Equal(t, 1, log.Len())

	// 25 hours later the first entry falls outside the window.
	clock = base.Add(25 * time.Hour)
	log.Append(AuditEntry{Action: "validate"})

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, clock, entries[0].Timestamp)
}

func TestAuditLogEntriesReturnsCopy(t *testing.T) {
	log := NewAuditLog(time.Hour)
	log.Append(AuditEntry{Action: "validate"})

	entries := log.Entries()
	entries[0].Action = "tampered"
	assert.Equal(t, "validate", log.Entries()[0].Action)
}

func TestComplianceReport(t *testing.T) {
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	log := NewAuditLog(90 * 24 * time.Hour)
	log.SetClock(func() time.Time { return clock })

	log.Append(AuditEntry{
		InputHash:    HashInput("a"),
		ProcessingMS: 10,
		Tokens:       100,
		PIITypes:     []PIIType{PIIEmail, PIISSN},
		Success:      true,
	})
	log.Append(AuditEntry{
		InputHash:    HashInput("a"),
		ProcessingMS: 30,
		Tokens:       50,
		PIITypes:     []PIIType{PIIEmail},
		Success:      false,
	})
	log.Append(AuditEntry{
		InputHash:    HashInput("b"),
		ProcessingMS: 20,
		Success:      true,
	})

	report := log.Report(time.Hour)
	assert.Equal(t, 3, report.TotalCalls)
	assert.Equal(t, 1, report.FailedCalls)
	assert.Equal(t, 2, report.PIIDetections[PIIEmail])
	assert.Equal(t, 1, report.PIIDetections[PIISSN])
	assert.Equal(t, 150, report.TotalTokens)
	assert.InDelta(t, 20.0, report.AvgProcessMS, 0.001)
	assert.Equal(t, 2, report.DistinctInputs)
	assert.Equal(t, base.Add(-time.Hour), report.WindowStart)
	assert.Equal(t, base, report.WindowEnd)
}

func TestComplianceReportWindowExcludesOldEntries(t *testing.T) {
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	log := NewAuditLog(90 * 24 * time.Hour)
	log.SetClock(func() time.Time { return clock })

	log.Append(AuditEntry{InputHash: HashInput("old"), Success: true})

	clock = base.Add(2 * time.Hour)
	log.Append(AuditEntry{InputHash: HashInput("new"), Success: true})

	report := log.Report(time.Hour)
	assert.Equal(t, 1, report.TotalCalls)
	assert.Equal(t, 1, report.DistinctInputs)
}

func TestComplianceReportEmpty(t *testing.T) {
	log := NewAuditLog(time.Hour)
	report := log.Report(time.Hour)
	assert.Zero(t, report.TotalCalls)
	assert.Zero(t, report.AvgProcessMS)
	assert.NotNil(t, report.PIIDetections)
}
