package security

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator(cfg Config) (*Validator, *AuditLog) {
	audit := NewAuditLog(24 * time.Hour)
	return NewValidator(cfg, audit), audit
}

func TestValidateCleanInput(t *testing.T) {
	v, audit := testValidator(Config{})

	vr, err := v.Validate(context.Background(), "just some notes from the field", nil)
	require.NoError(t, err)

	assert.True(t, vr.IsValid)
	assert.Equal(t, "just some notes from the field", vr.SanitizedData)
	assert.Empty(t, vr.Warnings)
	assert.Empty(t, vr.Errors)
	assert.Equal(t, 1, audit.Len())
}

func TestValidateSizeCap(t *testing.T) {
	v, audit := testValidator(Config{MaxInputBytes: 100})

	vr, err := v.Validate(context.Background(), strings.Repeat("x", 101), nil)
	require.NoError(t, err)

	assert.False(t, vr.IsValid)
	assert.Empty(t, vr.SanitizedData)
	require.Len(t, vr.Errors, 1)
	assert.Equal(t, "input rejected: 101 bytes exceeds limit of 100", vr.Errors[0])

	// Rejections are audited too.
	entries := audit.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
}

func TestValidateRedactsSensitiveData(t *testing.T) {
	v, _ := testValidator(Config{})

	vr, err := v.Validate(context.Background(), "ssn on file: 123-45-6789", nil)
	require.NoError(t, err)

	assert.True(t, vr.IsValid)
	assert.Contains(t, vr.SanitizedData, "XXX-XX-XXXX")
	assert.NotContains(t, vr.SanitizedData, "123-45-6789")
	require.Len(t, vr.Warnings, 1)
	assert.Equal(t, "sensitive data redacted (risk HIGH)", vr.Warnings[0])
	assert.Equal(t, RiskHigh, vr.PIIAnalysis.RiskLevel)
}

func TestValidateMediumRiskWarning(t *testing.T) {
	v, _ := testValidator(Config{})

	vr, err := v.Validate(context.Background(), "reach john.smith@example.com", nil)
	require.NoError(t, err)

	assert.True(t, vr.IsValid)
	assert.Equal(t, "reach j********h@example.com", vr.SanitizedData)
	require.Len(t, vr.Warnings, 1)
	assert.Equal(t, "sensitive data redacted (risk MEDIUM)", vr.Warnings[0])
}

func TestValidateLowRiskLeftIntact(t *testing.T) {
	v, _ := testValidator(Config{})

	in := "customer lives at 123 Main St"
	vr, err := v.Validate(context.Background(), in, nil)
	require.NoError(t, err)

	assert.True(t, vr.IsValid)
	assert.Equal(t, in, vr.SanitizedData)
	assert.Empty(t, vr.Warnings)
}

func TestValidateRejectsMaliciousContent(t *testing.T) {
	v, _ := testValidator(Config{})

	vr, err := v.Validate(context.Background(), "<script>alert(1)</script>", nil)
	require.NoError(t, err)

	assert.False(t, vr.IsValid)
	assert.Empty(t, vr.SanitizedData)
	require.Len(t, vr.Errors, 1)
	assert.Contains(t, vr.Errors[0], "script tag")
}

func TestValidateRecordsClientMeta(t *testing.T) {
	v, audit := testValidator(Config{})

	meta := map[string]string{"remote_addr": "10.0.0.1"}
	_, err := v.Validate(context.Background(), "hello", meta)
	require.NoError(t, err)

	entries := audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.1", entries[0].ClientMeta["remote_addr"])
	assert.Equal(t, HashInput("hello"), entries[0].InputHash)
}

func TestValidateCancelledContext(t *testing.T) {
	v, audit := testValidator(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vr, err := v.Validate(ctx, "hello", nil)
	assert.Error(t, err)
	assert.Nil(t, vr)
	assert.Zero(t, audit.Len())
}
