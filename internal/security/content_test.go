package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanContentMaliciousPatterns(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{"script tag", "<script>alert(1)</script>", "script tag"},
		{"script tag with spaces", "< script src='x'>", "script tag"},
		{"javascript uri", "click javascript:alert(1)", "executable URI scheme"},
		{"data uri", "img data:text/html;base64,xxx", "executable URI scheme"},
		{"shell template", "name ${jndi:ldap://evil}", "template injection"},
		{"erb template", "<%= system('ls') %>", "template injection"},
		{"mustache template", "{{constructor.constructor}}", "template injection"},
		{"union select", "x UNION SELECT password FROM users", "SQL injection"},
		{"drop table", "Robert'); DROP TABLE students;--", "SQL injection"},
		{"tautology", "name' OR '1'='1", "SQL injection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := scanContent(tt.text, 0, 0)
			assert.Contains(t, reason, "input rejected")
			assert.Contains(t, reason, tt.reason)
		})
	}
}

func TestScanContentCleanInput(t *testing.T) {
	assert.Empty(t, scanContent("John Smith, john@example.com, 555-123-4567", 0, 0))
}

func TestScanContentLineLength(t *testing.T) {
	text := "ok line\n" + strings.Repeat("x", 101)
	reason := scanContent(text, 100, 0)
	assert.Equal(t, "input rejected: line 2 exceeds 100 characters", reason)

	assert.Empty(t, scanContent(strings.Repeat("x", 100), 100, 0))
}

func TestScanContentControlCharRatio(t *testing.T) {
	// Half the bytes are control characters; the default 10% threshold trips.
	text := "abcd" + strings.Repeat("\x01", 4)
	assert.Equal(t, "input rejected: excessive control characters", scanContent(text, 0, 0))

	// Newlines and tabs never count against the ratio.
	assert.Empty(t, scanContent("a\nb\tc\r\nd", 0, 0))
}
