package security

import (
	"fmt"
	"regexp"
	"strings"
)

// maliciousPatterns screen for content that should never reach a parser or a
// completion prompt: script tags, executable URI schemes, template-injection
// syntax, and SQL-injection shapes.
var maliciousPatterns = []struct {
	re   *regexp.Regexp
	desc string
}{
	{regexp.MustCompile(`(?i)<\s*script\b`), "script tag"},
	{regexp.MustCompile(`(?i)\b(?:javascript|vbscript|data)\s*:`), "executable URI scheme"},
	{regexp.MustCompile(`\$\{[^}]*\}`), "template injection"},
	{regexp.MustCompile(`<%.*?%>`), "template injection"},
	{regexp.MustCompile(`\{\{.*?\}\}`), "template injection"},
	{regexp.MustCompile(`(?i)\b(?:union\s+select|drop\s+table|insert\s+into|delete\s+from|truncate\s+table)\b`), "SQL injection"},
	{regexp.MustCompile(`(?i)'\s*or\s+'?1'?\s*=\s*'?1`), "SQL injection"},
}

// defaultMaxLineLength guards against single-line flooding.
const defaultMaxLineLength = 10000

// defaultControlCharRatio is the rejection threshold for non-printable bytes.
const defaultControlCharRatio = 0.10

// scanContent returns a rejection reason for malicious or degenerate input,
// or "" when the text is safe to parse.
func scanContent(text string, maxLineLength int, maxControlRatio float64) string {
	for _, p := range maliciousPatterns {
		if p.re.MatchString(text) {
			return fmt.Sprintf("input rejected: %s detected", p.desc)
		}
	}

	if maxLineLength <= 0 {
		maxLineLength = defaultMaxLineLength
	}
	for i, line := range strings.Split(text, "\n") {
		if len(line) > maxLineLength {
			return fmt.Sprintf("input rejected: line %d exceeds %d characters", i+1, maxLineLength)
		}
	}

	if maxControlRatio <= 0 {
		maxControlRatio = defaultControlCharRatio
	}
	if len(text) > 0 {
		control := 0
		for _, r := range text {
			if r == '\n' || r == '\r' || r == '\t' {
				continue
			}
			if r < 0x20 || r == 0x7f {
				control++
			}
		}
		if float64(control)/float64(len(text)) > maxControlRatio {
			return "input rejected: excessive control characters"
		}
	}

	return ""
}
