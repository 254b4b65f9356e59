package parser

import (
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// freeTextWindow is how many characters of context around a discovered email
// are assumed to describe the same customer.
const freeTextWindow = 200

// parseFreeText handles narrative prose: every email address in the blob
// anchors one candidate customer, and the extractors run only over the
// surrounding context window.
func (p *Parser) parseFreeText(text string, result *model.ParseResult) []*model.RecordBuilder {
	emails := ExtractAll(FieldEmail, text)
	if len(emails) == 0 {
		result.Warnings = append(result.Warnings, "no email addresses found in input")
		return nil
	}

	seen := make(map[string]bool, len(emails))
	var out []*model.RecordBuilder
	searchFrom := 0
	for _, email := range emails {
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true

		pos := strings.Index(text[searchFrom:], email)
		if pos < 0 {
			pos = strings.Index(text, email)
		} else {
			pos += searchFrom
		}
		searchFrom = pos + len(email)

		start := pos - freeTextWindow
		if start < 0 {
			start = 0
		}
		end := pos + len(email) + freeTextWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]

		b := &model.RecordBuilder{Email: email}
		fillFromText(b, window)
		out = append(out, b)
	}
	return out
}
