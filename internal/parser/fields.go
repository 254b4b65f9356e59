package parser

import "regexp"

// FieldType names one semantic field the extractor tables can pull out of a
// text fragment.
type FieldType string

const (
	FieldEmail       FieldType = "EMAIL"
	FieldPhone       FieldType = "PHONE"
	FieldName        FieldType = "NAME"
	FieldAddress     FieldType = "ADDRESS"
	FieldDate        FieldType = "DATE"
	FieldTime        FieldType = "TIME"
	FieldLeadSize    FieldType = "LEAD_SIZE"
	FieldOrderNumber FieldType = "ORDER_NUMBER"
)

// fieldPattern is one regex attempt for a field. Patterns are tried in order;
// the first capture group wins, or the whole match when the pattern has no
// groups.
type fieldPattern struct {
	re *regexp.Regexp
}

// fieldWeights are the fixed per-field confidence contributions. These are a
// contract with downstream consumers; do not retune them.
var fieldWeights = map[FieldType]int{
	FieldEmail:   30,
	FieldName:    25,
	FieldPhone:   25,
	FieldAddress: 15,
	FieldDate:    3,
	FieldTime:    2,
}

// fieldPatterns maps each field type to its ordered pattern cascade. The
// patterns are deliberately permissive and overlapping: real pasted input
// never has one canonical shape, so redundancy is the accuracy lever.
var fieldPatterns = map[FieldType][]fieldPattern{
	FieldEmail: {
		{re: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	},
	FieldPhone: {
		{re: regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)},
		{re: regexp.MustCompile(`\+1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)},
		{re: regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`)},
		{re: regexp.MustCompile(`\b\d{3}\s\d{3}\s\d{4}\b`)},
		{re: regexp.MustCompile(`\b\d{10}\b`)},
	},
	FieldName: {
		{re: regexp.MustCompile(`(?i)(?:customer|client|name)\s*[:\-]\s*([A-Za-z][A-Za-z .'\-]{1,60})`)},
		{re: regexp.MustCompile(`[✓✔☑√]\s*([A-Z][a-z'\-]+(?:\s+[A-Z][a-z'\-]+)*)`)},
		{re: regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z'\-]+){1,2})\b`)},
	},
	FieldAddress: {
		{re: regexp.MustCompile(`(?i)(?:service\s+address|install\s+address|address|addr)\s*[:\-]\s*(.{4,100})`)},
		{re: regexp.MustCompile(`\b\d{1,6}\s+[A-Za-z][A-Za-z0-9 .]*\s(?:St|Street|Ave|Avenue|Rd|Road|Dr|Drive|Ln|Lane|Blvd|Boulevard|Ct|Court|Way|Pl|Place|Cir|Circle|Ter|Terrace|Pkwy|Parkway)\b\.?(?:,?\s*(?:Apt|Unit|Suite|Ste|#)\.?\s*\w+)?`)},
	},
	FieldDate: {
		{re: regexp.MustCompile(`(?i)\b(?:mon|tues?|wednes|thurs?|fri|satur|sun)day,?\s+(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)},
		{re: regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)},
		{re: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
		{re: regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)},
	},
	FieldTime: {
		{re: regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)\b`)},
		{re: regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:am|pm)\b`)},
		{re: regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)},
	},
	FieldLeadSize: {
		{re: regexp.MustCompile(`(?i)\b(500\s*m(?:b|bps|eg)[a-z]*|[12]\s*g(?:ig|b|bps)?[a-z]*)\b`)},
	},
	FieldOrderNumber: {
		{re: regexp.MustCompile(`(?i)(?:order|ord|confirmation|conf)\s*(?:number|num|no|#)?\s*[:\-#]\s*([A-Za-z0-9][A-Za-z0-9\-]{3,})`)},
		{re: regexp.MustCompile(`\b([A-Z]{2,4}-?\d{5,10})\b`)},
	},
}

// ExtractField tries each pattern for fieldType against text in priority
// order and returns the first hit, or "" when nothing matches. It never
// errors; absence is left to the caller's fallback logic.
func ExtractField(fieldType FieldType, text string) string {
	for _, p := range fieldPatterns[fieldType] {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return trimField(m[1])
		}
		return trimField(m[0])
	}
	return ""
}

// ExtractAll returns every match of the field's first pattern in text.
// Used by the free-text strategy to harvest all email addresses.
func ExtractAll(fieldType FieldType, text string) []string {
	patterns := fieldPatterns[fieldType]
	if len(patterns) == 0 {
		return nil
	}
	return patterns[0].re.FindAllString(text, -1)
}

// FindFieldIndex returns the byte offset of the first match of the field's
// first pattern at or after start, or -1.
func FindFieldIndex(fieldType FieldType, text string, start int) int {
	patterns := fieldPatterns[fieldType]
	if len(patterns) == 0 || start >= len(text) {
		return -1
	}
	loc := patterns[0].re.FindStringIndex(text[start:])
	if loc == nil {
		return -1
	}
	return start + loc[0]
}
