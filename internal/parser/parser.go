// Package parser implements the universal customer-data parser: a format
// classifier, per-format extraction strategies, and record completion with
// deterministic fallbacks and confidence scoring.
package parser

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intake/internal/model"
)

// Parser is the heuristic extraction engine. One Parse call is stateless from
// the caller's perspective; Now is injectable so the "+7 days" date fallback
// is testable without the wall clock.
type Parser struct {
	Now func() time.Time
}

// New returns a Parser using the wall clock.
func New() *Parser {
	return &Parser{Now: time.Now}
}

// summaryLineRe matches known report header/summary lines that never carry
// customer data.
var summaryKeywords = []string{
	"week ", "total sales:", "completed:", "cancels:", "monthly total", "orders",
}

func isSummaryLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// normalizeInput unifies line endings so every strategy sees \n-separated
// lines.
func normalizeInput(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// numberedLine pairs a line with its 1-based position in the original input,
// so extraction errors can reference the line the user pasted.
type numberedLine struct {
	num  int
	text string
}

// Parse runs the full heuristic chain: classify the format, run the matching
// strategy, complete and validate every record. It is a pure function of its
// input plus the injected clock.
func (p *Parser) Parse(raw string) *model.ParseResult {
	result := &model.ParseResult{
		Warnings: []string{},
		Errors:   []string{},
	}

	text := normalizeInput(raw)
	lines := strings.Split(text, "\n")

	var nonEmpty []numberedLine
	var sample []string
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			result.Metadata.EmptyLines++
			continue
		}
		if isSummaryLine(t) {
			result.Metadata.HeaderLines++
		}
		nonEmpty = append(nonEmpty, numberedLine{num: i + 1, text: l})
		sample = append(sample, l)
	}
	result.Metadata.TotalLines = len(lines)
	result.Metadata.DataLines = len(nonEmpty) - result.Metadata.HeaderLines

	if len(nonEmpty) == 0 {
		result.FormatDetected = model.FormatFreeText
		result.Confidence = 0
		result.Warnings = append(result.Warnings, "input is empty")
		return result
	}

	format, formatConf := DetectFormat(sample)
	result.FormatDetected = format

	var builders []*model.RecordBuilder
	switch format {
	case model.FormatSalesReport:
		builders = p.parseSalesReport(nonEmpty, result)
	case model.FormatSpreadsheet:
		builders = p.parseSpreadsheet(nonEmpty, result)
	case model.FormatPipeDelimited:
		builders = p.parsePipeDelimited(nonEmpty, result)
	case model.FormatStructured:
		builders = p.parseStructured(nonEmpty, result)
	case model.FormatMixed:
		builders = p.parseMixed(nonEmpty, result)
	default:
		builders = p.parseFreeText(text, result)
	}

	now := p.Now()
	fieldTotal := 0
	for i, b := range builders {
		rec := p.complete(b, i, now, result)
		fieldTotal += b.FieldCount()
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) > 0 {
		sum := 0
		for _, r := range result.Records {
			sum += r.Confidence
		}
		result.Confidence = sum / len(result.Records)
		result.Metadata.AvgFieldsPerLine = float64(fieldTotal) / float64(len(result.Records))
	} else {
		result.Confidence = formatConf
		if len(result.Errors) == 0 {
			result.Warnings = append(result.Warnings, "no customer records found")
		}
	}

	zap.L().Debug("parse complete",
		zap.String("format", string(format)),
		zap.Int("format_confidence", formatConf),
		zap.Int("records", len(result.Records)),
		zap.Int("errors", len(result.Errors)),
	)

	return result
}
