package parser

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// parsePipeDelimited handles one-customer-per-line pipe rows: every segment
// between pipes is content-sniffed independently and merged into one record.
func (p *Parser) parsePipeDelimited(lines []numberedLine, result *model.ParseResult) []*model.RecordBuilder {
	var out []*model.RecordBuilder
	for _, ln := range lines {
		t := strings.Trim(strings.TrimSpace(ln.text), "|")
		if t == "" || isSummaryLine(t) {
			continue
		}

		b := &model.RecordBuilder{}
		for _, segment := range strings.Split(t, "|") {
			sniffCell(b, segment)
		}

		if !b.HasMinimumFields() {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: no recognizable fields", ln.num))
			continue
		}
		out = append(out, b)
	}
	return out
}
