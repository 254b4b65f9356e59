package parser

import (
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// parseSalesReport handles rep-written weekly reports: a checkmark or bullet
// glyph opens a new customer block, and every following line feeds the same
// record until the next glyph. Known header/summary lines are skipped. A
// block is only emitted when it has a name and at least one of email, phone,
// or address.
func (p *Parser) parseSalesReport(lines []numberedLine, result *model.ParseResult) []*model.RecordBuilder {
	var out []*model.RecordBuilder
	var cur *model.RecordBuilder

	flush := func() {
		if cur == nil {
			return
		}
		if cur.Name != "" && (cur.Email != "" || cur.Phone != "" || cur.ServiceAddress != "") {
			out = append(out, cur)
		}
		cur = nil
	}

	for _, ln := range lines {
		t := strings.TrimSpace(ln.text)
		if isSummaryLine(t) {
			continue
		}

		if checkmarkLineRe.MatchString(t) {
			flush()
			cur = &model.RecordBuilder{}
			fillFromText(cur, t)
			continue
		}

		// Text before the first glyph belongs to no customer.
		if cur == nil {
			continue
		}
		fillFromText(cur, t)
	}
	flush()

	return out
}
