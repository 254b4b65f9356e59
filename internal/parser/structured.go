package parser

import (
	"regexp"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// labelRule maps a "Label:" keyword to the field it populates. Rules are
// ordered: the first label match on a line wins.
type labelRule struct {
	re    *regexp.Regexp
	field FieldType
}

var labelRules = []labelRule{
	{re: regexp.MustCompile(`(?i)^\s*(?:customer|name)\s*[:\-]\s*(.+)$`), field: FieldName},
	{re: regexp.MustCompile(`(?i)^\s*e-?mail\s*[:\-]\s*(.+)$`), field: FieldEmail},
	{re: regexp.MustCompile(`(?i)^\s*(?:phone|tel(?:ephone)?|cell|mobile)\s*[:\-]\s*(.+)$`), field: FieldPhone},
	{re: regexp.MustCompile(`(?i)^\s*(?:service\s+)?addr(?:ess)?\s*[:\-]\s*(.+)$`), field: FieldAddress},
	{re: regexp.MustCompile(`(?i)^\s*(?:install(?:ation)?\s+)?date\s*[:\-]\s*(.+)$`), field: FieldDate},
	{re: regexp.MustCompile(`(?i)^\s*(?:install(?:ation)?\s+)?time\s*[:\-]\s*(.+)$`), field: FieldTime},
	{re: regexp.MustCompile(`(?i)^\s*(?:plan|size|speed|package)\s*[:\-]\s*(.+)$`), field: FieldLeadSize},
	{re: regexp.MustCompile(`(?i)^\s*order(?:\s*(?:number|num|no|#))?\s*[:\-]\s*(.+)$`), field: FieldOrderNumber},
}

var (
	newRecordLabelRe = regexp.MustCompile(`(?i)^\s*(?:customer|name)\s*[:\-]`)
	referralLabelRe  = regexp.MustCompile(`(?i)^\s*referr(?:al|ed)(?:\s+by)?\s*[:\-]\s*(.+)$`)
	notesLabelRe     = regexp.MustCompile(`(?i)^\s*notes?\s*[:\-]\s*(.+)$`)
)

// parseStructured handles explicit "Label: value" blocks. A new Customer:/
// Name: line closes the previous record, as does hitting one whose record is
// already complete.
func (p *Parser) parseStructured(lines []numberedLine, result *model.ParseResult) []*model.RecordBuilder {
	var out []*model.RecordBuilder
	cur := &model.RecordBuilder{}

	flush := func() {
		if cur.HasMinimumFields() {
			out = append(out, cur)
		}
		cur = &model.RecordBuilder{}
	}

	for _, ln := range lines {
		t := strings.TrimSpace(ln.text)
		if t == "" || isSummaryLine(t) {
			continue
		}

		if newRecordLabelRe.MatchString(t) && !cur.IsEmpty() {
			flush()
		}

		if m := referralLabelRe.FindStringSubmatch(t); m != nil {
			cur.IsReferral = true
			cur.ReferralSource = trimField(m[1])
			continue
		}
		if m := notesLabelRe.FindStringSubmatch(t); m != nil {
			cur.Notes = trimField(m[1])
			continue
		}

		matched := false
		for _, rule := range labelRules {
			if m := rule.re.FindStringSubmatch(t); m != nil {
				setBuilderField(cur, rule.field, m[1])
				matched = true
				break
			}
		}
		if !matched {
			// Unlabeled line inside a block still feeds the extractors.
			fillFromText(cur, t)
		}
	}
	flush()

	return out
}
