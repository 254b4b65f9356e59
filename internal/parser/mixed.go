package parser

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// mixedDelimiters are the candidate splits the mixed strategy tries per line.
// The empty string means "no split at all".
var mixedDelimiters = []string{",", "\t", "|", ";", " - ", ""}

// parseMixed handles inputs with no consistent shape. Each line is parsed
// once per candidate delimiter, every candidate parse is scored with the
// fixed field rubric, and the highest-scoring parse wins for that line. This
// is a per-line local optimization: adjacent lines of one logical record may
// pick different delimiters, and no cross-line reconciliation is attempted.
func (p *Parser) parseMixed(lines []numberedLine, result *model.ParseResult) []*model.RecordBuilder {
	var out []*model.RecordBuilder
	for _, ln := range lines {
		t := strings.TrimSpace(ln.text)
		if t == "" || isSummaryLine(t) {
			continue
		}

		var best *model.RecordBuilder
		bestScore := -1
		for _, delim := range mixedDelimiters {
			b := &model.RecordBuilder{}
			if delim == "" {
				fillFromText(b, t)
			} else {
				for _, segment := range strings.Split(t, delim) {
					sniffCell(b, segment)
				}
			}
			if s := scoreBuilder(b); s > bestScore {
				best = b
				bestScore = s
			}
		}

		if bestScore <= 0 || !best.HasMinimumFields() {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: no recognizable fields", ln.num))
			continue
		}
		out = append(out, best)
	}
	return out
}
