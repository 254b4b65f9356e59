package parser

import (
	"regexp"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// formatSampleLines is how many lines the classifier inspects.
const formatSampleLines = 10

// checkmarkLineRe matches sales-report record boundaries: a line opening with
// a checkmark or bullet glyph.
var checkmarkLineRe = regexp.MustCompile(`(?m)^\s*[✓✔☑√•]`)

// checkmarkGlyphRe matches any checkmark glyph anywhere; presence biases
// strongly toward the sales-report archetype.
var checkmarkGlyphRe = regexp.MustCompile(`[✓✔☑√]`)

// labeledLineRe matches explicit "Label: value" structured-text lines.
var labeledLineRe = regexp.MustCompile(`(?im)^\s*(?:customer|name|email|e-mail|phone|tel|address|date|install|time|plan|size|speed|order|referral)\s*:`)

// formatIndicator is one weighted archetype signal.
type formatIndicator struct {
	re     *regexp.Regexp
	weight int
}

// formatIndicators maps each archetype to its indicator patterns. Scores are
// hit counts times weight, with a 1.5x multiplier when more than one distinct
// indicator fires for the same archetype.
var formatIndicators = map[model.Format][]formatIndicator{
	model.FormatSalesReport: {
		{re: checkmarkLineRe, weight: 15},
		{re: regexp.MustCompile(`(?i)total sales:|completed:|cancels:|monthly total`), weight: 10},
		{re: regexp.MustCompile(`(?i)\bweek \d`), weight: 5},
	},
	model.FormatSpreadsheet: {
		{re: regexp.MustCompile(`\t`), weight: 8},
		{re: regexp.MustCompile(`(?im)^[^,\n]{0,40},[^,\n]{0,40},[^,\n]{0,40},`), weight: 6},
	},
	model.FormatPipeDelimited: {
		{re: regexp.MustCompile(`\|[^|\n]*\|`), weight: 12},
	},
	model.FormatStructured: {
		{re: labeledLineRe, weight: 10},
	},
	model.FormatMixed: {
		{re: regexp.MustCompile(`(?im)^[^,\n]+,[^,\n]*@[^,\n]+`), weight: 8},
	},
}

// DetectFormat scores a sample of the input lines against the archetype
// indicator tables and returns the winner plus a confidence in [60,100].
// When nothing fires, free text wins at a fixed moderate confidence: format
// ambiguity is never an error, only low confidence.
func DetectFormat(lines []string) (model.Format, int) {
	sample := lines
	if len(sample) > formatSampleLines {
		sample = sample[:formatSampleLines]
	}
	text := strings.Join(sample, "\n")

	scores := make(map[model.Format]float64, len(formatIndicators))
	for f, inds := range formatIndicators {
		var score float64
		fired := 0
		for _, ind := range inds {
			hits := len(ind.re.FindAllStringIndex(text, -1))
			if hits > 0 {
				fired++
				score += float64(hits * ind.weight)
			}
		}
		if fired > 1 {
			score *= 1.5
		}
		scores[f] = score
	}

	// Delimiter density: the dominant delimiter biases toward its archetype.
	tabs := strings.Count(text, "\t")
	commas := strings.Count(text, ",")
	pipes := strings.Count(text, "|")
	if tabs > 0 && tabs >= commas && tabs >= pipes {
		scores[model.FormatSpreadsheet] += float64(tabs) * 5
	}
	if pipes > tabs && pipes > commas {
		scores[model.FormatPipeDelimited] += float64(pipes) * 3
	}

	// Email/phone density: mostly one-contact-per-line input reads like a
	// spreadsheet export even without a clean delimiter.
	dense := 0
	for _, l := range sample {
		if ExtractField(FieldEmail, l) != "" || ExtractField(FieldPhone, l) != "" {
			dense++
		}
	}
	if len(sample) > 0 && dense*2 > len(sample) {
		scores[model.FormatSpreadsheet] += float64(dense) * 4
	}

	if checkmarkGlyphRe.MatchString(text) {
		scores[model.FormatSalesReport] += 25
	}

	// Deterministic plurality vote: iterate archetypes in fixed order.
	best := model.FormatFreeText
	var bestScore float64
	for _, f := range model.AllFormats() {
		if scores[f] > bestScore {
			best = f
			bestScore = scores[f]
		}
	}

	if bestScore == 0 {
		return model.FormatFreeText, 60
	}

	conf := int(bestScore)
	if conf < 60 {
		conf = 60
	}
	if conf > 100 {
		conf = 100
	}
	return best, conf
}
