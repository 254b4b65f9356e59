package parser

import (
	"regexp"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// referralRe catches "referral", "referred by Jane", "referral: Jane" forms.
var referralRe = regexp.MustCompile(`(?i)\breferr(?:al|ed)(?:\s+by)?\s*[:\-]?\s*([A-Za-z][A-Za-z .'\-]*)?`)

// fillFromText runs every field extractor over a text fragment and fills any
// builder field that is still empty. First find wins; later fragments never
// overwrite earlier ones.
func fillFromText(b *model.RecordBuilder, text string) {
	if b.Email == "" {
		b.Email = ExtractField(FieldEmail, text)
	}
	if b.Phone == "" {
		b.Phone = ExtractField(FieldPhone, text)
	}
	if b.Name == "" {
		if n := ExtractField(FieldName, text); n != "" && !strings.Contains(n, "@") {
			b.Name = n
		}
	}
	if b.ServiceAddress == "" {
		b.ServiceAddress = ExtractField(FieldAddress, text)
	}
	if b.InstallationDate == "" {
		b.InstallationDate = ExtractField(FieldDate, text)
	}
	if b.InstallationTime == "" {
		b.InstallationTime = ExtractField(FieldTime, text)
	}
	if b.LeadSize == "" {
		b.LeadSize = ExtractField(FieldLeadSize, text)
	}
	if b.OrderNumber == "" {
		b.OrderNumber = ExtractField(FieldOrderNumber, text)
	}
	if !b.IsReferral {
		if m := referralRe.FindStringSubmatch(text); m != nil {
			b.IsReferral = true
			if len(m) > 1 && m[1] != "" {
				b.ReferralSource = trimField(m[1])
			}
		}
	}
}

// scoreBuilder applies the fixed per-field rubric (name 25, email 30,
// phone 25, address 15, date 3, time 2). The mixed strategy uses it to pick
// the best delimiter parse per line.
func scoreBuilder(b *model.RecordBuilder) int {
	score := 0
	if strings.TrimSpace(b.Name) != "" {
		score += fieldWeights[FieldName]
	}
	if strings.TrimSpace(b.Email) != "" {
		score += fieldWeights[FieldEmail]
	}
	if strings.TrimSpace(b.Phone) != "" {
		score += fieldWeights[FieldPhone]
	}
	if strings.TrimSpace(b.ServiceAddress) != "" {
		score += fieldWeights[FieldAddress]
	}
	if strings.TrimSpace(b.InstallationDate) != "" {
		score += fieldWeights[FieldDate]
	}
	if strings.TrimSpace(b.InstallationTime) != "" {
		score += fieldWeights[FieldTime]
	}
	return score
}
