package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-intake/internal/model"
)

// Deterministic fallbacks for required fields.
const (
	fallbackPhone   = "555-000-0000"
	fallbackAddress = "Address not provided"
	fallbackTime    = "12:00 PM"
	fallbackDomain  = "example.com"
)

var (
	emailShapeRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneShapeRe = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)

	titleCaser  = cases.Title(language.English)
	nameSplitRe = regexp.MustCompile(`[._\-+0-9]+`)
	emailJoinRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// deriveNameFromEmail turns a local part like "john.smith" into "John Smith".
func deriveNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	words := nameSplitRe.Split(local, -1)
	var kept []string
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(kept, " "))
}

// deriveEmailFromName turns "John Smith" into "john.smith@example.com".
func deriveEmailFromName(name string) string {
	local := emailJoinRe.ReplaceAllString(strings.ToLower(name), ".")
	local = strings.Trim(local, ".")
	if local == "" {
		return ""
	}
	return local + "@" + fallbackDomain
}

// CompleteAll freezes a builder list into records, appending any validation
// warnings to result. The AI path reuses this so both engines share one set
// of fallback and validation rules.
func (p *Parser) CompleteAll(builders []*model.RecordBuilder, result *model.ParseResult) []model.CustomerRecord {
	now := p.Now()
	records := make([]model.CustomerRecord, 0, len(builders))
	for i, b := range builders {
		records = append(records, p.complete(b, i, now, result))
	}
	return records
}

// complete freezes a builder into a CustomerRecord: fallbacks for missing
// required fields, confidence from the fixed per-field weights, then a second
// validation pass that re-checks email/phone shape and applies the
// completeness bonuses.
func (p *Parser) complete(b *model.RecordBuilder, index int, now time.Time, result *model.ParseResult) model.CustomerRecord {
	hasName := strings.TrimSpace(b.Name) != ""
	hasEmail := strings.TrimSpace(b.Email) != ""
	hasPhone := strings.TrimSpace(b.Phone) != ""
	hasAddress := strings.TrimSpace(b.ServiceAddress) != ""
	hasDate := strings.TrimSpace(b.InstallationDate) != ""
	hasTime := strings.TrimSpace(b.InstallationTime) != ""

	confidence := 0
	if hasName {
		confidence += fieldWeights[FieldName]
	}
	if hasEmail {
		confidence += fieldWeights[FieldEmail]
	}
	if hasPhone {
		confidence += fieldWeights[FieldPhone]
	}
	if hasAddress {
		confidence += fieldWeights[FieldAddress]
	}
	if hasDate {
		confidence += fieldWeights[FieldDate]
	}
	if hasTime {
		confidence += fieldWeights[FieldTime]
	}

	rec := model.CustomerRecord{
		IsReferral:     b.IsReferral,
		ReferralSource: strings.TrimSpace(b.ReferralSource),
		OrderNumber:    strings.TrimSpace(b.OrderNumber),
		Notes:          strings.TrimSpace(b.Notes),
		LeadSize:       NormalizeLeadSize(b.LeadSize),
	}

	rec.Name = strings.TrimSpace(b.Name)
	if rec.Name == "" {
		if hasEmail {
			rec.Name = deriveNameFromEmail(strings.TrimSpace(b.Email))
		}
		if rec.Name == "" {
			rec.Name = fmt.Sprintf("Customer %d", index+1)
		}
	}

	rec.Email = strings.TrimSpace(b.Email)
	if rec.Email == "" {
		rec.Email = deriveEmailFromName(rec.Name)
		if rec.Email == "" {
			rec.Email = fmt.Sprintf("customer%d@%s", index+1, fallbackDomain)
		}
	}

	if hasPhone {
		rec.Phone = NormalizePhone(b.Phone)
	} else {
		rec.Phone = fallbackPhone
	}

	rec.ServiceAddress = strings.TrimSpace(b.ServiceAddress)
	if rec.ServiceAddress == "" {
		rec.ServiceAddress = fallbackAddress
	}

	if hasDate {
		rec.InstallationDate = NormalizeDate(b.InstallationDate, now)
	} else {
		rec.InstallationDate = now.AddDate(0, 0, 7).Format("2006-01-02")
	}

	if hasTime {
		rec.InstallationTime = NormalizeTime(b.InstallationTime)
	} else {
		rec.InstallationTime = fallbackTime
	}

	// Post-hoc shape validation with the same regexes used for extraction.
	if !emailShapeRe.MatchString(rec.Email) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("record %d: invalid email %q regenerated", index+1, rec.Email))
		rec.Email = deriveEmailFromName(rec.Name)
		if rec.Email == "" {
			rec.Email = fmt.Sprintf("customer%d@%s", index+1, fallbackDomain)
		}
	}
	if hasPhone && !phoneShapeRe.MatchString(rec.Phone) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("record %d: phone %q could not be normalized", index+1, rec.Phone))
	}

	// Completeness bonuses.
	if hasName && hasEmail && hasPhone {
		confidence += 20
	}
	if hasAddress {
		confidence += 10
	}
	if hasDate && hasTime {
		confidence += 5
	}
	if confidence > 100 {
		confidence = 100
	}
	rec.Confidence = confidence

	return rec
}
