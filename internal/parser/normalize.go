package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/lead-intake/internal/model"
)

// trimField strips whitespace and trailing punctuation left behind by
// permissive captures.
func trimField(s string) string {
	return strings.Trim(strings.TrimSpace(s), ",;|")
}

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizePhone reformats a phone to (XXX) XXX-XXXX when exactly 10 digits
// remain after stripping non-digits (a leading 1 on an 11-digit number is
// dropped first). Anything else is returned as found.
func NormalizePhone(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return strings.TrimSpace(raw)
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}

// monthNums maps month-name prefixes to their two-digit numbers.
var monthNums = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var (
	weekdayPrefixRe = regexp.MustCompile(`(?i)^(?:mon|tues?|wednes|thurs?|fri|satur|sun)day,?\s*`)
	monthNameRe     = regexp.MustCompile(`(?i)^([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`)
	slashDateRe     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	isoDateRe       = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// NormalizeDate converts a raw date fragment to ISO YYYY-MM-DD. Trial order:
// "Weekday, Month Day, Year", "Month Day, Year", slash-numeric, ISO. An
// unparseable date defaults to now + 7 days, so callers inject the clock.
func NormalizeDate(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	s = weekdayPrefixRe.ReplaceAllString(s, "")

	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		key := strings.ToLower(m[1])
		if len(key) > 3 {
			key = key[:3]
		}
		if mon, ok := monthNums[key]; ok {
			day, _ := strconv.Atoi(m[2])
			year := now.Year()
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			iso := fmt.Sprintf("%04d-%s-%02d", year, mon, day)
			if _, err := time.Parse("2006-01-02", iso); err == nil {
				return iso
			}
		}
	}

	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		mon, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		iso := fmt.Sprintf("%04d-%02d-%02d", year, mon, day)
		if _, err := time.Parse("2006-01-02", iso); err == nil {
			return iso
		}
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if _, err := time.Parse("2006-01-02", m[0]); err == nil {
			return m[0]
		}
	}

	return now.AddDate(0, 0, 7).Format("2006-01-02")
}

var (
	clockAMPMRe = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(am|pm)`)
	hourAMPMRe  = regexp.MustCompile(`(?i)^(\d{1,2})\s*(am|pm)`)
	clock24Re   = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)
)

// NormalizeTime converts a raw time fragment to H:MM AM/PM where possible;
// otherwise the trimmed input is returned as found.
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)

	if m := clockAMPMRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			return fmt.Sprintf("%d:%s %s", h, m[2], strings.ToUpper(m[3]))
		}
	}

	if m := hourAMPMRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			return fmt.Sprintf("%d:00 %s", h, strings.ToUpper(m[2]))
		}
	}

	if m := clock24Re.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		switch {
		case h == 0:
			return fmt.Sprintf("12:%s AM", m[2])
		case h < 12:
			return fmt.Sprintf("%d:%s AM", h, m[2])
		case h == 12:
			return fmt.Sprintf("12:%s PM", m[2])
		case h < 24:
			return fmt.Sprintf("%d:%s PM", h-12, m[2])
		}
	}

	return s
}

// NormalizeLeadSize resolves free-form plan text to one of the three tiers by
// substring containment in priority order 500 → 1 → 2, so "500mbps" wins over
// any later coincidental "1" or "2". Unrecognized text defaults to 2GIG.
func NormalizeLeadSize(raw string) model.LeadSize {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "500"):
		return model.LeadSize500MB
	case strings.Contains(s, "1"):
		return model.LeadSize1Gig
	case strings.Contains(s, "2"):
		return model.LeadSize2Gig
	default:
		return model.LeadSize2Gig
	}
}
