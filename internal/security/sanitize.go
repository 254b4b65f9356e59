package security

import "strings"

// maskDigits replaces every digit with X, preserving punctuation positions.
func maskDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte('X')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// maskEmail keeps the first and last character of the local part, masks the
// middle, and keeps the domain intact.
func maskEmail(s string) string {
	at := strings.Index(s, "@")
	if at <= 0 {
		return s
	}
	local, domain := s[:at], s[at:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}

// ssnMask is the fixed SSN replacement regardless of the matched formatting.
const ssnMask = "XXX-XX-XXXX"

// ipMask is the fixed IP address replacement.
const ipMask = "XXX.XXX.XXX.XXX"

// Sanitize masks every PII type actually found, for the types whose intrinsic
// tier is MEDIUM or HIGH. LOW-tier PII (a bare street address) is left
// untouched so the parser downstream keeps maximum extractable signal.
// Callers only invoke this when the overall risk is MEDIUM or HIGH.
func Sanitize(text string, types []PIIType) string {
	out := text
	for _, t := range types {
		if riskOf(t) == RiskLow {
			continue
		}
		family := piiFamilies[t]
		for _, re := range family.patterns {
			switch t {
			case PIIEmail:
				out = re.ReplaceAllStringFunc(out, maskEmail)
			case PIISSN:
				out = re.ReplaceAllString(out, ssnMask)
			case PIIIPAddress:
				out = re.ReplaceAllString(out, ipMask)
			default:
				out = re.ReplaceAllStringFunc(out, maskDigits)
			}
		}
	}
	return out
}
