// Package security implements the defense-in-depth gate in front of the
// parsers: input size caps, PII detection and redaction, malicious-content
// screening, and an append-only audit log.
package security

import (
	"regexp"
	"sort"
	"strings"
)

// RiskLevel grades how sensitive the detected content is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// PIIType names one detected PII family.
type PIIType string

const (
	PIIEmail       PIIType = "EMAIL"
	PIIPhone       PIIType = "PHONE"
	PIISSN         PIIType = "SSN"
	PIICreditCard  PIIType = "CREDIT_CARD"
	PIIAddress     PIIType = "ADDRESS"
	PIIDateOfBirth PIIType = "DATE_OF_BIRTH"
	PIIIPAddress   PIIType = "IP_ADDRESS"
)

// piiFamily is one pattern battery with its intrinsic risk tier.
type piiFamily struct {
	patterns []*regexp.Regexp
	risk     RiskLevel
}

// piiFamilies is the fixed detection battery. Pattern redundancy is
// intentional; precision comes from the risk tiers, not from any single
// regex.
var piiFamilies = map[PIIType]piiFamily{
	PIIEmail: {
		risk: RiskMedium,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
		},
	},
	PIIPhone: {
		risk: RiskMedium,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
			regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
		},
	},
	PIISSN: {
		risk: RiskHigh,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			regexp.MustCompile(`\b\d{3}\s\d{2}\s\d{4}\b`),
		},
	},
	PIICreditCard: {
		risk: RiskHigh,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
			regexp.MustCompile(`\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
			regexp.MustCompile(`\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`),
			regexp.MustCompile(`\b6011[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
		},
	},
	PIIAddress: {
		risk: RiskLow,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{1,6}\s+[A-Za-z][A-Za-z0-9 .]*\s(?:St|Street|Ave|Avenue|Rd|Road|Dr|Drive|Ln|Lane|Blvd|Boulevard|Ct|Court|Way|Pl|Place|Cir|Circle)\b`),
		},
	},
	PIIDateOfBirth: {
		risk: RiskMedium,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:dob|date\s+of\s+birth|born)\s*[:\-]?\s*\d{1,2}/\d{1,2}/\d{2,4}\b`),
			regexp.MustCompile(`(?i)\b(?:dob|date\s+of\s+birth|born)\s*[:\-]?\s*\d{4}-\d{2}-\d{2}\b`),
		},
	},
	PIIIPAddress: {
		risk: RiskMedium,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		},
	},
}

// riskKeywords escalate overall risk to HIGH when they co-occur with any PII,
// regardless of the matched patterns' own tiers.
var riskKeywords = []string{
	"medical", "bank", "ssn", "social security", "diagnosis",
	"account number", "routing number", "insurance",
}

// maxSensitiveSamples caps how many sample matches are reported.
const maxSensitiveSamples = 10

// PIIAnalysisResult is the outcome of one detection pass.
type PIIAnalysisResult struct {
	HasPII          bool      `json:"has_pii"`
	PIITypes        []PIIType `json:"pii_types"`
	SensitiveFields []string  `json:"sensitive_fields"`
	RiskLevel       RiskLevel `json:"risk_level"`
}

// AnalyzePII runs the pattern battery over text and grades overall risk: any
// HIGH-tier hit makes the result HIGH, any MEDIUM-tier hit (with no HIGH)
// makes it MEDIUM, and risk-amplifying keywords alongside any PII force HIGH.
func AnalyzePII(text string) PIIAnalysisResult {
	result := PIIAnalysisResult{RiskLevel: RiskLow}

	for piiType, family := range piiFamilies {
		found := false
		for _, re := range family.patterns {
			matches := re.FindAllString(text, -1)
			if len(matches) == 0 {
				continue
			}
			found = true
			for _, m := range matches {
				if len(result.SensitiveFields) >= maxSensitiveSamples {
					break
				}
				result.SensitiveFields = append(result.SensitiveFields, m)
			}
		}
		if !found {
			continue
		}
		result.HasPII = true
		result.PIITypes = append(result.PIITypes, piiType)
		switch family.risk {
		case RiskHigh:
			result.RiskLevel = RiskHigh
		case RiskMedium:
			if result.RiskLevel != RiskHigh {
				result.RiskLevel = RiskMedium
			}
		}
	}

	if result.HasPII {
		lower := strings.ToLower(text)
		for _, kw := range riskKeywords {
			if strings.Contains(lower, kw) {
				result.RiskLevel = RiskHigh
				break
			}
		}
	}

	// Map iteration order is random; keep output deterministic.
	sort.Slice(result.PIITypes, func(i, j int) bool {
		return result.PIITypes[i] < result.PIITypes[j]
	})
	sort.Strings(result.SensitiveFields)

	return result
}

// riskOf returns the intrinsic tier for a PII family.
func riskOf(t PIIType) RiskLevel {
	return piiFamilies[t].risk
}
