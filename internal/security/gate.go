package security

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config tunes the gate thresholds.
type Config struct {
	MaxInputBytes    int
	MaxLineLength    int
	ControlCharRatio float64
}

// DefaultConfig returns production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxInputBytes:    1 << 20, // 1 MiB of pasted text is already absurd
		MaxLineLength:    defaultMaxLineLength,
		ControlCharRatio: defaultControlCharRatio,
	}
}

// ValidationResult is the gate's verdict on one input.
type ValidationResult struct {
	IsValid       bool              `json:"is_valid"`
	SanitizedData string            `json:"sanitized_data"`
	Warnings      []string          `json:"warnings"`
	Errors        []string          `json:"errors"`
	PIIAnalysis   PIIAnalysisResult `json:"pii_analysis"`
}

// Validator runs the full gate sequence and records every call in the audit
// log. It never mutates data it has not flagged as sensitive.
type Validator struct {
	cfg   Config
	audit *AuditLog
}

// NewValidator creates a Validator writing to the given audit log.
func NewValidator(cfg Config, audit *AuditLog) *Validator {
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = DefaultConfig().MaxInputBytes
	}
	return &Validator{cfg: cfg, audit: audit}
}

// Validate runs the gate: size cap, PII detection, risk-gated sanitization,
// content-safety scan, audit append. Rejections come back as IsValid=false
// with populated Errors; the error return is reserved for context
// cancellation.
func (v *Validator) Validate(ctx context.Context, raw string, clientMeta map[string]string) (*ValidationResult, error) {
	start := time.Now()
	result := &ValidationResult{
		IsValid:       true,
		SanitizedData: raw,
		Warnings:      []string{},
		Errors:        []string{},
	}

	finish := func() *ValidationResult {
		v.audit.Append(AuditEntry{
			Action:       "validate",
			InputHash:    HashInput(raw),
			ClientMeta:   clientMeta,
			ProcessingMS: time.Since(start).Milliseconds(),
			PIITypes:     result.PIIAnalysis.PIITypes,
			Success:      result.IsValid,
			Errors:       result.Errors,
		})
		return result
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Size cap short-circuits everything else.
	if len(raw) > v.cfg.MaxInputBytes {
		result.IsValid = false
		result.SanitizedData = ""
		result.Errors = append(result.Errors,
			fmt.Sprintf("input rejected: %d bytes exceeds limit of %d", len(raw), v.cfg.MaxInputBytes))
		return finish(), nil
	}

	result.PIIAnalysis = AnalyzePII(raw)

	if result.PIIAnalysis.HasPII && result.PIIAnalysis.RiskLevel != RiskLow {
		result.SanitizedData = Sanitize(raw, result.PIIAnalysis.PIITypes)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("sensitive data redacted (risk %s)", result.PIIAnalysis.RiskLevel))
	}

	if reason := scanContent(raw, v.cfg.MaxLineLength, v.cfg.ControlCharRatio); reason != "" {
		result.IsValid = false
		result.SanitizedData = ""
		result.Errors = append(result.Errors, reason)
	}

	zap.L().Debug("security gate",
		zap.Bool("valid", result.IsValid),
		zap.Bool("has_pii", result.PIIAnalysis.HasPII),
		zap.String("risk", string(result.PIIAnalysis.RiskLevel)),
	)

	return finish(), nil
}
