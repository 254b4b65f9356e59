// Package ai implements the model-backed extraction pipeline: preprocess,
// cache check, format detection, batched extraction, and a validation pass,
// with fallback to the heuristic engine on any failure.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-intake/internal/cost"
	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/internal/parser"
	"github.com/sells-group/lead-intake/internal/resilience"
	"github.com/sells-group/lead-intake/internal/security"
	"github.com/sells-group/lead-intake/pkg/anthropic"
)

// Config tunes the AI pipeline.
type Config struct {
	Model          string
	MaxTokens      int64
	Temperature    float64
	BatchSize      int
	CostThreshold  float64
	EnableFallback bool
	EnableCaching  bool
	RequestTimeout time.Duration
	BatchInterval  time.Duration
	Rates          map[string]cost.ModelRate
}

// DefaultConfig returns production defaults. Smaller batches trade cost for
// reliability; the interval is a fixed spacing, not adaptive backoff.
func DefaultConfig() Config {
	return Config{
		Model:          "claude-haiku-4-5-20251001",
		MaxTokens:      4096,
		Temperature:    0.0,
		BatchSize:      25,
		CostThreshold:  1.00,
		EnableFallback: true,
		EnableCaching:  true,
		RequestTimeout: 60 * time.Second,
		BatchInterval:  time.Second,
	}
}

// Pipeline runs model-backed extraction. Batches are processed strictly in
// order with deliberate inter-batch delays; rate limiting takes precedence
// over throughput.
type Pipeline struct {
	client   anthropic.Client
	gate     *security.Validator
	cache    *ResultCache
	fallback *parser.Parser
	limiter  *rate.Limiter
	cfg      Config
}

// NewPipeline creates a Pipeline. The security gate is mandatory on this
// path; the cache may be shared across pipelines. Returns ErrNotConfigured
// when no completion client is available.
func NewPipeline(client anthropic.Client, gate *security.Validator, cache *ResultCache, cfg Config) (*Pipeline, error) {
	if client == nil {
		return nil, ErrNotConfigured
	}
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.BatchInterval <= 0 {
		cfg.BatchInterval = def.BatchInterval
	}
	return &Pipeline{
		client:   client,
		gate:     gate,
		cache:    cache,
		fallback: parser.New(),
		limiter:  rate.NewLimiter(rate.Every(cfg.BatchInterval), 1),
		cfg:      cfg,
	}, nil
}

// zeroWidthStripper removes zero-width characters that break line and field
// segmentation.
var zeroWidthStripper = runes.Remove(runes.Predicate(func(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}))

// preprocess normalizes line endings, converts tabs to spaces, and strips
// zero-width characters before anything is hashed or prompted.
func preprocess(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", " ")
	if stripped, _, err := transform.String(zeroWidthStripper, s); err == nil {
		s = stripped
	}
	return s
}

// Parse runs the full AI chain. On any pipeline failure it falls back to the
// heuristic engine when fallback is enabled, otherwise the typed error is
// propagated.
func (p *Pipeline) Parse(ctx context.Context, raw string) (*model.ParseResult, error) {
	start := time.Now()

	if p.gate != nil {
		vr, err := p.gate.Validate(ctx, raw, nil)
		if err != nil {
			return nil, err
		}
		if !vr.IsValid {
			return &model.ParseResult{
				FormatDetected: model.FormatFreeText,
				Warnings:       []string{},
				Errors:         vr.Errors,
			}, nil
		}
		raw = vr.SanitizedData
	}

	text := preprocess(raw)

	if p.cfg.EnableCaching && p.cache != nil {
		if cached, ok := p.cache.Get(text); ok {
			result := *cached
			result.Warnings = append(append([]string{}, cached.Warnings...), "served from cache")
			zap.L().Debug("ai: cache hit", zap.String("key", Key(text)))
			return &result, nil
		}
	}

	tracker := cost.NewTracker(p.cfg.Rates, p.cfg.CostThreshold)

	result, err := p.run(ctx, text, tracker)
	if err != nil {
		if !p.cfg.EnableFallback {
			return nil, err
		}
		zap.L().Warn("ai: extraction failed, using heuristic engine", zap.Error(err))
		result = p.fallback.Parse(text)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("ai extraction failed (%v); heuristic engine used", err))
	}

	result.Metadata.ProcessingMS = int(time.Since(start).Milliseconds())
	result.Metadata.TokensUsed = tracker.Tokens()
	result.Metadata.CostEstimate = tracker.Cost()

	if p.cfg.EnableCaching && p.cache != nil {
		p.cache.Put(text, result)
	}
	return result, nil
}

// run executes format detection, the batch loop, and the validation pass.
func (p *Pipeline) run(ctx context.Context, text string, tracker *cost.Tracker) (*model.ParseResult, error) {
	result := &model.ParseResult{Warnings: []string{}, Errors: []string{}}

	allLines := strings.Split(text, "\n")
	var lines []string
	for _, l := range allLines {
		if strings.TrimSpace(l) == "" {
			result.Metadata.EmptyLines++
			continue
		}
		lines = append(lines, l)
	}
	result.Metadata.TotalLines = len(allLines)
	result.Metadata.DataLines = len(lines)

	if len(lines) == 0 {
		result.FormatDetected = model.FormatFreeText
		result.Warnings = append(result.Warnings, "input is empty")
		return result, nil
	}

	sample := lines
	if len(sample) > 10 {
		sample = sample[:10]
	}
	format, formatConf, err := p.detectFormat(ctx, sample, tracker)
	if err != nil {
		return nil, eris.Wrap(err, "ai: format detection")
	}
	result.FormatDetected = format

	var builders []*model.RecordBuilder
	for i := 0; i < len(lines); i += p.cfg.BatchSize {
		if tracker.Exceeded() {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"cost threshold $%.2f reached; stopped after %d of %d lines",
				p.cfg.CostThreshold, i, len(lines)))
			break
		}
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "ai: inter-batch wait")
			}
		}

		batch := lines[i:min(i+p.cfg.BatchSize, len(lines))]
		bs, err := p.extractBatch(ctx, format, batch, tracker)
		if err != nil {
			if !p.cfg.EnableFallback {
				return nil, err
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("batch starting at line %d: %v", i+1, err))
			continue
		}
		for _, b := range bs {
			// Same bar every heuristic strategy applies: a customer with
			// no name, email, or phone never becomes a record.
			if !b.HasMinimumFields() {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"batch starting at line %d: discarded a customer with no name, email, or phone", i+1))
				continue
			}
			builders = append(builders, b)
		}
	}

	result.Records = p.fallback.CompleteAll(builders, result)

	if len(result.Records) > 0 {
		sum := 0
		for _, r := range result.Records {
			sum += r.Confidence
		}
		result.Confidence = sum / len(result.Records)
	} else {
		result.Confidence = formatConf
		if len(result.Errors) == 0 {
			result.Warnings = append(result.Warnings, "no customer records found")
		}
	}

	if len(result.Records) > 0 {
		if err := p.validateRecords(ctx, result, tracker); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("record validation skipped: %v", err))
		}
	}

	return result, nil
}

// complete issues one completion call under the request timeout, retrying
// transient and rate-limit failures, and records token usage on success.
func (p *Pipeline) complete(ctx context.Context, prompt string, tracker *cost.Tracker) (string, error) {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.ShouldRetry = func(err error) bool {
		return isRateLimited(err) || resilience.IsTransient(err)
	}
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "create_message")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		cctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()

		temp := p.cfg.Temperature
		return p.client.CreateMessage(cctx, anthropic.MessageRequest{
			Model:       p.cfg.Model,
			MaxTokens:   p.cfg.MaxTokens,
			System:      extractSystemPrompt,
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temp,
		})
	})
	if err != nil {
		if isRateLimited(err) {
			return "", &RateLimitError{Err: err, RetryAfter: 30 * time.Second}
		}
		return "", err
	}

	tracker.Add(p.cfg.Model, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
	return extractText(resp), nil
}

// isRateLimited recognizes 429-style failures from the SDK error text.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

func (p *Pipeline) detectFormat(ctx context.Context, sample []string, tracker *cost.Tracker) (model.Format, int, error) {
	text, err := p.complete(ctx, fmt.Sprintf(formatDetectPrompt, strings.Join(sample, "\n")), tracker)
	if err != nil {
		return "", 0, err
	}
	return parseFormatResponse(text)
}

func (p *Pipeline) extractBatch(ctx context.Context, format model.Format, batch []string, tracker *cost.Tracker) ([]*model.RecordBuilder, error) {
	text, err := p.complete(ctx, fmt.Sprintf(extractBatchPrompt, format, strings.Join(batch, "\n")), tracker)
	if err != nil {
		return nil, err
	}
	return parseExtractionResponse(text)
}

// validationSampleSize caps how many records the audit call reviews.
const validationSampleSize = 5

// validateRecords asks the model to audit a sample of extracted records and
// applies the suggested corrections back by index.
func (p *Pipeline) validateRecords(ctx context.Context, result *model.ParseResult, tracker *cost.Tracker) error {
	sample := result.Records
	if len(sample) > validationSampleSize {
		sample = sample[:validationSampleSize]
	}
	payload, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ai: marshal validation sample")
	}

	text, err := p.complete(ctx, fmt.Sprintf(validateRecordsPrompt, string(payload)), tracker)
	if err != nil {
		return err
	}
	adjustments, err := parseValidationResponse(text)
	if err != nil {
		return err
	}

	for _, adj := range adjustments {
		if adj.Index < 0 || adj.Index >= len(result.Records) || adj.Value == "" {
			continue
		}
		applyAdjustment(&result.Records[adj.Index], adj)
	}
	return nil
}
