// Package cost tracks running token spend against a budget so extraction can
// stop early instead of burning through a threshold.
package cost

import "sync"

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// DefaultRates returns the default pricing rates.
func DefaultRates() map[string]ModelRate {
	return map[string]ModelRate{
		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
	}
}

// Tracker accumulates token usage per parse call and reports when the running
// cost estimate crosses the configured threshold.
type Tracker struct {
	mu        sync.Mutex
	rates     map[string]ModelRate
	threshold float64
	tokens    int
	cost      float64
}

// NewTracker creates a Tracker. A threshold of 0 disables the budget check.
func NewTracker(rates map[string]ModelRate, threshold float64) *Tracker {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Tracker{rates: rates, threshold: threshold}
}

// Add records usage from one completion call.
func (t *Tracker) Add(model string, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tokens += inputTokens + outputTokens
	rate, ok := t.rates[model]
	if !ok {
		return
	}
	t.cost += (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
}

// Tokens returns the total tokens recorded so far.
func (t *Tracker) Tokens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tokens
}

// Cost returns the running cost estimate in USD.
func (t *Tracker) Cost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cost
}

// Exceeded reports whether the running cost estimate has crossed the
// threshold.
func (t *Tracker) Exceeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.threshold > 0 && t.cost >= t.threshold
}
