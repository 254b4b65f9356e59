package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name  string
		usage TokenUsage
		model string
		want  float64
	}{
		{"haiku", TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}, "claude-haiku-4-5-20251001", 2.80},
		{"sonnet", TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}, "claude-sonnet-4-5-20250929", 18.00},
		{"unknown model", TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}, "mystery", 0},
		{"zero usage", TokenUsage{}, "claude-haiku-4-5-20251001", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.usage.EstimateCost(tt.model), 0.0001)
		})
	}
}

func TestToSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "parse this"},
		{Role: "assistant", Content: "{}"},
	})

	assert.Len(t, msgs, 2)
	assert.NotNil(t, msgs[0].Content)
	assert.NotEqual(t, msgs[0].Role, msgs[1].Role)
}
