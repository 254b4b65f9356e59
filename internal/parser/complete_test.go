package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-intake/internal/model"
)

func TestDeriveNameFromEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"john.smith@example.com", "John Smith"},
		{"jane_doe@example.com", "Jane Doe"},
		{"bob-lee42@example.com", "Bob Lee"},
		{"x@example.com", "X"},
		{"123@example.com", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, deriveNameFromEmail(tt.email), "email %q", tt.email)
	}
}

func TestDeriveEmailFromName(t *testing.T) {
	assert.Equal(t, "john.smith@example.com", deriveEmailFromName("John Smith"))
	assert.Equal(t, "mary.o.neil@example.com", deriveEmailFromName("Mary O'Neil"))
	assert.Equal(t, "", deriveEmailFromName("!!!"))
}

func TestCompleteAllFallbacks(t *testing.T) {
	p := testParser()
	result := &model.ParseResult{}

	records := p.CompleteAll([]*model.RecordBuilder{{}}, result)
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, "Customer 1", rec.Name)
	assert.Equal(t, "customer.1@example.com", rec.Email)
	assert.Equal(t, "555-000-0000", rec.Phone)
	assert.Equal(t, "Address not provided", rec.ServiceAddress)
	assert.Equal(t, "2025-07-08", rec.InstallationDate)
	assert.Equal(t, "12:00 PM", rec.InstallationTime)
	assert.Equal(t, model.LeadSize2Gig, rec.LeadSize)
	assert.Equal(t, 0, rec.Confidence)
}

func TestCompleteDerivesNameFromEmail(t *testing.T) {
	p := testParser()
	result := &model.ParseResult{}

	records := p.CompleteAll([]*model.RecordBuilder{{Email: "john.smith@example.com"}}, result)
	require.Len(t, records, 1)
	assert.Equal(t, "John Smith", records[0].Name)
	assert.Equal(t, 30, records[0].Confidence)
}

func TestCompleteDerivesEmailFromName(t *testing.T) {
	p := testParser()
	result := &model.ParseResult{}

	records := p.CompleteAll([]*model.RecordBuilder{{Name: "Mary Jones"}}, result)
	require.Len(t, records, 1)
	assert.Equal(t, "mary.jones@example.com", records[0].Email)
	assert.Equal(t, 25, records[0].Confidence)
}

func TestCompleteRegeneratesInvalidEmail(t *testing.T) {
	p := testParser()
	result := &model.ParseResult{}

	records := p.CompleteAll([]*model.RecordBuilder{{Name: "Bob Lee", Email: "not-an-email"}}, result)
	require.Len(t, records, 1)
	assert.Equal(t, "bob.lee@example.com", records[0].Email)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `invalid email "not-an-email" regenerated`)
}

func TestCompleteWarnsOnUnnormalizablePhone(t *testing.T) {
	p := testParser()
	result := &model.ParseResult{}

	records := p.CompleteAll([]*model.RecordBuilder{{Name: "Bob Lee", Phone: "12345"}}, result)
	require.Len(t, records, 1)
	assert.Equal(t, "12345", records[0].Phone)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `phone "12345" could not be normalized`)
}

func TestCompleteConfidenceRubric(t *testing.T) {
	tests := []struct {
		name     string
		builder  model.RecordBuilder
		expected int
	}{
		{
			"name and email only",
			model.RecordBuilder{Name: "A B", Email: "a@b.com"},
			55,
		},
		{
			"identity trio earns bonus",
			model.RecordBuilder{Name: "A B", Email: "a@b.com", Phone: "555-123-4567"},
			100, // 25+30+25 plus the +20 trio bonus
		},
		{
			"address adds weight and bonus",
			model.RecordBuilder{Name: "A B", ServiceAddress: "1 Main St"},
			50, // 25+15 plus the +10 address bonus
		},
		{
			"everything clamps at 100",
			model.RecordBuilder{
				Name: "A B", Email: "a@b.com", Phone: "555-123-4567",
				ServiceAddress: "1 Main St", InstallationDate: "7/1/25", InstallationTime: "2pm",
			},
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParser()
			result := &model.ParseResult{}
			records := p.CompleteAll([]*model.RecordBuilder{&tt.builder}, result)
			require.Len(t, records, 1)
			assert.Equal(t, tt.expected, records[0].Confidence)
		})
	}
}

func TestCompletePreservesPassthroughFields(t *testing.T) {
	p := testParser()
	result := &model.ParseResult{}

	b := &model.RecordBuilder{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		IsReferral:     true,
		ReferralSource: " Bob Lee ",
		OrderNumber:    "SO-1234567",
		Notes:          "wants evening install",
		LeadSize:       "500 mbps",
	}
	records := p.CompleteAll([]*model.RecordBuilder{b}, result)
	require.Len(t, records, 1)
	rec := records[0]

	assert.True(t, rec.IsReferral)
	assert.Equal(t, "Bob Lee", rec.ReferralSource)
	assert.Equal(t, "SO-1234567", rec.OrderNumber)
	assert.Equal(t, "wants evening install", rec.Notes)
	assert.Equal(t, model.LeadSize500MB, rec.LeadSize)
}
