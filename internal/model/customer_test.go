package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordBuilderHasMinimumFields(t *testing.T) {
	tests := []struct {
		name    string
		builder RecordBuilder
		want    bool
	}{
		{"empty", RecordBuilder{}, false},
		{"name only", RecordBuilder{Name: "John Smith"}, true},
		{"email only", RecordBuilder{Email: "john@mail.com"}, true},
		{"phone only", RecordBuilder{Phone: "555-123-4567"}, true},
		{"whitespace name", RecordBuilder{Name: "   "}, false},
		{"address only", RecordBuilder{ServiceAddress: "123 Main St"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.builder.HasMinimumFields())
		})
	}
}

func TestRecordBuilderIsEmpty(t *testing.T) {
	assert.True(t, (&RecordBuilder{}).IsEmpty())
	assert.True(t, (&RecordBuilder{Notes: "only notes"}).IsEmpty())
	assert.False(t, (&RecordBuilder{OrderNumber: "SO-1234567"}).IsEmpty())
	assert.False(t, (&RecordBuilder{Email: "a@b.com"}).IsEmpty())
}

func TestRecordBuilderFieldCount(t *testing.T) {
	b := RecordBuilder{
		Name:  "John Smith",
		Email: "john@mail.com",
		Phone: "  ",
	}
	assert.Equal(t, 2, b.FieldCount())

	full := RecordBuilder{
		Name:             "John Smith",
		Email:            "john@mail.com",
		Phone:            "555-123-4567",
		ServiceAddress:   "123 Main St",
		InstallationDate: "2025-07-29",
		InstallationTime: "2:00 PM",
	}
	assert.Equal(t, 6, full.FieldCount())
}

func TestAllFormats(t *testing.T) {
	assert.Len(t, AllFormats(), 6)
}

func TestAllLeadSizes(t *testing.T) {
	assert.Equal(t, []LeadSize{LeadSize500MB, LeadSize1Gig, LeadSize2Gig}, AllLeadSizes())
}
