package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/pkg/salesforce"
)

type mockSF struct {
	existingEmails []string
	queryErr       error
	inserted       []map[string]any
	results        []salesforce.CollectionResult
}

func (m *mockSF) Query(ctx context.Context, soql string, out any) error {
	if m.queryErr != nil {
		return m.queryErr
	}
	leads := out.(*[]salesforce.Lead)
	for _, email := range m.existingEmails {
		if strings.Contains(soql, "'"+email+"'") {
			*leads = []salesforce.Lead{{ID: "00Q1", Email: email}}
			return nil
		}
	}
	return nil
}

func (m *mockSF) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	return "", errors.New("unexpected InsertOne call")
}

func (m *mockSF) InsertCollection(ctx context.Context, sObjectName string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	m.inserted = append(m.inserted, records...)
	if m.results != nil {
		return m.results, nil
	}
	results := make([]salesforce.CollectionResult, len(records))
	for i := range results {
		results[i] = salesforce.CollectionResult{ID: "00Qx", Success: true}
	}
	return results, nil
}

func (m *mockSF) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	return nil
}

func sampleRecords() []model.CustomerRecord {
	return []model.CustomerRecord{
		{
			Name:             "John Smith",
			Email:            "john.smith@email.com",
			Phone:            "(555) 123-4567",
			ServiceAddress:   "123 Main St",
			InstallationDate: "2025-07-29",
			InstallationTime: "2:00 PM",
			LeadSize:         model.LeadSize2Gig,
			Confidence:       100,
		},
		{
			Name:             "Jane Doe",
			Email:            "jane.doe@gmail.com",
			Phone:            "(555) 987-6543",
			ServiceAddress:   "456 Oak Ave",
			InstallationDate: "2025-07-30",
			InstallationTime: "10:00 AM",
			IsReferral:       true,
			ReferralSource:   "John Smith",
			LeadSize:         model.LeadSize1Gig,
			OrderNumber:      "SO-1234567",
			Confidence:       90,
		},
	}
}

func TestExportCreatesNewLeads(t *testing.T) {
	mock := &mockSF{}
	exp := NewExporter(mock)

	summary, err := exp.Export(context.Background(), sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Failed)

	require.Len(t, mock.inserted, 2)
	first := mock.inserted[0]
	assert.Equal(t, "John", first["FirstName"])
	assert.Equal(t, "Smith", first["LastName"])
	assert.Equal(t, "John Smith (Residential)", first["Company"])
	assert.Equal(t, "john.smith@email.com", first["Email"])
	assert.Equal(t, "123 Main St", first["Street"])
	assert.Equal(t, "Door-to-Door", first["LeadSource"])

	desc := first["Description"].(string)
	assert.Contains(t, desc, "Install: 2025-07-29 2:00 PM")
	assert.Contains(t, desc, "Plan: 2GIG")
}

func TestExportReferralFields(t *testing.T) {
	mock := &mockSF{}
	exp := NewExporter(mock)

	_, err := exp.Export(context.Background(), sampleRecords()[1:])
	require.NoError(t, err)

	require.Len(t, mock.inserted, 1)
	lead := mock.inserted[0]
	assert.Equal(t, "Referral", lead["LeadSource"])

	desc := lead["Description"].(string)
	assert.Contains(t, desc, "Order: SO-1234567")
	assert.Contains(t, desc, "Referred by: John Smith")
}

func TestExportSkipsExistingEmail(t *testing.T) {
	mock := &mockSF{existingEmails: []string{"john.smith@email.com"}}
	exp := NewExporter(mock)

	summary, err := exp.Export(context.Background(), sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)

	require.Len(t, mock.inserted, 1)
	assert.Equal(t, "jane.doe@gmail.com", mock.inserted[0]["Email"])
}

func TestExportCollectsFailures(t *testing.T) {
	mock := &mockSF{results: []salesforce.CollectionResult{
		{ID: "00Q1", Success: true},
		{Success: false, Errors: []string{"REQUIRED_FIELD_MISSING", "bad phone"}},
	}}
	exp := NewExporter(mock)

	summary, err := exp.Export(context.Background(), sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Jane Doe: REQUIRED_FIELD_MISSING; bad phone", summary.Failed[0])
}

func TestExportQueryError(t *testing.T) {
	mock := &mockSF{queryErr: errors.New("api down")}
	exp := NewExporter(mock)

	_, err := exp.Export(context.Background(), sampleRecords())
	require.Error(t, err)
	assert.Empty(t, mock.inserted)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		first string
		last  string
	}{
		{"two words", "John Smith", "John", "Smith"},
		{"three words", "Mary Jo Baker", "Mary Jo", "Baker"},
		{"single word", "Cher", "", "Cher"},
		{"empty", "", "", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := splitName(tt.in)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}
