package salesforce

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	queryLeads  []Lead
	queryErr    error
	soqlSeen    []string
	insertOneID string
	insertErr   error
	insertCalls []map[string]any
	batches     [][]map[string]any
	batchErr    error
}

func (m *mockClient) Query(ctx context.Context, soql string, out any) error {
	m.soqlSeen = append(m.soqlSeen, soql)
	if m.queryErr != nil {
		return m.queryErr
	}
	*out.(*[]Lead) = m.queryLeads
	return nil
}

func (m *mockClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	m.insertCalls = append(m.insertCalls, record)
	if m.insertErr != nil {
		return "", m.insertErr
	}
	return m.insertOneID, nil
}

func (m *mockClient) InsertCollection(ctx context.Context, sObjectName string, records []map[string]any) ([]CollectionResult, error) {
	m.batches = append(m.batches, records)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	results := make([]CollectionResult, len(records))
	for i := range results {
		results[i] = CollectionResult{ID: fmt.Sprintf("00Q%06d", i), Success: true}
	}
	return results, nil
}

func (m *mockClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	return nil
}

func TestFindLeadByEmailFound(t *testing.T) {
	mock := &mockClient{queryLeads: []Lead{{ID: "00Q1", Email: "jane@example.com"}}}

	lead, err := FindLeadByEmail(context.Background(), mock, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "00Q1", lead.ID)

	require.Len(t, mock.soqlSeen, 1)
	assert.Contains(t, mock.soqlSeen[0], "FROM Lead WHERE Email = 'jane@example.com' LIMIT 1")
}

func TestFindLeadByEmailNotFound(t *testing.T) {
	mock := &mockClient{}

	lead, err := FindLeadByEmail(context.Background(), mock, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFindLeadByEmailEscapesQuotes(t *testing.T) {
	mock := &mockClient{}

	_, err := FindLeadByEmail(context.Background(), mock, "o'neil@example.com")
	require.NoError(t, err)
	assert.Contains(t, mock.soqlSeen[0], `o\'neil@example.com`)
}

func TestFindLeadByEmailQueryError(t *testing.T) {
	mock := &mockClient{queryErr: errors.New("api down")}

	_, err := FindLeadByEmail(context.Background(), mock, "jane@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find lead by email")
}

func TestCreateLead(t *testing.T) {
	mock := &mockClient{insertOneID: "00Q5"}

	id, err := CreateLead(context.Background(), mock, map[string]any{
		"LastName": "Doe",
		"Company":  "Doe (Residential)",
	})
	require.NoError(t, err)
	assert.Equal(t, "00Q5", id)
	require.Len(t, mock.insertCalls, 1)
}

func TestCreateLeadValidation(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		wantErr string
	}{
		{"missing last name", map[string]any{"Company": "Acme"}, "LastName is required"},
		{"empty last name", map[string]any{"LastName": "", "Company": "Acme"}, "LastName is required"},
		{"missing company", map[string]any{"LastName": "Doe"}, "Company is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockClient{}
			_, err := CreateLead(context.Background(), mock, tt.fields)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, mock.insertCalls)
		})
	}
}

func TestBulkInsertLeadsEmpty(t *testing.T) {
	mock := &mockClient{}

	results, err := BulkInsertLeads(context.Background(), mock, nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, mock.batches)
}

func TestBulkInsertLeadsBatching(t *testing.T) {
	mock := &mockClient{}

	records := make([]map[string]any, 450)
	for i := range records {
		records[i] = map[string]any{"LastName": fmt.Sprintf("Lead %d", i)}
	}

	results, err := BulkInsertLeads(context.Background(), mock, records)
	require.NoError(t, err)
	assert.Len(t, results, 450)

	require.Len(t, mock.batches, 3)
	assert.Len(t, mock.batches[0], 200)
	assert.Len(t, mock.batches[1], 200)
	assert.Len(t, mock.batches[2], 50)
}

func TestBulkInsertLeadsBatchError(t *testing.T) {
	mock := &mockClient{batchErr: errors.New("limit exceeded")}

	records := []map[string]any{{"LastName": "Doe"}}
	_, err := BulkInsertLeads(context.Background(), mock, records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulk insert leads batch 0-1")
}

func TestEscapeSoql(t *testing.T) {
	assert.Equal(t, `it\'s`, escapeSoql("it's"))
	assert.Equal(t, "plain", escapeSoql("plain"))
}
