package airank

import (
	"context"
	"errors"
	"testing"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/matching"
	"lending-ops/internal/models"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMessager implements AnthropicMessager for testing.
type mockMessager struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	idx := m.calls
	m.calls++
	for _, msg := range params.Messages {
		for _, block := range msg.Content {
			if block.OfText != nil {
				m.prompts = append(m.prompts, block.OfText.Text)
			}
		}
	}
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	text := ""
	if idx < len(m.responses) {
		text = m.responses[idx]
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}, nil
}

func match(name string, qualifies bool) matching.LenderMatch {
	return matching.LenderMatch{
		Lender:  models.LenderRow{LenderName: name, LoanType: models.LoanTypeMCA},
		Verdict: matching.MatchVerdict{Qualifies: qualifies},
	}
}

func testDeal() models.Deal {
	return models.Deal{
		ID:                "d-1",
		LegalBusinessName: "Acme Logistics LLC",
		State:             "TX",
		LoanType:          models.LoanTypeMCA,
		DesiredLoanAmount: decimal.NewFromInt(150000),
	}
}

func TestRankOrdersQualifyingLenders(t *testing.T) {
	mock := &mockMessager{responses: []string{
		`[{"lender_name":"Bluestone Funding","match_score":91,"match_reasoning":"Best rate fit for the requested amount."},
		  {"lender_name":"Apex Capital","match_score":74,"match_reasoning":"Qualifies but prefers shorter terms."}]`,
	}}

	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 6, logger.NewNoOpLogger())
	ranked, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{
		match("Apex Capital", true),
		match("Bluestone Funding", true),
		match("Crest Line", false),
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "Bluestone Funding", ranked[0].LenderName)
	assert.Equal(t, 91, ranked[0].MatchScore)
	assert.Equal(t, "Apex Capital", ranked[1].LenderName)

	// Non-qualifying lenders never reach the model.
	require.Len(t, mock.prompts, 1)
	assert.NotContains(t, mock.prompts[0], "Crest Line")
}

func TestRankNoQualifyingLendersSkipsModel(t *testing.T) {
	mock := &mockMessager{}
	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 6, logger.NewNoOpLogger())

	ranked, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{
		match("Apex Capital", false),
	})
	require.NoError(t, err)
	assert.Nil(t, ranked)
	assert.Zero(t, mock.calls)
}

func TestRankStripsCodeFences(t *testing.T) {
	mock := &mockMessager{responses: []string{
		"```json\n[{\"lender_name\":\"Apex Capital\",\"match_score\":80,\"match_reasoning\":\"Fits.\"}]\n```",
	}}
	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 6, logger.NewNoOpLogger())

	ranked, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{match("Apex Capital", true)})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Apex Capital", ranked[0].LenderName)
}

func TestRankRetriesOnBadJSON(t *testing.T) {
	mock := &mockMessager{responses: []string{
		"not json at all",
		`[{"lender_name":"Apex Capital","match_score":80,"match_reasoning":"Fits."}]`,
	}}
	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 6, logger.NewNoOpLogger())

	ranked, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{match("Apex Capital", true)})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 2, mock.calls)
}

func TestRankRejectsUnknownLender(t *testing.T) {
	hallucinated := `[{"lender_name":"Made Up Capital","match_score":99,"match_reasoning":"Sounds great."}]`
	mock := &mockMessager{responses: []string{hallucinated, hallucinated, hallucinated}}
	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 6, logger.NewNoOpLogger())

	_, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{match("Apex Capital", true)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown lender")
}

func TestRankClampsToMaxMatches(t *testing.T) {
	mock := &mockMessager{responses: []string{
		`[{"lender_name":"A","match_score":90,"match_reasoning":"x"},
		  {"lender_name":"B","match_score":80,"match_reasoning":"x"},
		  {"lender_name":"C","match_score":70,"match_reasoning":"x"}]`,
	}}
	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 2, logger.NewNoOpLogger())

	ranked, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{
		match("A", true), match("B", true), match("C", true),
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].LenderName)
	assert.Equal(t, "B", ranked[1].LenderName)
}

func TestRankTransportFailureSurfaces(t *testing.T) {
	mock := &mockMessager{errs: []error{errors.New("connection refused")}}
	r := NewWithMessager(mock, "claude-sonnet-4-20250514", 6, logger.NewNoOpLogger())

	_, err := r.Rank(context.Background(), testDeal(), []matching.LenderMatch{match("Apex Capital", true)})
	assert.Error(t, err)
}
