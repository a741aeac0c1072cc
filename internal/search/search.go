// Package search maintains the Elasticsearch lender index and serves the
// catalog search box. Postgres stays the source of truth; the index is
// rebuilt from it and updated on catalog writes.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"lending-ops/internal/common/database"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrIndexingFailed    = errors.New("INDEXING_FAILED")
)

// LenderDocument is the indexed shape of one catalog row. Eligibility text
// is flattened across the column aliases so search does not care which
// product table the row came from.
type LenderDocument struct {
	ID                     string `json:"id"`
	LenderName             string `json:"lender_name"`
	LoanType               string `json:"loan_type"`
	Status                 string `json:"status"`
	MinMonthlyRevenue      string `json:"min_monthly_revenue,omitempty"`
	MinTimeInBusiness      string `json:"min_time_in_business,omitempty"`
	RestrictedStates       string `json:"restricted_states,omitempty"`
	RatesRange             string `json:"rates_range,omitempty"`
	TermsRange             string `json:"terms_range,omitempty"`
	SubmissionRequirements string `json:"submission_requirements,omitempty"`
}

// SearchParams is one search-box request.
type SearchParams struct {
	Query    string
	LoanType models.LoanType
	From     int
	Size     int
}

// SearchResult is the parsed hit list.
type SearchResult struct {
	TotalHits int64            `json:"total_hits"`
	Documents []LenderDocument `json:"documents"`
}

type Service struct {
	es    *database.ElasticsearchClient
	index string
	log   logger.Logger
}

func NewService(es *database.ElasticsearchClient, index string, log logger.Logger) *Service {
	return &Service{es: es, index: index, log: log}
}

func documentFromLender(row models.LenderRow) LenderDocument {
	doc := LenderDocument{
		ID:         row.ID,
		LenderName: row.LenderName,
		LoanType:   string(row.LoanType),
		Status:     string(row.Status),
	}
	if v := firstSet(row.MinimumMonthlyRevenue, row.MinMonthlyRevenueAmount); v != nil {
		doc.MinMonthlyRevenue = *v
	}
	if v := firstSet(row.MinimumTimeInBusiness, row.MinTimeInBusiness); v != nil {
		doc.MinTimeInBusiness = *v
	}
	if v := firstSet(row.StatesRestrictions, row.IneligibleStates); v != nil {
		doc.RestrictedStates = *v
	}
	if row.RatesRange != nil {
		doc.RatesRange = *row.RatesRange
	}
	if row.TermsRange != nil {
		doc.TermsRange = *row.TermsRange
	}
	if row.SubmissionRequirements != nil {
		doc.SubmissionRequirements = *row.SubmissionRequirements
	}
	return doc
}

func firstSet(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

// IndexLender upserts one catalog row into the index.
func (s *Service) IndexLender(ctx context.Context, row models.LenderRow) error {
	doc := documentFromLender(row)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal document: %v", ErrIndexingFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: docID(row.LoanType, row.ID),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexingFailed, res.Status())
	}
	return nil
}

// DeleteLender removes one catalog row from the index. A missing document
// is not an error.
func (s *Service) DeleteLender(ctx context.Context, loanType models.LoanType, id string) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: docID(loanType, id),
	}

	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: %s", ErrIndexingFailed, res.Status())
	}
	return nil
}

// Search runs the search-box query: a multi_match over the text columns,
// optionally filtered by loan type.
func (s *Service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Size <= 0 {
		params.Size = 25
	}

	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  params.Query,
					"fields": []string{"lender_name^3", "submission_requirements^2", "rates_range", "terms_range", "restricted_states"},
					"type":   "best_fields",
				},
			},
		},
	}
	if params.LoanType != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{
				"term": map[string]interface{}{"loan_type": string(params.LoanType)},
			},
		}
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		From:  &params.From,
		Size:  &params.Size,
	}

	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	return parseSearchResponse(res.Body)
}

// ReindexAll rewrites the index from catalog snapshots, one product at a
// time. Used by the reindex tool and after bulk catalog imports.
func (s *Service) ReindexAll(ctx context.Context, catalogs map[models.LoanType][]models.LenderRow) (int, error) {
	indexed := 0
	for loanType, rows := range catalogs {
		for _, row := range rows {
			if err := s.IndexLender(ctx, row); err != nil {
				return indexed, fmt.Errorf("reindex %s: %w", loanType, err)
			}
			indexed++
		}
		s.log.Info("product reindexed", map[string]interface{}{
			"loanType": loanType,
			"count":    len(rows),
		})
	}
	return indexed, nil
}

func docID(loanType models.LoanType, id string) string {
	return fmt.Sprintf("%s:%s", loanType, id)
}

func parseSearchResponse(body io.Reader) (*SearchResult, error) {
	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source LenderDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	result := &SearchResult{TotalHits: parsed.Hits.Total.Value}
	for _, hit := range parsed.Hits.Hits {
		result.Documents = append(result.Documents, hit.Source)
	}
	return result, nil
}
