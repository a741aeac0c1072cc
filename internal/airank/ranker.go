// Package airank orders a deal's qualifying lenders by fit using Claude.
// The deterministic eligibility engine decides WHO qualifies; this package
// only decides the ORDER and the reasoning shown to brokers. Every failure
// here is soft: callers fall back to the engine's alphabetical order.
package airank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"lending-ops/internal/common/config"
	commonhttp "lending-ops/internal/common/http"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/common/metrics"
	"lending-ops/internal/matching"
	"lending-ops/internal/models"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a commercial lending advisor ranking lenders for a broker. You are given a deal and the lenders whose published criteria the deal already satisfies. Respond with strict JSON only."

const maxAttempts = 3

// RankedMatch is one lender in the AI ordering, with the score and the
// one-line reasoning shown on the match grid.
type RankedMatch struct {
	LenderName     string `json:"lender_name"`
	MatchScore     int    `json:"match_score"`
	MatchReasoning string `json:"match_reasoning"`
}

// AnthropicMessager is the slice of the Anthropic SDK the ranker uses.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Ranker struct {
	messages   AnthropicMessager
	model      anthropic.Model
	maxMatches int
	log        logger.Logger
}

// New builds a Ranker backed by the real Anthropic client.
func New(cfg config.AnthropicConfig, maxMatches int, log logger.Logger) (*Ranker, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic api key not configured")
	}
	httpClient := commonhttp.NewClient(config.GetDuration(cfg.Timeout))
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient.Underlying()),
	)
	return &Ranker{
		messages:   &client.Messages,
		model:      anthropic.Model(cfg.Model),
		maxMatches: maxMatches,
		log:        log,
	}, nil
}

// NewWithMessager builds a Ranker over any AnthropicMessager. Tests use this
// with a fake.
func NewWithMessager(m AnthropicMessager, model string, maxMatches int, log logger.Logger) *Ranker {
	return &Ranker{
		messages:   m,
		model:      anthropic.Model(model),
		maxMatches: maxMatches,
		log:        log,
	}
}

// Rank orders the qualifying lenders for a deal, best fit first, clamped to
// the configured maximum. Non-qualifying lenders are never sent to the model
// and never come back.
func (r *Ranker) Rank(ctx context.Context, deal models.Deal, matches []matching.LenderMatch) ([]RankedMatch, error) {
	qualifying := make([]matching.LenderMatch, 0, len(matches))
	for _, m := range matches {
		if m.Verdict.Qualifies {
			qualifying = append(qualifying, m)
		}
	}
	if len(qualifying) == 0 {
		return nil, nil
	}

	prompt := buildPrompt(deal, qualifying)

	var ranked []RankedMatch
	feedback := ""
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fullPrompt := prompt
		if feedback != "" {
			fullPrompt += "\n\n" + feedback
		}

		raw, err := r.generate(ctx, fullPrompt)
		if err != nil {
			if isRetryable(err) && attempt < maxAttempts {
				time.Sleep(backoffDelay(attempt))
				continue
			}
			metrics.AIRankingCalls.WithLabelValues("transport_error").Inc()
			return nil, fmt.Errorf("lender ranking transport failure: %w", err)
		}

		clean := stripCodeFences(raw)
		if err := json.Unmarshal([]byte(clean), &ranked); err != nil {
			if attempt < maxAttempts {
				feedback = "Your previous response was not valid JSON. Respond with only a JSON array matching the schema."
				continue
			}
			metrics.AIRankingCalls.WithLabelValues("parse_error").Inc()
			return nil, fmt.Errorf("lender ranking json parse: %w", err)
		}

		if err := validateRanking(ranked, qualifying); err != nil {
			if attempt < maxAttempts {
				feedback = fmt.Sprintf("Your response failed validation: %s. Fix these issues and respond again.", err)
				continue
			}
			metrics.AIRankingCalls.WithLabelValues("validation_error").Inc()
			return nil, fmt.Errorf("lender ranking validation: %w", err)
		}

		if len(ranked) > r.maxMatches {
			ranked = ranked[:r.maxMatches]
		}
		metrics.AIRankingCalls.WithLabelValues("success").Inc()
		return ranked, nil
	}

	metrics.AIRankingCalls.WithLabelValues("exhausted").Inc()
	return nil, errors.New("lender ranking failed after retries")
}

func (r *Ranker) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := r.messages.New(ctx, anthropic.MessageNewParams{
		Model:       r.model,
		MaxTokens:   2048,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

func buildPrompt(deal models.Deal, qualifying []matching.LenderMatch) string {
	var sb strings.Builder

	sb.WriteString("Deal:\n")
	fmt.Fprintf(&sb, "- Business: %s (%s)\n", deal.LegalBusinessName, deal.State)
	fmt.Fprintf(&sb, "- Loan type: %s\n", deal.LoanType)
	fmt.Fprintf(&sb, "- Desired amount: $%s\n", deal.DesiredLoanAmount.StringFixed(2))
	if deal.AverageMonthlySales != nil {
		fmt.Fprintf(&sb, "- Average monthly sales: $%s\n", deal.AverageMonthlySales.StringFixed(2))
	}
	if deal.CreditScore != nil {
		fmt.Fprintf(&sb, "- Credit score: %d\n", *deal.CreditScore)
	}
	if deal.TimeInBusinessMonths != nil {
		fmt.Fprintf(&sb, "- Time in business: %d months\n", *deal.TimeInBusinessMonths)
	}
	if deal.ReasonForLoan != nil {
		fmt.Fprintf(&sb, "- Reason for loan: %s\n", *deal.ReasonForLoan)
	}

	sb.WriteString("\nQualifying lenders:\n")
	for _, m := range qualifying {
		fmt.Fprintf(&sb, "- %s", m.Lender.LenderName)
		if m.Lender.RatesRange != nil {
			fmt.Fprintf(&sb, " | rates: %s", *m.Lender.RatesRange)
		}
		if m.Lender.TermsRange != nil {
			fmt.Fprintf(&sb, " | terms: %s", *m.Lender.TermsRange)
		}
		if m.Lender.SubmissionRequirements != nil {
			fmt.Fprintf(&sb, " | requirements: %s", *m.Lender.SubmissionRequirements)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nRank these lenders from best fit to worst for this deal. ")
	sb.WriteString("Respond with only a JSON array of objects with keys ")
	sb.WriteString(`"lender_name" (must exactly match a name above), "match_score" (integer 0-100) and "match_reasoning" (one sentence).`)
	return sb.String()
}

func validateRanking(ranked []RankedMatch, qualifying []matching.LenderMatch) error {
	if len(ranked) == 0 {
		return errors.New("empty ranking")
	}

	known := make(map[string]bool, len(qualifying))
	for _, m := range qualifying {
		known[m.Lender.LenderName] = true
	}

	seen := make(map[string]bool, len(ranked))
	for _, r := range ranked {
		if !known[r.LenderName] {
			return fmt.Errorf("unknown lender %q in ranking", r.LenderName)
		}
		if seen[r.LenderName] {
			return fmt.Errorf("duplicate lender %q in ranking", r.LenderName)
		}
		seen[r.LenderName] = true
		if r.MatchScore < 0 || r.MatchScore > 100 {
			return fmt.Errorf("match_score %d out of range for %q", r.MatchScore, r.LenderName)
		}
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "overloaded") || strings.Contains(msg, "server error")
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
