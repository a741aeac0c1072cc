// internal/server/matches.go
package server

import (
	"errors"
	"net/http"
	"time"

	stderrors "lending-ops/internal/common/errors"
	"lending-ops/internal/common/metrics"
	"lending-ops/internal/matching"
	"lending-ops/internal/models"

	"github.com/go-chi/chi/v5"
)

var errNotificationsDisabled = errors.New("notifications are not configured")

// handleDealMatches computes the deterministic match grid for a deal:
// every active lender for the deal's loan product with its per-criterion
// verdict, qualifying lenders first.
func (s *Server) handleDealMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deal, err := s.deals.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	statements, err := s.deals.ListStatements(ctx, deal.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	rows, err := s.catalog.ActiveCatalog(ctx, deal.LoanType)
	if err != nil {
		s.respondError(w, r, stderrors.NewCatalogFetchError(err))
		return
	}

	profile := matching.ProfileFromDeal(deal, statements)
	matches := matching.Match(profile, rows)
	elapsed := time.Since(start)

	loanTypeLabel := string(deal.LoanType)
	metrics.MatchRequests.WithLabelValues(loanTypeLabel).Inc()
	metrics.MatchDuration.WithLabelValues(loanTypeLabel).Observe(elapsed.Seconds())
	metrics.MatchCatalogSize.WithLabelValues(loanTypeLabel).Observe(float64(len(rows)))
	if s.obs != nil {
		s.obs.RecordMatchComputed(ctx, loanTypeLabel)
		s.obs.RecordMatchDuration(ctx, elapsed, loanTypeLabel)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deal_id":          deal.ID,
		"loan_type":        deal.LoanType,
		"profile":          profile,
		"qualifying_count": matching.QualifyingCount(matches),
		"matches":          matches,
	})
}

// aiMatch is one entry of the AI-ordered shortlist, the full catalog row
// plus the model's score and reasoning.
type aiMatch struct {
	Lender         models.LenderRow `json:"lender"`
	MatchScore     int              `json:"match_score"`
	MatchReasoning string           `json:"match_reasoning"`
}

// handleDealAIMatches runs the deterministic engine, then asks the ranker to
// order the qualifying lenders. Ranking failures degrade to the engine's
// alphabetical order; qualification itself is never delegated to the model.
func (s *Server) handleDealAIMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deal, err := s.deals.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	statements, err := s.deals.ListStatements(ctx, deal.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rows, err := s.catalog.ActiveCatalog(ctx, deal.LoanType)
	if err != nil {
		s.respondError(w, r, stderrors.NewCatalogFetchError(err))
		return
	}

	profile := matching.ProfileFromDeal(deal, statements)
	matches := matching.Match(profile, rows)

	byName := make(map[string]models.LenderRow, len(matches))
	for _, m := range matches {
		byName[m.Lender.LenderName] = m.Lender
	}

	aiRanked := false
	var shortlist []aiMatch
	if s.ranker != nil {
		ranked, rankErr := s.ranker.Rank(ctx, deal, matches)
		if rankErr != nil {
			s.log.WithError(rankErr).Warn("ai ranking degraded to deterministic order", map[string]interface{}{
				"dealId": deal.ID,
			})
		} else {
			aiRanked = true
			for _, rm := range ranked {
				shortlist = append(shortlist, aiMatch{
					Lender:         byName[rm.LenderName],
					MatchScore:     rm.MatchScore,
					MatchReasoning: rm.MatchReasoning,
				})
			}
		}
	}

	if !aiRanked {
		shortlist = deterministicShortlist(matches, s.maxAIMatches)
	}

	if len(shortlist) > 0 && deal.Status == models.DealStatusNew {
		if err := s.deals.UpdateStatus(ctx, deal.ID, models.DealStatusMatched); err != nil {
			s.log.WithError(err).Warn("deal status transition failed", map[string]interface{}{
				"dealId": deal.ID,
			})
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deal_id":   deal.ID,
		"loan_type": deal.LoanType,
		"ai_ranked": aiRanked,
		"matches":   shortlist,
	})
}

// deterministicShortlist is the fallback ordering: the engine's qualifying
// lenders in name order, without scores.
func deterministicShortlist(matches []matching.LenderMatch, max int) []aiMatch {
	var out []aiMatch
	for _, m := range matches {
		if !m.Verdict.Qualifies {
			continue
		}
		out = append(out, aiMatch{
			Lender:         m.Lender,
			MatchReasoning: "Meets all published eligibility criteria.",
		})
		if len(out) == max {
			break
		}
	}
	return out
}

// handleDealSubmissions emails the deal package to the selected lenders and
// moves the deal to Submitted.
func (s *Server) handleDealSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.notifier == nil {
		s.respondError(w, r, stderrors.NewNotificationError(errNotificationsDisabled))
		return
	}

	var body struct {
		LenderIDs []string `json:"lender_ids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.respondValidation(w, r, "invalid submissions payload: "+err.Error())
		return
	}
	if len(body.LenderIDs) == 0 {
		s.respondValidation(w, r, "lender_ids is required")
		return
	}

	ctx := r.Context()
	deal, err := s.deals.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		sent   []interface{}
		failed []map[string]string
	)
	for _, lenderID := range body.LenderIDs {
		lender, err := s.lenders.Get(ctx, deal.LoanType, lenderID)
		if err != nil {
			failed = append(failed, map[string]string{"lender_id": lenderID, "error": err.Error()})
			continue
		}
		result, err := s.notifier.SendSubmission(ctx, deal, lender)
		if err != nil {
			failed = append(failed, map[string]string{"lender_id": lenderID, "error": err.Error()})
			continue
		}
		sent = append(sent, result)
	}

	if len(sent) > 0 {
		if err := s.deals.UpdateStatus(ctx, deal.ID, models.DealStatusSubmitted); err != nil {
			s.log.WithError(err).Warn("deal status transition failed", map[string]interface{}{
				"dealId": deal.ID,
			})
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deal_id": deal.ID,
		"sent":    sent,
		"failed":  failed,
	})
}
