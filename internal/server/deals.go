// internal/server/deals.go
package server

import (
	"net/http"
	"strings"

	"lending-ops/internal/common/validation"
	"lending-ops/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var deal models.Deal
	if !s.decodeValidated(w, r, dealSchema, &deal) {
		return
	}

	if strings.TrimSpace(deal.LegalBusinessName) == "" {
		s.respondValidation(w, r, "legal_business_name is required")
		return
	}
	if !validation.ValidateStateCode(deal.State) {
		s.respondValidation(w, r, "state must be a two-letter code")
		return
	}
	if !validLoanType(deal.LoanType) {
		s.respondValidation(w, r, "unknown loan_type "+string(deal.LoanType))
		return
	}
	if deal.DesiredLoanAmount.IsZero() || deal.DesiredLoanAmount.IsNegative() {
		s.respondValidation(w, r, "desired_loan_amount must be positive")
		return
	}

	created, err := s.deals.Create(r.Context(), deal)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	status := models.DealStatus(r.URL.Query().Get("status"))
	if status != "" && !models.ValidDealStatus(status) {
		s.respondValidation(w, r, "unknown status "+string(status))
		return
	}

	deals, err := s.deals.List(r.Context(), status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deals": deals})
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.deals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	var deal models.Deal
	if !s.decodeValidated(w, r, dealSchema, &deal) {
		return
	}
	deal.ID = chi.URLParam(r, "id")

	updated, err := s.deals.Update(r.Context(), deal)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	if err := s.deals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUpdateDealStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.DealStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.respondValidation(w, r, "invalid status payload: "+err.Error())
		return
	}
	if !models.ValidDealStatus(body.Status) {
		s.respondValidation(w, r, "unknown status "+string(body.Status))
		return
	}

	if err := s.deals.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": body.Status})
}

func (s *Server) handleAddStatement(w http.ResponseWriter, r *http.Request) {
	var st models.DealBankStatement
	if !s.decodeValidated(w, r, statementSchema, &st) {
		return
	}
	st.DealID = chi.URLParam(r, "id")
	if !validStatementMonth(st.StatementMonth) {
		s.respondValidation(w, r, "statement_month must be YYYY-MM")
		return
	}

	created, err := s.deals.AddStatement(r.Context(), st)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	statements, err := s.deals.ListStatements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"statements": statements})
}

func (s *Server) handleAddFundingPosition(w http.ResponseWriter, r *http.Request) {
	var fp models.DealFundingPosition
	if err := decodeJSON(r, &fp); err != nil {
		s.respondValidation(w, r, "invalid funding position payload: "+err.Error())
		return
	}
	fp.DealID = chi.URLParam(r, "id")

	created, err := s.deals.AddFundingPosition(r.Context(), fp)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListFundingPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.deals.ListFundingPositions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"funding_positions": positions})
}

// validStatementMonth checks the YYYY-MM shape the revenue derivation sorts
// on lexically.
func validStatementMonth(month string) bool {
	if len(month) != 7 || month[4] != '-' {
		return false
	}
	for i, c := range month {
		if i == 4 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	mm := month[5:7]
	return mm >= "01" && mm <= "12"
}
