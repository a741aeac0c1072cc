// internal/server/lenders.go
package server

import (
	"net/http"
	"strconv"
	"strings"

	"lending-ops/internal/models"
	"lending-ops/internal/search"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListLenders(w http.ResponseWriter, r *http.Request) {
	loanType, err := loanTypeFromSlug(chi.URLParam(r, "loanType"))
	if err != nil {
		s.respondValidation(w, r, err.Error())
		return
	}

	var rows []models.LenderRow
	if r.URL.Query().Get("active") == "true" {
		rows, err = s.catalog.ActiveCatalog(r.Context(), loanType)
	} else {
		rows, err = s.lenders.List(r.Context(), loanType)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loan_type": loanType,
		"lenders":   rows,
	})
}

func (s *Server) handleGetLender(w http.ResponseWriter, r *http.Request) {
	loanType, err := loanTypeFromSlug(chi.URLParam(r, "loanType"))
	if err != nil {
		s.respondValidation(w, r, err.Error())
		return
	}

	lender, err := s.lenders.Get(r.Context(), loanType, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lender)
}

func (s *Server) handleCreateLender(w http.ResponseWriter, r *http.Request) {
	loanType, err := loanTypeFromSlug(chi.URLParam(r, "loanType"))
	if err != nil {
		s.respondValidation(w, r, err.Error())
		return
	}

	var lender models.LenderRow
	if !s.decodeValidated(w, r, lenderSchema, &lender) {
		return
	}
	if strings.TrimSpace(lender.LenderName) == "" {
		s.respondValidation(w, r, "lender_name is required")
		return
	}
	lender.LoanType = loanType

	created, err := s.lenders.Create(r.Context(), lender)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.afterCatalogWrite(r, created)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateLender(w http.ResponseWriter, r *http.Request) {
	loanType, err := loanTypeFromSlug(chi.URLParam(r, "loanType"))
	if err != nil {
		s.respondValidation(w, r, err.Error())
		return
	}

	var lender models.LenderRow
	if !s.decodeValidated(w, r, lenderSchema, &lender) {
		return
	}
	lender.ID = chi.URLParam(r, "id")
	lender.LoanType = loanType

	updated, err := s.lenders.Update(r.Context(), lender)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.afterCatalogWrite(r, updated)
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLender(w http.ResponseWriter, r *http.Request) {
	loanType, err := loanTypeFromSlug(chi.URLParam(r, "loanType"))
	if err != nil {
		s.respondValidation(w, r, err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.lenders.Delete(r.Context(), loanType, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.catalog.Invalidate(r.Context(), loanType); err != nil {
		s.log.WithError(err).Warn("catalog invalidation failed", map[string]interface{}{
			"loanType": loanType,
		})
	}
	if s.searcher != nil {
		if err := s.searcher.DeleteLender(r.Context(), loanType, id); err != nil {
			s.log.WithError(err).Warn("search delete failed", map[string]interface{}{
				"lenderId": id,
			})
		}
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSearchLenders(w http.ResponseWriter, r *http.Request) {
	loanType, err := loanTypeFromSlug(chi.URLParam(r, "loanType"))
	if err != nil {
		s.respondValidation(w, r, err.Error())
		return
	}

	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		s.respondValidation(w, r, "query parameter q is required")
		return
	}

	if s.searcher == nil {
		rows, err := s.lenders.SearchByName(r.Context(), loanType, term)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"loan_type": loanType,
			"lenders":   rows,
		})
		return
	}

	from, _ := strconv.Atoi(r.URL.Query().Get("from"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	result, err := s.searcher.Search(r.Context(), search.SearchParams{
		Query:    term,
		LoanType: loanType,
		From:     from,
		Size:     size,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loan_type":  loanType,
		"total_hits": result.TotalHits,
		"documents":  result.Documents,
	})
}

// afterCatalogWrite keeps the snapshot cache and the search index in step
// with catalog writes. Both are best effort; Postgres already committed.
func (s *Server) afterCatalogWrite(r *http.Request, lender models.LenderRow) {
	if err := s.catalog.Invalidate(r.Context(), lender.LoanType); err != nil {
		s.log.WithError(err).Warn("catalog invalidation failed", map[string]interface{}{
			"loanType": lender.LoanType,
		})
	}
	if s.searcher != nil {
		if err := s.searcher.IndexLender(r.Context(), lender); err != nil {
			s.log.WithError(err).Warn("search indexing failed", map[string]interface{}{
				"lenderId": lender.ID,
			})
		}
	}
}
