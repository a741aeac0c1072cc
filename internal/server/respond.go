// internal/server/respond.go
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	stderrors "lending-ops/internal/common/errors"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError converts any error into the standard error envelope. Database
// not-found sentinels become 404s; everything else goes through the error
// code mapping.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var stdErr *stderrors.StandardError
	if errors.Is(err, sql.ErrNoRows) {
		stdErr = stderrors.NewNotFoundError("resource", "requested")
	} else {
		stdErr = stderrors.Normalize(err)
	}

	status := stdErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed", map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
			"code":   stdErr.Code,
		})
	} else {
		s.log.WithError(err).Warn("request rejected", map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
			"code":   stdErr.Code,
		})
	}

	respondJSON(w, status, map[string]interface{}{"error": stdErr})
}

func (s *Server) respondValidation(w http.ResponseWriter, r *http.Request, details string) {
	s.respondError(w, r, stderrors.NewValidationError(details))
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
