// internal/server/content.go
package server

import (
	"net/http"
	"strings"

	"lending-ops/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var post models.ContentPost
	if !s.decodeValidated(w, r, contentSchema, &post) {
		return
	}
	if strings.TrimSpace(post.Content) == "" {
		s.respondValidation(w, r, "content is required")
		return
	}

	created, err := s.content.Create(r.Context(), post)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	status := models.ContentStatus(r.URL.Query().Get("status"))
	posts, err := s.content.List(r.Context(), status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	post, err := s.content.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var post models.ContentPost
	if !s.decodeValidated(w, r, contentSchema, &post) {
		return
	}
	post.ID = chi.URLParam(r, "id")

	updated, err := s.content.Update(r.Context(), post)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.content.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
