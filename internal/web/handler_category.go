package web

import (
	"net/http"

	"github.com/vbonduro/homeinv/internal/domain"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := decodeJSON(w, r, &c); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, c.Name) {
		return
	}
	created, err := s.categories.AddCategory(r.Context(), c)
	s.writeAdded(w, r, created, err)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.categories.GetCategory(r.Context(), pathParam(r, "category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, errorBody{"category not found"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateCategory replaces the category's name and capability flags and
// recomputes the items tagged with it.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := decodeJSON(w, r, &c); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, c.Name) {
		return
	}
	if err := s.categories.UpdateCategory(r.Context(), pathParam(r, "category"), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.DeleteCategory(r.Context(), pathParam(r, "category")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
