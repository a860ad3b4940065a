package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
)

const maxSearchQueryLen = 200

// handleListItems lists every item, or filters by q (name search), category
// or room when one of them is given.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		items []*domain.Item
		err   error
	)
	switch {
	case q.Has("q"):
		query := strings.TrimSpace(q.Get("q"))
		if len(query) > maxSearchQueryLen {
			badRequest(w, "search query too long")
			return
		}
		items, err = s.items.SearchItems(ctx, query)
	case q.Has("category"):
		items, err = s.items.ListItemsByCategory(ctx, q.Get("category"))
	case q.Has("room"):
		items, err = s.items.ListItemsInRoom(ctx, q.Get("room"))
	default:
		items, err = s.items.ListItems(ctx)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListExpiring(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListExpiring(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := decodeJSON(w, r, &item); err != nil {
		badRequest(w, err.Error())
		return
	}
	created, err := s.items.AddItem(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}
	item, err := s.items.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}
	var item domain.Item
	if err := decodeJSON(w, r, &item); err != nil {
		badRequest(w, err.Error())
		return
	}
	item.ID = id
	updated, err := s.items.UpdateItem(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleUpdateItems rewrites a batch of items in one transaction.
func (s *Server) handleUpdateItems(w http.ResponseWriter, r *http.Request) {
	var items []domain.Item
	if err := decodeJSON(w, r, &items); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.items.UpdateItems(r.Context(), items); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}
	if err := s.items.DeleteItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteItems deletes the comma separated ids given in the ids query
// parameter, or every item when all=true.
func (s *Server) handleDeleteItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		n   int64
		err error
	)
	switch {
	case q.Get("all") == "true":
		n, err = s.items.DeleteAllItems(r.Context())
	case q.Has("ids"):
		ids, perr := parseIDList(q.Get("ids"))
		if perr != nil {
			badRequest(w, perr.Error())
			return
		}
		n, err = s.items.DeleteItems(r.Context(), ids)
	default:
		badRequest(w, "ids or all=true required")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
