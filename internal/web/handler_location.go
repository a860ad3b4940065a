package web

import (
	"net/http"

	"github.com/vbonduro/homeinv/internal/domain"
)

const maxNameLen = 200

type nameRequest struct {
	Name string `json:"name"`
}

type addedResponse struct {
	Created bool `json:"created"`
}

// updateLocationRequest carries the changes a PATCH may apply to one level of
// the hierarchy. Absent fields are left unchanged.
type updateLocationRequest struct {
	Name              *string `json:"name"`
	Room              *string `json:"room"`
	HasSubContainer   *bool   `json:"hasSubContainer"`
	HasThirdContainer *bool   `json:"hasThirdContainer"`
}

func validName(w http.ResponseWriter, name string) bool {
	if name == "" {
		badRequest(w, "name required")
		return false
	}
	if len(name) > maxNameLen {
		badRequest(w, "name too long")
		return false
	}
	return true
}

func (s *Server) writeAdded(w http.ResponseWriter, r *http.Request, created bool, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, addedResponse{Created: created})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.locations.ListRooms(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleAddRoom(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, req.Name) {
		return
	}
	created, err := s.locations.AddRoom(r.Context(), req.Name)
	s.writeAdded(w, r, created, err)
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, req.Name) {
		return
	}
	if err := s.locations.RenameRoom(r.Context(), pathParam(r, "room"), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.locations.DeleteRoom(r.Context(), pathParam(r, "room")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := s.locations.ListContainers(r.Context(), pathParam(r, "room"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, containers)
}

func (s *Server) handleAddContainer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		HasSubContainer bool   `json:"hasSubContainer"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, req.Name) {
		return
	}
	created, err := s.locations.AddContainer(r.Context(), domain.Container{
		Room:            pathParam(r, "room"),
		Name:            req.Name,
		HasSubContainer: req.HasSubContainer,
	})
	s.writeAdded(w, r, created, err)
}

// handleUpdateContainer applies a move, then a rename, then a flag change.
// Later changes address the container by its new room and name.
func (s *Server) handleUpdateContainer(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.HasThirdContainer != nil {
		badRequest(w, "hasThirdContainer does not apply to containers")
		return
	}
	ctx := r.Context()
	room, name := pathParam(r, "room"), pathParam(r, "container")

	if req.Room != nil {
		if !validName(w, *req.Room) {
			return
		}
		if err := s.locations.MoveContainer(ctx, room, name, *req.Room); err != nil {
			s.writeError(w, r, err)
			return
		}
		room = *req.Room
	}
	if req.Name != nil {
		if !validName(w, *req.Name) {
			return
		}
		if err := s.locations.RenameContainer(ctx, room, name, *req.Name); err != nil {
			s.writeError(w, r, err)
			return
		}
		name = *req.Name
	}
	if req.HasSubContainer != nil {
		if err := s.locations.SetHasSubContainer(ctx, room, name, *req.HasSubContainer); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.locations.DeleteContainer(r.Context(), pathParam(r, "room"), pathParam(r, "container")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubContainers(w http.ResponseWriter, r *http.Request) {
	subs, err := s.locations.ListSubContainers(r.Context(), pathParam(r, "room"), pathParam(r, "container"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleAddSubContainer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string `json:"name"`
		HasThirdContainer bool   `json:"hasThirdContainer"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, req.Name) {
		return
	}
	created, err := s.locations.AddSubContainer(r.Context(), domain.SubContainer{
		Room:              pathParam(r, "room"),
		ContainerName:     pathParam(r, "container"),
		Name:              req.Name,
		HasThirdContainer: req.HasThirdContainer,
	})
	s.writeAdded(w, r, created, err)
}

func (s *Server) handleUpdateSubContainer(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Room != nil || req.HasSubContainer != nil {
		badRequest(w, "only name and hasThirdContainer apply to sub containers")
		return
	}
	ctx := r.Context()
	room, container, name := pathParam(r, "room"), pathParam(r, "container"), pathParam(r, "sub")

	if req.Name != nil {
		if !validName(w, *req.Name) {
			return
		}
		if err := s.locations.RenameSubContainer(ctx, room, container, name, *req.Name); err != nil {
			s.writeError(w, r, err)
			return
		}
		name = *req.Name
	}
	if req.HasThirdContainer != nil {
		if err := s.locations.SetHasThirdContainer(ctx, room, container, name, *req.HasThirdContainer); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSubContainer(w http.ResponseWriter, r *http.Request) {
	err := s.locations.DeleteSubContainer(r.Context(),
		pathParam(r, "room"), pathParam(r, "container"), pathParam(r, "sub"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListThirdContainers(w http.ResponseWriter, r *http.Request) {
	thirds, err := s.locations.ListThirdContainers(r.Context(),
		pathParam(r, "room"), pathParam(r, "container"), pathParam(r, "sub"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thirds)
}

func (s *Server) handleAddThirdContainer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, req.Name) {
		return
	}
	created, err := s.locations.AddThirdContainer(r.Context(), domain.ThirdContainer{
		Room:             pathParam(r, "room"),
		ContainerName:    pathParam(r, "container"),
		SubContainerName: pathParam(r, "sub"),
		Name:             req.Name,
	})
	s.writeAdded(w, r, created, err)
}

func (s *Server) handleUpdateThirdContainer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if !validName(w, req.Name) {
		return
	}
	err := s.locations.RenameThirdContainer(r.Context(),
		pathParam(r, "room"), pathParam(r, "container"), pathParam(r, "sub"), pathParam(r, "third"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteThirdContainer(w http.ResponseWriter, r *http.Request) {
	err := s.locations.DeleteThirdContainer(r.Context(),
		pathParam(r, "room"), pathParam(r, "container"), pathParam(r, "sub"), pathParam(r, "third"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRoomItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItemsInRoom(r.Context(), pathParam(r, "room"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleListLocationItems lists items stored exactly at a container, or at a
// sub or third container named by the sub and third query parameters.
func (s *Server) handleListLocationItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItemsAt(r.Context(),
		pathParam(r, "room"), pathParam(r, "container"),
		optionalQuery(r, "sub"), optionalQuery(r, "third"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
