package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/room"
)

// roomView is the JSON representation of a room.
type roomView struct {
	Name    string   `json:"name"`
	Members []uint64 `json:"members"`
}

// upsertRoomRequest is the request body for PUT /rooms/{name}.
type upsertRoomRequest struct {
	Members []uint64 `json:"members"`
}

// handleListRooms returns all rooms with their member identifiers.
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := s.core.Rooms.All()
	views := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, newRoomView(r))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": views,
		"count": len(views),
	})
}

// handleGetRoom returns a single room by name.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	found, ok := s.core.Rooms.FindByName(name)
	if !ok {
		writeNotFound(w, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(found))
}

// handleUpsertRoom creates or replaces a room's membership wholesale.
// Member identifiers need not match registered extensions; rooms may be
// configured before their devices announce.
func (s *Server) handleUpsertRoom(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeBadRequest(w, "room name is required")
		return
	}

	var req upsertRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	members := make([]device.Identifier, 0, len(req.Members))
	for _, id := range req.Members {
		members = append(members, device.Identifier(id))
	}

	if err := s.core.UpsertRoom(r.Context(), name, members); err != nil {
		s.logger.Error("room upsert failed", "room", name, "error", err)
		writeInternalError(w, "failed to persist room")
		return
	}

	found, _ := s.core.Rooms.FindByName(name)
	writeJSON(w, http.StatusOK, newRoomView(found))
}

// handleDeleteRoom removes a room. Deleting an unknown room succeeds;
// the end state is the same.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.core.RemoveRoom(r.Context(), name); err != nil {
		s.logger.Error("room delete failed", "room", name, "error", err)
		writeInternalError(w, "failed to delete room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"removed": name})
}

// newRoomView builds the JSON view of a room.
func newRoomView(r *room.Room) roomView {
	members := r.Members()
	ids := make([]uint64, 0, len(members))
	for _, id := range members {
		ids = append(ids, uint64(id))
	}
	return roomView{Name: r.Name, Members: ids}
}
