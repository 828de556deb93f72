package rlane

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mlane"
	"taskboard-backend/pkg/reorder"
	"taskboard-backend/pkg/service/sboard"
	"taskboard-backend/pkg/service/slane"
	"taskboard-backend/pkg/translate/tboard"
)

type LaneHandler struct {
	DB *sql.DB
	ls slane.LaneService
	bs sboard.BoardService
}

func New(db *sql.DB, ls slane.LaneService, bs sboard.BoardService) LaneHandler {
	return LaneHandler{DB: db, ls: ls, bs: bs}
}

func CreateService(srv LaneHandler, authMW func(http.Handler) http.Handler) (*api.Service, error) {
	r := chi.NewRouter()
	r.Use(authMW)
	r.Post("/api/lanes", srv.CreateLane)
	r.Put("/api/lanes", srv.UpdateLane)
	r.Delete("/api/lanes", srv.DeleteLane)
	return &api.Service{Path: "/api/lanes", Handler: r}, nil
}

// CreateLane appends a new lane at the end of the board's ordering.
func (h LaneHandler) CreateLane(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		BoardID string `json:"boardId"`
		Title   string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BoardID == "" || req.Title == "" {
		api.WriteError(w, http.StatusBadRequest, "boardId and title are required")
		return
	}
	boardID, err := idwrap.NewText(req.BoardID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid boardId")
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create lane")
		return
	}
	defer tx.Rollback()

	if _, err := sboard.NewTX(tx).GetBoard(ctx, boardID); err != nil {
		if errors.Is(err, sboard.ErrNoBoardFound) {
			api.WriteError(w, http.StatusNotFound, "Board not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to create lane")
		return
	}

	order, err := reorder.Append(ctx, tx, reorder.LaneScope, boardID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create lane")
		return
	}

	lane := mlane.Lane{
		ID:      idwrap.NewNow(),
		BoardID: boardID,
		Title:   req.Title,
		Order:   order,
	}
	if err := slane.NewTX(tx).CreateLane(ctx, &lane); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create lane")
		return
	}

	if err := tx.Commit(); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create lane")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"lane": tboard.SerializeLane(lane)})
}

// UpdateLane renames and/or moves a lane. A move shifts the sibling lanes in
// the same transaction so the board's ordering stays dense.
func (h LaneHandler) UpdateLane(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ID    string  `json:"id"`
		Title *string `json:"title"`
		Order *int64  `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		api.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	id, err := idwrap.NewText(req.ID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if req.Order != nil && *req.Order < 0 {
		api.WriteError(w, http.StatusBadRequest, "order must not be negative")
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update lane")
		return
	}
	defer tx.Rollback()

	lsTX := slane.NewTX(tx)
	lane, err := lsTX.GetLane(ctx, id)
	if err != nil {
		if errors.Is(err, slane.ErrNoLaneFound) {
			api.WriteError(w, http.StatusNotFound, "Lane not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to update lane")
		return
	}

	if req.Title != nil {
		if err := lsTX.UpdateLaneTitle(ctx, id, *req.Title); err != nil {
			api.WriteError(w, http.StatusInternalServerError, "Failed to update lane")
			return
		}
	}

	if req.Order != nil {
		if err := reorder.Move(ctx, tx, reorder.LaneScope, id, lane.BoardID, *req.Order); err != nil {
			api.WriteError(w, http.StatusInternalServerError, "Failed to update lane")
			return
		}
	}

	updated, err := lsTX.GetLane(ctx, id)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update lane")
		return
	}

	if err := tx.Commit(); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update lane")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"lane": tboard.SerializeLane(*updated)})
}

// DeleteLane cascades to the lane's cards and compacts the board's remaining
// lane ordering, all in one transaction.
func (h LaneHandler) DeleteLane(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawID := r.URL.Query().Get("id")
	if rawID == "" {
		api.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	id, err := idwrap.NewText(rawID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete lane")
		return
	}
	defer tx.Rollback()

	placement, err := reorder.GetPlacement(ctx, tx, reorder.LaneScope, id)
	if err != nil {
		if errors.Is(err, reorder.ErrItemNotFound) {
			api.WriteError(w, http.StatusNotFound, "Lane not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete lane")
		return
	}

	if err := slane.NewTX(tx).DeleteLane(ctx, id); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete lane")
		return
	}

	if err := reorder.CompactAfterDelete(ctx, tx, reorder.LaneScope, placement.ContainerID, placement.Order); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete lane")
		return
	}

	if err := tx.Commit(); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete lane")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
