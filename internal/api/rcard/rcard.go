package rcard

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mcard"
	"taskboard-backend/pkg/model/muser"
	"taskboard-backend/pkg/reorder"
	"taskboard-backend/pkg/service/scard"
	"taskboard-backend/pkg/service/schecklist"
	"taskboard-backend/pkg/service/slane"
	"taskboard-backend/pkg/service/suser"
	"taskboard-backend/pkg/translate/tboard"
)

type CardHandler struct {
	DB  *sql.DB
	cs  scard.CardService
	ls  slane.LaneService
	chs schecklist.ChecklistService
	us  suser.UserService
}

func New(db *sql.DB, cs scard.CardService, ls slane.LaneService, chs schecklist.ChecklistService, us suser.UserService) CardHandler {
	return CardHandler{DB: db, cs: cs, ls: ls, chs: chs, us: us}
}

func CreateService(srv CardHandler, authMW func(http.Handler) http.Handler) (*api.Service, error) {
	r := chi.NewRouter()
	r.Use(authMW)
	r.Post("/api/cards", srv.CreateCard)
	r.Put("/api/cards", srv.UpdateCard)
	r.Delete("/api/cards", srv.DeleteCard)
	return &api.Service{Path: "/api/cards", Handler: r}, nil
}

// CreateCard appends a new card at the end of the lane's ordering.
func (h CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		LaneID      string         `json:"laneId"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Priority    mcard.Priority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LaneID == "" || req.Title == "" {
		api.WriteError(w, http.StatusBadRequest, "laneId and title are required")
		return
	}
	laneID, err := idwrap.NewText(req.LaneID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid laneId")
		return
	}
	if req.Priority == "" {
		req.Priority = mcard.PriorityMedium
	}
	if !req.Priority.IsValid() {
		api.WriteError(w, http.StatusBadRequest, "invalid priority")
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}
	defer tx.Rollback()

	if _, err := slane.NewTX(tx).GetLane(ctx, laneID); err != nil {
		if errors.Is(err, slane.ErrNoLaneFound) {
			api.WriteError(w, http.StatusNotFound, "Lane not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	order, err := reorder.Append(ctx, tx, reorder.CardScope, laneID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	card := mcard.Card{
		ID:          idwrap.NewNow(),
		LaneID:      laneID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Order:       order,
	}
	if err := scard.NewTX(tx).CreateCard(ctx, &card); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	if err := tx.Commit(); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"card": tboard.SerializeCard(card)})
}

// UpdateCard patches the card's content fields and/or moves it. A move
// (laneId/order present) runs through the reorder engine inside the same
// transaction as the patch, so siblings in both lanes shift atomically with
// the card's own update.
func (h CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ID          string          `json:"id"`
		Title       *string         `json:"title"`
		Description *string         `json:"description"`
		Priority    *mcard.Priority `json:"priority"`
		LaneID      *string         `json:"laneId"`
		Order       *int64          `json:"order"`
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
	if req.Priority != nil && !req.Priority.IsValid() {
		api.WriteError(w, http.StatusBadRequest, "invalid priority")
		return
	}
	if req.LaneID != nil && req.Order == nil {
		api.WriteError(w, http.StatusBadRequest, "order is required when laneId is set")
		return
	}
	if req.Order != nil && *req.Order < 0 {
		api.WriteError(w, http.StatusBadRequest, "order must not be negative")
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}
	defer tx.Rollback()

	csTX := scard.NewTX(tx)
	card, err := csTX.GetCard(ctx, id)
	if err != nil {
		if errors.Is(err, scard.ErrNoCardFound) {
			api.WriteError(w, http.StatusNotFound, "Card not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.Priority != nil {
		card.Priority = *req.Priority
	}
	if err := csTX.UpdateCard(ctx, card); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	if req.Order != nil {
		targetLane := card.LaneID
		if req.LaneID != nil {
			targetLane, err = idwrap.NewText(*req.LaneID)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, "invalid laneId")
				return
			}
		}
		if err := reorder.Move(ctx, tx, reorder.CardScope, id, targetLane, *req.Order); err != nil {
			if errors.Is(err, reorder.ErrContainerNotFound) {
				api.WriteError(w, http.StatusNotFound, "Lane not found")
				return
			}
			api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
			return
		}
	}

	updated, err := csTX.GetCard(ctx, id)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	if err := tx.Commit(); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	nested, err := h.serializeWithChecklists(r, *updated)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"card": nested})
}

func (h CardHandler) serializeWithChecklists(r *http.Request, card mcard.Card) (tboard.Card, error) {
	ctx := r.Context()

	items, err := h.chs.ListItemsByCard(ctx, card.ID)
	if err != nil {
		return tboard.Card{}, err
	}

	out := tboard.SerializeCard(card)
	for _, item := range items {
		var assignee *muser.User
		if item.AssignedTo != nil {
			assignee, err = h.us.GetUser(ctx, *item.AssignedTo)
			if err != nil && !errors.Is(err, suser.ErrNoUserFound) {
				return tboard.Card{}, err
			}
		}
		out.Checklists = append(out.Checklists, tboard.SerializeChecklistItem(item, assignee))
	}
	return out, nil
}

// DeleteCard removes the card (checklist items cascade) and compacts the
// lane's remaining ordering, all in one transaction.
func (h CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
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
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}
	defer tx.Rollback()

	placement, err := reorder.GetPlacement(ctx, tx, reorder.CardScope, id)
	if err != nil {
		if errors.Is(err, reorder.ErrItemNotFound) {
			api.WriteError(w, http.StatusNotFound, "Card not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	if err := scard.NewTX(tx).DeleteCard(ctx, id); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	if err := reorder.CompactAfterDelete(ctx, tx, reorder.CardScope, placement.ContainerID, placement.Order); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	if err := tx.Commit(); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
