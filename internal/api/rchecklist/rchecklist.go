package rchecklist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mchecklist"
	"taskboard-backend/pkg/model/muser"
	"taskboard-backend/pkg/notify"
	"taskboard-backend/pkg/service/scard"
	"taskboard-backend/pkg/service/schecklist"
	"taskboard-backend/pkg/service/suser"
	"taskboard-backend/pkg/translate/tboard"
)

type ChecklistHandler struct {
	DB         *sql.DB
	chs        schecklist.ChecklistService
	cs         scard.CardService
	us         suser.UserService
	dispatcher *notify.Dispatcher
}

func New(db *sql.DB, chs schecklist.ChecklistService, cs scard.CardService, us suser.UserService, dispatcher *notify.Dispatcher) ChecklistHandler {
	return ChecklistHandler{DB: db, chs: chs, cs: cs, us: us, dispatcher: dispatcher}
}

func CreateService(srv ChecklistHandler, authMW func(http.Handler) http.Handler) (*api.Service, error) {
	r := chi.NewRouter()
	r.Use(authMW)
	r.Post("/api/checklist", srv.CreateItem)
	r.Put("/api/checklist", srv.UpdateItem)
	r.Delete("/api/checklist", srv.DeleteItem)
	return &api.Service{Path: "/api/checklist", Handler: r}, nil
}

// CreateItem adds a checklist item to a card. When the item arrives already
// assigned, the assignee is notified after the write has gone through —
// notification failure never fails the request.
func (h ChecklistHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CardID           string  `json:"cardId"`
		Text             string  `json:"text"`
		AssignedToUserID *string `json:"assignedToUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == "" || req.Text == "" {
		api.WriteError(w, http.StatusBadRequest, "cardId and text are required")
		return
	}
	cardID, err := idwrap.NewText(req.CardID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid cardId")
		return
	}

	card, err := h.cs.GetCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, scard.ErrNoCardFound) {
			api.WriteError(w, http.StatusNotFound, "Card not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to create checklist item")
		return
	}

	var assignee *muser.User
	item := mchecklist.ChecklistItem{
		ID:     idwrap.NewNow(),
		CardID: cardID,
		Text:   req.Text,
	}
	if req.AssignedToUserID != nil && *req.AssignedToUserID != "" {
		assigneeID, err := idwrap.NewText(*req.AssignedToUserID)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid assignedToUserId")
			return
		}
		assignee, err = h.us.GetUser(ctx, assigneeID)
		if err != nil {
			if errors.Is(err, suser.ErrNoUserFound) {
				api.WriteError(w, http.StatusNotFound, "User not found")
				return
			}
			api.WriteError(w, http.StatusInternalServerError, "Failed to create checklist item")
			return
		}
		item.AssignedTo = &assigneeID
	}

	if err := h.chs.CreateItem(ctx, &item); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create checklist item")
		return
	}

	// Post-commit hook: the insert is durable at this point.
	if assignee != nil {
		h.dispatcher.Enqueue(notify.Event{
			LineUserID: assignee.LineUserID,
			CardTitle:  card.Title,
			ItemText:   item.Text,
		})
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"checklist": tboard.SerializeChecklistItem(item, assignee)})
}

// UpdateItem patches text/completed/assignee. assignedToUserId is tri-state:
// absent leaves the assignee alone, null clears it, a user id reassigns.
// A changed, non-null assignee is notified after the write commits.
func (h ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	// Decoded twice: the map distinguishes an absent assignedToUserId from an
	// explicit null (clear assignee).
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var req struct {
		ID               string  `json:"id"`
		Text             *string `json:"text"`
		Completed        *bool   `json:"completed"`
		AssignedToUserID *string `json:"assignedToUserId"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.ID == "" {
		api.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	id, err := idwrap.NewText(req.ID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	_, assigneeKeyPresent := fields["assignedToUserId"]

	item, err := h.chs.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, schecklist.ErrNoChecklistItemFound) {
			api.WriteError(w, http.StatusNotFound, "Checklist item not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to update checklist item")
		return
	}

	if req.Text != nil {
		item.Text = *req.Text
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}

	var assignee *muser.User
	newlyAssigned := false
	if assigneeKeyPresent {
		if req.AssignedToUserID == nil || *req.AssignedToUserID == "" {
			item.AssignedTo = nil
		} else {
			assigneeID, err := idwrap.NewText(*req.AssignedToUserID)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, "invalid assignedToUserId")
				return
			}
			assignee, err = h.us.GetUser(ctx, assigneeID)
			if err != nil {
				if errors.Is(err, suser.ErrNoUserFound) {
					api.WriteError(w, http.StatusNotFound, "User not found")
					return
				}
				api.WriteError(w, http.StatusInternalServerError, "Failed to update checklist item")
				return
			}
			newlyAssigned = item.AssignedTo == nil || item.AssignedTo.Compare(assigneeID) != 0
			item.AssignedTo = &assigneeID
		}
	}

	if err := h.chs.UpdateItem(ctx, item); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update checklist item")
		return
	}

	// Post-commit hook, mirrors CreateItem.
	if newlyAssigned && assignee != nil {
		cardTitle, err := h.chs.GetCardTitle(ctx, id)
		if err == nil {
			h.dispatcher.Enqueue(notify.Event{
				LineUserID: assignee.LineUserID,
				CardTitle:  cardTitle,
				ItemText:   item.Text,
			})
		}
	}

	if item.AssignedTo != nil && assignee == nil {
		assignee, err = h.us.GetUser(ctx, *item.AssignedTo)
		if err != nil && !errors.Is(err, suser.ErrNoUserFound) {
			api.WriteError(w, http.StatusInternalServerError, "Failed to update checklist item")
			return
		}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"checklist": tboard.SerializeChecklistItem(*item, assignee)})
}

func (h ChecklistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
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

	if err := h.chs.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, schecklist.ErrNoChecklistItemFound) {
			api.WriteError(w, http.StatusNotFound, "Checklist item not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete checklist item")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
