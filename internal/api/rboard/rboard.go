package rboard

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/dbtime"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mboard"
	"taskboard-backend/pkg/model/muser"
	"taskboard-backend/pkg/service/sboard"
	"taskboard-backend/pkg/service/scard"
	"taskboard-backend/pkg/service/schecklist"
	"taskboard-backend/pkg/service/slane"
	"taskboard-backend/pkg/service/suser"
	"taskboard-backend/pkg/translate/tboard"
)

type BoardHandler struct {
	DB  *sql.DB
	bs  sboard.BoardService
	ls  slane.LaneService
	cs  scard.CardService
	chs schecklist.ChecklistService
	us  suser.UserService
}

func New(db *sql.DB, bs sboard.BoardService, ls slane.LaneService, cs scard.CardService, chs schecklist.ChecklistService, us suser.UserService) BoardHandler {
	return BoardHandler{DB: db, bs: bs, ls: ls, cs: cs, chs: chs, us: us}
}

// CreateService mounts the collection routes ("/api/boards").
func CreateService(srv BoardHandler, authMW func(http.Handler) http.Handler) (*api.Service, error) {
	return &api.Service{Path: "/api/boards", Handler: router(srv, authMW)}, nil
}

// CreateItemService mounts the per-board routes ("/api/boards/{id}"). Same
// router, second mux registration: net/http needs the subtree pattern too.
func CreateItemService(srv BoardHandler, authMW func(http.Handler) http.Handler) (*api.Service, error) {
	return &api.Service{Path: "/api/boards/", Handler: router(srv, authMW)}, nil
}

func router(srv BoardHandler, authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authMW)
	r.Get("/api/boards", srv.ListBoards)
	r.Post("/api/boards", srv.CreateBoard)
	r.Get("/api/boards/{id}", srv.GetBoard)
	r.Put("/api/boards/{id}", srv.UpdateBoard)
	r.Delete("/api/boards/{id}", srv.DeleteBoard)
	return r
}

// ListBoards returns every board with its lanes and cards nested (checklist
// items are only loaded on the single-board read).
func (h BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	boards, err := h.bs.ListBoards(ctx)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to fetch boards")
		return
	}

	out := make([]tboard.Board, 0, len(boards))
	for _, board := range boards {
		lanes, err := h.ls.ListLanesByBoard(ctx, board.ID)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, "Failed to fetch boards")
			return
		}
		cards, err := h.cs.ListCardsByBoard(ctx, board.ID)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, "Failed to fetch boards")
			return
		}
		out = append(out, tboard.Nest(board, lanes, cards, nil, nil))
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"boards": out})
}

func (h BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		api.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	board := mboard.Board{
		ID:        idwrap.NewNow(),
		Name:      req.Name,
		CreatedAt: dbtime.DBNow(),
	}
	if err := h.bs.CreateBoard(r.Context(), &board); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to create board")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"board": tboard.Nest(board, nil, nil, nil, nil)})
}

func (h BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idwrap.NewText(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid board id")
		return
	}

	board, err := h.bs.GetBoard(ctx, id)
	if err != nil {
		if errors.Is(err, sboard.ErrNoBoardFound) {
			api.WriteError(w, http.StatusNotFound, "Board not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to fetch board")
		return
	}

	nested, err := h.assemble(r, *board)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to fetch board")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"board": nested})
}

// assemble loads the full aggregate for one board.
func (h BoardHandler) assemble(r *http.Request, board mboard.Board) (tboard.Board, error) {
	ctx := r.Context()

	lanes, err := h.ls.ListLanesByBoard(ctx, board.ID)
	if err != nil {
		return tboard.Board{}, err
	}
	cards, err := h.cs.ListCardsByBoard(ctx, board.ID)
	if err != nil {
		return tboard.Board{}, err
	}
	items, err := h.chs.ListItemsByBoard(ctx, board.ID)
	if err != nil {
		return tboard.Board{}, err
	}

	users := map[idwrap.IDWrap]muser.User{}
	for _, item := range items {
		if item.AssignedTo == nil {
			continue
		}
		if _, ok := users[*item.AssignedTo]; ok {
			continue
		}
		user, err := h.us.GetUser(ctx, *item.AssignedTo)
		if err != nil {
			if errors.Is(err, suser.ErrNoUserFound) {
				continue
			}
			return tboard.Board{}, err
		}
		users[user.ID] = *user
	}

	return tboard.Nest(board, lanes, cards, items, users), nil
}

func (h BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	id, err := idwrap.NewText(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid board id")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		api.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := h.bs.UpdateBoard(r.Context(), id, req.Name); err != nil {
		if errors.Is(err, sboard.ErrNoBoardFound) {
			api.WriteError(w, http.StatusNotFound, "Board not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to update board")
		return
	}

	board, err := h.bs.GetBoard(r.Context(), id)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to update board")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"board": tboard.Nest(*board, nil, nil, nil, nil)})
}

// DeleteBoard removes the board; lanes, cards and checklist items go with it
// via the schema's cascading foreign keys. Boards themselves carry no sibling
// ordering, so there is nothing to compact.
func (h BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	id, err := idwrap.NewText(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid board id")
		return
	}

	if err := h.bs.DeleteBoard(r.Context(), id); err != nil {
		if errors.Is(err, sboard.ErrNoBoardFound) {
			api.WriteError(w, http.StatusNotFound, "Board not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete board")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
