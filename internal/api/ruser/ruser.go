package ruser

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/service/suser"
)

type UserHandler struct {
	us suser.UserService
}

func New(us suser.UserService) UserHandler {
	return UserHandler{us: us}
}

func CreateService(srv UserHandler, authMW func(http.Handler) http.Handler) (*api.Service, error) {
	r := chi.NewRouter()
	r.Use(authMW)
	r.Get("/api/users", srv.ListUsers)
	return &api.Service{Path: "/api/users", Handler: r}, nil
}

type userResponse struct {
	ID         idwrap.IDWrap `json:"id"`
	Name       string        `json:"name"`
	AvatarURL  string        `json:"avatarUrl"`
	LineUserID string        `json:"lineUserId"`
}

// ListUsers feeds the assignment picker.
func (h UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.us.ListUsers(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, userResponse{
			ID:         user.ID,
			Name:       user.Name,
			AvatarURL:  user.AvatarURL,
			LineUserID: user.LineUserID,
		})
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}
