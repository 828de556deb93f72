// Package rauth implements the LINE Login flow: login-start redirect,
// the OAuth callback (code exchange, profile fetch, user upsert, session
// cookie), and logout.
package rauth

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskboard-backend/internal/api"
	"taskboard-backend/internal/api/middleware/mwauth"
	"taskboard-backend/pkg/lineauth"
	"taskboard-backend/pkg/service/suser"
	"taskboard-backend/pkg/stoken"
)

const (
	stateCookieName = "line_oauth_state"
	sessionDuration = 7 * 24 * time.Hour
)

type AuthHandler struct {
	line          *lineauth.Client
	us            suser.UserService
	hmacSecret    []byte
	appURL        string
	secureCookies bool
}

func New(line *lineauth.Client, us suser.UserService, hmacSecret []byte, appURL string, secureCookies bool) AuthHandler {
	return AuthHandler{
		line:          line,
		us:            us,
		hmacSecret:    hmacSecret,
		appURL:        appURL,
		secureCookies: secureCookies,
	}
}

func CreateService(srv AuthHandler) (*api.Service, error) {
	r := chi.NewRouter()
	r.Get("/api/auth/line/login", srv.LoginStart)
	r.Get("/api/auth/line", srv.LoginCallback)
	r.Post("/api/auth/logout", srv.Logout)
	return &api.Service{Path: "/api/auth/", Handler: r}, nil
}

// LoginStart redirects the browser to the LINE authorize page with a fresh
// state nonce pinned in a short-lived cookie.
func (h AuthHandler) LoginStart(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.line.AuthorizeURL(state), http.StatusFound)
}

// LoginCallback finishes the flow: code → access token → profile → user
// upsert → session cookie → dashboard redirect.
func (h AuthHandler) LoginCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "No code provided")
		return
	}

	if cookie, err := r.Cookie(stateCookieName); err == nil {
		if cookie.Value != r.URL.Query().Get("state") {
			api.WriteError(w, http.StatusBadRequest, "state mismatch")
			return
		}
	}

	accessToken, err := h.line.ExchangeCode(ctx, code)
	if err != nil {
		log.Printf("rauth: code exchange failed: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	profile, err := h.line.GetProfile(ctx, accessToken)
	if err != nil {
		log.Printf("rauth: profile fetch failed: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	user, err := h.us.UpsertByLineUserID(ctx, profile.UserID, profile.DisplayName, profile.PictureURL)
	if err != nil {
		log.Printf("rauth: user upsert failed: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	token, err := stoken.NewJWT(user.ID, stoken.SessionToken, sessionDuration, h.hmacSecret)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mwauth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.appURL+"/dashboard", http.StatusFound)
}

// Logout drops the session cookie. The JWT itself simply expires.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     mwauth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
