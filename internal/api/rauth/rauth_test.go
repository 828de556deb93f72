package rauth_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard-backend/internal/api/middleware/mwauth"
	"taskboard-backend/internal/api/rauth"
	"taskboard-backend/pkg/lineauth"
	"taskboard-backend/pkg/stoken"
	"taskboard-backend/pkg/testutil"
)

var secret = []byte("test-secret")

// fakeLineAPI answers the token exchange and the profile fetch in order.
type fakeLineAPI struct{}

func (fakeLineAPI) Do(req *http.Request) (*http.Response, error) {
	var body string
	if strings.Contains(req.URL.Path, "token") {
		body = `{"access_token":"tok-abc"}`
	} else {
		body = `{"userId":"U123","displayName":"Alice","pictureUrl":"https://example.com/a.png"}`
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{},
	}, nil
}

func newHandler(t *testing.T) (rauth.AuthHandler, testutil.BaseTestServices) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	t.Cleanup(base.Close)
	services := base.GetBaseServices()

	line := lineauth.New(lineauth.Config{
		ChannelID:     "channel-id",
		ChannelSecret: "channel-secret",
		RedirectURL:   "https://app.example.com/api/auth/line",
	}, fakeLineAPI{})

	return rauth.New(line, services.Us, secret, "https://app.example.com", false), services
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginStart(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/line/login", nil)
	rec := httptest.NewRecorder()
	handler.LoginStart(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "access.line.me", location.Host)

	state := cookieByName(rec.Result().Cookies(), "line_oauth_state")
	require.NotNil(t, state)
	require.True(t, state.HttpOnly)
	// The state in the redirect matches the pinned cookie.
	require.Equal(t, state.Value, location.Query().Get("state"))
}

func TestLoginCallback(t *testing.T) {
	handler, services := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/line?code=auth-code&state=nonce", nil)
	req.AddCookie(&http.Cookie{Name: "line_oauth_state", Value: "nonce"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://app.example.com/dashboard", rec.Header().Get("Location"))

	// The upserted user exists.
	user, err := services.Us.GetUserByLineUserID(context.Background(), "U123")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)

	// The session cookie carries a valid JWT for that user.
	session := cookieByName(rec.Result().Cookies(), mwauth.SessionCookieName)
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)

	claims, err := stoken.ValidateJWT(session.Value, stoken.SessionToken, secret)
	require.NoError(t, err)
	claimedID, err := claims.UserID()
	require.NoError(t, err)
	require.Zero(t, claimedID.Compare(user.ID))
}

func TestLoginCallbackNoCode(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/line", nil)
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginCallbackStateMismatch(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/line?code=auth-code&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: "line_oauth_state", Value: "nonce"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	session := cookieByName(rec.Result().Cookies(), mwauth.SessionCookieName)
	require.NotNil(t, session)
	require.Empty(t, session.Value)
	require.Negative(t, session.MaxAge)
}
