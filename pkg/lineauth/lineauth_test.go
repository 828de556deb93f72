package lineauth_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard-backend/pkg/lineauth"
)

type fakeDoer struct {
	lastReq *http.Request
	status  int
	body    string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
		Header:     http.Header{},
	}, nil
}

func newClient(doer *fakeDoer) *lineauth.Client {
	return lineauth.New(lineauth.Config{
		ChannelID:     "channel-id",
		ChannelSecret: "channel-secret",
		RedirectURL:   "https://app.example.com/api/auth/line",
	}, doer)
}

func TestAuthorizeURL(t *testing.T) {
	client := newClient(&fakeDoer{})

	raw := client.AuthorizeURL("nonce-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	require.Equal(t, "access.line.me", u.Host)
	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "channel-id", q.Get("client_id"))
	require.Equal(t, "nonce-123", q.Get("state"))
	require.Equal(t, "profile openid", q.Get("scope"))
}

func TestExchangeCode(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{"access_token":"tok-abc"}`}
	client := newClient(doer)

	token, err := client.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "tok-abc", token)

	require.Equal(t, http.MethodPost, doer.lastReq.Method)
	sent, err := io.ReadAll(doer.lastReq.Body)
	require.NoError(t, err)
	form, err := url.ParseQuery(string(sent))
	require.NoError(t, err)
	require.Equal(t, "authorization_code", form.Get("grant_type"))
	require.Equal(t, "auth-code", form.Get("code"))
	require.Equal(t, "channel-secret", form.Get("client_secret"))
}

func TestExchangeCodeUpstreamError(t *testing.T) {
	doer := &fakeDoer{status: http.StatusBadRequest, body: `{"error":"invalid_grant"}`}
	client := newClient(doer)

	_, err := client.ExchangeCode(context.Background(), "stale-code")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "400"))
}

func TestExchangeCodeMissingToken(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{}`}
	client := newClient(doer)

	_, err := client.ExchangeCode(context.Background(), "auth-code")
	require.Error(t, err)
}

func TestGetProfile(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: `{"userId":"U123","displayName":"Alice","pictureUrl":"https://example.com/a.png"}`}
	client := newClient(doer)

	profile, err := client.GetProfile(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "U123", profile.UserID)
	require.Equal(t, "Alice", profile.DisplayName)
	require.Equal(t, "Bearer tok-abc", doer.lastReq.Header.Get("Authorization"))
}
