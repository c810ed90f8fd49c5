package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupCreatesAccountAndSession(t *testing.T) {
	_, app := newTestServer(t)

	form := url.Values{}
	form.Set("username", "testuser")
	form.Set("email", "test@test.com")
	form.Set("password", "password")

	resp, err := app.Test(formRequest(http.MethodPost, "/signup", "", form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := responseCookie(t, resp)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "testuser", user["username"])
	assert.Equal(t, models.DefaultImageURL, user["image_url"])
	assert.Nil(t, user["password"])

	// The session is live: the home page now serves the timeline.
	resp, err = app.Test(getRequest("/", cookie))
	require.NoError(t, err)
	home := decodeBody(t, resp)
	assert.Contains(t, home, "warbles")
}

func TestSignupDuplicateUsernameFlashes(t *testing.T) {
	s, app := newTestServer(t)
	signupUser(t, s, "testuser", "test@test.com", "password")

	form := url.Values{}
	form.Set("username", "testuser")
	form.Set("email", "other@test.com")
	form.Set("password", "password")

	resp, err := app.Test(formRequest(http.MethodPost, "/signup", "", form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	cookie := responseCookie(t, resp)
	assert.Contains(t, flashesFor(t, app, "/signup", cookie), "Username already taken")
	_ = resp.Body.Close()
}

func TestSignupRejectsMissingPassword(t *testing.T) {
	_, app := newTestServer(t)

	form := url.Values{}
	form.Set("username", "testuser")
	form.Set("email", "test@test.com")

	resp, err := app.Test(formRequest(http.MethodPost, "/signup", "", form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLoginSuccessFlashesGreeting(t *testing.T) {
	s, app := newTestServer(t)
	signupUser(t, s, "testuser", "test@test.com", "password")

	form := url.Values{}
	form.Set("username", "testuser")
	form.Set("password", "password")

	resp, err := app.Test(formRequest(http.MethodPost, "/login", "", form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := responseCookie(t, resp)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	assert.Contains(t, flashesFor(t, app, "/", cookie), "Hello, testuser!")
}

func TestLoginBadCredentials(t *testing.T) {
	s, app := newTestServer(t)
	signupUser(t, s, "testuser", "test@test.com", "password")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"Wrong Password", "testuser", "wrongpassword"},
		{"Unknown Username", "nobody", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			form.Set("username", tt.username)
			form.Set("password", tt.password)

			resp, err := app.Test(formRequest(http.MethodPost, "/login", "", form))
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "Invalid credentials.", body["error"])
		})
	}
}

func TestLogoutEndsSession(t *testing.T) {
	s, app := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")
	cookie := sessionCookie(t, s, user.ID)

	resp, err := app.Test(formRequest(http.MethodPost, "/logout", cookie, url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_ = resp.Body.Close()

	// The old session no longer authenticates.
	resp, err = app.Test(getRequest("/", cookie))
	require.NoError(t, err)
	home := decodeBody(t, resp)
	assert.Equal(t, "Warbler", home["title"])
}

func TestHomeAnonymousLanding(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(getRequest("/", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Warbler", body["title"])
	assert.Equal(t, "What's Happening?", body["heading"])
}

func TestHomeFeedScopedToFollowed(t *testing.T) {
	s, app := newTestServer(t)
	viewer := signupUser(t, s, "viewer", "viewer@test.com", "password")
	followed := signupUser(t, s, "followed", "followed@test.com", "password")
	stranger := signupUser(t, s, "stranger", "stranger@test.com", "password")

	ctx := context.Background()
	_, err := s.socialService.Follow(ctx, viewer.ID, followed.ID)
	require.NoError(t, err)
	_, err = s.messageService.CreateMessage(ctx, followed.ID, "followed warble")
	require.NoError(t, err)
	_, err = s.messageService.CreateMessage(ctx, stranger.ID, "invisible warble")
	require.NoError(t, err)

	resp, err := app.Test(getRequest("/", sessionCookie(t, s, viewer.ID)))
	require.NoError(t, err)
	body := decodeBody(t, resp)

	warbles := body["warbles"].([]any)
	require.Len(t, warbles, 1)
	first := warbles[0].(map[string]any)
	assert.Equal(t, "followed warble", first["text"])
}

func TestBearerTokenAuthenticatesAPIClients(t *testing.T) {
	s, app := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")

	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)

	req := getRequest("/", "")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body := decodeBody(t, resp)
	assert.Contains(t, body, "warbles")
}
