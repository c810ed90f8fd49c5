package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"warbler/internal/middleware"
	"warbler/internal/repository"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMessage(t *testing.T) {
	s, app := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")
	cookie := sessionCookie(t, s, user.ID)

	form := url.Values{}
	form.Set("text", "Hello warble")

	resp, err := app.Test(formRequest(http.MethodPost, "/messages/new", cookie, form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/users/1", resp.Header.Get("Location"))
	_ = resp.Body.Close()

	warbles, err := s.messageService.ListByUser(context.Background(), user.ID, 100, 0, 0)
	require.NoError(t, err)
	require.Len(t, warbles, 1)
	assert.Equal(t, "Hello warble", warbles[0].Text)
}

func TestCreateMessageRejectsEmptyAndOverlong(t *testing.T) {
	s, app := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")
	cookie := sessionCookie(t, s, user.ID)

	for _, text := range []string{"", strings.Repeat("x", 141)} {
		form := url.Values{}
		form.Set("text", text)
		resp, err := app.Test(formRequest(http.MethodPost, "/messages/new", cookie, form))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestGetMessage(t *testing.T) {
	s, app := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")
	msg, err := s.messageService.CreateMessage(context.Background(), user.ID, "a warble")
	require.NoError(t, err)

	resp, err := app.Test(getRequest("/messages/1", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	message := body["message"].(map[string]any)
	assert.Equal(t, msg.Text, message["text"])
	assert.Equal(t, "testuser", message["user"].(map[string]any)["username"])
}

func TestGetMessageNotFound(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(getRequest("/messages/999", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDeleteMessageByAuthor(t *testing.T) {
	s, app := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")
	msg, err := s.messageService.CreateMessage(context.Background(), user.ID, "doomed warble")
	require.NoError(t, err)

	cookie := sessionCookie(t, s, user.ID)
	resp, err := app.Test(formRequest(http.MethodPost, "/messages/1/delete", cookie, url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_ = resp.Body.Close()

	_, err = s.messageService.GetMessage(context.Background(), msg.ID, 0)
	require.Error(t, err)
}

func TestDeleteMessageByNonOwner(t *testing.T) {
	s, app := newTestServer(t)
	author := signupUser(t, s, "author", "author@test.com", "password")
	intruder := signupUser(t, s, "intruder", "intruder@test.com", "password")
	_, err := s.messageService.CreateMessage(context.Background(), author.ID, "protected warble")
	require.NoError(t, err)

	cookie := sessionCookie(t, s, intruder.ID)
	resp, err := app.Test(formRequest(http.MethodPost, "/messages/1/delete", cookie, url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	_ = resp.Body.Close()

	assert.Contains(t, flashesFor(t, app, "/", cookie), "Access unauthorized.")

	// Still there.
	_, err = s.messageService.GetMessage(context.Background(), 1, 0)
	require.NoError(t, err)
}

func TestToggleLikeFlashes(t *testing.T) {
	s, app := newTestServer(t)
	author := signupUser(t, s, "author", "author@test.com", "password")
	fan := signupUser(t, s, "fan", "fan@test.com", "password")
	_, err := s.messageService.CreateMessage(context.Background(), author.ID, "likable warble")
	require.NoError(t, err)

	cookie := sessionCookie(t, s, fan.ID)

	resp, err := app.Test(formRequest(http.MethodPost, "/messages/1/like", cookie, url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	_ = resp.Body.Close()
	assert.Contains(t, flashesFor(t, app, "/", cookie), "Liked author's warble")

	resp, err = app.Test(formRequest(http.MethodPost, "/messages/1/like", cookie, url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_ = resp.Body.Close()
	assert.Contains(t, flashesFor(t, app, "/", cookie), "Unliked author's warble")
}

func TestToggleLikeFollowsReferer(t *testing.T) {
	s, app := newTestServer(t)
	author := signupUser(t, s, "author", "author@test.com", "password")
	fan := signupUser(t, s, "fan", "fan@test.com", "password")
	_, err := s.messageService.CreateMessage(context.Background(), author.ID, "likable warble")
	require.NoError(t, err)

	req := formRequest(http.MethodPost, "/messages/1/like", sessionCookie(t, s, fan.ID), url.Values{})
	req.Header.Set("Referer", "/users/1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/users/1", resp.Header.Get("Location"))
	_ = resp.Body.Close()
}

func TestToggleLikeMissingMessage(t *testing.T) {
	s, app := newTestServer(t)
	fan := signupUser(t, s, "fan", "fan@test.com", "password")

	resp, err := app.Test(formRequest(http.MethodPost, "/messages/999/like",
		sessionCookie(t, s, fan.ID), url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestToggleLikeSelfPolicyDisabled(t *testing.T) {
	s, app := newTestServer(t)

	// Rebuild the message service with self-likes disallowed.
	messageRepo := repository.NewMessageRepository(s.db)
	likeRepo := repository.NewLikeRepository(s.db)
	s.messageService = service.NewMessageService(messageRepo, likeRepo, false)

	author := signupUser(t, s, "author", "author@test.com", "password")
	_, err := s.messageService.CreateMessage(context.Background(), author.ID, "my own warble")
	require.NoError(t, err)

	resp, err := app.Test(formRequest(http.MethodPost, "/messages/1/like",
		sessionCookie(t, s, author.ID), url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAuthRequiredMiddlewareAllowsSessionUser(t *testing.T) {
	s, _ := newTestServer(t)
	user := signupUser(t, s, "testuser", "test@test.com", "password")

	app := fiber.New()
	app.Use(middleware.ResolveIdentity(s.sessions, s.config))
	app.Get("/protected", middleware.AuthRequired(s.sessions), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	resp, err := app.Test(getRequest("/protected", sessionCookie(t, s, user.ID)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(user.ID), body["userID"])
}
