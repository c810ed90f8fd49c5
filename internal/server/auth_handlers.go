package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Home handles GET /. Authenticated users get their timeline: warbles from
// the people they follow plus their own, newest first. Anonymous visitors get
// the landing page.
func (s *Server) Home(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.JSON(fiber.Map{
			"title":   "Warbler",
			"heading": "What's Happening?",
			"flashes": s.popFlashes(c),
		})
	}

	warbles, err := s.messageService.Feed(c.UserContext(), userID, 100)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"heading": "What's Happening?",
		"warbles": warbles,
		"flashes": s.popFlashes(c),
	})
}

// SignupPage handles GET /signup
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Join Warbler today.",
		"flashes": s.popFlashes(c),
	})
}

// Signup handles POST /signup. On success the session is bound to the new
// account and a bearer token is issued for API clients.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
		ImageURL string `json:"image_url" form:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
			return s.flashRedirect(c, appErr.Message, "/signup")
		}
		return respondAppError(c, err)
	}

	middleware.SignupsTotal.Inc()

	if err := s.establishSession(c, user.ID); err != nil {
		return respondAppError(c, err)
	}
	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Welcome back.",
		"flashes": s.popFlashes(c),
	})
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondAppError(c, err)
	}
	if user == nil {
		middleware.AuthFailures.WithLabelValues("credentials").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials."))
	}

	if err := s.establishSession(c, user.ID); err != nil {
		return respondAppError(c, err)
	}
	s.flash(c, fmt.Sprintf("Hello, %s!", user.Username))

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if sid := session.SID(c); sid != "" {
		_ = s.sessions.Destroy(c.UserContext(), sid)
	}
	session.ClearCookie(c)
	return s.flashRedirect(c, "You have successfully logged out.", "/login")
}

// establishSession binds the request's session to the authenticated user,
// creating one and setting the cookie when needed.
func (s *Server) establishSession(c *fiber.Ctx, userID uint) error {
	sid, err := s.sessions.Ensure(c)
	if err != nil {
		return err
	}
	return s.sessions.SetUser(c.UserContext(), sid, userID)
}

// generateToken creates a bearer token for the given user ID and username.
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      "warbler-api",
		"aud":      "warbler-client",
		"exp":      now.Add(time.Hour * 24 * 7).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique token id.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
