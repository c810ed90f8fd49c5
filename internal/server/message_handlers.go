package server

import (
	"errors"
	"fmt"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// NewMessagePage handles GET /messages/new
func (s *Server) NewMessagePage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"max_length": models.MaxMessageLength,
		"flashes":    s.popFlashes(c),
	})
}

// CreateMessage handles POST /messages/new
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	if _, err := s.messageService.CreateMessage(c.UserContext(), userID, req.Text); err != nil {
		return respondAppError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", userID), fiber.StatusFound)
}

// GetMessage handles GET /messages/:id
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	message, err := s.messageService.GetMessage(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": message,
		"flashes": s.popFlashes(c),
	})
}

// DeleteMessage handles POST /messages/:id/delete. Only the author may
// delete; anyone else gets the standard notice and a redirect home.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	userID := currentUserID(c)
	if err := s.messageService.DeleteMessage(c.UserContext(), userID, id); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "UNAUTHORIZED" {
			return s.flashRedirect(c, "Access unauthorized.", "/")
		}
		return respondAppError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", userID), fiber.StatusFound)
}

// ToggleLike handles POST /messages/:id/like. The like state flips and the
// caller is sent back where they came from.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	message, liked, err := s.messageService.ToggleLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondAppError(c, err)
	}

	if liked {
		s.flash(c, fmt.Sprintf("Liked %s's warble", message.User.Username))
	} else {
		s.flash(c, fmt.Sprintf("Unliked %s's warble", message.User.Username))
	}

	location := c.Get("Referer")
	if location == "" {
		location = "/"
	}
	return c.Redirect(location, fiber.StatusFound)
}
