package server

import (
	"errors"
	"strconv"

	"warbler/internal/models"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the acting user's id, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// respondAppError maps an application error onto its HTTP status.
func respondAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// flash queues a one-shot notice on the request's session, creating the
// session when the client has none. Best effort: a failed flash never fails
// the request.
func (s *Server) flash(c *fiber.Ctx, msg string) {
	sid, err := s.sessions.Ensure(c)
	if err != nil {
		return
	}
	_ = s.sessions.PushFlash(c.UserContext(), sid, msg)
}

// flashRedirect queues a notice and issues the 302 the original form flow
// expects.
func (s *Server) flashRedirect(c *fiber.Ctx, msg, location string) error {
	s.flash(c, msg)
	return c.Redirect(location, fiber.StatusFound)
}

// popFlashes drains the pending notices for inclusion in a page payload.
func (s *Server) popFlashes(c *fiber.Ctx) []string {
	sid := session.SID(c)
	if sid == "" {
		return nil
	}
	flashes, err := s.sessions.PopFlashes(c.UserContext(), sid)
	if err != nil {
		return nil
	}
	return flashes
}
