package server

import (
	"errors"
	"fmt"

	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /users. An optional ?q= filters by username substring.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	q := c.Query("q")

	var (
		users []models.User
		err   error
	)
	if q != "" {
		users, err = s.userService.SearchUsers(c.UserContext(), q, 50, 0)
	} else {
		users, err = s.userService.ListUsers(c.UserContext(), 50, 0)
	}
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	if err := s.socialService.AttachCounts(c.UserContext(), user); err != nil {
		return respondAppError(c, err)
	}

	warbles, err := s.messageService.ListByUser(c.UserContext(), id, 100, 0, currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"handle":  user.Handle(),
		"warbles": warbles,
		"flashes": s.popFlashes(c),
	})
}

// GetFollowing handles GET /users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}
	users, err := s.socialService.Following(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"users":   users,
		"flashes": s.popFlashes(c),
	})
}

// GetFollowers handles GET /users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}
	users, err := s.socialService.Followers(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"users":   users,
		"flashes": s.popFlashes(c),
	})
}

// GetLikedMessages handles GET /users/:id/likes
func (s *Server) GetLikedMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}
	if _, err := s.userService.GetUserByID(c.UserContext(), id); err != nil {
		return respondAppError(c, err)
	}
	warbles, err := s.messageService.LikedMessages(c.UserContext(), id, 100, 0)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"warbles": warbles,
		"flashes": s.popFlashes(c),
	})
}

// FollowUser handles POST /users/follow/:id
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}
	userID := currentUserID(c)

	if _, err := s.socialService.Follow(c.UserContext(), userID, targetID); err != nil {
		return respondAppError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d/following", userID), fiber.StatusFound)
}

// StopFollowing handles POST /users/stop-following/:id
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}
	userID := currentUserID(c)

	if _, err := s.socialService.Unfollow(c.UserContext(), userID, targetID); err != nil {
		return respondAppError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d/following", userID), fiber.StatusFound)
}

// ProfilePage handles GET /users/profile
func (s *Server) ProfilePage(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"title":   "Edit Your Profile.",
		"user":    user,
		"flashes": s.popFlashes(c),
	})
}

// UpdateProfile handles POST /users/profile. The current password must be
// supplied to confirm the edit.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Username       string `json:"username" form:"username"`
		Email          string `json:"email" form:"email"`
		ImageURL       string `json:"image_url" form:"image_url"`
		HeaderImageURL string `json:"header_image_url" form:"header_image_url"`
		Bio            string `json:"bio" form:"bio"`
		Location       string `json:"location" form:"location"`
		Password       string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         currentUserID(c),
		Password:       req.Password,
		Username:       req.Username,
		Email:          req.Email,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
		Bio:            req.Bio,
		Location:       req.Location,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case "UNAUTHORIZED":
				return s.flashRedirect(c, appErr.Message, "/")
			case "CONFLICT":
				return s.flashRedirect(c, appErr.Message, "/users/profile")
			}
		}
		return respondAppError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", user.ID), fiber.StatusFound)
}

// ChangePasswordPage handles GET /users/change-password
func (s *Server) ChangePasswordPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Change Your Password.",
		"flashes": s.popFlashes(c),
	})
}

// ChangePassword handles POST /users/change-password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password" form:"current_password"`
		NewPassword     string `json:"new_password" form:"new_password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	err := s.userService.ChangePassword(c.UserContext(), userID,
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "UNAUTHORIZED" {
			return s.flashRedirect(c, appErr.Message, "/users/change-password")
		}
		return respondAppError(c, err)
	}
	return s.flashRedirect(c, "Password updated successfully",
		fmt.Sprintf("/users/%d", userID))
}

// DeleteAccount handles POST /users/delete. The account and everything it
// owns are removed, then the session is ended.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if err := s.userService.DeleteAccount(c.UserContext(), userID); err != nil {
		return respondAppError(c, err)
	}

	if sid := session.SID(c); sid != "" {
		_ = s.sessions.Destroy(c.UserContext(), sid)
	}
	session.ClearCookie(c)
	return c.Redirect("/signup", fiber.StatusFound)
}
