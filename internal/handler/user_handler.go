package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// profileUpdateRequest lets date_of_birth arrive as a plain date
type profileUpdateRequest struct {
	domain.ProfileUpdate
	DateOfBirth *string `json:"date_of_birth"`
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	me, err := h.userService.GetMe(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(me)
}

// UpdateProfile handles PUT /api/v1/users/me/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	update := req.ProfileUpdate
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDay(*req.DateOfBirth)
		if err != nil {
			return badRequest(c, "date_of_birth must be YYYY-MM-DD")
		}
		update.DateOfBirth = &dob
	}

	profile, err := h.userService.UpdateProfile(c.UserContext(), middleware.GetUserID(c), &update)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}
