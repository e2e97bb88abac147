package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/municipal-helpdesk/internal/api/dto"
	"github.com/spec-kit/municipal-helpdesk/internal/auth"
)

// PagesHandler answers page routes that passed the gate with a view descriptor.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// View renders the descriptor for the requested page.
func (h *PagesHandler) View(c *fiber.Ctx) error {
	view := strings.Trim(c.Path(), "/")
	if view == "" {
		view = "home"
	}
	data := fiber.Map{"view": view}
	if identity := auth.IdentityFromContext(c); identity != nil {
		home, _ := auth.RoleHome(identity.Role)
		data["user"] = dto.NewSessionResponse(identity, home)
	}
	return c.JSON(fiber.Map{"data": data})
}
