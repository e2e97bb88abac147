package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/municipal-helpdesk/internal/api/dto"
	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/service"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints for requesters and administrators.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Solicitud inválida", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), auth.IdentityFromContext(c), service.TicketCreateInput{
		Service:     req.Service,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewTicketResponse(ticket, h.service.Now()),
		"message": "Ticket creado exitosamente",
	})
}

// ListMine GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	tickets, err := h.service.ListForRequester(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets, h.service.Now())})
}

// NextFolio GET /tickets/next-folio.
func (h *TicketsHandler) NextFolio(c *fiber.Ctx) error {
	preview, err := h.service.PreviewNextFolio(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FolioPreviewResponse{Folio: preview.Folio, Area: preview.Area}})
}

// ListAll GET /tickets.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	tickets, err := h.service.ListAll(c.UserContext(), auth.IdentityFromContext(c), service.TicketListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminTicketList(tickets, h.service.Now())})
}

// UpdateStatus PATCH /tickets.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Solicitud inválida", nil)
	}
	ticket, err := h.service.ChangeStatus(c.UserContext(), auth.IdentityFromContext(c), req.Folio, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewTicketResponse(ticket, h.service.Now()),
		"message": "Estado actualizado",
	})
}

// DeleteTicket DELETE /tickets?folio=.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), auth.IdentityFromContext(c), c.Query("folio")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ticket eliminado exitosamente"})
}
