package dto

import (
	"time"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Service     string `json:"service"`
	Description string `json:"description"`
}

// UpdateTicketStatusRequest payload for PATCH /tickets.
type UpdateTicketStatusRequest struct {
	Folio  string `json:"folio"`
	Status string `json:"status"`
}

// TicketResponse is a ticket annotated with the whole days since creation.
type TicketResponse struct {
	ID                int64               `json:"id"`
	Folio             string              `json:"folio"`
	Area              string              `json:"area"`
	Service           string              `json:"service"`
	Description       string              `json:"description"`
	Status            domain.TicketStatus `json:"status"`
	Requester         string              `json:"requester"`
	UserID            int64               `json:"userId"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         *time.Time          `json:"updatedAt"`
	DiasTranscurridos int                 `json:"diasTranscurridos"`
}

// AdminTicketResponse adds the owning user's details.
type AdminTicketResponse struct {
	TicketResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserArea  string `json:"userArea"`
}

// FolioPreviewResponse answers GET /tickets/next-folio.
type FolioPreviewResponse struct {
	Folio string `json:"folio"`
	Area  string `json:"area"`
}

// NewTicketResponse maps a ticket as seen at now.
func NewTicketResponse(t *domain.Ticket, now time.Time) TicketResponse {
	return TicketResponse{
		ID:                t.ID,
		Folio:             t.Folio,
		Area:              t.Area,
		Service:           t.Service,
		Description:       t.Description,
		Status:            t.Status,
		Requester:         t.Requester,
		UserID:            t.UserID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		DiasTranscurridos: t.ElapsedDays(now),
	}
}

// NewTicketList maps a requester's tickets.
func NewTicketList(tickets []domain.Ticket, now time.Time) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i], now))
	}
	return items
}

// NewAdminTicketList maps tickets joined with their owners. Tickets whose owner row is gone
// fall back to the stored requester address.
func NewAdminTicketList(tickets []domain.TicketWithOwner, now time.Time) []AdminTicketResponse {
	items := make([]AdminTicketResponse, 0, len(tickets))
	for i := range tickets {
		item := AdminTicketResponse{TicketResponse: NewTicketResponse(&tickets[i].Ticket, now)}
		if owner := tickets[i].Owner; owner != nil {
			item.UserName = owner.FullName
			item.UserEmail = owner.Email
			item.UserArea = owner.Area
		} else {
			item.UserEmail = tickets[i].Requester
			item.UserArea = tickets[i].Area
		}
		items = append(items, item)
	}
	return items
}
