package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PENDIENTE"
	TicketStatusInProgress TicketStatus = "EN_PROCESO"
	TicketStatusResolved   TicketStatus = "RESUELTO"
	TicketStatusCancelled  TicketStatus = "CANCELADO"
)

// TicketStatuses lists every valid status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusCancelled,
}

// ParseTicketStatus accepts exactly the four enum literals.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	status := TicketStatus(strings.TrimSpace(raw))
	return status, status.Valid()
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled:
		return true
	default:
		return false
	}
}

// DisplayName is the Spanish label shown to requesters.
func (s TicketStatus) DisplayName() string {
	switch s {
	case TicketStatusPending:
		return "Pendiente"
	case TicketStatusInProgress:
		return "En Proceso"
	case TicketStatusResolved:
		return "Resuelto"
	case TicketStatusCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}

const folioPrefix = "TK"

// FormatFolio renders a sequence number as TK0001. Numbers beyond four digits widen.
func FormatFolio(seq int64) string {
	return fmt.Sprintf("%s%04d", folioPrefix, seq)
}

// Ticket is a support request raised by a NORMAL user.
type Ticket struct {
	ID          int64
	Folio       string
	Area        string
	Service     string
	Description string
	Status      TicketStatus
	Requester   string
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ElapsedDays is the number of whole days since creation, never negative.
func (t *Ticket) ElapsedDays(now time.Time) int {
	return ElapsedDays(t.CreatedAt, now)
}

// ElapsedDays floors (now - createdAt) to whole 24h periods.
func ElapsedDays(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// TicketOwner is the owning user's public details, joined on admin listings.
type TicketOwner struct {
	FullName string
	Email    string
	Area     string
}

// TicketWithOwner pairs a ticket with its owner for administrative views.
type TicketWithOwner struct {
	Ticket
	Owner *TicketOwner
}
