package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

// TicketFilter captures administrative search parameters.
type TicketFilter struct {
	Status *domain.TicketStatus
	Search string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	NextFolioNumber(ctx context.Context) (int64, error)
	PeekFolioNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByFolio(ctx context.Context, folio string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	ListWithOwners(ctx context.Context, filter TicketFilter) ([]domain.TicketWithOwner, error)
	UpdateStatus(ctx context.Context, folio string, status domain.TicketStatus, updatedAt time.Time) (*domain.Ticket, error)
	DeleteByFolio(ctx context.Context, folio string) error
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `t.id, t.folio, t.area, t.service, t.description, t.status, t.requester, t.user_id, t.created_at, t.updated_at`

// NextFolioNumber draws the next value from the folio sequence. Sequence values are never
// handed out twice, so concurrent creates cannot compute the same folio.
func (r *ticketRepository) NextFolioNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT nextval('ticket_folio_seq')`).Scan(&n)
	return n, err
}

// PeekFolioNumber returns the value nextval would most likely return, without consuming it.
func (r *ticketRepository) PeekFolioNumber(ctx context.Context) (int64, error) {
	const query = `SELECT CASE WHEN is_called THEN last_value + 1 ELSE last_value END FROM ticket_folio_seq`
	var n int64
	err := r.db.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (folio, area, service, description, status, requester, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		ticket.Folio,
		ticket.Area,
		ticket.Service,
		ticket.Description,
		ticket.Status,
		ticket.Requester,
		ticket.UserID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if pgErr, ok := pgError(err); ok && pgErr.Code == sqlStateUniqueViolation {
		return ErrDuplicateFolio
	}
	return err
}

func (r *ticketRepository) GetByFolio(ctx context.Context, folio string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.folio=$1`
	return scanTicket(r.db.QueryRow(ctx, query, folio))
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.user_id=$1 ORDER BY t.created_at DESC, t.id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListWithOwners(ctx context.Context, filter TicketFilter) ([]domain.TicketWithOwner, error) {
	base := `SELECT ` + ticketColumns + `, u.full_name, u.email, u.area
             FROM tickets t LEFT JOIN users u ON u.id = t.user_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.folio) LIKE %[1]s OR LOWER(t.area) LIKE %[1]s OR LOWER(t.requester) LIKE %[1]s OR LOWER(t.service) LIKE %[1]s)", p))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC, t.id DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketWithOwner{}
	for rows.Next() {
		var (
			item                             domain.TicketWithOwner
			ownerName, ownerEmail, ownerArea *string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Folio,
			&item.Area,
			&item.Service,
			&item.Description,
			&item.Status,
			&item.Requester,
			&item.UserID,
			&item.CreatedAt,
			&item.UpdatedAt,
			&ownerName,
			&ownerEmail,
			&ownerArea,
		); err != nil {
			return nil, err
		}
		if ownerEmail != nil {
			item.Owner = &domain.TicketOwner{
				FullName: deref(ownerName),
				Email:    *ownerEmail,
				Area:     deref(ownerArea),
			}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, folio string, status domain.TicketStatus, updatedAt time.Time) (*domain.Ticket, error) {
	query := `UPDATE tickets t SET status=$1, updated_at=$2 WHERE t.folio=$3 RETURNING ` + ticketColumns
	return scanTicket(r.db.QueryRow(ctx, query, status, updatedAt, folio))
}

func (r *ticketRepository) DeleteByFolio(ctx context.Context, folio string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE folio=$1`, folio)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Folio,
		&ticket.Area,
		&ticket.Service,
		&ticket.Description,
		&ticket.Status,
		&ticket.Requester,
		&ticket.UserID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
