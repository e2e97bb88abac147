package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	"github.com/spec-kit/municipal-helpdesk/internal/events"
	"github.com/spec-kit/municipal-helpdesk/internal/observability"
	"github.com/spec-kit/municipal-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

// maxFolioAttempts bounds the retries after a folio unique violation.
const maxFolioAttempts = 3

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Service     string
	Description string
}

// TicketListFilter describes the administrative listing filters. Status accepts the enum
// literals, or empty / "todos" for every status.
type TicketListFilter struct {
	Status string
	Search string
}

// FolioPreview is the folio the caller's next ticket will most likely get.
type FolioPreview struct {
	Folio string
	Area  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        clock,
	}
}

// Now returns the service clock, used to compute elapsed days consistently.
func (s *TicketService) Now() time.Time {
	return s.now()
}

// CreateTicket files a new ticket for a NORMAL user. Area and requester are copied from the
// stored account; the folio comes from a database sequence.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireNormal(caller); err != nil {
		return nil, err
	}

	service := strings.TrimSpace(input.Service)
	description := strings.TrimSpace(input.Description)
	var fields []apperrors.FieldError
	if service == "" {
		fields = append(fields, apperrors.FieldError{Field: "service", Message: "El servicio es obligatorio"})
	}
	if description == "" {
		fields = append(fields, apperrors.FieldError{Field: "description", Message: "La descripción es obligatoria"})
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("Todos los campos son requeridos", fields)
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuario no encontrado", map[string]any{"user_id": caller.UserID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Area:        user.Area,
		Service:     service,
		Description: description,
		Status:      domain.TicketStatusPending,
		Requester:   user.Email,
		UserID:      user.ID,
	}

	for attempt := 1; ; attempt++ {
		n, err := s.tickets.NextFolioNumber(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.Folio = domain.FormatFolio(n)

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateFolio) {
			return nil, apperrors.MapError(err)
		}
		s.logger.Warn("folio collision", zap.String("folio", ticket.Folio), zap.Int("attempt", attempt))
		if attempt >= maxFolioAttempts {
			return nil, apperrors.NewConflict("No se pudo asignar un folio, intenta de nuevo", nil)
		}
	}

	s.metrics.RecordTicketCreated()
	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket.Folio, events.ActorFrom(caller), s.now(),
		events.TicketCreatedPayload{
			Area:      ticket.Area,
			Service:   ticket.Service,
			Requester: ticket.Requester,
		}))
	return ticket, nil
}

// PreviewNextFolio reports the folio and area the caller's next ticket would get. The folio
// is not reserved.
func (s *TicketService) PreviewNextFolio(ctx context.Context, caller *domain.Identity) (*FolioPreview, error) {
	if err := requireNormal(caller); err != nil {
		return nil, err
	}
	n, err := s.tickets.PeekFolioNumber(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &FolioPreview{Folio: domain.FormatFolio(n), Area: caller.Area}, nil
}

// ListForRequester returns the caller's own tickets, newest first.
func (s *TicketService) ListForRequester(ctx context.Context, caller *domain.Identity) ([]domain.Ticket, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAll returns every ticket with its owner, newest first.
func (s *TicketService) ListAll(ctx context.Context, caller *domain.Identity, filter TicketListFilter) ([]domain.TicketWithOwner, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	repoFilter := repository.TicketFilter{Search: strings.TrimSpace(filter.Search)}
	rawStatus := strings.TrimSpace(filter.Status)
	if rawStatus != "" && !strings.EqualFold(rawStatus, "todos") {
		status, ok := domain.ParseTicketStatus(strings.ToUpper(rawStatus))
		if !ok {
			return nil, invalidStatusError()
		}
		repoFilter.Status = &status
	}

	tickets, err := s.tickets.ListWithOwners(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ChangeStatus moves a ticket to a new status and notifies its owner. Notification is
// best-effort and never affects the result.
func (s *TicketService) ChangeStatus(ctx context.Context, caller *domain.Identity, folio, rawStatus string) (*domain.Ticket, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	folio = strings.TrimSpace(folio)
	var fields []apperrors.FieldError
	if folio == "" {
		fields = append(fields, apperrors.FieldError{Field: "folio", Message: "El folio es obligatorio"})
	}
	status, ok := domain.ParseTicketStatus(rawStatus)
	if !ok {
		fields = append(fields, apperrors.FieldError{Field: "status", Message: "Estado inválido"})
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("Datos inválidos", fields)
	}

	current, err := s.tickets.GetByFolio(ctx, folio)
	if err != nil {
		return nil, s.ticketLookupError(err, folio)
	}

	updated, err := s.tickets.UpdateStatus(ctx, folio, status, s.now())
	if err != nil {
		return nil, s.ticketLookupError(err, folio)
	}
	s.metrics.RecordStatusChange(string(status))

	s.publishEvent(ctx, events.NewEvent(events.EventTicketStatusChanged, updated.Folio, events.ActorFrom(caller), s.now(),
		s.statusChangedPayload(ctx, current.Status, updated)))
	return updated, nil
}

// DeleteTicket removes a ticket permanently.
func (s *TicketService) DeleteTicket(ctx context.Context, caller *domain.Identity, folio string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return apperrors.NewFieldValidationError("Folio no proporcionado",
			[]apperrors.FieldError{{Field: "folio", Message: "El folio es obligatorio"}})
	}
	if err := s.tickets.DeleteByFolio(ctx, folio); err != nil {
		return s.ticketLookupError(err, folio)
	}
	s.publishEvent(ctx, events.NewEvent(events.EventTicketDeleted, folio, events.ActorFrom(caller), s.now(), nil))
	return nil
}

func (s *TicketService) statusChangedPayload(ctx context.Context, oldStatus domain.TicketStatus, ticket *domain.Ticket) events.TicketStatusChangedPayload {
	payload := events.TicketStatusChangedPayload{
		Service:    ticket.Service,
		OldStatus:  oldStatus,
		NewStatus:  ticket.Status,
		OwnerEmail: ticket.Requester,
	}
	owner, err := s.users.GetByID(ctx, ticket.UserID)
	if err != nil {
		s.logger.Warn("ticket owner lookup failed", zap.String("folio", ticket.Folio), zap.Error(err))
		return payload
	}
	payload.OwnerEmail = owner.Email
	payload.OwnerName = owner.FullName
	return payload
}

func (s *TicketService) ticketLookupError(err error, folio string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("Ticket no encontrado", map[string]any{"folio": folio})
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func invalidStatusError() error {
	return apperrors.NewFieldValidationError("Estado inválido",
		[]apperrors.FieldError{{Field: "status", Message: "Estado inválido"}})
}
