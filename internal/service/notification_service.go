package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/events"
	"github.com/spec-kit/municipal-helpdesk/internal/mail"
	"github.com/spec-kit/municipal-helpdesk/internal/worker"
)

// JobSubmitter accepts email jobs without blocking.
type JobSubmitter interface {
	Submit(job worker.Job) error
}

// NotificationService turns domain events into queued emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	jobs       JobSubmitter
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, jobs JobSubmitter, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		jobs:       jobs,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.logEvent)
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if strings.TrimSpace(payload.OwnerEmail) == "" {
		n.logger.Warn("status change without owner email", zap.String("folio", event.Folio))
		return nil
	}

	msg, err := mail.StatusChangeEmail(mail.StatusChange{
		To:        payload.OwnerEmail,
		Name:      payload.OwnerName,
		Folio:     event.Folio,
		Service:   payload.Service,
		OldStatus: payload.OldStatus,
		NewStatus: payload.NewStatus,
	})
	if err != nil {
		return err
	}
	if n.jobs == nil {
		return nil
	}
	return n.jobs.Submit(worker.Job{EventID: event.ID, Folio: event.Folio, Message: msg})
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("folio", event.Folio),
		zap.Int64("actor_id", event.Actor.UserID))
	return nil
}
